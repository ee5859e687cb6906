package system

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/famquest/internal/backup"
	"github.com/julianstephens/famquest/internal/cli"
	"github.com/julianstephens/famquest/internal/storage"
	"github.com/julianstephens/famquest/internal/utils"
	"github.com/julianstephens/famquest/internal/validation"
)

type DoctorCmd struct{}

type severity int

const (
	severityError severity = iota
	severityWarning
)

type check struct {
	name     string
	severity severity
	needsDB  bool
	run      func(context.Context, *cli.Context) error
}

var checks = []check{
	{"Schema version", severityError, true, checkSchemaVersion},
	{"Migrations complete", severityError, true, checkMigrationsComplete},
	{"Backups present", severityWarning, false, checkBackupsPresent},
	{"Family timezones", severityError, true, checkFamilyTimezones},
	{"Data validation", severityError, true, checkValidation},
	{"Clock", severityError, false, func(context.Context, *cli.Context) error { return checkClock(time.Now()) }},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	bg := context.Background()
	hasError := false

	dbReachable := true
	if err := ctx.Store.Load(); err != nil {
		fmt.Printf("❌ Database reachable: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
		dbReachable = false
	} else {
		fmt.Printf("✓ Database reachable: OK\n")
	}

	for _, c := range checks {
		if c.needsDB && !dbReachable {
			fmt.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(bg, ctx)
		switch {
		case err == nil:
			fmt.Printf("✓ %s: OK\n", c.name)
		case c.severity == severityWarning:
			fmt.Printf("⚠ %s: WARNING\n", c.name)
			fmt.Printf("   %v\n", err)
		default:
			fmt.Printf("❌ %s: FAIL\n", c.name)
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	fmt.Println("All diagnostics passed!")
	return nil
}

func checkSchemaVersion(_ context.Context, ctx *cli.Context) error {
	runner, err := runnerFor(ctx)
	if err != nil {
		return err
	}
	return runner.ValidateVersion()
}

func checkMigrationsComplete(_ context.Context, ctx *cli.Context) error {
	runner, err := runnerFor(ctx)
	if err != nil {
		return err
	}
	pending, err := runner.Pending()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if pending > 0 {
		return fmt.Errorf("%d migration(s) pending, run 'famquest migrate'", pending)
	}
	return nil
}

func checkBackupsPresent(_ context.Context, ctx *cli.Context) error {
	if ctx.Store.Kind() != storage.KindSQLite {
		return nil
	}
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	latest, err := mgr.Latest()
	if errors.Is(err, backup.ErrNoBackups) {
		return fmt.Errorf("no backups found - consider creating one with 'famquest backup create'")
	}
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if age := time.Since(latest.Timestamp); age > 30*24*time.Hour {
		return fmt.Errorf("latest backup is %d days old", int(age.Hours()/24))
	}
	return nil
}

func checkFamilyTimezones(bg context.Context, ctx *cli.Context) error {
	families, err := ctx.Store.GetAllFamilies(bg)
	if err != nil {
		return fmt.Errorf("failed to load families: %w", err)
	}
	var bad []string
	for _, f := range families {
		if _, err := utils.LoadLocation(f.Timezone); err != nil {
			bad = append(bad, fmt.Sprintf("%s (%q)", f.Name, f.Timezone))
		}
	}
	if len(bad) > 0 {
		return fmt.Errorf("invalid timezone for: %s", strings.Join(bad, ", "))
	}
	return nil
}

func checkValidation(bg context.Context, ctx *cli.Context) error {
	families, err := ctx.Store.GetAllFamilies(bg)
	if err != nil {
		return fmt.Errorf("failed to load families: %w", err)
	}
	v := validation.New()
	var reports []string
	for _, f := range families {
		members, err := ctx.Store.GetMembersForFamily(bg, f.ID)
		if err != nil {
			return fmt.Errorf("failed to load members of %s: %w", f.Name, err)
		}
		habits, err := ctx.Store.GetHabitsForFamily(bg, f.ID, true)
		if err != nil {
			return fmt.Errorf("failed to load habits of %s: %w", f.Name, err)
		}
		result := v.ValidateFamilyData(f, members, habits)
		if result.HasConflicts() {
			reports = append(reports, f.Name+":\n"+result.FormatReport())
		}
	}
	if len(reports) > 0 {
		return errors.New(strings.Join(reports, "\n"))
	}
	return nil
}

func checkClock(now time.Time) error {
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}
