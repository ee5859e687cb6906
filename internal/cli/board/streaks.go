package board

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/julianstephens/famquest/internal/backup"
	"github.com/julianstephens/famquest/internal/cli"
)

type StreaksCmd struct {
	Recalc StreaksRecalcCmd `cmd:"" help:"Recompute streaks from completion history."`
}

type StreaksRecalcCmd struct {
	Family string `help:"Family ID (defaults to your family)."`
	All    bool   `help:"Recalculate every family in the database."`
	Yes    bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *StreaksRecalcCmd) Run(ctx *cli.Context) error {
	bg := context.Background()

	scope := "every family"
	familyID := ""
	if !c.All {
		f, err := ctx.Family(bg, c.Family)
		if err != nil {
			return err
		}
		familyID = f.ID
		scope = f.Name
	}

	ok, err := cli.Confirm(
		fmt.Sprintf("Recalculate streaks for %s?", scope),
		"Stored current and longest streaks are overwritten with values recomputed from completion history.",
		c.Yes,
	)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("Recalculation cancelled.")
		return nil
	}

	if path := ctx.PerformAutomaticBackup(backup.ReasonRecalc); path != "" {
		fmt.Println(cli.MutedStyle.Render("Backup: " + filepath.Base(path)))
	}

	results, err := ctx.Recalculator().RecalculateStreaks(bg, familyID)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Println("No members to recalculate.")
		return nil
	}

	widths := []int{16, 12, 12, 10}
	fmt.Println(cli.HeaderStyle.Render(cli.Row(widths, "Member", "Before", "After", "Status")))
	changed, failed := 0, 0
	for _, r := range results {
		name := r.MemberName
		if name == "" {
			name = "family " + r.FamilyID
		}
		after := fmt.Sprintf("%d/%d", r.After.CurrentStreak, r.After.LongestStreak)
		status := "ok"
		switch {
		case r.Err != nil:
			failed++
			after = "-"
			status = cli.DangerStyle.Render("failed")
		case r.Changed():
			changed++
			status = cli.WarningStyle.Render("fixed")
		}
		fmt.Println(cli.Row(widths,
			name,
			fmt.Sprintf("%d/%d", r.Before.CurrentStreak, r.Before.LongestStreak),
			after,
			status,
		))
		if r.Err != nil {
			fmt.Println(cli.MutedStyle.Render("  " + r.Error))
		}
	}

	fmt.Printf("\n%d member(s) checked, %d corrected, %d failed\n", len(results), changed, failed)
	if failed > 0 {
		return fmt.Errorf("%d member(s) could not be recalculated", failed)
	}
	return nil
}
