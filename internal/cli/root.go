package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/famquest/internal/backup"
	"github.com/julianstephens/famquest/internal/completion"
	"github.com/julianstephens/famquest/internal/constants"
	"github.com/julianstephens/famquest/internal/dashboard"
	"github.com/julianstephens/famquest/internal/family"
	"github.com/julianstephens/famquest/internal/logger"
	"github.com/julianstephens/famquest/internal/models"
	"github.com/julianstephens/famquest/internal/progression"
	"github.com/julianstephens/famquest/internal/scheduler"
	"github.com/julianstephens/famquest/internal/storage"
	"github.com/julianstephens/famquest/internal/streaks"
	"github.com/julianstephens/famquest/internal/utils"
)

type Context struct {
	Store     storage.Provider
	Scheduler *scheduler.Scheduler
	Resolver  *utils.DateResolver
	// OwnerID owns the family the CLI works on when no --family is given
	OwnerID         string
	EnforceSchedule bool
}

// NewContext wires the default scheduler and clock around store.
func NewContext(store storage.Provider) *Context {
	return &Context{
		Store:     store,
		Scheduler: scheduler.New(),
		Resolver:  utils.NewDateResolver(),
		OwnerID:   constants.DefaultOwnerID,
	}
}

func (c *Context) Families() *family.Service {
	return family.NewService(c.Store)
}

func (c *Context) Completions() *completion.Service {
	return completion.NewService(c.Store, c.Resolver, c.Scheduler, completion.Options{EnforceSchedule: c.EnforceSchedule})
}

func (c *Context) Dashboard() *dashboard.Service {
	return dashboard.NewService(c.Store, c.Resolver, c.Scheduler)
}

func (c *Context) Recalculator() *streaks.Recalculator {
	return streaks.NewRecalculator(c.Store, c.Resolver)
}

// Family returns the family with the given ID, or the owner's family when id is empty.
func (c *Context) Family(ctx context.Context, id string) (models.Family, error) {
	if id != "" {
		return c.Store.GetFamily(ctx, id)
	}
	f, err := c.Store.GetFamilyByOwner(ctx, c.OwnerID)
	if errors.Is(err, storage.ErrNotFound) {
		return models.Family{}, errors.New("no family yet, run 'famquest family create' or 'famquest family import' first")
	}
	return f, err
}

// PerformAutomaticBackup snapshots a SQLite database before a bulk write.
// Failures are logged and do not interrupt the command.
func (c *Context) PerformAutomaticBackup(reason string) string {
	if c.Store.Kind() != storage.KindSQLite {
		return ""
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	path, err := mgr.CreateBackup(reason)
	if err != nil {
		logger.Warn("Automatic backup failed", "reason", reason, "error", err)
		return ""
	}
	return path
}

// Confirm asks a yes/no question. assumeYes skips the prompt.
func Confirm(title, description string, assumeYes bool) (bool, error) {
	if assumeYes {
		return true, nil
	}
	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	)
	if err := form.Run(); err != nil {
		return false, fmt.Errorf("interactive form error: %w", err)
	}
	return ok, nil
}

// ParseWeekdays parses a comma-separated list of weekday names or numbers
// (0=Sunday) into sorted, de-duplicated day indexes.
func ParseWeekdays(s string) ([]int, error) {
	dayMap := map[string]time.Weekday{
		"sun":       time.Sunday,
		"sunday":    time.Sunday,
		"mon":       time.Monday,
		"monday":    time.Monday,
		"tue":       time.Tuesday,
		"tuesday":   time.Tuesday,
		"wed":       time.Wednesday,
		"wednesday": time.Wednesday,
		"thu":       time.Thursday,
		"thursday":  time.Thursday,
		"fri":       time.Friday,
		"friday":    time.Friday,
		"sat":       time.Saturday,
		"saturday":  time.Saturday,
	}

	var seen [7]bool
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		if part == "" {
			continue
		}
		if wd, ok := dayMap[part]; ok {
			seen[wd] = true
			continue
		}
		num, err := strconv.Atoi(part)
		if err != nil || num < 0 || num > 6 {
			return nil, fmt.Errorf("invalid weekday: %s", part)
		}
		seen[num] = true
	}

	var days []int
	for d, ok := range seen {
		if ok {
			days = append(days, d)
		}
	}
	return days, nil
}

// FormatFrequency renders a habit's recurrence for listings.
func FormatFrequency(h models.Habit) string {
	switch h.Frequency {
	case constants.FrequencyDaily:
		return "daily"
	case constants.FrequencyWeekly:
		if len(h.DaysOfWeek) > 0 {
			var days []string
			for _, d := range h.DaysOfWeek {
				days = append(days, time.Weekday(d).String()[:3])
			}
			return fmt.Sprintf("weekly on %s", strings.Join(days, ","))
		}
		return "weekly"
	case constants.FrequencyMonthly:
		return "monthly"
	default:
		return "unknown"
	}
}

// ResolveMembers maps member names or IDs to IDs. An empty list means every member.
func ResolveMembers(members []models.Member, refs []string) ([]string, error) {
	if len(refs) == 0 {
		ids := make([]string, 0, len(members))
		for _, m := range members {
			ids = append(ids, m.ID)
		}
		return ids, nil
	}
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		found := ""
		for _, m := range members {
			if m.ID == ref || strings.EqualFold(m.Name, strings.TrimSpace(ref)) {
				found = m.ID
				break
			}
		}
		if found == "" {
			return nil, fmt.Errorf("unknown member: %s", ref)
		}
		ids = append(ids, found)
	}
	return ids, nil
}

// MemberNames maps member IDs to names for display.
func MemberNames(members []models.Member) map[string]string {
	names := make(map[string]string, len(members))
	for _, m := range members {
		names[m.ID] = m.Name
	}
	return names
}

// LevelLabel renders a level with the XP still needed for the next one.
func LevelLabel(level, xp int) string {
	if level >= progression.MaxLevel {
		return fmt.Sprintf("Level %d (max)", level)
	}
	return fmt.Sprintf("Level %d (%d XP to next)", level, progression.XPToNextLevel(xp))
}
