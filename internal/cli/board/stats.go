package board

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianstephens/famquest/internal/cli"
)

type StatsCmd struct {
	Member string `arg:"" help:"Member name or ID."`
	Month  string `help:"Calendar month (YYYY-MM), defaults to the current month."`
	Family string `help:"Family ID (defaults to your family)."`
}

func (c *StatsCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	f, err := ctx.Family(bg, c.Family)
	if err != nil {
		return err
	}
	m, err := ctx.Families().ResolveMember(bg, f.ID, c.Member)
	if err != nil {
		return err
	}
	s, err := ctx.Dashboard().MemberStats(bg, m.ID, c.Month)
	if err != nil {
		return err
	}

	fmt.Println(cli.TitleStyle.Render(s.Member.Name))
	fmt.Printf("%s · %d XP · streak %d (best %d)\n", cli.LevelLabel(s.Member.Level, s.Member.TotalXP),
		s.Member.TotalXP, s.Member.CurrentStreak, s.Member.LongestStreak)
	fmt.Printf("Completed %d habit(s) for %d XP; %d active habit(s) assigned\n", s.TotalCompleted, s.TotalXPEarned, s.AssignedHabits)
	fmt.Println()

	fmt.Println(cli.HeaderStyle.Render(fmt.Sprintf("Last %d days (avg %.0f%%)", len(s.LastSevenDays), s.AverageRate)))
	for _, d := range s.LastSevenDays {
		fmt.Printf("  %s  %-10s %3.0f%%\n", d.Date, strings.Repeat("█", int(d.Rate/10)), d.Rate)
	}
	fmt.Println()

	fmt.Println(cli.HeaderStyle.Render("Calendar " + s.Month))
	active := 0
	for _, d := range s.Calendar {
		if d.Count > 0 {
			active++
			fmt.Printf("  %s  %d\n", d.Date, d.Count)
		}
	}
	if active == 0 {
		fmt.Println(cli.MutedStyle.Render("  no completions this month"))
	}
	fmt.Println()

	fmt.Println(cli.HeaderStyle.Render("Achievements"))
	for _, a := range s.Achievements {
		line := fmt.Sprintf("  %s %-18s %d/%d", a.Icon, a.Title, a.Progress, a.Requirement)
		if a.Unlocked {
			fmt.Println(cli.SuccessStyle.Render(line))
		} else {
			fmt.Println(cli.MutedStyle.Render(line))
		}
	}
	return nil
}
