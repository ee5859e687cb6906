package board

import (
	"context"
	"fmt"

	"github.com/julianstephens/famquest/internal/cli"
)

type CompleteCmd struct {
	Habit  string `arg:"" help:"Habit title or ID."`
	Member string `short:"m" required:"" help:"Member name or ID."`
	Family string `help:"Family ID (defaults to your family)."`
}

func (c *CompleteCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	f, err := ctx.Family(bg, c.Family)
	if err != nil {
		return err
	}
	svc := ctx.Families()
	h, err := svc.ResolveHabit(bg, f.ID, c.Habit)
	if err != nil {
		return err
	}
	m, err := svc.ResolveMember(bg, f.ID, c.Member)
	if err != nil {
		return err
	}

	out, err := ctx.Completions().CompleteHabitForMember(bg, f.ID, h.ID, m.ID)
	if err != nil {
		return err
	}

	if !out.Accepted {
		fmt.Println(cli.WarningStyle.Render(fmt.Sprintf("%s already completed %s on %s. No XP awarded.", m.Name, h.Title, out.Date)))
		return nil
	}

	fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("✓ %s completed %s  +%d XP", m.Name, h.Title, out.XPEarned)))
	if out.LeveledUp {
		fmt.Println(cli.LevelUpBanner.Render(fmt.Sprintf("LEVEL UP! %d → %d", out.OldLevel, out.NewLevel)))
	}
	fmt.Printf("  %s · %d XP total\n", cli.LevelLabel(out.NewLevel, out.TotalXP), out.TotalXP)
	fmt.Printf("  🔥 %d-day streak (best %d)\n", out.CurrentStreak, out.LongestStreak)
	return nil
}
