package board

import (
	"context"
	"fmt"

	"github.com/julianstephens/famquest/internal/cli"
)

type LeaderboardCmd struct {
	Family string `help:"Family ID (defaults to your family)."`
}

func (c *LeaderboardCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	f, err := ctx.Family(bg, c.Family)
	if err != nil {
		return err
	}
	entries, err := ctx.Dashboard().Leaderboard(bg, f.ID)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No members yet.")
		return nil
	}

	widths := []int{6, 16, 7, 9, 12, 10}
	fmt.Println(cli.TitleStyle.Render(f.Name + " leaderboard"))
	fmt.Println(cli.HeaderStyle.Render(cli.Row(widths, "Rank", "Name", "Level", "XP", "To next", "Streak")))
	for _, e := range entries {
		rank := fmt.Sprintf("#%d", e.Rank)
		if e.Rank == 1 {
			rank = "🏆 1"
		}
		fmt.Println(cli.Row(widths,
			rank,
			e.Name,
			fmt.Sprintf("%d", e.Level),
			fmt.Sprintf("%d", e.TotalXP),
			fmt.Sprintf("%d", e.XPToNextLevel),
			fmt.Sprintf("%d/%d", e.CurrentStreak, e.LongestStreak),
		))
	}
	return nil
}
