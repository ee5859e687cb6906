package board

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/famquest/internal/cli"
)

type TodayCmd struct {
	Family string `help:"Family ID (defaults to your family)."`
}

func (c *TodayCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	f, err := ctx.Family(bg, c.Family)
	if err != nil {
		return err
	}
	b, err := ctx.Dashboard().Today(bg, f.ID)
	if err != nil {
		return err
	}

	fmt.Println(cli.TitleStyle.Render(fmt.Sprintf("%s · %s %s", b.Family.Name, time.Weekday(b.DayOfWeek), b.Date)))
	if len(b.Habits) == 0 {
		fmt.Println("Nothing due today.")
		return nil
	}

	widths := []int{7, 26}
	header := []string{"Time", "Habit"}
	for _, m := range b.Members {
		widths = append(widths, max(len(m.Name)+2, 6))
		header = append(header, m.Name)
	}
	fmt.Println(cli.HeaderStyle.Render(cli.Row(widths, header...)))

	for _, h := range b.Habits {
		row := []string{h.Habit.TimeOfDay, strings.TrimSpace(fmt.Sprintf("%s %s +%d", h.Habit.Icon, h.Habit.Title, h.Habit.XPReward))}
		for _, m := range b.Members {
			switch {
			case !h.Habit.IsAssignedTo(m.ID):
				row = append(row, cli.MutedStyle.Render("·"))
			case h.Done(m.ID):
				row = append(row, cli.SuccessStyle.Render("✓"))
			default:
				row = append(row, "○")
			}
		}
		fmt.Println(cli.Row(widths, row...))
	}
	return nil
}
