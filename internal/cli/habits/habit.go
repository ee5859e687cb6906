package habits

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianstephens/famquest/internal/cli"
	"github.com/julianstephens/famquest/internal/constants"
	"github.com/julianstephens/famquest/internal/family"
	"github.com/julianstephens/famquest/internal/models"
)

type HabitCmd struct {
	Add        HabitAddCmd        `cmd:"" help:"Add a new habit."`
	Edit       HabitEditCmd       `cmd:"" help:"Edit a habit. Earned XP is not affected."`
	List       HabitListCmd       `cmd:"" help:"List habits." default:"1"`
	Deactivate HabitDeactivateCmd `cmd:"" help:"Hide a habit from the daily board."`
	Reactivate HabitReactivateCmd `cmd:"" help:"Put a deactivated habit back on the board."`
}

type HabitAddCmd struct {
	Title     string   `arg:"" help:"Habit title."`
	XP        int      `help:"XP awarded per completion (1-100)." default:"10"`
	Frequency string   `help:"Recurrence." enum:"daily,weekly,monthly" default:"daily"`
	Days      string   `help:"Weekdays for weekly habits, e.g. mon,wed,fri."`
	Member    []string `short:"m" help:"Assigned member name or ID (repeatable, defaults to everyone)."`
	Time      string   `help:"Time of day (HH:MM)."`
	Icon      string   `help:"Emoji shown next to the title."`
	Family    string   `help:"Family ID (defaults to your family)."`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	f, err := ctx.Family(bg, c.Family)
	if err != nil {
		return err
	}
	svc := ctx.Families()
	members, err := svc.Members(bg, f.ID)
	if err != nil {
		return err
	}
	memberIDs, err := cli.ResolveMembers(members, c.Member)
	if err != nil {
		return err
	}

	in := family.HabitInput{
		Title:     c.Title,
		Icon:      c.Icon,
		XPReward:  c.XP,
		Frequency: constants.Frequency(c.Frequency),
		MemberIDs: memberIDs,
		TimeOfDay: c.Time,
	}
	if c.Days != "" {
		if in.DaysOfWeek, err = cli.ParseWeekdays(c.Days); err != nil {
			return err
		}
	}

	h, err := svc.CreateHabit(bg, f.ID, in)
	if err != nil {
		return err
	}
	fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("✓ Added habit %s (+%d XP, %s)", h.Title, h.XPReward, cli.FormatFrequency(h))))
	fmt.Printf("  ID: %s\n", h.ID)
	return nil
}

type HabitEditCmd struct {
	Habit     string   `arg:"" help:"Habit title or ID."`
	Title     string   `help:"New title."`
	XP        int      `help:"New XP reward (1-100)."`
	Frequency string   `help:"New recurrence (daily, weekly or monthly)."`
	Days      string   `help:"New weekdays for weekly habits."`
	Member    []string `short:"m" help:"Replace assigned members (repeatable)."`
	Time      string   `help:"New time of day (HH:MM)."`
	NoTime    bool     `help:"Clear the time of day."`
	Icon      string   `help:"New icon."`
	Family    string   `help:"Family ID (defaults to your family)."`
}

func (c *HabitEditCmd) Run(ctx *cli.Context) error {
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

	in := inputFrom(h)
	if c.Title != "" {
		in.Title = c.Title
	}
	if c.XP != 0 {
		in.XPReward = c.XP
	}
	if c.Frequency != "" {
		in.Frequency = constants.Frequency(c.Frequency)
	}
	if c.Days != "" {
		if in.DaysOfWeek, err = cli.ParseWeekdays(c.Days); err != nil {
			return err
		}
	}
	if len(c.Member) > 0 {
		members, err := svc.Members(bg, f.ID)
		if err != nil {
			return err
		}
		if in.MemberIDs, err = cli.ResolveMembers(members, c.Member); err != nil {
			return err
		}
	}
	if c.NoTime {
		in.TimeOfDay = ""
	} else if c.Time != "" {
		in.TimeOfDay = c.Time
	}
	if c.Icon != "" {
		in.Icon = c.Icon
	}

	updated, err := svc.UpdateHabit(bg, h.ID, in)
	if err != nil {
		return err
	}
	fmt.Println(cli.SuccessStyle.Render("✓ Updated habit " + updated.Title))
	if updated.XPReward != h.XPReward {
		fmt.Println(cli.MutedStyle.Render(fmt.Sprintf("  Reward %d → %d XP; past completions keep their XP", h.XPReward, updated.XPReward)))
	}
	return nil
}

func inputFrom(h models.Habit) family.HabitInput {
	return family.HabitInput{
		Title:      h.Title,
		Icon:       h.Icon,
		XPReward:   h.XPReward,
		Frequency:  h.Frequency,
		DaysOfWeek: h.DaysOfWeek,
		MemberIDs:  h.MemberIDs,
		TimeOfDay:  h.TimeOfDay,
	}
}

type HabitListCmd struct {
	All    bool   `short:"a" help:"Include deactivated habits."`
	Family string `help:"Family ID (defaults to your family)."`
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	f, err := ctx.Family(bg, c.Family)
	if err != nil {
		return err
	}
	svc := ctx.Families()
	habits, err := svc.Habits(bg, f.ID, c.All)
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		fmt.Println("No habits yet. Add one with 'famquest habit add <title>'.")
		return nil
	}
	members, err := svc.Members(bg, f.ID)
	if err != nil {
		return err
	}
	names := cli.MemberNames(members)

	widths := []int{24, 6, 22, 7, 30}
	fmt.Println(cli.HeaderStyle.Render(cli.Row(widths, "Habit", "XP", "Schedule", "Time", "Members")))
	for _, h := range habits {
		assigned := make([]string, 0, len(h.MemberIDs))
		for _, id := range h.MemberIDs {
			assigned = append(assigned, names[id])
		}
		title := strings.TrimSpace(h.Icon + " " + h.Title)
		if !h.IsActive {
			title = cli.MutedStyle.Render(title + " (inactive)")
		}
		fmt.Println(cli.Row(widths,
			title,
			fmt.Sprintf("%d", h.XPReward),
			cli.FormatFrequency(h),
			h.TimeOfDay,
			strings.Join(assigned, ", "),
		))
	}
	return nil
}

type HabitDeactivateCmd struct {
	Habit  string `arg:"" help:"Habit title or ID."`
	Family string `help:"Family ID (defaults to your family)."`
}

func (c *HabitDeactivateCmd) Run(ctx *cli.Context) error {
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
	if err := svc.DeactivateHabit(bg, h.ID); err != nil {
		return err
	}
	fmt.Printf("✓ Deactivated %s. History is kept; reactivate with 'famquest habit reactivate'.\n", h.Title)
	return nil
}

type HabitReactivateCmd struct {
	Habit  string `arg:"" help:"Habit title or ID."`
	Family string `help:"Family ID (defaults to your family)."`
}

func (c *HabitReactivateCmd) Run(ctx *cli.Context) error {
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
	if err := svc.ReactivateHabit(bg, h.ID); err != nil {
		return err
	}
	fmt.Printf("✓ Reactivated %s\n", h.Title)
	return nil
}
