package families

import (
	"context"
	"fmt"

	"github.com/julianstephens/famquest/internal/cli"
	"github.com/julianstephens/famquest/internal/constants"
	"github.com/julianstephens/famquest/internal/family"
)

type MemberCmd struct {
	Add    MemberAddCmd    `cmd:"" help:"Add a family member."`
	List   MemberListCmd   `cmd:"" help:"List family members." default:"1"`
	Edit   MemberEditCmd   `cmd:"" help:"Edit a family member."`
	Remove MemberRemoveCmd `cmd:"" help:"Remove a member and their history."`
}

type MemberAddCmd struct {
	Name   string `arg:"" help:"Member name."`
	Role   string `help:"Member role." enum:"parent,child" default:"child"`
	Age    int    `help:"Age in years (optional)."`
	Family string `help:"Family ID (defaults to your family)."`
}

func (c *MemberAddCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	f, err := ctx.Family(bg, c.Family)
	if err != nil {
		return err
	}
	in := family.MemberInput{Name: c.Name, Role: constants.Role(c.Role)}
	if c.Age != 0 {
		in.Age = &c.Age
	}
	m, err := ctx.Families().AddMember(bg, f.ID, in)
	if err != nil {
		return err
	}
	fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("✓ Added %s (%s)", m.Name, m.Role)))
	fmt.Printf("  ID: %s\n", m.ID)
	return nil
}

type MemberListCmd struct {
	Family string `help:"Family ID (defaults to your family)."`
}

func (c *MemberListCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	f, err := ctx.Family(bg, c.Family)
	if err != nil {
		return err
	}
	members, err := ctx.Families().Members(bg, f.ID)
	if err != nil {
		return err
	}
	if len(members) == 0 {
		fmt.Println("No members yet. Add one with 'famquest member add <name>'.")
		return nil
	}

	widths := []int{16, 8, 26, 9, 10, 38}
	fmt.Println(cli.HeaderStyle.Render(cli.Row(widths, "Name", "Role", "Level", "XP", "Streak", "ID")))
	for _, m := range members {
		fmt.Println(cli.Row(widths,
			m.Name,
			string(m.Role),
			cli.LevelLabel(m.Level, m.TotalXP),
			fmt.Sprintf("%d", m.TotalXP),
			fmt.Sprintf("%d/%d", m.CurrentStreak, m.LongestStreak),
			cli.MutedStyle.Render(m.ID),
		))
	}
	return nil
}

type MemberEditCmd struct {
	Member string `arg:"" help:"Member name or ID."`
	Name   string `help:"New name."`
	Role   string `help:"New role (parent or child)."`
	Age    int    `help:"New age."`
	Family string `help:"Family ID (defaults to your family)."`
}

func (c *MemberEditCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	f, err := ctx.Family(bg, c.Family)
	if err != nil {
		return err
	}
	svc := ctx.Families()
	m, err := svc.ResolveMember(bg, f.ID, c.Member)
	if err != nil {
		return err
	}

	in := family.MemberInput{Name: m.Name, Role: m.Role, Age: m.Age}
	if c.Name != "" {
		in.Name = c.Name
	}
	if c.Role != "" {
		in.Role = constants.Role(c.Role)
	}
	if c.Age != 0 {
		in.Age = &c.Age
	}
	updated, err := svc.UpdateMember(bg, m.ID, in)
	if err != nil {
		return err
	}
	fmt.Println(cli.SuccessStyle.Render("✓ Updated " + updated.Name))
	return nil
}

type MemberRemoveCmd struct {
	Member string `arg:"" help:"Member name or ID."`
	Yes    bool   `short:"y" help:"Skip the confirmation prompt."`
	Family string `help:"Family ID (defaults to your family)."`
}

func (c *MemberRemoveCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	f, err := ctx.Family(bg, c.Family)
	if err != nil {
		return err
	}
	svc := ctx.Families()
	m, err := svc.ResolveMember(bg, f.ID, c.Member)
	if err != nil {
		return err
	}

	ok, err := cli.Confirm(
		fmt.Sprintf("Remove %s?", m.Name),
		fmt.Sprintf("This deletes level %d, %d XP and every completion. It cannot be undone.", m.Level, m.TotalXP),
		c.Yes,
	)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("Removal cancelled.")
		return nil
	}

	deleted, err := svc.RemoveMember(bg, m.ID)
	if err != nil {
		return err
	}
	fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("✓ Removed %s", m.Name)))
	fmt.Printf("  %d completion(s) deleted\n", deleted)
	return nil
}
