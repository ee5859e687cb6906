package families

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/famquest/internal/cli"
	"github.com/julianstephens/famquest/internal/utils"
)

type FamilyCmd struct {
	Create FamilyCreateCmd `cmd:"" help:"Create your family."`
	Show   FamilyShowCmd   `cmd:"" help:"Show family details." default:"1"`
	Update FamilyUpdateCmd `cmd:"" help:"Rename the family or change its timezone."`
	Import FamilyImportCmd `cmd:"" help:"Create a family with members and habits from a YAML file."`
}

type FamilyCreateCmd struct {
	Name     string `arg:"" optional:"" help:"Family name. Prompts when omitted."`
	Timezone string `help:"IANA timezone that decides when a day starts." default:"UTC"`
	Locale   string `help:"Locale tag." default:"en"`
}

func (c *FamilyCreateCmd) Run(ctx *cli.Context) error {
	if c.Name == "" {
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Family name").
					Value(&c.Name).
					Validate(func(s string) error {
						if strings.TrimSpace(s) == "" {
							return fmt.Errorf("name is required")
						}
						return nil
					}),
				huh.NewInput().
					Title("Timezone").
					Description("IANA name, e.g. Europe/Berlin").
					Value(&c.Timezone).
					Validate(func(s string) error {
						if !utils.ValidateTimezone(s) {
							return fmt.Errorf("unknown timezone %q", s)
						}
						return nil
					}),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("interactive form error: %w", err)
		}
	}

	f, err := ctx.Families().CreateFamily(context.Background(), ctx.OwnerID, c.Name, c.Timezone, c.Locale)
	if err != nil {
		return err
	}
	fmt.Println(cli.SuccessStyle.Render("✓ Created family " + f.Name))
	fmt.Printf("  ID: %s\n  Timezone: %s\n", f.ID, f.Timezone)
	fmt.Println("  Next: famquest member add <name>")
	return nil
}

type FamilyShowCmd struct {
	Family string `help:"Family ID (defaults to your family)."`
}

func (c *FamilyShowCmd) Run(ctx *cli.Context) error {
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
	habits, err := svc.Habits(bg, f.ID, false)
	if err != nil {
		return err
	}
	today, err := ctx.Resolver.Today(f.Timezone)
	if err != nil {
		return err
	}

	fmt.Println(cli.TitleStyle.Render(f.Name))
	fmt.Printf("ID:       %s\n", f.ID)
	fmt.Printf("Timezone: %s (today is %s)\n", f.Timezone, today)
	fmt.Printf("Locale:   %s\n", f.Locale)
	fmt.Printf("Members:  %d\n", len(members))
	fmt.Printf("Habits:   %d active\n", len(habits))
	return nil
}

type FamilyUpdateCmd struct {
	Family   string `help:"Family ID (defaults to your family)."`
	Name     string `help:"New family name."`
	Timezone string `help:"New IANA timezone. Existing completions keep their dates."`
	Locale   string `help:"New locale tag."`
}

func (c *FamilyUpdateCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	f, err := ctx.Family(bg, c.Family)
	if err != nil {
		return err
	}
	if c.Name == "" && c.Timezone == "" && c.Locale == "" {
		return fmt.Errorf("nothing to update: pass --name, --timezone or --locale")
	}
	updated, err := ctx.Families().UpdateFamily(bg, f.ID, c.Name, c.Timezone, c.Locale)
	if err != nil {
		return err
	}
	fmt.Println(cli.SuccessStyle.Render("✓ Updated family " + updated.Name))
	if updated.Timezone != f.Timezone {
		fmt.Printf("  Timezone: %s → %s\n", f.Timezone, updated.Timezone)
	}
	return nil
}

type FamilyImportCmd struct {
	File string `arg:"" type:"existingfile" help:"YAML family document."`
}

func (c *FamilyImportCmd) Run(ctx *cli.Context) error {
	file, err := os.Open(c.File)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", c.File, err)
	}
	defer file.Close()

	result, err := ctx.Families().Import(context.Background(), ctx.OwnerID, file)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	fmt.Println(cli.SuccessStyle.Render("✓ Imported family " + result.Family.Name))
	fmt.Printf("  %d member(s), %d habit(s)\n", len(result.Members), len(result.Habits))
	return nil
}
