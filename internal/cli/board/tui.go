package board

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/famquest/internal/cli"
	"github.com/julianstephens/famquest/internal/tui"
)

type TuiCmd struct {
	Family string `help:"Family ID (defaults to your family)."`
}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	f, err := ctx.Family(context.Background(), c.Family)
	if err != nil {
		return err
	}

	p := tea.NewProgram(tui.NewModel(ctx.Dashboard(), ctx.Completions(), f.ID), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
