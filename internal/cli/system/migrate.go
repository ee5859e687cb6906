package system

import (
	"fmt"

	"github.com/julianstephens/famquest/internal/cli"
	"github.com/julianstephens/famquest/internal/migration"
)

// migratable is implemented by both the SQLite and PostgreSQL stores
type migratable interface {
	MigrationRunner() (*migration.Runner, error)
}

func runnerFor(ctx *cli.Context) (*migration.Runner, error) {
	m, ok := ctx.Store.(migratable)
	if !ok {
		return nil, fmt.Errorf("storage backend %s does not support migrations", ctx.Store.Kind())
	}
	return m.MigrationRunner()
}

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}

	runner, err := runnerFor(ctx)
	if err != nil {
		return err
	}

	count, err := runner.ApplyMigrations(func(msg string) {
		fmt.Println(msg)
	})
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if count == 0 {
		fmt.Println("No migrations to apply. Database is up to date.")
	} else {
		fmt.Printf("\nSuccessfully applied %d migration(s).\n", count)
	}
	return nil
}
