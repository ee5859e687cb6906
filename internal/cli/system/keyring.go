package system

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/famquest/internal/cli"
	"github.com/julianstephens/famquest/internal/keyring"
	"github.com/julianstephens/famquest/internal/storage"
	"github.com/julianstephens/famquest/internal/storage/postgres"
)

// minAdminSecretLength keeps the admin header from being trivially guessable
const minAdminSecretLength = 16

type KeyringCmd struct {
	Set    KeyringSetCmd    `cmd:"" help:"Store a secret in the OS keyring."`
	Get    KeyringGetCmd    `cmd:"" help:"Show a stored secret (masked)."`
	Delete KeyringDeleteCmd `cmd:"" help:"Remove a secret from the OS keyring."`
	Status KeyringStatusCmd `cmd:"" help:"Check OS keyring availability."`
}

// KeyringSetCmd stores the connection string or the admin secret in the OS keyring
type KeyringSetCmd struct {
	Entry string `help:"Which secret to store." enum:"db,admin" default:"db"`
	Value string `arg:"" help:"PostgreSQL connection string or admin secret."`
}

func (cmd *KeyringSetCmd) Run(ctx *cli.Context) error {
	entry, err := keyring.ParseEntry(cmd.Entry)
	if err != nil {
		return err
	}

	switch entry {
	case keyring.EntryDBConnection:
		if !storage.IsPostgresConnString(cmd.Value) && !strings.Contains(cmd.Value, "host=") {
			return errors.New("connection string must be a valid PostgreSQL connection string")
		}
		if _, err := postgres.ValidateConnString(cmd.Value); err != nil {
			if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return fmt.Errorf("invalid connection string: %w", err)
			}
			// the keyring is encrypted, so embedded credentials are tolerated here
			fmt.Println("⚠️  Warning: Connection string contains embedded credentials.")
			fmt.Println("   It will be stored as-is in the encrypted OS keyring.")
		}
	case keyring.EntryAdminSecret:
		if len(cmd.Value) < minAdminSecretLength {
			return fmt.Errorf("admin secret must be at least %d characters", minAdminSecretLength)
		}
	}

	if err := keyring.Set(entry, cmd.Value); err != nil {
		return err
	}

	fmt.Printf("✓ %s stored successfully in OS keyring\n", entry)
	if entry == keyring.EntryDBConnection {
		fmt.Println("  Use --config keyring to connect with it")
	}
	return nil
}

// KeyringGetCmd shows a stored secret with its password masked
type KeyringGetCmd struct {
	Entry string `help:"Which secret to show." enum:"db,admin" default:"db"`
}

func (cmd *KeyringGetCmd) Run(ctx *cli.Context) error {
	entry, err := keyring.ParseEntry(cmd.Entry)
	if err != nil {
		return err
	}
	value, err := keyring.Get(entry)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("no %s found in keyring. Use 'famquest keyring set' to store one", entry)
		}
		return fmt.Errorf("failed to retrieve %s from keyring: %w", entry, err)
	}

	fmt.Printf("%s retrieved from keyring:\n", entry)
	if entry == keyring.EntryAdminSecret {
		fmt.Println(maskSecret(value))
	} else {
		fmt.Println(maskPassword(value))
	}
	return nil
}

type KeyringDeleteCmd struct {
	Entry string `help:"Which secret to remove." enum:"db,admin" default:"db"`
}

func (cmd *KeyringDeleteCmd) Run(ctx *cli.Context) error {
	entry, err := keyring.ParseEntry(cmd.Entry)
	if err != nil {
		return err
	}
	if err := keyring.Delete(entry); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("no %s found in keyring", entry)
		}
		return err
	}

	fmt.Printf("✓ %s deleted from OS keyring\n", entry)
	return nil
}

type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		fmt.Println("❌ OS keyring is not available on this system")
		return keyring.ErrKeyringUnavailable
	}
	fmt.Println("✓ OS keyring is available")

	for _, entry := range []keyring.Entry{keyring.EntryDBConnection, keyring.EntryAdminSecret} {
		if _, err := keyring.Get(entry); err == nil {
			fmt.Printf("✓ %s is stored in keyring\n", entry)
		} else if errors.Is(err, keyring.ErrNotFound) {
			fmt.Printf("ℹ No %s stored in keyring\n", entry)
		}
	}
	return nil
}

// maskPassword masks passwords in connection strings for display
func maskPassword(connStr string) string {
	if storage.IsPostgresConnString(connStr) {
		if idx := strings.Index(connStr, "://"); idx != -1 {
			remaining := connStr[idx+3:]
			// the last @ separates user info from host
			if atIdx := strings.LastIndex(remaining, "@"); atIdx != -1 {
				userInfo := remaining[:atIdx]
				if colonIdx := strings.Index(userInfo, ":"); colonIdx != -1 {
					return connStr[:idx+3] + userInfo[:colonIdx] + ":****" + connStr[idx+3+atIdx:]
				}
			}
		}
	}

	if strings.Contains(connStr, "password=") {
		parts := strings.Fields(connStr)
		masked := make([]string, 0, len(parts))
		for _, part := range parts {
			if strings.HasPrefix(part, "password=") {
				masked = append(masked, "password=****")
			} else {
				masked = append(masked, part)
			}
		}
		return strings.Join(masked, " ")
	}

	return connStr
}

// maskSecret keeps the first four characters
func maskSecret(secret string) string {
	if len(secret) <= 4 {
		return "****"
	}
	return secret[:4] + strings.Repeat("*", len(secret)-4)
}
