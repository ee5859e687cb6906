// Package keyring keeps famquest secrets in the OS keyring: the PostgreSQL
// connection string and the admin API secret.
package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/famquest/internal/constants"
)

var (
	// ErrNotFound is returned when no entry is found in the keyring
	ErrNotFound = errors.New("entry not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// Entry names one secret stored under the famquest service.
type Entry string

const (
	EntryDBConnection Entry = constants.DefaultKeyringUser
	EntryAdminSecret  Entry = constants.AdminSecretKeyringUser
)

// ParseEntry maps the CLI names "db" and "admin" to entries.
func ParseEntry(name string) (Entry, error) {
	switch name {
	case "", "db", string(EntryDBConnection):
		return EntryDBConnection, nil
	case "admin", string(EntryAdminSecret):
		return EntryAdminSecret, nil
	default:
		return "", fmt.Errorf("unknown keyring entry %q (expected db or admin)", name)
	}
}

// Get retrieves an entry. Returns ErrNotFound if nothing is stored.
func Get(entry Entry) (string, error) {
	value, err := keyring.Get(constants.AppName, string(entry))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return value, nil
}

// Set stores an entry, replacing any previous value.
func Set(entry Entry, value string) error {
	if value == "" {
		return fmt.Errorf("%s cannot be empty", entry)
	}
	if err := keyring.Set(constants.AppName, string(entry), value); err != nil {
		return fmt.Errorf("failed to store %s in keyring: %w", entry, err)
	}
	return nil
}

// Delete removes an entry.
func Delete(entry Entry) error {
	if err := keyring.Delete(constants.AppName, string(entry)); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete %s from keyring: %w", entry, err)
	}
	return nil
}

// GetConnectionString retrieves the database connection string.
func GetConnectionString() (string, error) {
	return Get(EntryDBConnection)
}

// GetAdminSecret retrieves the admin API secret.
func GetAdminSecret() (string, error) {
	return Get(EntryAdminSecret)
}

// IsAvailable is a best-effort check that the OS keyring answers.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
