package constants

// Role is a member's role within a family
type Role string

// Frequency is a habit's recurrence rule
type Frequency string

const (
	AppName                = "famquest"
	DefaultKeyringUser     = "database-connection"
	AdminSecretKeyringUser = "admin-secret"
	DefaultConfigPath      = "~/.config/famquest/famquest.db"
	Version                = "v0.1.0"

	// EnvDBConnection holds a PostgreSQL connection string with credentials
	EnvDBConnection = "FAMQUEST_DB_CONNECTION"

	// KeyringConfigValue tells the CLI to read the connection string from the OS keyring
	KeyringConfigValue = "keyring"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "famquest-"
	BackupFileSuffix = ".db"

	// Role constants
	RoleParent Role = "parent"
	RoleChild  Role = "child"

	// Frequency constants
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"

	// Habit reward bounds
	MinXPReward = 1
	MaxXPReward = 100

	DefaultLocale = "en"

	// DefaultOwnerID owns the family created from the local CLI
	DefaultOwnerID = "local"

	// Server defaults
	DefaultListenAddr       = ":8080"
	DefaultRecalcSchedule   = "@daily"
	AdminSecretHeader       = "X-Admin-Secret"
	DefaultShutdownTimeoutS = 10
)
