package constants

const (
	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// MonthFormat is used for calendar views (YYYY-MM)
	MonthFormat = "2006-01"

	// TimeFormat is the time-of-day format for habits (HH:MM)
	TimeFormat = "15:04"

	// DefaultTimezone is used when a family has no timezone configured
	DefaultTimezone = "UTC"

	// StatsWindowDays is the number of trailing days used for completion rates
	StatsWindowDays = 7
)
