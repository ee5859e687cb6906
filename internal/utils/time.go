package utils

import (
	"fmt"
	"time"

	"github.com/julianstephens/famquest/internal/constants"
	fqerrors "github.com/julianstephens/famquest/internal/errors"
)

// DateInfo is the calendar view of "now" for a single timezone
type DateInfo struct {
	Today              string `json:"today"`
	Yesterday          string `json:"yesterday"`
	TodayDayOfWeek     int    `json:"today_day_of_week"`
	YesterdayDayOfWeek int    `json:"yesterday_day_of_week"`
}

// DateResolver computes calendar dates in a family's timezone.
// The clock is injectable so tests can pin "now".
type DateResolver struct {
	now func() time.Time
}

// NewDateResolver returns a resolver backed by the system clock
func NewDateResolver() *DateResolver {
	return &DateResolver{now: time.Now}
}

// NewDateResolverWithClock returns a resolver that reads the current instant from now
func NewDateResolverWithClock(now func() time.Time) *DateResolver {
	if now == nil {
		now = time.Now
	}
	return &DateResolver{now: now}
}

// Now returns the current instant in the given timezone.
func (r *DateResolver) Now(timezone string) (time.Time, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return time.Time{}, err
	}
	return r.now().In(loc), nil
}

// Today returns today's date (YYYY-MM-DD) in the given timezone.
func (r *DateResolver) Today(timezone string) (string, error) {
	info, err := r.Info(timezone)
	if err != nil {
		return "", err
	}
	return info.Today, nil
}

// Yesterday returns the calendar day before today in the given timezone.
func (r *DateResolver) Yesterday(timezone string) (string, error) {
	info, err := r.Info(timezone)
	if err != nil {
		return "", err
	}
	return info.Yesterday, nil
}

// Info returns today and yesterday with their day-of-week (0=Sunday).
// Yesterday is derived by subtracting a calendar day from the local date,
// not by shifting the instant, so DST transitions cannot skip or repeat a day.
func (r *DateResolver) Info(timezone string) (DateInfo, error) {
	now, err := r.Now(timezone)
	if err != nil {
		return DateInfo{}, err
	}
	today := civilDate(now)
	yesterday := today.AddDate(0, 0, -1)
	return DateInfo{
		Today:              today.Format(constants.DateFormat),
		Yesterday:          yesterday.Format(constants.DateFormat),
		TodayDayOfWeek:     int(today.Weekday()),
		YesterdayDayOfWeek: int(yesterday.Weekday()),
	}, nil
}

// civilDate strips the clock and zone, keeping only the local calendar date
func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// LoadLocation loads a timezone location from an IANA timezone name.
// An empty name falls back to UTC. Unknown names wrap ErrConfiguration.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" {
		timezone = constants.DefaultTimezone
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid timezone %q: %v", fqerrors.ErrConfiguration, timezone, err)
	}
	return loc, nil
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(date string) (time.Time, error) {
	return time.Parse(constants.DateFormat, date)
}

// AddDays shifts a YYYY-MM-DD date by n calendar days.
func AddDays(date string, n int) (string, error) {
	d, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return d.AddDate(0, 0, n).Format(constants.DateFormat), nil
}

// DayOfWeek returns 0 (Sunday) through 6 (Saturday) for a YYYY-MM-DD date.
func DayOfWeek(date string) (int, error) {
	d, err := ParseDate(date)
	if err != nil {
		return 0, err
	}
	return int(d.Weekday()), nil
}

// MonthBounds returns the first and last date of a YYYY-MM month.
func MonthBounds(month string) (string, string, error) {
	m, err := time.Parse(constants.MonthFormat, month)
	if err != nil {
		return "", "", fmt.Errorf("invalid month %q (expected YYYY-MM): %w", month, err)
	}
	last := m.AddDate(0, 1, -1)
	return m.Format(constants.DateFormat), last.Format(constants.DateFormat), nil
}

// ValidateTimeFormat checks if the string matches the HH:MM format.
func ValidateTimeFormat(timeStr string) bool {
	_, err := time.Parse(constants.TimeFormat, timeStr)
	return err == nil
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	_, err := LoadLocation(timezone)
	return err == nil
}
