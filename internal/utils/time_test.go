package utils

import (
	"errors"
	"testing"
	"time"

	fqerrors "github.com/julianstephens/famquest/internal/errors"
)

func fixedClock(t *testing.T, instant string) func() time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, instant)
	if err != nil {
		t.Fatalf("bad instant %q: %v", instant, err)
	}
	return func() time.Time { return ts }
}

func TestLoadLocation(t *testing.T) {
	tests := []struct {
		name     string
		timezone string
		want     string
		wantErr  bool
	}{
		{name: "empty falls back to UTC", timezone: "", want: "UTC"},
		{name: "UTC", timezone: "UTC", want: "UTC"},
		{name: "Asia/Tokyo", timezone: "Asia/Tokyo", want: "Asia/Tokyo"},
		{name: "invalid timezone", timezone: "Mars/Olympus_Mons", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := LoadLocation(tt.timezone)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadLocation() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, fqerrors.ErrConfiguration) {
					t.Errorf("expected ErrConfiguration, got %v", err)
				}
				return
			}
			if loc.String() != tt.want {
				t.Errorf("LoadLocation() = %s, want %s", loc, tt.want)
			}
		})
	}
}

func TestDateResolverInfo(t *testing.T) {
	tests := []struct {
		name     string
		instant  string
		timezone string
		want     DateInfo
	}{
		{
			name:     "Tokyo is already tomorrow relative to UTC",
			instant:  "2026-10-14T16:30:00Z",
			timezone: "Asia/Tokyo",
			want:     DateInfo{Today: "2026-10-15", Yesterday: "2026-10-14", TodayDayOfWeek: 4, YesterdayDayOfWeek: 3},
		},
		{
			name:     "UTC same instant",
			instant:  "2026-10-14T16:30:00Z",
			timezone: "UTC",
			want:     DateInfo{Today: "2026-10-14", Yesterday: "2026-10-13", TodayDayOfWeek: 3, YesterdayDayOfWeek: 2},
		},
		{
			name:     "empty timezone behaves as UTC",
			instant:  "2026-10-14T16:30:00Z",
			timezone: "",
			want:     DateInfo{Today: "2026-10-14", Yesterday: "2026-10-13", TodayDayOfWeek: 3, YesterdayDayOfWeek: 2},
		},
		{
			// 00:30 EDT on the day after spring-forward; now minus 24h lands on Mar 7.
			name:     "calendar subtraction across DST",
			instant:  "2026-03-09T04:30:00Z",
			timezone: "America/New_York",
			want:     DateInfo{Today: "2026-03-09", Yesterday: "2026-03-08", TodayDayOfWeek: 1, YesterdayDayOfWeek: 0},
		},
		{
			name:     "year boundary",
			instant:  "2027-01-01T00:05:00Z",
			timezone: "Europe/London",
			want:     DateInfo{Today: "2027-01-01", Yesterday: "2026-12-31", TodayDayOfWeek: 5, YesterdayDayOfWeek: 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewDateResolverWithClock(fixedClock(t, tt.instant))
			got, err := r.Info(tt.timezone)
			if err != nil {
				t.Fatalf("Info() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Info() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDateResolverTodayAndYesterday(t *testing.T) {
	r := NewDateResolverWithClock(fixedClock(t, "2026-10-14T16:30:00Z"))

	today, err := r.Today("Asia/Tokyo")
	if err != nil || today != "2026-10-15" {
		t.Errorf("Today() = %q, %v", today, err)
	}
	yesterday, err := r.Yesterday("Asia/Tokyo")
	if err != nil || yesterday != "2026-10-14" {
		t.Errorf("Yesterday() = %q, %v", yesterday, err)
	}
}

func TestDateResolverInvalidTimezoneFailsFast(t *testing.T) {
	r := NewDateResolver()
	if _, err := r.Today("Not/AZone"); !errors.Is(err, fqerrors.ErrConfiguration) {
		t.Errorf("Today() error = %v, want ErrConfiguration", err)
	}
}

func TestAddDaysAndDayOfWeek(t *testing.T) {
	got, err := AddDays("2028-03-01", -1)
	if err != nil || got != "2028-02-29" {
		t.Errorf("AddDays leap year = %q, %v", got, err)
	}
	got, err = AddDays("2026-12-31", 1)
	if err != nil || got != "2027-01-01" {
		t.Errorf("AddDays year rollover = %q, %v", got, err)
	}
	if _, err := AddDays("15/10/2026", 1); err == nil {
		t.Error("AddDays should reject malformed dates")
	}

	dow, err := DayOfWeek("2026-10-18")
	if err != nil || dow != 0 {
		t.Errorf("DayOfWeek(Sunday) = %d, %v", dow, err)
	}
}

func TestMonthBounds(t *testing.T) {
	first, last, err := MonthBounds("2028-02")
	if err != nil {
		t.Fatalf("MonthBounds() error = %v", err)
	}
	if first != "2028-02-01" || last != "2028-02-29" {
		t.Errorf("MonthBounds() = %s..%s", first, last)
	}
	if _, _, err := MonthBounds("2028-13"); err == nil {
		t.Error("MonthBounds should reject month 13")
	}
}

func TestValidateTimeFormat(t *testing.T) {
	for in, want := range map[string]bool{"07:30": true, "23:59": true, "24:00": false, "7pm": false, "": false} {
		if got := ValidateTimeFormat(in); got != want {
			t.Errorf("ValidateTimeFormat(%q) = %v, want %v", in, got, want)
		}
	}
}
