// Package streaks rebuilds member streak counters from completion history.
// It is the repair path; the per-completion fast path lives in progression.
package streaks

import (
	"fmt"
	"sort"

	"github.com/julianstephens/famquest/internal/utils"
)

// Summary is the streak state derived from one member's history.
type Summary struct {
	CurrentStreak     int `json:"current_streak"`
	LongestStreak     int `json:"longest_streak"`
	TotalDistinctDays int `json:"total_distinct_days"`
}

// Compute walks the distinct completion dates newest first. Consecutive
// calendar days extend a run and any gap starts a new one. The current
// streak is the newest run only when it ends today; otherwise it is zero.
func Compute(dates []string, today string) (Summary, error) {
	if len(dates) == 0 {
		return Summary{}, nil
	}

	unique := make([]string, 0, len(dates))
	seen := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		if _, err := utils.ParseDate(d); err != nil {
			return Summary{}, fmt.Errorf("invalid completion date %q: %w", d, err)
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		unique = append(unique, d)
	}
	// YYYY-MM-DD sorts lexically in calendar order.
	sort.Sort(sort.Reverse(sort.StringSlice(unique)))

	summary := Summary{TotalDistinctDays: len(unique)}
	run := 1
	firstRun := 0
	for i := 1; i < len(unique); i++ {
		prev, err := utils.AddDays(unique[i-1], -1)
		if err != nil {
			return Summary{}, err
		}
		if unique[i] == prev {
			run++
			continue
		}
		if firstRun == 0 {
			firstRun = run
		}
		summary.LongestStreak = max(summary.LongestStreak, run)
		run = 1
	}
	if firstRun == 0 {
		firstRun = run
	}
	summary.LongestStreak = max(summary.LongestStreak, run)

	if unique[0] == today {
		summary.CurrentStreak = firstRun
	}
	return summary, nil
}
