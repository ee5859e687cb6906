// Package progression turns accepted habit completions into XP, levels and streaks.
// Everything here is pure; callers supply the facts that require storage reads.
package progression

import (
	"errors"
	"fmt"

	"github.com/julianstephens/famquest/internal/models"
)

// MaxLevel is terminal; XP beyond its threshold never raises the level further.
const MaxLevel = 9

// levelThresholds[i] is the minimum cumulative XP for level i+1.
var levelThresholds = [MaxLevel]int{0, 100, 250, 500, 1000, 2000, 4000, 8000, 16000}

// ErrNoXP is returned when progression is applied to a completion that earned nothing.
// Duplicate completions must never reach Apply.
var ErrNoXP = errors.New("progression requires a completion with positive XP")

// LevelForXP returns the level (1..9) reached with the given cumulative XP.
// Negative XP is treated as zero.
func LevelForXP(xp int) int {
	level := 1
	for i, threshold := range levelThresholds {
		if xp >= threshold {
			level = i + 1
		}
	}
	return level
}

// ThresholdForLevel returns the XP needed to reach level, or -1 past MaxLevel.
func ThresholdForLevel(level int) int {
	if level < 1 {
		return 0
	}
	if level > MaxLevel {
		return -1
	}
	return levelThresholds[level-1]
}

// XPToNextLevel returns how much XP is missing for the next level, 0 at MaxLevel.
func XPToNextLevel(xp int) int {
	next := LevelForXP(xp) + 1
	if next > MaxLevel {
		return 0
	}
	return ThresholdForLevel(next) - xp
}

// Result is the member state after one accepted completion.
type Result struct {
	Progress  models.Progress
	OldLevel  int
	NewLevel  int
	LeveledUp bool
}

// Apply credits xpEarned to the member and updates streaks.
//
// completionsToday is the member's accepted completion count for today including
// this one. Streaks only move on the first completion of the day: they continue
// when completedYesterday is true and restart at 1 otherwise.
func Apply(p models.Progress, xpEarned, completionsToday int, completedYesterday bool) (Result, error) {
	if xpEarned <= 0 {
		return Result{}, ErrNoXP
	}
	if completionsToday < 1 {
		return Result{}, fmt.Errorf("completionsToday must include the accepted completion, got %d", completionsToday)
	}

	oldLevel := p.Level
	if oldLevel < 1 {
		oldLevel = LevelForXP(p.TotalXP)
	}

	next := p
	next.TotalXP = p.TotalXP + xpEarned
	next.Level = LevelForXP(next.TotalXP)

	if completionsToday == 1 {
		if completedYesterday {
			next.CurrentStreak = p.CurrentStreak + 1
		} else {
			next.CurrentStreak = 1
		}
	}
	if next.CurrentStreak > next.LongestStreak {
		next.LongestStreak = next.CurrentStreak
	}

	return Result{
		Progress:  next,
		OldLevel:  oldLevel,
		NewLevel:  next.Level,
		LeveledUp: next.Level > oldLevel,
	}, nil
}
