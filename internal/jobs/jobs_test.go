package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/julianstephens/famquest/internal/streaks"
)

type fakeRepairer struct {
	calls   atomic.Int32
	results []streaks.MemberResult
	err     error
}

func (f *fakeRepairer) RecalculateStreaks(_ context.Context, familyID string) ([]streaks.MemberResult, error) {
	f.calls.Add(1)
	if familyID != "" {
		return nil, errors.New("scheduled repair must cover all families")
	}
	return f.results, f.err
}

func TestNewRunnerSchedules(t *testing.T) {
	for _, spec := range []string{"", "@daily", "30 3 * * *", "@every 1h"} {
		r, err := NewRunner(spec, &fakeRepairer{})
		if err != nil {
			t.Errorf("NewRunner(%q): %v", spec, err)
			continue
		}
		if r.Entries() != 1 {
			t.Errorf("NewRunner(%q) scheduled %d jobs", spec, r.Entries())
		}
	}
	if _, err := NewRunner("every tuesday", &fakeRepairer{}); err == nil {
		t.Error("expected an error for an invalid schedule")
	}
}

func TestRepairStreaks(t *testing.T) {
	f := &fakeRepairer{results: []streaks.MemberResult{
		{MemberID: "a"},
		{MemberID: "b", Err: errors.New("locked")},
	}}
	r, err := NewRunner("@daily", f)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	r.RepairStreaks()
	if f.calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", f.calls.Load())
	}

	f.err = errors.New("database down")
	r.RepairStreaks()
	if f.calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", f.calls.Load())
	}
}

func TestStartStop(t *testing.T) {
	r, err := NewRunner("@every 1h", &fakeRepairer{})
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	r.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	r.Stop(ctx)
	if ctx.Err() != nil {
		t.Error("Stop should return before the timeout when no job is running")
	}
}
