package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/julianstephens/famquest/internal/completion"
	"github.com/julianstephens/famquest/internal/scheduler"
	"github.com/julianstephens/famquest/internal/utils"
)

// expectTargets queues the lookups CompleteHabitForMember makes before opening
// its transaction.
func expectTargets(mock sqlmock.Sqlmock, now time.Time) {
	mock.ExpectQuery(`FROM families WHERE id = \$1`).WithArgs("fam-1").WillReturnRows(
		sqlmock.NewRows([]string{"id", "owner_id", "name", "timezone", "locale", "created_at", "updated_at"}).
			AddRow("fam-1", "owner-1", "Tanaka", "UTC", "en", now, now))
	mock.ExpectQuery(`FROM habits WHERE id = \$1`).WithArgs("hab-1").WillReturnRows(
		sqlmock.NewRows([]string{"id", "family_id", "title", "icon", "xp_reward", "frequency", "days_of_week",
			"member_ids", "time_of_day", "display_order", "is_active", "created_at", "updated_at"}).
			AddRow("hab-1", "fam-1", "Brush teeth", "", 10, "daily", "{}", "{mem-1}", "", 0, true, now, now))
	mock.ExpectQuery(`FROM members WHERE id = \$1`).WithArgs("mem-1").WillReturnRows(memberRow(now))
}

func newCompletionService(s *Store, now time.Time) *completion.Service {
	resolver := utils.NewDateResolverWithClock(func() time.Time { return now })
	return completion.NewService(s, resolver, scheduler.New(), completion.Options{})
}

func TestCompleteHabitForMember_RepeatCommitsAsNoOp(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

	expectTargets(mock, now)
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM members WHERE id = \$1 FOR UPDATE`).WithArgs("mem-1").WillReturnRows(memberRow(now))
	mock.ExpectExec(`INSERT INTO habit_logs .* ON CONFLICT ON CONSTRAINT habit_logs_once_per_day DO NOTHING`).
		WithArgs(sqlmock.AnyArg(), "hab-1", "mem-1", "2026-10-15", 10, "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	out, err := newCompletionService(s, now).CompleteHabitForMember(context.Background(), "fam-1", "hab-1", "mem-1")
	if err != nil {
		t.Fatalf("repeat completion error = %v, want nil", err)
	}
	if out.Accepted || out.XPEarned != 0 {
		t.Errorf("outcome = %+v, want not accepted with 0 XP", out)
	}
	if out.TotalXP != 95 || out.CurrentStreak != 5 || out.Date != "2026-10-15" {
		t.Errorf("outcome should carry current progress: %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCompleteHabitForMember_AcceptedOnPostgres(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

	expectTargets(mock, now)
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM members WHERE id = \$1 FOR UPDATE`).WithArgs("mem-1").WillReturnRows(memberRow(now))
	mock.ExpectExec(`INSERT INTO habit_logs`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM habit_logs`).WithArgs("mem-1", "2026-10-15").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT EXISTS`).WithArgs("mem-1", "2026-10-14").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectExec("UPDATE members SET total_xp").WithArgs(105, 2, 6, 6, "mem-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	out, err := newCompletionService(s, now).CompleteHabitForMember(context.Background(), "fam-1", "hab-1", "mem-1")
	if err != nil {
		t.Fatalf("CompleteHabitForMember: %v", err)
	}
	if !out.Accepted || out.XPEarned != 10 || !out.LeveledUp || out.NewLevel != 2 || out.CurrentStreak != 6 {
		t.Errorf("outcome = %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
