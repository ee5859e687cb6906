package backups

import (
	"context"
	"testing"

	"github.com/julianstephens/famquest/internal/backup"
	"github.com/julianstephens/famquest/internal/cli"
	"github.com/julianstephens/famquest/internal/models"
	"github.com/julianstephens/famquest/internal/testutil"
)

func TestBackupCreateAndRestore(t *testing.T) {
	store := testutil.NewStore(t)
	testutil.AddFamily(t, store, "fam", "UTC")
	testutil.AddMember(t, store, "fam", "ana", models.Progress{})
	ctx := cli.NewContext(store)

	if err := (&BackupCreateCmd{}).Run(ctx); err != nil {
		t.Fatalf("backup create: %v", err)
	}
	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Fatalf("backup list: %v", err)
	}

	testutil.AddMember(t, store, "fam", "ben", models.Progress{})

	if err := (&BackupRestoreCmd{Yes: true}).Run(ctx); err != nil {
		t.Fatalf("backup restore: %v", err)
	}
	if err := store.Load(); err != nil {
		t.Fatalf("reload after restore: %v", err)
	}
	members, err := store.GetMembersForFamily(context.Background(), "fam")
	if err != nil {
		t.Fatal(err)
	}
	if len(members) != 1 {
		t.Errorf("members after restore = %d, want 1", len(members))
	}

	backups, err := backup.NewManager(store.GetConfigPath()).ListBackups()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 2 || backups[0].Reason != backup.ReasonRestore {
		t.Errorf("backups after restore = %+v", backups)
	}
}

func TestBackupRestoreMissingFile(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := cli.NewContext(store)

	if err := (&BackupRestoreCmd{BackupFile: "famquest-nope.db", Yes: true}).Run(ctx); err == nil {
		t.Error("expected an error for a missing backup file")
	}
	if err := (&BackupRestoreCmd{Yes: true}).Run(ctx); err == nil {
		t.Error("expected an error when no backups exist")
	}
}
