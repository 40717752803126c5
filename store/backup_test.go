package store

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBackupRetention(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.mk")

	s := New(WithBackupRetention(2))
	defer s.Locker().ReleaseAll()

	for _, content := range []string{"v1", "v2", "v3", "v4"} {
		if err := s.SaveText(path, content, 0o660); err != nil {
			t.Fatalf("SaveText(%q) failed: %v", content, err)
		}
	}

	backups, err := s.backups.ListBackups(path)
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != 2 {
		t.Fatalf("retained %d backups, want 2: %v", len(backups), backups)
	}

	// Each save snapshots the content it replaces, so the newest backup
	// holds the previous version.
	latest, err := os.ReadFile(backups[len(backups)-1])
	if err != nil {
		t.Fatal(err)
	}
	if string(latest) != "v3" {
		t.Errorf("latest backup = %q, want %q", latest, "v3")
	}
}

func TestRestoreFromLatestBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.mk")

	s := New(WithBackupRetention(3))
	defer s.Locker().ReleaseAll()

	for _, content := range []string{"old", "new"} {
		if err := s.SaveText(path, content, 0o660); err != nil {
			t.Fatalf("SaveText(%q) failed: %v", content, err)
		}
	}

	if err := s.RestoreFromLatestBackup(path); err != nil {
		t.Fatalf("RestoreFromLatestBackup failed: %v", err)
	}
	got, err := s.LoadText(path, "", false)
	if err != nil {
		t.Fatalf("LoadText failed: %v", err)
	}
	if got != "old" {
		t.Errorf("restored content = %q, want %q", got, "old")
	}
}

func TestRestoreRequiresBackupsEnabled(t *testing.T) {
	s, dir := setupStore(t)
	if err := s.RestoreFromLatestBackup(filepath.Join(dir, "data.mk")); err == nil {
		t.Fatal("restore without backup retention should fail")
	}
}

func TestRestoreWithoutBackupFiles(t *testing.T) {
	dir := t.TempDir()
	s := New(WithBackupRetention(2))
	defer s.Locker().ReleaseAll()

	if err := s.RestoreFromLatestBackup(filepath.Join(dir, "data.mk")); err == nil {
		t.Fatal("restore with no backup files should fail")
	}
}

func TestCreateBackupOfMissingFile(t *testing.T) {
	bm := NewBackupManager(2)
	name, err := bm.CreateBackup(filepath.Join(t.TempDir(), "absent.mk"))
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}
	if name != "" {
		t.Errorf("CreateBackup of a missing file = %q, want no backup", name)
	}
}
