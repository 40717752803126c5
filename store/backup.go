package store

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// DefaultBackupRetention is the number of backup copies kept per file when
// backups are enabled without an explicit retention count.
const DefaultBackupRetention = 3

// BackupManager keeps timestamped copies of config files so a bad write can
// be rolled back. Backups live next to the original as
// "<name>.backup-<timestamp>-<pid>".
type BackupManager struct {
	MaxBackups int
}

// NewBackupManager returns a manager retaining maxBackups copies per file.
func NewBackupManager(maxBackups int) *BackupManager {
	if maxBackups <= 0 {
		maxBackups = DefaultBackupRetention
	}
	return &BackupManager{MaxBackups: maxBackups}
}

// CreateBackup copies the current content of path to a new backup file and
// returns its name. A missing original is not an error; there is simply
// nothing to back up.
func (bm *BackupManager) CreateBackup(path string) (string, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return "", nil
	}

	timestamp := time.Now().Format("20060102150405.000000000")
	backupPath := fmt.Sprintf("%s.backup-%s-%d", path, timestamp, os.Getpid())

	if err := copyFile(path, backupPath); err != nil {
		return "", fmt.Errorf("creating backup of %s: %w", path, err)
	}
	return backupPath, nil
}

// ListBackups returns all backup files for path, oldest first.
func (bm *BackupManager) ListBackups(path string) ([]string, error) {
	backups, err := filepath.Glob(path + ".backup-*")
	if err != nil {
		return nil, fmt.Errorf("listing backups of %s: %w", path, err)
	}

	sort.Slice(backups, func(i, j int) bool {
		iInfo, err1 := os.Stat(backups[i])
		jInfo, err2 := os.Stat(backups[j])
		if err1 != nil || err2 != nil {
			return backups[i] < backups[j]
		}
		if !iInfo.ModTime().Equal(jInfo.ModTime()) {
			return iInfo.ModTime().Before(jInfo.ModTime())
		}
		return backups[i] < backups[j]
	})
	return backups, nil
}

// CleanupOldBackups removes backups of path beyond the MaxBackups most
// recent ones.
func (bm *BackupManager) CleanupOldBackups(path string) error {
	backups, err := bm.ListBackups(path)
	if err != nil {
		return err
	}

	excess := len(backups) - bm.MaxBackups
	for _, old := range backups[:max(excess, 0)] {
		if err := os.Remove(old); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("removing old backup %s: %w", old, err)
		}
	}
	return nil
}

// RestoreFromLatestBackup replaces path with its most recent backup copy.
func (bm *BackupManager) RestoreFromLatestBackup(path string) error {
	backups, err := bm.ListBackups(path)
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backup found for %s", path)
	}
	if err := copyFile(backups[len(backups)-1], path); err != nil {
		return fmt.Errorf("restoring %s: %w", path, err)
	}
	return nil
}

// RestoreFromLatestBackup restores path from its most recent backup. Only
// available when the Store was built with WithBackupRetention.
func (s *Store) RestoreFromLatestBackup(path string) error {
	if s.backups == nil {
		return fmt.Errorf("restoring %s: backups are not enabled for this store", path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving path %s: %w", path, err)
	}
	return s.locker.WithLock(abs, func() error {
		return s.backups.RestoreFromLatestBackup(abs)
	})
}

func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	info, err := srcFile.Stat()
	if err != nil {
		return err
	}

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode())
	if err != nil {
		return err
	}
	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		return err
	}
	return dstFile.Close()
}
