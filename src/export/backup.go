package export

import (
	"fmt"
	"io"
	"os"
)

const backupSuffix = ".bak"

// BackupPath returns the fixed sibling path backups are written to.
// There is no rotation: a prior backup at this path is overwritten.
func BackupPath(path string) string {
	return path + backupSuffix
}

// createBackup writes a byte-identical copy of path to BackupPath(path).
// It must succeed before the engine opens the database for mutation.
func createBackup(path string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(BackupPath(path), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("copy to %s: %w", BackupPath(path), err)
	}
	if err := dst.Sync(); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}
