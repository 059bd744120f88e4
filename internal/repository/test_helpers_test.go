package repository

import (
	"path/filepath"
	"testing"
	"time"

	"gorm.io/gorm"
)

// createTestDB opens a fresh SQLite database under the test's temp dir.
func createTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open("sqlite", path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { Close(db) })
	return db
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}
