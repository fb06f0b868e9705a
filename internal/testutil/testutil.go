// Package testutil holds helpers shared by package tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/catalog/internal/database"
	"github.com/mrlokans/catalog/internal/entities"
)

// OpenDB opens a migrated catalog database in a per-test temp directory.
// The connection is closed when the test finishes.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "catalog.db")
	db, err := gorm.Open(sqlite.Open(database.DSN(dbPath)), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// CountAuthors returns the number of author rows called name.
func CountAuthors(t *testing.T, db *gorm.DB, name string) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&entities.Author{}).Where("name = ?", name).Count(&count).Error)
	return count
}

// CountLinks returns the number of book_authors rows for a book.
func CountLinks(t *testing.T, db *gorm.DB, bookID string) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&entities.BookAuthor{}).Where("book_id = ?", bookID).Count(&count).Error)
	return count
}
