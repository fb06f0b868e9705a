package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/catalog/internal/entities"
)

// setupTestDB creates a fresh test database
func setupTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"), logger.Silent)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestDSN(t *testing.T) {
	assert.Equal(t,
		"catalog.db?_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate",
		DSN("catalog.db"))
	assert.Equal(t,
		"file:catalog.db?cache=shared&_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate",
		DSN("file:catalog.db?cache=shared"))
}

func TestOpen_MigratesSchema(t *testing.T) {
	db := setupTestDB(t)

	for _, table := range []string{"users", "books", "authors", "book_authors"} {
		assert.True(t, db.DB.Migrator().HasTable(table), table)
	}
	assert.True(t, db.DB.Migrator().HasIndex(&entities.Author{}, "Name"))
}

func TestOpen_AuthorNameIsUnique(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.DB.Create(&entities.Author{Name: "Frank Herbert"}).Error)
	err := db.DB.Create(&entities.Author{Name: "Frank Herbert"}).Error

	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestGenres_RoundTrip(t *testing.T) {
	db := setupTestDB(t)

	book := &entities.Book{Title: "Dune", PublishedYear: 1965, Genres: entities.Genres{"Science Fiction", "Adventure"}}
	require.NoError(t, db.DB.Create(book).Error)

	var loaded entities.Book
	require.NoError(t, db.DB.First(&loaded, "id = ?", book.ID).Error)
	assert.Equal(t, entities.Genres{"Science Fiction", "Adventure"}, loaded.Genres)

	var raw string
	require.NoError(t, db.DB.Raw("SELECT genres FROM books WHERE id = ?", book.ID).Scan(&raw).Error)
	assert.Equal(t, `["Science Fiction","Adventure"]`, raw)
}

func TestPingAndStats(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Ping(ctx))

	require.NoError(t, db.DB.Create(&entities.Book{Title: "A", PublishedYear: 2000, Genres: entities.Genres{"Fiction"}}).Error)
	require.NoError(t, db.DB.Create(&entities.Author{Name: "X"}).Error)
	require.NoError(t, db.DB.Create(&entities.Author{Name: "Y"}).Error)

	books, authors, err := db.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), books)
	assert.Equal(t, int64(2), authors)
}

func TestClose(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "closed.db"), logger.Silent)
	require.NoError(t, err)

	require.NoError(t, db.Close())
	assert.Error(t, db.Ping(context.Background()))
}

func TestMigrate_BackfillsFoldedColumns(t *testing.T) {
	db := setupTestDB(t)

	book := &entities.Book{Title: "Война и мир", PublishedYear: 1869, Genres: entities.Genres{"Fiction"}}
	require.NoError(t, db.DB.Create(book).Error)
	author := &entities.Author{Name: "Émile Zola"}
	require.NoError(t, db.DB.Create(author).Error)

	// Rows written before the folded columns existed.
	require.NoError(t, db.DB.Exec("UPDATE books SET title_folded = ''").Error)
	require.NoError(t, db.DB.Exec("UPDATE authors SET name_folded = ''").Error)

	require.NoError(t, Migrate(db.DB))

	var titleFolded, nameFolded string
	require.NoError(t, db.DB.Raw("SELECT title_folded FROM books WHERE id = ?", book.ID).Scan(&titleFolded).Error)
	require.NoError(t, db.DB.Raw("SELECT name_folded FROM authors WHERE id = ?", author.ID).Scan(&nameFolded).Error)
	assert.Equal(t, "война и мир", titleFolded)
	assert.Equal(t, "émile zola", nameFolded)
}
