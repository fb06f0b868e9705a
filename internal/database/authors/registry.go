// Package authors provides the author registry: get-or-create by exact name
// plus orphan cleanup.
//
// Author names are unique (case-sensitive). Two requests creating a book for
// the same brand-new author can both miss the lookup; the unique index makes
// the loser's insert fail, and the registry then re-reads the winner's row
// instead of surfacing the conflict.
//
// # Usage
//
//	registry := authors.NewRegistry(db)
//	err := db.Transaction(func(tx *gorm.DB) error {
//		author, err := registry.ResolveTx(tx, "Frank Herbert")
//		...
//	})
package authors

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/catalog/internal/entities"
)

// Registry handles all author database operations.
type Registry struct {
	db *gorm.DB
}

// NewRegistry creates a new author registry.
func NewRegistry(db *gorm.DB) *Registry {
	return &Registry{db: db}
}

// Summary is an author name with the number of books linked to it.
type Summary struct {
	Name      string `json:"name"`
	BookCount int64  `json:"book_count"`
}

// Resolve returns the author called name, creating it in its own transaction
// when it does not exist yet.
func (r *Registry) Resolve(ctx context.Context, name string) (*entities.Author, error) {
	var author *entities.Author
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		author, err = r.ResolveTx(tx, name)
		return err
	})
	if err != nil {
		return nil, err
	}
	return author, nil
}

// ResolveTx returns the author called name inside the caller's transaction,
// creating it when absent. The insert runs in a savepoint so a duplicate-name
// conflict leaves the outer transaction usable for the re-read.
func (r *Registry) ResolveTx(tx *gorm.DB, name string) (*entities.Author, error) {
	author, err := findByName(tx, name)
	if err == nil {
		return author, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup author %q: %w", name, err)
	}

	created := &entities.Author{Name: name}
	err = tx.Transaction(func(sp *gorm.DB) error {
		return sp.Create(created).Error
	})
	if err == nil {
		return created, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, fmt.Errorf("create author %q: %w", name, err)
	}

	// Another writer inserted the same name first.
	author, err = findByName(tx, name)
	if err != nil {
		return nil, fmt.Errorf("re-read author %q after conflict: %w", name, err)
	}
	return author, nil
}

// GetByName returns the author with exactly this name, or nil when absent.
func (r *Registry) GetByName(ctx context.Context, name string) (*entities.Author, error) {
	author, err := findByName(r.db.WithContext(ctx), name)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return author, nil
}

// List returns every author with its book count, ordered by name.
func (r *Registry) List(ctx context.Context) ([]Summary, error) {
	summaries := []Summary{}
	err := r.db.WithContext(ctx).
		Model(&entities.Author{}).
		Select("authors.name AS name, COUNT(book_authors.book_id) AS book_count").
		Joins("LEFT JOIN book_authors ON book_authors.author_id = authors.id").
		Group("authors.id, authors.name").
		Order("authors.name ASC").
		Scan(&summaries).Error
	return summaries, err
}

// LinkCount returns how many books reference the author.
func (r *Registry) LinkCount(tx *gorm.DB, authorID string) (int64, error) {
	var count int64
	err := tx.Model(&entities.BookAuthor{}).Where("author_id = ?", authorID).Count(&count).Error
	return count, err
}

// DeleteIfOrphanTx deletes the author when no book links to it anymore.
// It reports whether the author was deleted.
func (r *Registry) DeleteIfOrphanTx(tx *gorm.DB, authorID string) (bool, error) {
	count, err := r.LinkCount(tx, authorID)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	result := tx.Where("id = ?", authorID).Delete(&entities.Author{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DeleteOrphans removes every author without books. It is a maintenance
// sweep for authors left unlinked by book updates.
func (r *Registry) DeleteOrphans(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Exec(`
		DELETE FROM authors
		WHERE id NOT IN (SELECT author_id FROM book_authors)
	`)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func findByName(tx *gorm.DB, name string) (*entities.Author, error) {
	var author entities.Author
	if err := tx.Where("name = ?", name).First(&author).Error; err != nil {
		return nil, err
	}
	return &author, nil
}
