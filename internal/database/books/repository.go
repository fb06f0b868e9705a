// Package books provides database operations for the book catalog: CRUD,
// filtered listing, search, and maintenance of the book/author links.
//
// Every exported operation runs in exactly one transaction. Authors are
// resolved through the author registry inside that transaction, so a failed
// create or update leaves neither the book, its links, nor newly created
// authors behind.
//
// Deleting a book garbage-collects authors left without books. Replacing the
// author set through Update does not; orphans produced that way are removed
// by the registry's DeleteOrphans sweep.
//
// # Usage
//
//	repo := books.NewRepository(db, authors.NewRegistry(db))
//	book, err := repo.Create(ctx, catalog.BookInput{...})
package books

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/mrlokans/catalog/internal/catalog"
	"github.com/mrlokans/catalog/internal/database/authors"
	"github.com/mrlokans/catalog/internal/entities"
)

// Repository handles all book database operations.
type Repository struct {
	db      *gorm.DB
	authors *authors.Registry
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB, registry *authors.Registry) *Repository {
	return &Repository{db: db, authors: registry}
}

// Create validates in, stores the book with its author links and returns the
// stored book as a subsequent Get would see it.
func (r *Repository) Create(ctx context.Context, in catalog.BookInput) (*entities.Book, error) {
	in = in.Normalized()
	if err := catalog.ValidateInput(in); err != nil {
		return nil, err
	}

	var created *entities.Book
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		book := &entities.Book{
			Title:         in.Title,
			PublishedYear: in.PublishedYear,
			Genres:        entities.Genres(in.Genres),
		}
		if err := tx.Create(book).Error; err != nil {
			return fmt.Errorf("insert book: %w", err)
		}
		if err := r.linkAuthors(tx, book.ID, in.AuthorNames); err != nil {
			return err
		}

		var err error
		created, err = getTx(tx, book.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Get returns the book with the given id, or nil when it does not exist.
func (r *Repository) Get(ctx context.Context, id string) (*entities.Book, error) {
	var book *entities.Book
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		book, err = getTx(tx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return book, nil
}

// List returns one page of books matching q.Filters in q.SortBy order.
func (r *Repository) List(ctx context.Context, q catalog.ListQuery) ([]entities.Book, error) {
	if err := catalog.ValidateListQuery(q); err != nil {
		return nil, err
	}
	order, _ := q.SortBy.OrderClause()

	var result []entities.Book
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := applyFilters(tx.Model(&entities.Book{}), q.Filters).
			Order(order).
			Order("books.id ASC").
			Offset(q.Skip).
			Limit(q.Limit)

		found := []entities.Book{}
		if err := query.Find(&found).Error; err != nil {
			return fmt.Errorf("list books: %w", err)
		}
		if err := hydrateAuthors(tx, found); err != nil {
			return err
		}
		result = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Search returns books whose title or any linked author name contains query,
// case-insensitively. Each book appears once, ordered by title.
func (r *Repository) Search(ctx context.Context, query string) ([]entities.Book, error) {
	var result []entities.Book
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found := []entities.Book{}
		err := applySearch(tx.Model(&entities.Book{}), query).
			Order("books.title ASC").
			Order("books.id ASC").
			Find(&found).Error
		if err != nil {
			return fmt.Errorf("search books: %w", err)
		}
		if err := hydrateAuthors(tx, found); err != nil {
			return err
		}
		result = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Update applies the fields present in patch to the book with the given id.
// A present AuthorNames replaces the whole author set; authors that lose
// their last book this way are kept. Returns nil when the book does not exist.
func (r *Repository) Update(ctx context.Context, id string, patch catalog.BookPatch) (*entities.Book, error) {
	patch = patch.Normalized()
	if err := catalog.ValidatePatch(patch); err != nil {
		return nil, err
	}

	var updated *entities.Book
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var book entities.Book
		err := tx.Where("id = ?", id).First(&book).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("load book: %w", err)
		}

		changes := map[string]any{}
		if patch.Title != nil {
			changes["title"] = *patch.Title
			changes["title_folded"] = entities.Fold(*patch.Title)
		}
		if patch.PublishedYear != nil {
			changes["published_year"] = *patch.PublishedYear
		}
		if patch.Genres != nil {
			changes["genres"] = entities.Genres(*patch.Genres)
		}
		if len(changes) > 0 {
			if err := tx.Model(&book).Updates(changes).Error; err != nil {
				return fmt.Errorf("update book: %w", err)
			}
		}

		if patch.AuthorNames != nil {
			if err := tx.Where("book_id = ?", id).Delete(&entities.BookAuthor{}).Error; err != nil {
				return fmt.Errorf("unlink authors: %w", err)
			}
			if err := r.linkAuthors(tx, id, *patch.AuthorNames); err != nil {
				return err
			}
		}

		updated, err = getTx(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the book and its links, then deletes every author that was
// linked to it and has no books left. It reports whether the book existed.
func (r *Repository) Delete(ctx context.Context, id string) (bool, error) {
	found := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var book entities.Book
		err := tx.Select("id").Where("id = ?", id).First(&book).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("load book: %w", err)
		}
		found = true

		var authorIDs []string
		err = tx.Model(&entities.BookAuthor{}).
			Where("book_id = ?", id).
			Pluck("author_id", &authorIDs).Error
		if err != nil {
			return fmt.Errorf("load links: %w", err)
		}

		if err := tx.Where("book_id = ?", id).Delete(&entities.BookAuthor{}).Error; err != nil {
			return fmt.Errorf("delete links: %w", err)
		}
		if err := tx.Where("id = ?", id).Delete(&entities.Book{}).Error; err != nil {
			return fmt.Errorf("delete book: %w", err)
		}

		removed := 0
		for _, authorID := range authorIDs {
			deleted, err := r.authors.DeleteIfOrphanTx(tx, authorID)
			if err != nil {
				return fmt.Errorf("delete orphaned author %s: %w", authorID, err)
			}
			if deleted {
				removed++
			}
		}
		log.Printf("Deleted book %s and %d orphaned author(s)", id, removed)
		return nil
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

// BulkCreate creates the books one by one, each in its own transaction.
// It stops at the first failure and returns the books created before it
// together with the error; those books stay committed.
func (r *Repository) BulkCreate(ctx context.Context, inputs []catalog.BookInput) ([]entities.Book, error) {
	created := make([]entities.Book, 0, len(inputs))
	for i, in := range inputs {
		book, err := r.Create(ctx, in)
		if err != nil {
			return created, fmt.Errorf("book %d: %w", i, err)
		}
		created = append(created, *book)
	}
	return created, nil
}

// linkAuthors resolves names in order and links each distinct author to the
// book once. Repeated names collapse into the first occurrence.
func (r *Repository) linkAuthors(tx *gorm.DB, bookID string, names []string) error {
	seen := make(map[string]bool, len(names))
	links := make([]entities.BookAuthor, 0, len(names))
	for _, name := range names {
		author, err := r.authors.ResolveTx(tx, name)
		if err != nil {
			return err
		}
		if seen[author.ID] {
			continue
		}
		seen[author.ID] = true
		links = append(links, entities.BookAuthor{
			BookID:   bookID,
			AuthorID: author.ID,
			Position: len(links),
		})
	}
	if len(links) == 0 {
		return nil
	}
	if err := tx.Create(&links).Error; err != nil {
		return fmt.Errorf("link authors: %w", err)
	}
	return nil
}

func getTx(tx *gorm.DB, id string) (*entities.Book, error) {
	var book entities.Book
	if err := tx.Where("id = ?", id).First(&book).Error; err != nil {
		return nil, err
	}
	books := []entities.Book{book}
	if err := hydrateAuthors(tx, books); err != nil {
		return nil, err
	}
	return &books[0], nil
}

// hydrateChunkSize bounds the ids bound into one IN list, keeping large
// search results under SQLite's host parameter limit.
var hydrateChunkSize = 500

type authorRow struct {
	BookID string
	Name   string
}

// hydrateAuthors fills Authors for every book with one query, keeping the
// link order.
func hydrateAuthors(tx *gorm.DB, books []entities.Book) error {
	if len(books) == 0 {
		return nil
	}
	byBook := make(map[string][]string, len(books))
	for start := 0; start < len(books); start += hydrateChunkSize {
		end := min(start+hydrateChunkSize, len(books))
		ids := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			ids = append(ids, books[i].ID)
		}

		var rows []authorRow
		err := tx.Table("book_authors").
			Select("book_authors.book_id AS book_id, authors.name AS name").
			Joins("JOIN authors ON authors.id = book_authors.author_id").
			Where("book_authors.book_id IN ?", ids).
			Order("book_authors.book_id, book_authors.position, authors.name").
			Scan(&rows).Error
		if err != nil {
			return fmt.Errorf("load authors: %w", err)
		}
		for _, row := range rows {
			byBook[row.BookID] = append(byBook[row.BookID], row.Name)
		}
	}
	for i := range books {
		names := byBook[books[i].ID]
		if names == nil {
			names = []string{}
		}
		books[i].Authors = names
	}
	return nil
}
