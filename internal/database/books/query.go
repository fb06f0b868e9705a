package books

import (
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/catalog/internal/catalog"
	"github.com/mrlokans/catalog/internal/entities"
)

// Substring predicates over the case-folded columns. The pattern argument
// comes from containsPattern, so LIKE wildcards typed by the user match
// literally.
const (
	titleContains = `books.title_folded LIKE ? ESCAPE '\'`

	authorContains = `books.id IN (
		SELECT book_authors.book_id FROM book_authors
		JOIN authors ON authors.id = book_authors.author_id
		WHERE authors.name_folded LIKE ? ESCAPE '\'
	)`

	hasGenre = `EXISTS (SELECT 1 FROM json_each(books.genres) WHERE json_each.value = ?)`
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern turns s into a LIKE pattern matching any folded value that
// contains s, regardless of case.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(entities.Fold(s)) + "%"
}

// applyFilters ANDs every non-zero filter onto query.
func applyFilters(query *gorm.DB, f catalog.Filters) *gorm.DB {
	if f.Title != "" {
		query = query.Where(titleContains, containsPattern(f.Title))
	}
	if f.Author != "" {
		query = query.Where(authorContains, containsPattern(f.Author))
	}
	for _, genre := range f.Genres {
		query = query.Where(hasGenre, genre)
	}
	if f.YearFrom != nil {
		query = query.Where("books.published_year >= ?", *f.YearFrom)
	}
	if f.YearTo != nil {
		query = query.Where("books.published_year <= ?", *f.YearTo)
	}
	return query
}

// applySearch matches books by title or by any linked author name. The
// author side is a subquery, so a book matching through several authors is
// still returned once.
func applySearch(query *gorm.DB, text string) *gorm.DB {
	pattern := containsPattern(text)
	return query.Where(titleContains+" OR "+authorContains, pattern, pattern)
}
