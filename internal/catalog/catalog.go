// Package catalog holds the transport-independent inputs of the book catalog
// and the rules that validate them.
//
// Every create and update path (HTTP handlers, bulk upload, the import-books
// CLI) goes through ValidateInput / ValidatePatch before touching storage, so
// a rejected request never produces a partial write.
package catalog

import "strings"

// BookInput is the full set of fields needed to create a book.
type BookInput struct {
	Title         string   `json:"title" validate:"required"`
	PublishedYear int      `json:"published_year" validate:"gte=1800,notfutureyear"`
	Genres        []string `json:"genres" validate:"required,min=1,dive,genre"`
	AuthorNames   []string `json:"author_names" validate:"required,min=1,dive,notblank"`
}

// BookPatch describes a partial update. Nil fields are left untouched.
// A non-nil AuthorNames replaces the whole author set of the book.
type BookPatch struct {
	Title         *string   `json:"title,omitempty"`
	PublishedYear *int      `json:"published_year,omitempty"`
	Genres        *[]string `json:"genres,omitempty"`
	AuthorNames   *[]string `json:"author_names,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p BookPatch) IsEmpty() bool {
	return p.Title == nil && p.PublishedYear == nil && p.Genres == nil && p.AuthorNames == nil
}

// SortKey names a book column the list operation may sort by.
type SortKey string

const (
	SortByTitle         SortKey = "title"
	SortByPublishedYear SortKey = "published_year"
)

// sortOrders maps every accepted sort key to its ORDER BY clause.
// Keys outside this map are rejected during validation.
var sortOrders = map[SortKey]string{
	SortByTitle:         "books.title ASC",
	SortByPublishedYear: "books.published_year ASC",
}

// SortKeys returns the accepted sort keys in a stable order.
func SortKeys() []SortKey {
	return []SortKey{SortByTitle, SortByPublishedYear}
}

// OrderClause returns the SQL ordering for k.
func (k SortKey) OrderClause() (string, bool) {
	clause, ok := sortOrders[k]
	return clause, ok
}

const (
	DefaultListLimit = 10
	MaxListLimit     = 100
)

// Filters are ANDed together; zero values mean "no filter".
type Filters struct {
	Title    string   // case-insensitive substring of the title
	Author   string   // case-insensitive substring of any linked author name
	Genres   []string // book must carry every listed genre
	YearFrom *int     // inclusive
	YearTo   *int     // inclusive
}

type ListQuery struct {
	Skip    int
	Limit   int
	SortBy  SortKey
	Filters Filters
}

// DefaultListQuery returns the first page sorted by title.
func DefaultListQuery() ListQuery {
	return ListQuery{
		Skip:   0,
		Limit:  DefaultListLimit,
		SortBy: SortByTitle,
	}
}

// Normalized returns a copy of in with author names trimmed of surrounding
// whitespace. The trimmed form is what gets resolved and stored.
func (in BookInput) Normalized() BookInput {
	out := in
	out.AuthorNames = trimAll(in.AuthorNames)
	out.Genres = append([]string(nil), in.Genres...)
	return out
}

// Normalized returns a copy of p with author names trimmed.
func (p BookPatch) Normalized() BookPatch {
	out := p
	if p.AuthorNames != nil {
		names := trimAll(*p.AuthorNames)
		out.AuthorNames = &names
	}
	return out
}

func trimAll(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.TrimSpace(v)
	}
	return out
}
