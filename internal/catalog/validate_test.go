package catalog

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pinYear(t *testing.T, year int) {
	t.Helper()
	orig := now
	now = func() time.Time { return time.Date(year, time.June, 1, 0, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { now = orig })
}

func validInput() BookInput {
	return BookInput{
		Title:         "Dune",
		PublishedYear: 1965,
		Genres:        []string{"Science Fiction"},
		AuthorNames:   []string{"Frank Herbert"},
	}
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	return verr.Fields
}

func TestValidateInput(t *testing.T) {
	pinYear(t, 2026)

	t.Run("accepts a valid book", func(t *testing.T) {
		assert.NoError(t, ValidateInput(validInput()))
	})

	t.Run("accepts the current year", func(t *testing.T) {
		in := validInput()
		in.PublishedYear = 2026
		assert.NoError(t, ValidateInput(in))
	})

	tests := []struct {
		name   string
		mutate func(*BookInput)
		field  string
	}{
		{"empty title", func(in *BookInput) { in.Title = "" }, "title"},
		{"year before 1800", func(in *BookInput) { in.PublishedYear = 1799 }, "published_year"},
		{"year in the future", func(in *BookInput) { in.PublishedYear = 2027 }, "published_year"},
		{"nil genres", func(in *BookInput) { in.Genres = nil }, "genres"},
		{"empty genres", func(in *BookInput) { in.Genres = []string{} }, "genres"},
		{"unknown genre", func(in *BookInput) { in.Genres = []string{"Fantasy", "Not-A-Genre"} }, "genres[1]"},
		{"genre with wrong case", func(in *BookInput) { in.Genres = []string{"fantasy"} }, "genres[0]"},
		{"empty author list", func(in *BookInput) { in.AuthorNames = []string{} }, "author_names"},
		{"blank author name", func(in *BookInput) { in.AuthorNames = []string{"Jane", "   "} }, "author_names[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			fields := fieldsOf(t, ValidateInput(in))
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestValidatePatch(t *testing.T) {
	pinYear(t, 2026)

	t.Run("empty patch is valid", func(t *testing.T) {
		assert.NoError(t, ValidatePatch(BookPatch{}))
	})

	t.Run("only present fields are checked", func(t *testing.T) {
		year := 1990
		assert.NoError(t, ValidatePatch(BookPatch{PublishedYear: &year}))
	})

	t.Run("present empty title is rejected", func(t *testing.T) {
		title := ""
		fields := fieldsOf(t, ValidatePatch(BookPatch{Title: &title}))
		assert.Equal(t, "is required", fields["title"])
	})

	t.Run("present empty genres are rejected", func(t *testing.T) {
		genres := []string{}
		fields := fieldsOf(t, ValidatePatch(BookPatch{Genres: &genres}))
		assert.Contains(t, fields, "genres")
	})

	t.Run("invalid genre names the element", func(t *testing.T) {
		genres := []string{"Horror", "Cooking"}
		fields := fieldsOf(t, ValidatePatch(BookPatch{Genres: &genres}))
		assert.Contains(t, fields, "genres[1]")
	})

	t.Run("blank author is rejected", func(t *testing.T) {
		names := []string{" "}
		fields := fieldsOf(t, ValidatePatch(BookPatch{AuthorNames: &names}))
		assert.Contains(t, fields, "author_names[0]")
	})

	t.Run("reports every bad field", func(t *testing.T) {
		title := ""
		year := 3000
		fields := fieldsOf(t, ValidatePatch(BookPatch{Title: &title, PublishedYear: &year}))
		assert.Len(t, fields, 2)
	})
}

func TestValidateListQuery(t *testing.T) {
	t.Run("default query is valid", func(t *testing.T) {
		assert.NoError(t, ValidateListQuery(DefaultListQuery()))
	})

	t.Run("sort by published year", func(t *testing.T) {
		q := DefaultListQuery()
		q.SortBy = SortByPublishedYear
		assert.NoError(t, ValidateListQuery(q))
	})

	t.Run("unknown sort key is an input error", func(t *testing.T) {
		q := DefaultListQuery()
		q.SortBy = "id; DROP TABLE books"
		fields := fieldsOf(t, ValidateListQuery(q))
		assert.Equal(t, "must be one of: title, published_year", fields["sort_by"])
	})

	t.Run("paging bounds", func(t *testing.T) {
		q := DefaultListQuery()
		q.Skip = -1
		q.Limit = MaxListLimit + 1
		fields := fieldsOf(t, ValidateListQuery(q))
		assert.Contains(t, fields, "skip")
		assert.Contains(t, fields, "limit")
	})

	t.Run("genre filter must use the vocabulary", func(t *testing.T) {
		q := DefaultListQuery()
		q.Filters.Genres = []string{"Fantasy", "Poetry"}
		fields := fieldsOf(t, ValidateListQuery(q))
		assert.Contains(t, fields, "genre[1]")
	})

	t.Run("inverted year range", func(t *testing.T) {
		from, to := 2000, 1990
		q := DefaultListQuery()
		q.Filters.YearFrom = &from
		q.Filters.YearTo = &to
		fields := fieldsOf(t, ValidateListQuery(q))
		assert.Contains(t, fields, "year_from")
	})
}

func TestNormalized(t *testing.T) {
	in := validInput()
	in.AuthorNames = []string{"  Frank Herbert ", "Brian Herbert"}

	out := in.Normalized()
	assert.Equal(t, []string{"Frank Herbert", "Brian Herbert"}, out.AuthorNames)
	assert.Equal(t, "  Frank Herbert ", in.AuthorNames[0], "input must not be mutated")

	names := []string{" A "}
	patch := BookPatch{AuthorNames: &names}.Normalized()
	assert.Equal(t, []string{"A"}, *patch.AuthorNames)
	assert.Equal(t, " A ", names[0])
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{
		"title": "is required",
		"genres": "must not be empty",
	}}
	assert.Equal(t, "validation failed: genres must not be empty; title is required", err.Error())
}
