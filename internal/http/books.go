package http

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/catalog/internal/audit"
	"github.com/mrlokans/catalog/internal/catalog"
	"github.com/mrlokans/catalog/internal/entities"
)

// BookStore is the subset of the books repository the controller needs.
type BookStore interface {
	Create(ctx context.Context, in catalog.BookInput) (*entities.Book, error)
	Get(ctx context.Context, id string) (*entities.Book, error)
	List(ctx context.Context, q catalog.ListQuery) ([]entities.Book, error)
	Search(ctx context.Context, query string) ([]entities.Book, error)
	Update(ctx context.Context, id string, patch catalog.BookPatch) (*entities.Book, error)
	Delete(ctx context.Context, id string) (bool, error)
	BulkCreate(ctx context.Context, inputs []catalog.BookInput) ([]entities.Book, error)
}

type BooksController struct {
	store   BookStore
	auditor *audit.Auditor
}

// NewBooksController creates a controller. auditor may be nil.
func NewBooksController(store BookStore, auditor *audit.Auditor) *BooksController {
	return &BooksController{
		store:   store,
		auditor: auditor,
	}
}

// CreateBook handles POST /api/v1/books
func (bc *BooksController) CreateBook(c *gin.Context) {
	var in catalog.BookInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	book, err := bc.store.Create(c.Request.Context(), in)
	if err != nil {
		respondStoreError(c, err, "create book")
		return
	}
	respondCreated(c, book)
}

// ListBooks handles GET /api/v1/books
// Query: skip, limit, sort_by, title, author, genre (repeatable or comma
// separated), year_from, year_to.
func (bc *BooksController) ListBooks(c *gin.Context) {
	q, fields := parseListQuery(c)
	if len(fields) > 0 {
		respondValidationError(c, fields)
		return
	}

	books, err := bc.store.List(c.Request.Context(), q)
	if err != nil {
		respondStoreError(c, err, "list books")
		return
	}
	c.JSON(http.StatusOK, books)
}

// SearchBooks handles GET /api/v1/books/search?query=
func (bc *BooksController) SearchBooks(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		respondValidationError(c, map[string]string{"query": "is required"})
		return
	}

	books, err := bc.store.Search(c.Request.Context(), query)
	if err != nil {
		respondInternalError(c, err, "search books")
		return
	}
	c.JSON(http.StatusOK, books)
}

// GetBook handles GET /api/v1/books/:id
func (bc *BooksController) GetBook(c *gin.Context) {
	book, err := bc.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondInternalError(c, err, "get book")
		return
	}
	if book == nil {
		respondNotFound(c, "book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// UpdateBook handles PUT /api/v1/books/:id
// Only fields present in the body change; author_names replaces the whole
// author list.
func (bc *BooksController) UpdateBook(c *gin.Context) {
	var patch catalog.BookPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	book, err := bc.store.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		respondStoreError(c, err, "update book")
		return
	}
	if book == nil {
		respondNotFound(c, "book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// DeleteBook handles DELETE /api/v1/books/:id
func (bc *BooksController) DeleteBook(c *gin.Context) {
	id := c.Param("id")
	deleted, err := bc.store.Delete(c.Request.Context(), id)
	if err != nil {
		respondInternalError(c, err, "delete book")
		return
	}
	if !deleted {
		respondNotFound(c, "book")
		return
	}
	c.Status(http.StatusNoContent)
}

// BulkUpload handles POST /api/v1/books/bulk-upload
// The whole payload is validated before anything is written, so a bad entry
// rejects the request without creating any book.
func (bc *BooksController) BulkUpload(c *gin.Context) {
	var inputs []catalog.BookInput
	if err := c.ShouldBindJSON(&inputs); err != nil {
		respondBadRequest(c, "invalid request body: expected a JSON array of books")
		return
	}
	if len(inputs) == 0 {
		respondValidationError(c, map[string]string{"books": "must not be empty"})
		return
	}

	if fields := validateAll(inputs); len(fields) > 0 {
		respondValidationError(c, fields)
		return
	}

	if _, err := bc.auditor.SaveJSON("bulk_upload", inputs); err != nil {
		log.Printf("Failed to save bulk upload audit file: %v", err)
	}

	created, err := bc.store.BulkCreate(c.Request.Context(), inputs)
	if err != nil {
		log.Printf("Bulk upload stopped after %d of %d books", len(created), len(inputs))
		respondStoreError(c, err, "bulk upload")
		return
	}

	log.Printf("Bulk upload created %d books", len(created))
	respondCreated(c, created)
}

func validateAll(inputs []catalog.BookInput) map[string]string {
	fields := map[string]string{}
	for i, in := range inputs {
		verr, ok := catalog.ValidateInput(in.Normalized()).(*catalog.ValidationError)
		if !ok {
			continue
		}
		for name, msg := range verr.Fields {
			fields[fmt.Sprintf("[%d].%s", i, name)] = msg
		}
	}
	return fields
}

// parseListQuery reads list parameters on top of catalog.DefaultListQuery.
// Malformed numbers are reported per field; range and enum checks are left
// to the repository's validation.
func parseListQuery(c *gin.Context) (catalog.ListQuery, map[string]string) {
	q := catalog.DefaultListQuery()
	fields := map[string]string{}

	parseInt := func(name string) *int {
		raw := strings.TrimSpace(c.Query(name))
		if raw == "" {
			return nil
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			fields[name] = "must be an integer"
			return nil
		}
		return &v
	}

	if v := parseInt("skip"); v != nil {
		q.Skip = *v
	}
	if v := parseInt("limit"); v != nil {
		q.Limit = *v
	}
	if sortBy := strings.TrimSpace(c.Query("sort_by")); sortBy != "" {
		q.SortBy = catalog.SortKey(sortBy)
	}

	q.Filters.Title = c.Query("title")
	q.Filters.Author = c.Query("author")
	q.Filters.Genres = splitGenres(c.QueryArray("genre"))
	q.Filters.YearFrom = parseInt("year_from")
	q.Filters.YearTo = parseInt("year_to")

	return q, fields
}

// splitGenres accepts both ?genre=A&genre=B and ?genre=A,B.
func splitGenres(values []string) []string {
	var genres []string
	for _, value := range values {
		for _, g := range strings.Split(value, ",") {
			if g = strings.TrimSpace(g); g != "" {
				genres = append(genres, g)
			}
		}
	}
	return genres
}
