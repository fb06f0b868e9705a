// Package database provides the data access layer for the catalog.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup and migrations
//	├── authors/         # Author registry (get-or-create by name, orphan cleanup)
//	├── books/           # Book CRUD, filtering, search, author linkage
//	└── users/           # User accounts and API token hashes
//
// # Schema
//
// Books and authors are joined through book_authors (book_id, author_id,
// position). Author names are unique; an author row is shared by every book
// that references it.
//
// # Transactions
//
// Each repository call runs in its own transaction obtained from the
// *gorm.DB handed to NewRepository. Helpers that must participate in a
// caller's transaction (the author registry) take the transaction handle
// explicitly instead of reaching for shared state.
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase("./catalog.db")
//
//	registry := authors.NewRegistry(db.DB)
//	booksRepo := books.NewRepository(db.DB, registry)
//
//	book, err := booksRepo.Create(ctx, input)
package database
