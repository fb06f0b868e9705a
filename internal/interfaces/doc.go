// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - BookStore: book CRUD, listing and search (internal/http/books.go)
//   - AuthorStore: author listing and orphan cleanup (internal/http/authors.go)
//   - HealthChecker: database liveness and counts (internal/http/health.go)
//   - UserRepository: user accounts and token hashes (internal/auth/service.go)
//
// ## Background Work Interfaces
//
//   - OrphanAuthorsCleaner: deletes authors without books (internal/tasks/cleanup_authors.go)
//   - TaskEnqueuer: hands work to the task queue (internal/http/authors.go,
//     internal/scheduler/author_sweep.go)
//   - TaskStatusReader: reports task state (internal/http/tasks.go)
//
// # Adding a New Book Filter
//
//  1. Add the field to catalog.Filters and its check to ValidateListQuery.
//
//  2. Add the predicate to applyFilters in internal/database/books/query.go.
//     User text that ends up in a LIKE pattern goes through containsPattern.
//
//  3. Parse the query parameter in parseListQuery (internal/http/books.go).
//
// # Adding a New Maintenance Task
//
//  1. Define the task and its queue in internal/tasks/:
//
//     type ReindexTask struct{}
//
//     func (t ReindexTask) Config() backlite.QueueConfig { ... }
//
//     func NewReindexQueue(dep Reindexer) backlite.Queue
//
//  2. Register the queue in entrypoint.go next to NewCleanupOrphanAuthorsQueue.
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the full list.
package interfaces
