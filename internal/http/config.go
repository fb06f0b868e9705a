package http

import (
	"github.com/mrlokans/catalog/internal/audit"
	"github.com/mrlokans/catalog/internal/auth"
	"github.com/mrlokans/catalog/internal/config"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Books   BookStore
	Authors AuthorStore
	Health  HealthChecker
	Auditor *audit.Auditor

	// Task queue (optional). Without it the author cleanup runs inline and
	// the task status route is not registered.
	Tasks      TaskEnqueuer
	TaskStatus TaskStatusReader

	// Authentication (all optional in auth mode "none")
	AuthController *auth.AuthController
	AuthMiddleware *auth.Middleware
	AuthService    *auth.Service
	SessionManager *auth.SessionManager
	AuthConfig     config.Auth
	CSRFSecret     []byte

	// Application info
	Version string
}
