package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/catalog/internal/auth"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())
	if cfg.AuthConfig.SecureCookies {
		router.Use(auth.StrictTransportSecurityMiddleware())
	}

	sessionsOn := cfg.SessionManager != nil && len(cfg.CSRFSecret) > 0

	// Session first so the CSRF wrapper derives its request from the
	// session-loaded one.
	if sessionsOn {
		router.Use(cfg.SessionManager.SessionLoadSave())
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.AuthConfig.SecureCookies, auth.SessionCookieName, cfg.AuthService))
	}

	var requireAuth gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
		requireAuth = cfg.AuthMiddleware.RequireAuth()
	} else {
		// No auth - inject default user ID
		router.Use(func(c *gin.Context) {
			c.Set(auth.ContextKeyUserID, auth.DefaultUserID)
			c.Set(auth.ContextKeyAuthType, auth.AuthTypeNone)
			c.Next()
		})
	}

	health := NewHealthController(cfg.Health, cfg.Version)
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Book Catalog API"})
	})
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)

	if cfg.AuthController != nil {
		var csrfToken gin.HandlerFunc
		if sessionsOn {
			csrfToken = auth.CSRFTokenMiddleware(cfg.CSRFSecret, cfg.AuthConfig.SecureCookies)
		}
		cfg.AuthController.RegisterRoutes(router.Group("/auth"), csrfToken)
	}

	api := router.Group("/api/v1")

	books := NewBooksController(cfg.Books, cfg.Auditor)
	api.GET("/books", books.ListBooks)
	api.GET("/books/search", books.SearchBooks)
	api.GET("/books/:id", books.GetBook)
	api.POST("/books", requireAuth, books.CreateBook)
	api.POST("/books/bulk-upload", requireAuth, books.BulkUpload)
	api.PUT("/books/:id", requireAuth, books.UpdateBook)
	api.DELETE("/books/:id", requireAuth, books.DeleteBook)

	if cfg.Authors != nil {
		authors := NewAuthorsController(cfg.Authors, cfg.Tasks)
		api.GET("/authors", authors.ListAuthors)
		api.POST("/admin/authors/cleanup", requireAuth, authors.CleanupOrphanAuthors)
	}

	if cfg.TaskStatus != nil {
		tasksController := NewTasksController(cfg.TaskStatus)
		api.GET("/tasks/:id", requireAuth, tasksController.GetTaskStatus)
	}

	return router
}
