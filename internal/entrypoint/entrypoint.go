package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/catalog/internal/audit"
	"github.com/mrlokans/catalog/internal/auth"
	"github.com/mrlokans/catalog/internal/config"
	"github.com/mrlokans/catalog/internal/database"
	"github.com/mrlokans/catalog/internal/database/authors"
	"github.com/mrlokans/catalog/internal/database/books"
	"github.com/mrlokans/catalog/internal/database/users"
	http_controllers "github.com/mrlokans/catalog/internal/http"
	"github.com/mrlokans/catalog/internal/scheduler"
	"github.com/mrlokans/catalog/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server Shutdown: %v", err)
	}

	// Background work stops after in-flight requests have drained
	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Book Catalog v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	registry := authors.NewRegistry(db.DB)
	bookRepo := books.NewRepository(db.DB, registry)

	// Create auditor for saving bulk-upload payloads
	auditor := audit.NewAuditor(cfg.Audit.Dir)
	if auditor.Enabled() {
		log.Printf("Bulk upload auditing enabled, writing to %s", cfg.Audit.Dir)
	}

	routerCfg := http_controllers.RouterConfig{
		Books:      bookRepo,
		Authors:    registry,
		Health:     db,
		Auditor:    auditor,
		AuthConfig: cfg.Auth,
		Version:    version,
	}

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.ConfigFrom(cfg.Tasks))
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(tasks.NewCleanupOrphanAuthorsQueue(registry))

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		routerCfg.Tasks = taskClient
		routerCfg.TaskStatus = taskClient
	}

	// Scheduled orphan-author sweep, off unless explicitly enabled
	var sweep *scheduler.AuthorSweepScheduler
	if cfg.AuthorSweep.Enabled {
		var enqueuer scheduler.TaskEnqueuer
		if taskClient != nil {
			enqueuer = taskClient
		}
		sweep = scheduler.NewAuthorSweepScheduler(cfg.AuthorSweep.Schedule, registry, enqueuer)
		if err := sweep.Start(context.Background()); err != nil {
			log.Fatalf("Failed to start author sweep scheduler: %v", err)
		}
	}

	var authController *auth.AuthController
	var sessionManager *auth.SessionManager

	if cfg.Auth.Mode == config.AuthModeLocal {
		log.Printf("Authentication mode: local")

		authService := auth.NewService(users.NewRepository(db.DB), cfg.Auth)

		if cfg.Auth.SessionsEnabled {
			sqlDB, err := db.DB.DB()
			if err != nil {
				log.Fatalf("Failed to get SQL DB for sessions: %v", err)
			}
			sessionManager, err = auth.NewSessionManager(sqlDB, cfg.Auth)
			if err != nil {
				log.Fatalf("Failed to initialize session manager: %v", err)
			}
			routerCfg.SessionManager = sessionManager
			routerCfg.CSRFSecret = csrfSecret(cfg.Auth.SessionSecret)
		}

		authController = auth.NewAuthController(authService, sessionManager, cfg.Auth)
		routerCfg.AuthService = authService
		routerCfg.AuthMiddleware = auth.NewMiddleware(authService, sessionManager, cfg.Auth)
		routerCfg.AuthController = authController

		hasUsers, err := authService.HasUsers(context.Background())
		if err == nil && !hasUsers {
			log.Printf("No users found. Register one via POST /auth/register or the create-user command.")
		}
	} else {
		log.Printf("Authentication mode: none (no authentication required)")
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if sweep != nil {
			sweep.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
		if authController != nil {
			authController.Stop()
		}
		if sessionManager != nil {
			sessionManager.Close()
		}
	}

	Serve(router, cfg, onShutdown)
}

// csrfSecret decodes a hex AUTH_SESSION_SECRET, falls back to its raw bytes,
// and generates a throwaway secret when none is configured.
func csrfSecret(configured string) []byte {
	if configured != "" {
		if secret, err := hex.DecodeString(configured); err == nil {
			return secret
		}
		return []byte(configured)
	}

	secret, err := auth.GenerateSessionSecret()
	if err != nil {
		log.Fatalf("Failed to generate CSRF secret: %v", err)
	}
	decoded, _ := hex.DecodeString(secret)
	log.Printf("Generated session secret (set AUTH_SESSION_SECRET to persist)")
	return decoded
}
