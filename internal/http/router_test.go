package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mrlokans/catalog/internal/audit"
	"github.com/mrlokans/catalog/internal/auth"
	"github.com/mrlokans/catalog/internal/config"
	"github.com/mrlokans/catalog/internal/database"
	"github.com/mrlokans/catalog/internal/database/authors"
	"github.com/mrlokans/catalog/internal/database/books"
	"github.com/mrlokans/catalog/internal/database/users"
	"github.com/mrlokans/catalog/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testApp struct {
	router  *gin.Engine
	db      *gorm.DB
	service *auth.Service
	token   string
}

type appOption func(*RouterConfig)

func withAuditor(dir string) appOption {
	return func(cfg *RouterConfig) { cfg.Auditor = audit.NewAuditor(dir) }
}

func withTasks(enqueuer TaskEnqueuer, status TaskStatusReader) appOption {
	return func(cfg *RouterConfig) {
		cfg.Tasks = enqueuer
		cfg.TaskStatus = status
	}
}

// setupApp builds the full router over a fresh database. In local auth mode
// a user is registered and app.token carries a valid bearer token.
func setupApp(t *testing.T, mode config.AuthMode, opts ...appOption) *testApp {
	t.Helper()

	db := testutil.OpenDB(t)
	registry := authors.NewRegistry(db)
	authCfg := config.Auth{Mode: mode, BcryptCost: 4, MaxLoginAttempts: 5}

	app := &testApp{db: db}
	cfg := RouterConfig{
		Books:      books.NewRepository(db, registry),
		Authors:    registry,
		Health:     &database.Database{DB: db},
		AuthConfig: authCfg,
		Version:    "test",
	}

	if mode == config.AuthModeLocal {
		app.service = auth.NewService(users.NewRepository(db), authCfg)
		cfg.AuthService = app.service
		cfg.AuthMiddleware = auth.NewMiddleware(app.service, nil, authCfg)
		controller := auth.NewAuthController(app.service, nil, authCfg)
		t.Cleanup(controller.Stop)
		cfg.AuthController = controller

		ctx := context.Background()
		user, err := app.service.Register(ctx, "librarian", "secret1")
		require.NoError(t, err)
		app.token, err = app.service.IssueToken(ctx, user.ID)
		require.NoError(t, err)
	}

	for _, opt := range opts {
		opt(&cfg)
	}
	app.router = NewRouter(cfg)
	return app
}

func (a *testApp) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestRouter_Root(t *testing.T) {
	app := setupApp(t, config.AuthModeNone)

	w := app.do(http.MethodGet, "/", nil, "")

	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]string](t, w)
	require.Equal(t, "Book Catalog API", body["message"])
}

func TestRouter_SecurityHeaders(t *testing.T) {
	app := setupApp(t, config.AuthModeNone)

	w := app.do(http.MethodGet, "/ping", nil, "")

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestRouter_AuthRoutesOnlyInLocalMode(t *testing.T) {
	none := setupApp(t, config.AuthModeNone)
	w := none.do(http.MethodPost, "/auth/login", map[string]string{"username": "a", "password": "b"}, "")
	require.Equal(t, http.StatusNotFound, w.Code)

	local := setupApp(t, config.AuthModeLocal)
	w = local.do(http.MethodPost, "/auth/login", map[string]string{"username": "librarian", "password": "secret1"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "bearer", decode[map[string]string](t, w)["token_type"])

	// Without sessions there is no CSRF endpoint.
	w = local.do(http.MethodGet, "/auth/csrf", nil, "")
	require.Equal(t, http.StatusNotFound, w.Code)
}
