package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHealth struct {
	pingErr error
	books   int64
	authors int64
}

func (s stubHealth) Ping(ctx context.Context) error { return s.pingErr }

func (s stubHealth) GetStats(ctx context.Context) (int64, int64, error) {
	return s.books, s.authors, nil
}

func healthRequest(t *testing.T, checker HealthChecker) (int, HealthResponse) {
	t.Helper()
	controller := NewHealthController(checker, "1.0.0")

	router := gin.New()
	router.GET("/health", controller.Status)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	var response HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return w.Code, response
}

func TestHealthController_Status(t *testing.T) {
	t.Run("returns healthy when database is connected", func(t *testing.T) {
		code, response := healthRequest(t, stubHealth{books: 3, authors: 2})

		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "healthy", response.Status)
		assert.Equal(t, "1.0.0", response.Version)
		assert.Equal(t, "ok", response.Checks["database"])
		assert.NotEmpty(t, response.Time)
		require.NotNil(t, response.Stats)
		assert.Equal(t, CatalogStats{Books: 3, Authors: 2}, *response.Stats)
	})

	t.Run("reports not configured when database is nil", func(t *testing.T) {
		code, response := healthRequest(t, nil)

		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "not configured", response.Checks["database"])
		assert.Nil(t, response.Stats)
	})

	t.Run("returns unhealthy when ping fails", func(t *testing.T) {
		code, response := healthRequest(t, stubHealth{pingErr: errors.New("database is closed")})

		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.Equal(t, "unhealthy", response.Status)
		assert.Contains(t, response.Checks["database"], "database is closed")
	})
}

func TestHealthController_WithRealDatabase(t *testing.T) {
	app := setupApp(t, "none")
	createBook(t, app, duneBody())

	w := app.do(http.MethodGet, "/health", nil, "")

	require.Equal(t, http.StatusOK, w.Code)
	response := decode[HealthResponse](t, w)
	assert.Equal(t, "ok", response.Checks["database"])
	require.NotNil(t, response.Stats)
	assert.Equal(t, CatalogStats{Books: 1, Authors: 1}, *response.Stats)
}

func TestHealthController_Ping(t *testing.T) {
	app := setupApp(t, "none")

	w := app.do(http.MethodGet, "/ping", nil, "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]string{"message": "pong"}, decode[map[string]string](t, w))
}
