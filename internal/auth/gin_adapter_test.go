package auth

import (
	"bytes"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

// brokenStore loads nothing and rejects every write.
type brokenStore struct{}

func (brokenStore) Find(string) ([]byte, bool, error) { return nil, false, nil }
func (brokenStore) Commit(string, []byte, time.Time) error { return errors.New("disk full") }
func (brokenStore) Delete(string) error { return nil }

func TestSessionLoadSave_WritesCookieOnCommit(t *testing.T) {
	sm := setupSessionManager(t)

	router := gin.New()
	router.Use(sm.SessionLoadSave())
	router.GET("/touch", func(c *gin.Context) {
		sm.Put(c.Request.Context(), "seen", true)
		c.Status(http.StatusNoContent)
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/touch", nil))

	if rr.Code != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d", rr.Code)
	}
	if !strings.Contains(rr.Header().Get("Set-Cookie"), SessionCookieName+"=") {
		t.Errorf("Expected session cookie, got %q", rr.Header().Get("Set-Cookie"))
	}
}

func TestSessionLoadSave_LogsCommitFailure(t *testing.T) {
	sm := setupSessionManager(t)
	sm.SessionManager.Store = brokenStore{}

	var logs bytes.Buffer
	log.SetOutput(&logs)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	router := gin.New()
	router.Use(sm.SessionLoadSave())
	router.GET("/touch", func(c *gin.Context) {
		sm.Put(c.Request.Context(), "seen", true)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/touch", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if got := rr.Header().Get("Set-Cookie"); got != "" {
		t.Errorf("Expected no session cookie after a failed commit, got %q", got)
	}
	if !strings.Contains(logs.String(), "[SESSION] Failed to commit session for GET /touch: disk full") {
		t.Errorf("Expected commit failure to be logged, got %q", logs.String())
	}
}
