package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
)

// CSRFTokenHeader is the header name for the CSRF token on cookie-session
// requests.
const CSRFTokenHeader = "X-CSRF-Token"

const csrfTokenContextKey = "csrf_token"

// CSRFMiddleware creates a Gin middleware for CSRF protection of cookie
// sessions. It skips CSRF checks for:
//   - requests without the session cookie (nothing ambient to forge)
//   - requests carrying a valid Bearer token
//
// Safe HTTP methods pass through gorilla/csrf unchecked but still receive a
// token in the context.
func CSRFMiddleware(secret []byte, secure bool, sessionCookie string, authService *Service) gin.HandlerFunc {
	csrfProtect := csrf.Protect(
		secret,
		csrf.Secure(secure),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteStrictMode),
		csrf.Path("/"),
		csrf.RequestHeader(CSRFTokenHeader),
		csrf.ErrorHandler(http.HandlerFunc(csrfErrorHandler)),
	)

	return func(c *gin.Context) {
		if !hasCookie(c, sessionCookie) || hasValidBearer(c, authService) {
			c.Next()
			return
		}

		serveProtected(c, csrfProtect)
	}
}

// CSRFTokenMiddleware issues a CSRF token for every request, session cookie
// or not. It backs GET /auth/csrf so cookie clients can fetch a token before
// their first unsafe request.
func CSRFTokenMiddleware(secret []byte, secure bool) gin.HandlerFunc {
	csrfProtect := csrf.Protect(
		secret,
		csrf.Secure(secure),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteStrictMode),
		csrf.Path("/"),
		csrf.RequestHeader(CSRFTokenHeader),
		csrf.ErrorHandler(http.HandlerFunc(csrfErrorHandler)),
	)

	return func(c *gin.Context) {
		serveProtected(c, csrfProtect)
	}
}

// serveProtected runs the rest of the chain inside gorilla/csrf. When the
// check fails the chain is aborted so later handlers never run.
func serveProtected(c *gin.Context, protect func(http.Handler) http.Handler) {
	passed := false
	handler := protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		passed = true
		c.Set(csrfTokenContextKey, csrf.Token(r))
		c.Request = r
		c.Next()
	}))
	handler.ServeHTTP(c.Writer, c.Request)
	if !passed {
		c.Abort()
	}
}

// csrfErrorHandler handles CSRF validation failures.
func csrfErrorHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte(`{"error":"CSRF token invalid or missing","code":"csrf_failed"}`))
}

func hasCookie(c *gin.Context, name string) bool {
	if name == "" {
		return false
	}
	_, err := c.Request.Cookie(name)
	return err == nil
}

// hasValidBearer checks if this request carries a valid Bearer token.
// If authService is nil, it only checks for header presence.
func hasValidBearer(c *gin.Context, authService *Service) bool {
	token := bearerToken(c)
	if token == "" {
		return false
	}
	if authService == nil {
		return true
	}
	_, err := authService.ValidateToken(c.Request.Context(), token)
	return err == nil
}

// GetCSRFToken retrieves the CSRF token from the Gin context.
func GetCSRFToken(c *gin.Context) string {
	if token, exists := c.Get(csrfTokenContextKey); exists {
		if t, ok := token.(string); ok {
			return t
		}
	}
	return ""
}
