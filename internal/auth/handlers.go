package auth

import (
	"errors"
	"log"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/catalog/internal/config"
)

// Credentials is the register/login payload. Both JSON bodies and
// form-encoded bodies (OAuth2 password flow style) are accepted.
type Credentials struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// TokenResponse is returned by a successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// AuthController handles authentication-related HTTP endpoints.
type AuthController struct {
	service        *Service
	sessionManager *SessionManager
	limiter        *LoginLimiter
}

// NewAuthController creates a new authentication controller. sessionManager
// may be nil when cookie sessions are disabled.
func NewAuthController(service *Service, sessionManager *SessionManager, cfg config.Auth) *AuthController {
	limiter := NewLoginLimiter(LoginLimitConfig{
		MaxAttempts: cfg.MaxLoginAttempts,
		Window:      cfg.RateLimitWindow,
		Lockout:     cfg.LockoutDuration,
	})

	return &AuthController{
		service:        service,
		sessionManager: sessionManager,
		limiter:        limiter,
	}
}

// RegisterRoutes registers authentication routes. csrfToken backs
// GET /csrf and is only wired when cookie sessions are enabled.
func (ac *AuthController) RegisterRoutes(group *gin.RouterGroup, csrfToken gin.HandlerFunc) {
	group.POST("/register", ac.Register)
	group.POST("/login", ac.Login)
	group.POST("/logout", ac.Logout)
	if csrfToken != nil {
		group.GET("/csrf", csrfToken, ac.CSRFToken)
	}
}

// Stop cleans up resources (limiter background goroutine).
func (ac *AuthController) Stop() {
	ac.limiter.Stop()
}

// Register creates a user account.
func (ac *AuthController) Register(c *gin.Context) {
	var creds Credentials
	if err := c.ShouldBind(&creds); err != nil {
		authError(c, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	user, err := ac.service.Register(c.Request.Context(), creds.Username, creds.Password)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, gin.H{"id": user.ID, "username": user.Username})
	case errors.Is(err, ErrUserExists):
		authError(c, http.StatusBadRequest, "user_exists", "Username already exists")
	case errors.Is(err, ErrUsernameRequired), errors.Is(err, ErrUsernameTooLong),
		errors.Is(err, ErrPasswordRequired), errors.Is(err, ErrPasswordTooShort),
		errors.Is(err, ErrPasswordTooLong):
		authError(c, http.StatusBadRequest, "validation_failed", err.Error())
	default:
		log.Printf("Failed to register user %q: %v", creds.Username, err)
		authError(c, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}

// Login verifies credentials and issues a bearer token. With cookie
// sessions enabled it also starts a session.
func (ac *AuthController) Login(c *gin.Context) {
	var creds Credentials
	if err := c.ShouldBind(&creds); err != nil {
		authError(c, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	clientIP := c.ClientIP()

	if allowed, retryAfter := ac.limiter.Allow(clientIP, creds.Username); !allowed {
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
		authError(c, http.StatusTooManyRequests, "too_many_attempts", "Too many login attempts. Please try again later.")
		return
	}

	user, err := ac.service.Authenticate(c.Request.Context(), creds.Username, creds.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		ac.limiter.RecordFailure(clientIP, creds.Username)
		c.Header("WWW-Authenticate", "Bearer")
		authError(c, http.StatusUnauthorized, "unauthorized", "Incorrect username or password")
		return
	}
	if err != nil {
		log.Printf("Failed to authenticate %q: %v", creds.Username, err)
		authError(c, http.StatusInternalServerError, "internal_error", "Internal server error")
		return
	}
	ac.limiter.RecordSuccess(clientIP, creds.Username)

	token, err := ac.service.IssueToken(c.Request.Context(), user.ID)
	if err != nil {
		log.Printf("Failed to issue token for user %d: %v", user.ID, err)
		authError(c, http.StatusInternalServerError, "internal_error", "Internal server error")
		return
	}

	if ac.sessionManager != nil {
		if err := ac.sessionManager.CreateSession(c.Request, user); err != nil {
			log.Printf("Failed to create session for user %d: %v", user.ID, err)
			authError(c, http.StatusInternalServerError, "internal_error", "Failed to create session")
			return
		}
	}

	c.JSON(http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// Logout revokes the bearer token used for the request and destroys the
// cookie session, whichever is present.
func (ac *AuthController) Logout(c *gin.Context) {
	if GetAuthType(c) == AuthTypeBearer {
		if err := ac.service.RevokeToken(c.Request.Context(), GetUserID(c)); err != nil {
			log.Printf("Failed to revoke token for user %d: %v", GetUserID(c), err)
			authError(c, http.StatusInternalServerError, "internal_error", "Internal server error")
			return
		}
	}

	if ac.sessionManager != nil {
		if err := ac.sessionManager.DestroySession(c.Request); err != nil {
			log.Printf("Failed to destroy session: %v", err)
		}
	}

	c.Status(http.StatusNoContent)
}

// CSRFToken returns the token cookie clients must echo in X-CSRF-Token.
func (ac *AuthController) CSRFToken(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"csrf_token": GetCSRFToken(c)})
}

func authError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message, "code": code})
}
