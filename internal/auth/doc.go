// Package auth provides the authentication gate of the catalog API.
//
// It supports two authentication modes:
//   - "local": Local user database; API clients send "Authorization: Bearer <token>" (default)
//   - "none": No authentication, every request is allowed (development only)
//
// Tokens are random 32-byte hex strings issued by POST /auth/login. Only
// their SHA-256 hash is stored, so a leaked database does not leak tokens.
// Passwords are hashed with bcrypt.
//
// Reads are public. Mutating routes are wrapped in RequireAuth, which
// answers 401 with "WWW-Authenticate: Bearer" when no valid credential was
// presented.
//
// # Configuration
//
//	AUTH_MODE=local                # or "none"
//	AUTH_TOKEN_EXPIRY=720h         # API token expiry (30 days default)
//	AUTH_BCRYPT_COST=12            # bcrypt cost factor
//	AUTH_SESSIONS_ENABLED=false    # Also start a cookie session at login
//	AUTH_SESSION_SECRET=<hex>      # CSRF key, auto-generated if empty
//	AUTH_SESSION_LIFETIME=24h      # Session duration
//	AUTH_SECURE_COOKIES=true       # HTTPS-only cookies
//
// Cookie sessions are protected by CSRF tokens (X-CSRF-Token header, token
// from GET /auth/csrf). Requests authenticated by bearer token skip CSRF.
//
// # Usage
//
//	authService := auth.NewService(users.NewRepository(db), cfg.Auth)
//	authMiddleware := auth.NewMiddleware(authService, nil, cfg.Auth)
//	router.Use(authMiddleware.Handler())
//	books.POST("", authMiddleware.RequireAuth(), controller.Create)
package auth
