package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mrlokans/catalog/internal/config"
	"github.com/mrlokans/catalog/internal/database/users"
	"github.com/mrlokans/catalog/internal/testutil"
)

func setupService(t *testing.T, cfg config.Auth) *Service {
	t.Helper()
	if cfg.Mode == "" {
		cfg.Mode = config.AuthModeLocal
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 4 // Low cost for faster tests
	}
	return NewService(users.NewRepository(testutil.OpenDB(t)), cfg)
}

func TestService_Register(t *testing.T) {
	svc := setupService(t, config.Auth{})
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{"valid user", "reader", "secret1", nil},
		{"missing username", "  ", "secret1", ErrUsernameRequired},
		{"missing password", "writer", "", ErrPasswordRequired},
		{"short password", "writer", "12345", ErrPasswordTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := svc.Register(ctx, tt.username, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Register() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil {
				if user.ID == 0 {
					t.Error("expected a persisted user")
				}
				if user.PasswordHash == tt.password {
					t.Error("password must be stored hashed")
				}
			}
		})
	}
}

func TestService_Register_Duplicate(t *testing.T) {
	svc := setupService(t, config.Auth{})
	ctx := context.Background()

	if _, err := svc.Register(ctx, "reader", "secret1"); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}
	if _, err := svc.Register(ctx, "reader", "another1"); !errors.Is(err, ErrUserExists) {
		t.Errorf("second Register() error = %v, want ErrUserExists", err)
	}
}

func TestService_Authenticate(t *testing.T) {
	svc := setupService(t, config.Auth{})
	ctx := context.Background()

	if _, err := svc.Register(ctx, "reader", "secret1"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	user, err := svc.Authenticate(ctx, "reader", "secret1")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if user.LastLoginAt == nil {
		t.Error("expected last login to be recorded")
	}

	if _, err := svc.Authenticate(ctx, "reader", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Authenticate(ctx, "nobody", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user error = %v, want ErrInvalidCredentials", err)
	}
}

func TestService_TokenLifecycle(t *testing.T) {
	svc := setupService(t, config.Auth{TokenExpiry: time.Hour})
	ctx := context.Background()

	user, err := svc.Register(ctx, "reader", "secret1")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	token, err := svc.IssueToken(ctx, user.ID)
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}

	got, err := svc.ValidateToken(ctx, token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("ValidateToken() user = %d, want %d", got.ID, user.ID)
	}

	if _, err := svc.ValidateToken(ctx, "not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("unknown token error = %v, want ErrInvalidToken", err)
	}
	if _, err := svc.ValidateToken(ctx, ""); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("empty token error = %v, want ErrInvalidToken", err)
	}

	// A new token replaces the old one
	newToken, err := svc.IssueToken(ctx, user.ID)
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}
	if _, err := svc.ValidateToken(ctx, token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("replaced token error = %v, want ErrInvalidToken", err)
	}

	if err := svc.RevokeToken(ctx, user.ID); err != nil {
		t.Fatalf("RevokeToken() error = %v", err)
	}
	if _, err := svc.ValidateToken(ctx, newToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("revoked token error = %v, want ErrInvalidToken", err)
	}
}

func TestService_ValidateToken_Expired(t *testing.T) {
	svc := setupService(t, config.Auth{TokenExpiry: time.Nanosecond})
	ctx := context.Background()

	user, err := svc.Register(ctx, "reader", "secret1")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	token, err := svc.IssueToken(ctx, user.ID)
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}
	time.Sleep(time.Millisecond)

	if _, err := svc.ValidateToken(ctx, token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("ValidateToken() error = %v, want ErrTokenExpired", err)
	}
}

func TestService_IssueToken_UnknownUser(t *testing.T) {
	svc := setupService(t, config.Auth{})

	if _, err := svc.IssueToken(context.Background(), 999); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("IssueToken() error = %v, want ErrUserNotFound", err)
	}
}

func TestService_HasUsers(t *testing.T) {
	svc := setupService(t, config.Auth{})
	ctx := context.Background()

	has, err := svc.HasUsers(ctx)
	if err != nil || has {
		t.Fatalf("HasUsers() = %v, %v; want false, nil", has, err)
	}

	if _, err := svc.Register(ctx, "reader", "secret1"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	has, err = svc.HasUsers(ctx)
	if err != nil || !has {
		t.Errorf("HasUsers() = %v, %v; want true, nil", has, err)
	}
}

func TestService_IsAuthEnabled(t *testing.T) {
	if !setupService(t, config.Auth{Mode: config.AuthModeLocal}).IsAuthEnabled() {
		t.Error("local mode must enable auth")
	}
	if setupService(t, config.Auth{Mode: config.AuthModeNone}).IsAuthEnabled() {
		t.Error("none mode must disable auth")
	}
}
