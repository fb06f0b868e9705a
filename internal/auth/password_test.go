package auth

import (
	"errors"
	"strings"
	"testing"
)

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{"valid", "secret1", nil},
		{"exactly minimum", "sixsix", nil},
		{"too short", "five5", ErrPasswordTooShort},
		{"empty", "", ErrPasswordTooShort},
		{"72 bytes", strings.Repeat("a", 72), nil},
		{"73 bytes", strings.Repeat("a", 73), ErrPasswordTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password, 4)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("HashPassword() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && hash == tt.password {
				t.Error("hash must differ from the password")
			}
		})
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse", 4)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	if err := CheckPassword("correct horse", hash); err != nil {
		t.Errorf("CheckPassword() with the right password: %v", err)
	}
	if err := CheckPassword("wrong horse", hash); !errors.Is(err, ErrInvalidPassword) {
		t.Errorf("CheckPassword() with the wrong password = %v, want ErrInvalidPassword", err)
	}
}

func TestGenerateAPIToken(t *testing.T) {
	plaintext, hash, err := GenerateAPIToken()
	if err != nil {
		t.Fatalf("GenerateAPIToken() error = %v", err)
	}
	if len(plaintext) != 64 {
		t.Errorf("expected 64 hex characters, got %d", len(plaintext))
	}
	if hash != HashToken(plaintext) {
		t.Error("hash must be the SHA-256 of the plaintext")
	}

	other, _, err := GenerateAPIToken()
	if err != nil {
		t.Fatalf("GenerateAPIToken() error = %v", err)
	}
	if other == plaintext {
		t.Error("tokens must be unique")
	}
}
