package auth

import (
	"errors"
	"testing"
	"time"
)

func TestJWTRoundTrip(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Minute)

	token, expiresAt, err := manager.GenerateAccessToken(42, "creator")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if token == "" || expiresAt.IsZero() {
		t.Fatal("empty token or expiry")
	}

	claims, err := manager.ParseAccessToken(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != 42 || claims.Role != "creator" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestJWTExpired(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Minute)

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	manager.now = func() time.Time { return base }

	token, _, err := manager.GenerateAccessToken(1, "buyer")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	manager.now = func() time.Time { return base.Add(2 * time.Minute) }
	if _, err := manager.ParseAccessToken(token); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for expired token, got %v", err)
	}
}

func TestJWTWrongSecret(t *testing.T) {
	issuer := NewJWTManager("secret-a", time.Minute)
	verifier := NewJWTManager("secret-b", time.Minute)

	token, _, err := issuer.GenerateAccessToken(1, "buyer")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	if _, err := verifier.ParseAccessToken(token); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for wrong secret, got %v", err)
	}
}

func TestJWTEmptyToken(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Minute)
	if _, err := manager.ParseAccessToken("  "); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
