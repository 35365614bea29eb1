package helpers

import (
	"testing"
	"time"
)

func TestJWTGenerateAndParse(t *testing.T) {
	m := NewJWTManager("testsecret", time.Hour)

	token, exp, err := m.GenerateToken("user-123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token == "" {
		t.Fatal("empty token")
	}
	if until := time.Until(exp); until < 59*time.Minute || until > time.Hour {
		t.Errorf("expiry %v not within the configured TTL", until)
	}

	claims, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.UserID != "user-123" {
		t.Errorf("expected subject user-123, got %q", claims.UserID)
	}
}

func TestJWTParseExpired(t *testing.T) {
	m := NewJWTManager("testsecret", -time.Minute)
	token, _, err := m.GenerateToken("user-123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := m.ParseToken(token); err == nil {
		t.Error("expected error for expired token")
	}
}

func TestJWTParseWrongSecret(t *testing.T) {
	issuer := NewJWTManager("secret-a", time.Hour)
	verifier := NewJWTManager("secret-b", time.Hour)

	token, _, err := issuer.GenerateToken("user-123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := verifier.ParseToken(token); err == nil {
		t.Error("expected error for token signed with a different secret")
	}
}

func TestJWTParseGarbage(t *testing.T) {
	m := NewJWTManager("testsecret", time.Hour)
	if _, err := m.ParseToken("not-a-jwt"); err == nil {
		t.Error("expected error for malformed token")
	}
}
