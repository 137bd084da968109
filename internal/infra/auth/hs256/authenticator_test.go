package hs256

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/theorem6/WISPTools-sub003/internal/domain"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	out, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return out
}

func TestVerify(t *testing.T) {
	auth, err := NewAuthenticator(testSecret)
	if err != nil {
		t.Fatal(err)
	}
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":   "user-1",
		"email": "Tech@WISP.example",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	identity, err := auth.Verify(context.Background(), token)
	if err != nil {
		t.Fatal(err)
	}
	if identity.UserID != "user-1" {
		t.Fatalf("user id = %s", identity.UserID)
	}
	if identity.Email != "tech@wisp.example" {
		t.Fatalf("email not normalized: %s", identity.Email)
	}
}

func TestVerifyRejections(t *testing.T) {
	auth, err := NewAuthenticator(testSecret)
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"garbage token", "not.a.jwt"},
		{"wrong secret", signToken(t, "other-secret", jwt.MapClaims{
			"sub": "user-1", "exp": time.Now().Add(time.Hour).Unix(),
		})},
		{"expired", signToken(t, testSecret, jwt.MapClaims{
			"sub": "user-1", "exp": time.Now().Add(-time.Hour).Unix(),
		})},
		{"missing subject", signToken(t, testSecret, jwt.MapClaims{
			"exp": time.Now().Add(time.Hour).Unix(),
		})},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := auth.Verify(context.Background(), tc.token); !errors.Is(err, domain.ErrUnauthenticated) {
				t.Fatalf("err = %v, want unauthenticated", err)
			}
		})
	}
}

func TestNewAuthenticatorRequiresSecret(t *testing.T) {
	if _, err := NewAuthenticator("  "); err == nil {
		t.Fatal("expected error for blank secret")
	}
}
