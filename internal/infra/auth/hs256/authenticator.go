// Package hs256 is the shared-secret token verifier used in development
// and self-hosted deployments where no OIDC provider exists.
package hs256

import (
	"context"
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/theorem6/WISPTools-sub003/internal/domain"
)

type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret string) (*Authenticator, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("HS256_SECRET is required")
	}
	return &Authenticator{secret: []byte(secret)}, nil
}

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func (a *Authenticator) Verify(_ context.Context, token string) (domain.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Identity{}, domain.ErrUnauthenticated
	}
	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !parsed.Valid {
		return domain.Identity{}, domain.ErrUnauthenticated
	}
	c, ok := parsed.Claims.(*claims)
	if !ok || c.Subject == "" {
		return domain.Identity{}, domain.ErrUnauthenticated
	}
	return domain.Identity{
		UserID: c.Subject,
		Email:  strings.ToLower(strings.TrimSpace(c.Email)),
	}, nil
}
