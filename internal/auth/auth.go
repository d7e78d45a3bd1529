// Package auth verifies bearer credentials and exposes the resulting
// identity claims. The rest of the backend only ever sees Claims; how a
// credential becomes claims is this package's concern alone.
package auth

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the identity extracted from a verified credential. Subject is
// the stable external user id; Email and Name are optional profile hints
// used by the identity binder.
type Claims struct {
	Subject string
	Email   string
	Name    string
}

// Verifier turns a bearer credential into identity claims.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// JWTVerifier verifies HMAC-signed JWTs using a shared secret.
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier returns a Verifier for HS256-signed tokens.
func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

// Verify parses and validates the token, then maps its claims. The subject
// comes from "sub" with "uid" and "user_id" as fallbacks; the display name
// prefers "name" over "displayName".
func (v *JWTVerifier) Verify(tokenStr string) (Claims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("auth: unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return Claims{}, fmt.Errorf("auth: verify token: %w", err)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, fmt.Errorf("auth: verify token: %w", jwt.ErrTokenMalformed)
	}
	return mapToClaims(mapClaims), nil
}

func mapToClaims(m jwt.MapClaims) Claims {
	c := Claims{
		Subject: stringClaim(m, "sub"),
		Email:   stringClaim(m, "email"),
	}
	if c.Subject == "" {
		c.Subject = stringClaim(m, "uid")
	}
	if c.Subject == "" {
		c.Subject = stringClaim(m, "user_id")
	}
	c.Name = stringClaim(m, "name")
	if c.Name == "" {
		c.Name = stringClaim(m, "displayName")
	}
	return c
}

func stringClaim(m jwt.MapClaims, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// ExtractBearer pulls the token out of an Authorization header value.
// Returns "" when the header is missing or not a bearer credential.
func ExtractBearer(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
