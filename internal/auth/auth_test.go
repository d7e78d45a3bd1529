package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func TestVerify_MapsClaims(t *testing.T) {
	v := NewJWTVerifier(testSecret)
	tok := signToken(t, testSecret, jwt.MapClaims{
		"sub":   "user-1",
		"email": "u@example.com",
		"name":  "Uma",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	claims, err := v.Verify(tok)
	if err != nil {
		t.Fatalf("Verify() error: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Errorf("Subject = %q, want user-1", claims.Subject)
	}
	if claims.Email != "u@example.com" {
		t.Errorf("Email = %q, want u@example.com", claims.Email)
	}
	if claims.Name != "Uma" {
		t.Errorf("Name = %q, want Uma", claims.Name)
	}
}

func TestVerify_SubjectFallbacks(t *testing.T) {
	tests := []struct {
		name   string
		claims jwt.MapClaims
		want   string
	}{
		{"uid fallback", jwt.MapClaims{"uid": "u-2"}, "u-2"},
		{"user_id fallback", jwt.MapClaims{"user_id": "u-3"}, "u-3"},
		{"sub wins over uid", jwt.MapClaims{"sub": "u-4", "uid": "other"}, "u-4"},
		{"no subject at all", jwt.MapClaims{"email": "x@example.com"}, ""},
	}
	v := NewJWTVerifier(testSecret)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := v.Verify(signToken(t, testSecret, tt.claims))
			if err != nil {
				t.Fatalf("Verify() error: %v", err)
			}
			if claims.Subject != tt.want {
				t.Errorf("Subject = %q, want %q", claims.Subject, tt.want)
			}
		})
	}
}

func TestVerify_DisplayNameFallback(t *testing.T) {
	v := NewJWTVerifier(testSecret)
	claims, err := v.Verify(signToken(t, testSecret, jwt.MapClaims{
		"sub":         "u-5",
		"displayName": "Display Me",
	}))
	if err != nil {
		t.Fatalf("Verify() error: %v", err)
	}
	if claims.Name != "Display Me" {
		t.Errorf("Name = %q, want displayName fallback", claims.Name)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	v := NewJWTVerifier(testSecret)
	if _, err := v.Verify(signToken(t, "other-secret", jwt.MapClaims{"sub": "u"})); err == nil {
		t.Fatal("expected error for wrong signature")
	}
}

func TestVerify_Expired(t *testing.T) {
	v := NewJWTVerifier(testSecret)
	tok := signToken(t, testSecret, jwt.MapClaims{
		"sub": "u",
		"exp": time.Now().Add(-time.Minute).Unix(),
	})
	if _, err := v.Verify(tok); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestVerify_Garbage(t *testing.T) {
	v := NewJWTVerifier(testSecret)
	if _, err := v.Verify("not-a-token"); err == nil {
		t.Fatal("expected error for malformed token")
	}
}

func TestExtractBearer(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc123", "abc123"},
		{"bearer abc123", "abc123"},
		{"BEARER abc123", "abc123"},
		{"Basic abc123", ""},
		{"Bearer", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ExtractBearer(tt.header); got != tt.want {
			t.Errorf("ExtractBearer(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}
