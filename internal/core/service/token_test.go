package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "0123456789abcdef0123456789abcdef" // 32 bytes

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	svc, err := NewTokenService(testSecret, "users-api", "users-api-clients", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService failed: %v", err)
	}
	return svc
}

func TestNewTokenService_RejectsWeakSecret(t *testing.T) {
	if _, err := NewTokenService("short", "iss", "aud", time.Hour); !errors.Is(err, ErrWeakSecret) {
		t.Fatalf("expected ErrWeakSecret, got %v", err)
	}
}

func TestTokenService_IssueAndValidate(t *testing.T) {
	svc := newTestTokenService(t)

	token, expiresAt, err := svc.Issue("u1", "jane@x.com", "Jane", "Doe")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Fatalf("expected compact JWT with three segments, got %q", token)
	}

	now := time.Now().Unix()
	if expiresAt < now+3500 || expiresAt > now+3700 {
		t.Fatalf("expiration out of range: %d (now %d)", expiresAt, now)
	}

	if !svc.Validate(token) {
		t.Fatalf("freshly issued token must validate")
	}
}

func TestTokenService_ClaimSet(t *testing.T) {
	svc := newTestTokenService(t)

	token, _, err := svc.Issue("u1", "jane@x.com", "Jane", "Doe")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	claims := jwt.MapClaims{}
	if _, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte(testSecret), nil
	}); err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if claims["sub"] != "u1" || claims["email"] != "jane@x.com" {
		t.Fatalf("subject claims wrong: %+v", claims)
	}
	if claims["given_name"] != "Jane" || claims["family_name"] != "Doe" {
		t.Fatalf("name claims wrong: %+v", claims)
	}
	if claims["iss"] != "users-api" {
		t.Fatalf("issuer claim wrong: %+v", claims)
	}
	jti, _ := claims["jti"].(string)
	if jti == "" {
		t.Fatalf("jti missing: %+v", claims)
	}
}

func TestTokenService_JTIIsUnique(t *testing.T) {
	svc := newTestTokenService(t)

	jtis := make(map[string]bool)
	for i := 0; i < 5; i++ {
		token, _, err := svc.Issue("u1", "jane@x.com", "Jane", "Doe")
		if err != nil {
			t.Fatalf("issue failed: %v", err)
		}
		claims := jwt.MapClaims{}
		if _, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
			return []byte(testSecret), nil
		}); err != nil {
			t.Fatalf("parse failed: %v", err)
		}
		jti := claims["jti"].(string)
		if jtis[jti] {
			t.Fatalf("duplicate jti %q", jti)
		}
		jtis[jti] = true
	}
}

func TestTokenService_ValidateRejections(t *testing.T) {
	svc := newTestTokenService(t)

	if svc.Validate("") {
		t.Fatalf("empty token must be invalid")
	}
	if svc.Validate("not.a.jwt") {
		t.Fatalf("garbage token must be invalid")
	}

	// Signed with a different secret.
	other, err := NewTokenService(strings.Repeat("x", 32), "users-api", "users-api-clients", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService failed: %v", err)
	}
	token, _, _ := other.Issue("u1", "jane@x.com", "Jane", "Doe")
	if svc.Validate(token) {
		t.Fatalf("token signed with a different secret must be invalid")
	}

	// Wrong issuer.
	wrongIss, _ := NewTokenService(testSecret, "someone-else", "users-api-clients", time.Hour)
	token, _, _ = wrongIss.Issue("u1", "jane@x.com", "Jane", "Doe")
	if svc.Validate(token) {
		t.Fatalf("token with a different issuer must be invalid")
	}

	// Wrong audience.
	wrongAud, _ := NewTokenService(testSecret, "users-api", "other-clients", time.Hour)
	token, _, _ = wrongAud.Issue("u1", "jane@x.com", "Jane", "Doe")
	if svc.Validate(token) {
		t.Fatalf("token with a different audience must be invalid")
	}
}

func TestTokenService_ExpiredToken(t *testing.T) {
	svc := newTestTokenService(t)

	// Hand-sign a token that expired a minute ago, with otherwise valid
	// claims. Zero leeway means it must already be rejected.
	claims := tokenClaims{
		Email: "jane@x.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			Issuer:    "users-api",
			Audience:  jwt.ClaimStrings{"users-api-clients"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			ID:        "expired-token",
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	if svc.Validate(token) {
		t.Fatalf("expired token must be invalid")
	}
}

func TestTokenService_MissingExpiryRejected(t *testing.T) {
	svc := newTestTokenService(t)

	claims := jwt.MapClaims{
		"sub": "u1",
		"iss": "users-api",
		"aud": "users-api-clients",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	if svc.Validate(token) {
		t.Fatalf("token without exp must be invalid")
	}
}

func TestTokenService_RejectsForeignAlgorithm(t *testing.T) {
	svc := newTestTokenService(t)

	claims := jwt.MapClaims{
		"sub": "u1",
		"iss": "users-api",
		"aud": "users-api-clients",
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	if svc.Validate(token) {
		t.Fatalf("token signed with HS512 must be rejected by the HS256-only validator")
	}
}
