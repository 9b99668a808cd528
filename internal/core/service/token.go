package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

const minSecretBytes = 32

var ErrWeakSecret = errors.New("jwt secret must be at least 32 bytes")

// tokenClaims is the full claim set carried by issued tokens.
type tokenClaims struct {
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	jwt.RegisteredClaims
}

// TokenService mints and validates HS256 JWTs. Its configuration is fixed
// at construction and never mutated, so a single instance is safe to share
// across requests.
type TokenService struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
}

// NewTokenService rejects secrets shorter than 32 bytes. A non-positive
// ttl falls back to one hour.
func NewTokenService(secret, issuer, audience string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < minSecretBytes {
		return nil, ErrWeakSecret
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenService{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		ttl:      ttl,
	}, nil
}

// Issue signs a compact JWT for the subject and returns it with the
// expiration instant in unix seconds. Every token carries a unique ULID
// as its jti.
func (s *TokenService) Issue(subjectID, email, firstName, lastName string) (string, int64, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(s.ttl)

	claims := tokenClaims{
		Email:      email,
		GivenName:  firstName,
		FamilyName: lastName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        ulid.Make().String(),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", 0, err
	}
	return token, expiresAt.Unix(), nil
}

// Validate checks signature, issuer, audience and expiry with zero
// clock-skew leeway. Any parse or verification failure is simply false;
// an empty token is false without parsing.
func (s *TokenService) Validate(token string) bool {
	if token == "" {
		return false
	}

	parsed, err := jwt.Parse(token,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
	)
	return err == nil && parsed.Valid
}
