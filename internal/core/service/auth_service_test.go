package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/peoplehq/users-api/internal/core/domain"
	"github.com/peoplehq/users-api/internal/core/ports"
)

func newTestAuthService(t *testing.T, repo *stubUserRepo) *AuthService {
	t.Helper()
	tokens, err := NewTokenService(testSecret, "users-api", "users-api-clients", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService failed: %v", err)
	}
	return NewAuthService(repo, NewCredentials(), tokens, zerolog.Nop())
}

func registerInput() ports.RegisterInput {
	return ports.RegisterInput{
		FirstName:       "Jane",
		LastName:        "Doe",
		Email:           "jane@example.com",
		Password:        "Secret1",
		ConfirmPassword: "Secret1",
	}
}

func TestAuthService_Register(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(t, repo)

	result, err := svc.Register(context.Background(), registerInput())
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if result.Token == "" {
		t.Fatalf("register must issue a token")
	}
	if result.User.ID == "" || result.User.Email != "jane@example.com" {
		t.Fatalf("unexpected user info: %+v", result.User)
	}
	if result.Expiration <= time.Now().Unix() {
		t.Fatalf("token must expire in the future, got %d", result.Expiration)
	}

	stored := repo.users[result.User.ID]
	if stored == nil {
		t.Fatalf("registered user not persisted")
	}
	if stored.Credential == nil || stored.Credential.PasswordHash == "" || stored.Credential.PasswordSalt == "" {
		t.Fatalf("credential not stored: %+v", stored.Credential)
	}
	if stored.Credential.PasswordHash == "Secret1" {
		t.Fatalf("raw password persisted")
	}
}

func TestAuthService_Register_TokenCarriesSubject(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(t, repo)

	result, err := svc.Register(context.Background(), registerInput())
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	claims := jwt.MapClaims{}
	if _, err := jwt.ParseWithClaims(result.Token, claims, func(*jwt.Token) (any, error) {
		return []byte(testSecret), nil
	}); err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if claims["sub"] != result.User.ID {
		t.Fatalf("token subject %v does not match user %s", claims["sub"], result.User.ID)
	}
}

func TestAuthService_Register_PasswordMismatch(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(t, repo)

	input := registerInput()
	input.ConfirmPassword = "Different1"

	if _, err := svc.Register(context.Background(), input); !errors.Is(err, domain.ErrRegistrationRejected) {
		t.Fatalf("expected ErrRegistrationRejected, got %v", err)
	}
	if len(repo.users) != 0 {
		t.Fatalf("rejected registration must not persist anything")
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(t, repo)

	if _, err := svc.Register(context.Background(), registerInput()); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, err := svc.Register(context.Background(), registerInput()); !errors.Is(err, domain.ErrRegistrationRejected) {
		t.Fatalf("expected ErrRegistrationRejected, got %v", err)
	}
}

func TestAuthService_Register_LostRaceCollapsesToRejection(t *testing.T) {
	// The fast-path check passed but the insert hit the unique index.
	repo := newStubUserRepo()
	repo.createErr = domain.ErrEmailTaken
	svc := newTestAuthService(t, repo)

	if _, err := svc.Register(context.Background(), registerInput()); !errors.Is(err, domain.ErrRegistrationRejected) {
		t.Fatalf("lost insert race must surface as ErrRegistrationRejected, got %v", err)
	}
}

func TestAuthService_Register_InvalidProfile(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(t, repo)

	input := registerInput()
	input.Email = "not-an-email"

	if _, err := svc.Register(context.Background(), input); !errors.Is(err, domain.ErrInvalidUser) {
		t.Fatalf("expected ErrInvalidUser, got %v", err)
	}
}

func TestAuthService_Login(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(t, repo)

	if _, err := svc.Register(context.Background(), registerInput()); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	result, err := svc.Login(context.Background(), "jane@example.com", "Secret1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if result.Token == "" || result.User.Email != "jane@example.com" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if !svc.ValidateToken(result.Token) {
		t.Fatalf("login token must validate")
	}
}

func TestAuthService_Login_UniformFailures(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(t, repo)

	if _, err := svc.Register(context.Background(), registerInput()); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	// A user created without a credential, as the CRUD surface does.
	if _, err := repo.Create(context.Background(), &domain.User{
		FirstName: "John", LastName: "Doe", Email: "john@example.com",
	}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	cases := []struct {
		name     string
		email    string
		password string
	}{
		{"unknown email", "nobody@example.com", "Secret1"},
		{"wrong password", "jane@example.com", "WrongSecret"},
		{"no credential", "john@example.com", "Secret1"},
	}
	for _, tc := range cases {
		if _, err := svc.Login(context.Background(), tc.email, tc.password); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("%s: expected ErrInvalidCredentials, got %v", tc.name, err)
		}
	}
}

func TestAuthService_ValidateToken(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(t, repo)

	if svc.ValidateToken("") || svc.ValidateToken("garbage") {
		t.Fatalf("junk tokens must be invalid")
	}

	result, err := svc.Register(context.Background(), registerInput())
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if !svc.ValidateToken(result.Token) {
		t.Fatalf("issued token must validate")
	}
}
