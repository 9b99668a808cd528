package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/peoplehq/users-api/internal/core/domain"
	"github.com/peoplehq/users-api/internal/core/ports"
	"github.com/peoplehq/users-api/internal/core/validation"
)

// AuthService composes the credential manager, token service and user
// repository into the register/login flows. All business-flow rejections
// collapse into one sentinel per flow so a caller probing the API cannot
// tell "unknown email" from "wrong password".
type AuthService struct {
	repo   ports.UserRepository
	creds  ports.CredentialManager
	tokens ports.TokenService
	logger zerolog.Logger
}

func NewAuthService(repo ports.UserRepository, creds ports.CredentialManager, tokens ports.TokenService, logger zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, creds: creds, tokens: tokens, logger: logger}
}

// Register creates the aggregate and issues a token for it. Password
// confirmation mismatch and an already-registered email both yield
// ErrRegistrationRejected with no further detail.
func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*ports.AuthResult, error) {
	candidate := &domain.User{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
	}
	if err := firstViolation(validation.ValidateUser(candidate)); err != nil {
		return nil, err
	}

	if input.Password != input.ConfirmPassword {
		s.logger.Warn().Str("email", input.Email).Msg("registration rejected: password confirmation mismatch")
		return nil, domain.ErrRegistrationRejected
	}

	taken, err := s.repo.EmailInUse(ctx, input.Email, "")
	if err != nil {
		return nil, err
	}
	if taken {
		s.logger.Warn().Str("email", input.Email).Msg("registration rejected: email already registered")
		return nil, domain.ErrRegistrationRejected
	}

	hash, salt, err := s.creds.Derive(input.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	candidate.Credential = &domain.Credential{PasswordHash: hash, PasswordSalt: salt}
	candidate.CreatedAt = now
	candidate.UpdatedAt = now

	created, err := s.repo.Create(ctx, candidate)
	if err != nil {
		// Lost the check-then-insert race: the unique index is the
		// authoritative signal, collapsed like the fast-path rejection.
		if errors.Is(err, domain.ErrEmailTaken) {
			s.logger.Warn().Str("email", input.Email).Msg("registration rejected: email already registered")
			return nil, domain.ErrRegistrationRejected
		}
		return nil, err
	}

	s.logger.Info().Str("user_id", created.ID).Str("email", created.Email).Msg("user registered")
	return s.authResult(created)
}

// Login verifies the credential and issues a token. Unknown email, a user
// without a credential and a wrong password are indistinguishable to the
// caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.logger.Warn().Str("email", email).Msg("login failed: unknown email")
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if user.Credential == nil {
		s.logger.Warn().Str("email", email).Msg("login failed: user has no credential")
		return nil, domain.ErrInvalidCredentials
	}

	if !s.creds.Verify(password, user.Credential.PasswordHash, user.Credential.PasswordSalt) {
		s.logger.Warn().Str("email", email).Msg("login failed: password verification failed")
		return nil, domain.ErrInvalidCredentials
	}

	return s.authResult(user)
}

// ValidateToken delegates directly to the token service.
func (s *AuthService) ValidateToken(token string) bool {
	return s.tokens.Validate(token)
}

func (s *AuthService) authResult(user *domain.User) (*ports.AuthResult, error) {
	token, expiresAt, err := s.tokens.Issue(user.ID, user.Email, user.FirstName, user.LastName)
	if err != nil {
		return nil, err
	}
	return &ports.AuthResult{
		Token:      token,
		Expiration: expiresAt,
		User: ports.UserInfo{
			ID:        user.ID,
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
		},
	}, nil
}
