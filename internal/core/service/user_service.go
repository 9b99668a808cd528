package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/peoplehq/users-api/internal/core/domain"
	"github.com/peoplehq/users-api/internal/core/ports"
	"github.com/peoplehq/users-api/internal/core/validation"
)

// UserService implements the CRUD surface over the user aggregate. It owns
// the merge semantics for partial updates and the fast-path uniqueness
// check; the repository's unique index remains the authoritative Conflict
// signal for the race the fast path cannot close.
type UserService struct {
	repo   ports.UserRepository
	logger zerolog.Logger
}

func NewUserService(repo ports.UserRepository, logger zerolog.Logger) *UserService {
	return &UserService{repo: repo, logger: logger}
}

// CreateUser validates the aggregate and persists it. The email existence
// check here is an optimization; two concurrent creates can both pass it,
// and the loser surfaces the repository's ErrEmailTaken instead.
func (s *UserService) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := firstViolation(validation.ValidateUser(user)); err != nil {
		return nil, err
	}

	taken, err := s.repo.EmailInUse(ctx, user.Email, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.ErrEmailTaken
	}

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", created.ID).Str("email", created.Email).Msg("user created")
	return created, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *UserService) GetAllUsers(ctx context.Context) ([]domain.User, error) {
	return s.repo.FindAll(ctx)
}

// UpdateUser merges the patch onto the stored aggregate. Scalars always
// come from the patch; a nil Address and an empty Employments list both
// mean "leave mine alone" (see domain.MergeUser for the asymmetry).
func (s *UserService) UpdateUser(ctx context.Context, id string, patch *domain.User) (*domain.User, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := firstViolation(validation.ValidateUser(patch)); err != nil {
		return nil, err
	}

	taken, err := s.repo.EmailInUse(ctx, patch.Email, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.ErrEmailTaken
	}

	merged := domain.MergeUser(existing, patch)
	merged.UpdatedAt = time.Now().UTC()

	updated, err := s.repo.Update(ctx, merged)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", updated.ID).Msg("user updated")
	return updated, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("user_id", id).Msg("user deleted")
	return nil
}

// firstViolation converts an ordered violation list into the InvalidInput
// error surfaced to callers. All violations were collected; by convention
// only the first travels up.
func firstViolation(violations []validation.Violation) error {
	if len(violations) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalidUser, violations[0].Message)
}
