package ports

import (
	"context"

	"github.com/peoplehq/users-api/internal/core/domain"
)

// UserRepository is the persistence boundary for user aggregates. The
// storage layer owns the authoritative email uniqueness guarantee (a
// unique index) and re-checks the employment date invariant on every
// write; callers treat its Conflict/InvalidInput signals as final.
type UserRepository interface {
	// Create persists a new aggregate and returns it with an assigned id.
	// Returns domain.ErrEmailTaken when the email is already in use.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)

	// FindByID returns the aggregate with Address and Employments fully
	// materialized, or domain.ErrUserNotFound.
	FindByID(ctx context.Context, id string) (*domain.User, error)

	// FindByEmail matches the email exactly (case-sensitive) or returns
	// domain.ErrUserNotFound.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)

	// FindAll returns every aggregate; an empty slice when none exist.
	FindAll(ctx context.Context) ([]domain.User, error)

	// EmailInUse reports whether another aggregate already holds the
	// email. excludeID is skipped so an update does not collide with
	// itself; pass "" at create time.
	EmailInUse(ctx context.Context, email, excludeID string) (bool, error)

	// Update replaces the stored aggregate with the given (already
	// merged) value. Returns domain.ErrUserNotFound or
	// domain.ErrEmailTaken.
	Update(ctx context.Context, user *domain.User) (*domain.User, error)

	// Delete removes the aggregate and its owned Address/Employments, or
	// returns domain.ErrUserNotFound.
	Delete(ctx context.Context, id string) error
}
