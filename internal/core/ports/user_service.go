package ports

import (
	"context"

	"github.com/peoplehq/users-api/internal/core/domain"
)

// UserService defines the use-case operations behind the user CRUD surface.
type UserService interface {
	CreateUser(ctx context.Context, user *domain.User) (*domain.User, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	GetAllUsers(ctx context.Context) ([]domain.User, error)
	UpdateUser(ctx context.Context, id string, patch *domain.User) (*domain.User, error)
	DeleteUser(ctx context.Context, id string) error
}
