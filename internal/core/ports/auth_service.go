package ports

import "context"

// RegisterInput carries a registration request into the auth service.
type RegisterInput struct {
	FirstName       string
	LastName        string
	Email           string
	Password        string
	ConfirmPassword string
}

// UserInfo is the public projection of an aggregate returned after
// authentication. Credential material is never part of it.
type UserInfo struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// AuthResult is returned by successful register/login calls.
type AuthResult struct {
	Token      string   `json:"token"`
	Expiration int64    `json:"expiration"` // unix seconds
	User       UserInfo `json:"user"`
}

// AuthService composes credential derivation, persistence and token
// issuance into the register/login flows. Business-flow rejections are
// collapsed into a single sentinel per flow so callers cannot tell which
// sub-condition failed.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	ValidateToken(token string) bool
}
