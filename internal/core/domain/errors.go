package domain

import "errors"

var (
	// ErrInvalidUser marks field-level or cross-field validation failures.
	// Wrapped errors carry the first violation message.
	ErrInvalidUser = errors.New("invalid user")

	// ErrEmailTaken signals an email uniqueness collision.
	ErrEmailTaken = errors.New("email already in use")

	// ErrUserNotFound signals that no aggregate has the requested id.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidCredentials is the uniform login failure. Unknown email,
	// missing credential and wrong password all collapse into it so the
	// API cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrRegistrationRejected is the uniform registration failure for
	// business-flow rejections (password mismatch, email already in use).
	ErrRegistrationRejected = errors.New("registration rejected")
)
