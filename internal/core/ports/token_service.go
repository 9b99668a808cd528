package ports

// TokenService issues and validates signed, time-bounded bearer tokens.
type TokenService interface {
	// Issue mints a compact JWT for the subject and returns it together
	// with its expiration instant in unix seconds.
	Issue(subjectID, email, firstName, lastName string) (token string, expiresAt int64, err error)

	// Validate reports whether the token's signature, issuer, audience
	// and expiry all check out, with zero clock-skew leeway. It never
	// returns an error; any failure is simply false.
	Validate(token string) bool
}

// CredentialManager derives and verifies password hashes.
type CredentialManager interface {
	// Derive returns a freshly salted hash of the password; both values
	// are base64 strings safe to persist.
	Derive(password string) (hash, salt string, err error)

	// Verify recomputes the hash with the stored salt and compares in
	// constant time. Malformed stored values yield false, not an error.
	Verify(password, hash, salt string) bool
}
