package service

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltBytes = 16
	hashBytes = 64
	// kdfRounds follows current OWASP guidance for PBKDF2-SHA512. The
	// derivation is deliberately slow; callers run it off the hot path.
	kdfRounds = 210_000
)

// Credentials derives and verifies password hashes with PBKDF2-SHA512,
// using a per-credential random salt. Both outputs travel as base64.
type Credentials struct{}

func NewCredentials() *Credentials {
	return &Credentials{}
}

// Derive generates a fresh salt and returns (hash, salt) as base64
// strings. The raw password is never stored or logged.
func (Credentials) Derive(password string) (hash, salt string, err error) {
	rawSalt := make([]byte, saltBytes)
	if _, err := rand.Read(rawSalt); err != nil {
		return "", "", fmt.Errorf("generate salt: %w", err)
	}

	key := pbkdf2.Key([]byte(password), rawSalt, kdfRounds, hashBytes, sha512.New)
	return base64.StdEncoding.EncodeToString(key),
		base64.StdEncoding.EncodeToString(rawSalt),
		nil
}

// Verify recomputes the hash with the stored salt and compares in constant
// time. Malformed base64 in either stored value is a verification failure,
// not an error.
func (Credentials) Verify(password, hash, salt string) bool {
	rawSalt, err := base64.StdEncoding.DecodeString(salt)
	if err != nil {
		return false
	}
	rawHash, err := base64.StdEncoding.DecodeString(hash)
	if err != nil {
		return false
	}

	computed := pbkdf2.Key([]byte(password), rawSalt, kdfRounds, hashBytes, sha512.New)
	return subtle.ConstantTimeCompare(computed, rawHash) == 1
}
