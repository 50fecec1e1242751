// ABOUTME: Password sealing and verification for party credentials
// ABOUTME: Plaintext exact-match by default, bcrypt as a drop-in stronger scheme

package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Password schemes accepted by ForScheme.
const (
	SchemePlaintext = "plaintext"
	SchemeBcrypt    = "bcrypt"
)

// ErrUnknownScheme is returned by ForScheme for unsupported scheme names.
var ErrUnknownScheme = errors.New("unknown password scheme")

// CredentialChecker turns a password into its stored form and checks
// supplied passwords against it.
type CredentialChecker interface {
	Seal(password string) (string, error)
	Match(stored, supplied string) bool
}

// Plaintext stores passwords as-is and compares them exactly (case-sensitive).
type Plaintext struct{}

// Seal returns the password unchanged.
func (Plaintext) Seal(password string) (string, error) {
	return password, nil
}

// Match reports whether supplied equals stored, in constant time.
func (Plaintext) Match(stored, supplied string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1
}

// Bcrypt stores bcrypt hashes. A zero Cost uses bcrypt.DefaultCost.
type Bcrypt struct {
	Cost int
}

// Seal hashes the password.
func (b Bcrypt) Seal(password string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// Match reports whether supplied hashes to stored.
func (Bcrypt) Match(stored, supplied string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(supplied)) == nil
}

// ForScheme returns the checker for a configured scheme name.
// An empty name selects plaintext.
func ForScheme(name string) (CredentialChecker, error) {
	switch name {
	case "", SchemePlaintext:
		return Plaintext{}, nil
	case SchemeBcrypt:
		return Bcrypt{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, name)
	}
}
