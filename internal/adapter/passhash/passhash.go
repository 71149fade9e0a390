// Package passhash provides deterministic, fixed-length hex password hashes.
//
// Login looks accounts up by (email, hash), so the hash must be a pure
// function of the password: salted adaptive schemes such as bcrypt do not fit.
package passhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"bikemarket/internal/domain"

	"golang.org/x/crypto/pbkdf2"
)

// Scheme names.
const (
	SchemeSHA256 = "sha256"
	SchemePBKDF2 = "pbkdf2"
)

// SHA256 hashes with a single SHA-256 round and renders uppercase hex, the
// format of existing account rows.
type SHA256 struct{}

// Hash implements domain.PasswordHasher.
func (SHA256) Hash(password string) string {
	sum := sha256.Sum256([]byte(password))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// PBKDF2 stretches the password with PBKDF2-HMAC-SHA256 using a server-wide
// pepper as salt. Output is 64 uppercase hex characters.
type PBKDF2 struct {
	Pepper     []byte
	Iterations int
}

// Hash implements domain.PasswordHasher.
func (p PBKDF2) Hash(password string) string {
	key := pbkdf2.Key([]byte(password), p.Pepper, p.Iterations, sha256.Size, sha256.New)
	return strings.ToUpper(hex.EncodeToString(key))
}

// New returns the hasher for scheme.
func New(scheme, pepper string, iterations int) (domain.PasswordHasher, error) {
	switch scheme {
	case "", SchemeSHA256:
		return SHA256{}, nil
	case SchemePBKDF2:
		if pepper == "" {
			return nil, fmt.Errorf("passhash: %s requires a pepper", SchemePBKDF2)
		}
		if iterations <= 0 {
			iterations = 100_000
		}
		return PBKDF2{Pepper: []byte(pepper), Iterations: iterations}, nil
	default:
		return nil, fmt.Errorf("passhash: unknown scheme %q", scheme)
	}
}
