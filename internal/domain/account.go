// Package domain contains the core business entities and interfaces.
package domain

import (
	"context"
	"strings"
	"time"
)

// Account represents a registered marketplace user.
type Account struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Phone        string    `json:"phone"`
	CreatedAt    time.Time `json:"createdAt"`
}

// NewAccount carries the sign-up input.
type NewAccount struct {
	Name     string
	Email    string
	Password string
	Phone    string
}

// NormalizeEmail trims surrounding whitespace. Emails are otherwise compared
// exactly as entered.
func NormalizeEmail(email string) string {
	return strings.TrimSpace(email)
}

// AccountRepository defines the port for account persistence operations.
type AccountRepository interface {
	CreateAccount(ctx context.Context, a Account) (*Account, error)
	GetAccountByID(ctx context.Context, id int64) (*Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*Account, error)
	AccountExists(ctx context.Context, id int64) (bool, error)
	CountAccounts(ctx context.Context) (int, error)
}

// PasswordHasher is a deterministic, fixed-length hex one-way hash.
type PasswordHasher interface {
	Hash(password string) string
}
