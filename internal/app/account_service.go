// Package app holds the application services and business logic.
package app

import (
	"context"
	"errors"

	"bikemarket/internal/domain"

	"go.uber.org/zap"
)

// AccountService handles sign-up and account lookups.
type AccountService struct {
	accounts domain.AccountRepository
	hasher   domain.PasswordHasher
	clock    domain.Clock
	log      *zap.Logger
}

// NewAccountService creates a new account service.
func NewAccountService(accounts domain.AccountRepository, hasher domain.PasswordHasher, clock domain.Clock, log *zap.Logger) *AccountService {
	return &AccountService{
		accounts: accounts,
		hasher:   hasher,
		clock:    clock,
		log:      log,
	}
}

// SignUp registers a new account. It fails with domain.ErrDuplicateEmail when
// the email is already taken.
func (s *AccountService) SignUp(ctx context.Context, in domain.NewAccount) (*domain.Account, error) {
	email := domain.NormalizeEmail(in.Email)
	switch {
	case in.Name == "":
		return nil, domain.NewValidationError(domain.ReasonMissingField, "name")
	case email == "":
		return nil, domain.NewValidationError(domain.ReasonMissingField, "email")
	case in.Password == "":
		return nil, domain.NewValidationError(domain.ReasonMissingField, "password")
	}

	existing, err := s.accounts.GetAccountByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicateEmail
	}

	acct, err := s.accounts.CreateAccount(ctx, domain.Account{
		Name:         in.Name,
		Email:        email,
		PasswordHash: s.hasher.Hash(in.Password),
		Phone:        in.Phone,
		CreatedAt:    s.clock.Now(),
	})
	if err != nil {
		if !errors.Is(err, domain.ErrDuplicateEmail) {
			s.log.Error("create account failed", zap.Error(err))
		}
		return nil, err
	}

	s.log.Info("account created", zap.Int64("account_id", acct.ID))
	return acct, nil
}

// GetByID returns the account, or nil when it does not exist.
func (s *AccountService) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	return s.accounts.GetAccountByID(ctx, id)
}

// Exists reports whether an account with id exists.
func (s *AccountService) Exists(ctx context.Context, id int64) (bool, error) {
	if id <= 0 {
		return false, nil
	}
	return s.accounts.AccountExists(ctx, id)
}

// Count returns the number of registered accounts.
func (s *AccountService) Count(ctx context.Context) (int, error) {
	return s.accounts.CountAccounts(ctx)
}
