package app

import (
	"context"
	"errors"
	"testing"

	"bikemarket/internal/adapter/memory"
	"bikemarket/internal/domain"

	"go.uber.org/zap"
)

func newAccountService(db *memory.DB) *AccountService {
	return NewAccountService(db, plainHasher{}, steppingClock(), zap.NewNop())
}

func TestAccountService_SignUp(t *testing.T) {
	ctx := context.Background()
	db := memory.New()
	svc := newAccountService(db)

	acct, err := svc.SignUp(ctx, domain.NewAccount{Name: "Ann", Email: " ann@example.com ", Password: "secret", Phone: "555"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if acct.ID == 0 {
		t.Error("expected assigned ID")
	}
	if acct.Email != "ann@example.com" {
		t.Errorf("expected trimmed email, got %q", acct.Email)
	}
	if acct.PasswordHash != "H(secret)" {
		t.Errorf("expected hashed password, got %q", acct.PasswordHash)
	}
	if acct.CreatedAt.IsZero() {
		t.Error("expected creation time")
	}

	ok, err := svc.Exists(ctx, acct.ID)
	if err != nil || !ok {
		t.Errorf("expected account to exist, got %v, %v", ok, err)
	}
}

func TestAccountService_SignUp_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	db := memory.New()
	svc := newAccountService(db)

	if _, err := svc.SignUp(ctx, domain.NewAccount{Name: "Ann", Email: "ann@example.com", Password: "a"}); err != nil {
		t.Fatalf("first sign-up: %v", err)
	}
	_, err := svc.SignUp(ctx, domain.NewAccount{Name: "Imposter", Email: " ann@example.com", Password: "b"})
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}

	n, err := svc.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 account, got %d", n)
	}
}

func TestAccountService_SignUp_EmailIsCaseSensitive(t *testing.T) {
	ctx := context.Background()
	svc := newAccountService(memory.New())

	first, err := svc.SignUp(ctx, domain.NewAccount{Name: "Ann", Email: "ann@example.com", Password: "a"})
	if err != nil {
		t.Fatalf("first sign-up: %v", err)
	}
	second, err := svc.SignUp(ctx, domain.NewAccount{Name: "Ann", Email: "ANN@example.com", Password: "b"})
	if err != nil {
		t.Fatalf("expected differently cased email to register, got %v", err)
	}
	if first.ID == second.ID {
		t.Errorf("expected distinct accounts, both got id %d", first.ID)
	}
}

func TestAccountService_SignUp_MissingFields(t *testing.T) {
	svc := newAccountService(memory.New())
	tests := []struct {
		name  string
		in    domain.NewAccount
		field string
	}{
		{"no name", domain.NewAccount{Email: "a@b.c", Password: "x"}, "name"},
		{"no email", domain.NewAccount{Name: "A", Email: "  ", Password: "x"}, "email"},
		{"no password", domain.NewAccount{Name: "A", Email: "a@b.c"}, "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SignUp(context.Background(), tt.in)
			var ve *domain.ValidationError
			if !errors.As(err, &ve) || ve.Field != tt.field {
				t.Errorf("expected validation error on %s, got %v", tt.field, err)
			}
		})
	}
}

func TestAccountService_SignUp_StoreUnavailable(t *testing.T) {
	storeErr := domain.StoreError("get_account_by_email", errors.New("connection refused"))
	accounts := &mockAccountRepo{
		getByEmailFn: func(ctx context.Context, email string) (*domain.Account, error) {
			return nil, storeErr
		},
	}
	svc := NewAccountService(accounts, plainHasher{}, steppingClock(), zap.NewNop())

	_, err := svc.SignUp(context.Background(), domain.NewAccount{Name: "A", Email: "a@b.c", Password: "x"})
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestAccountService_Exists_NonPositiveID(t *testing.T) {
	svc := newAccountService(memory.New())
	ok, err := svc.Exists(context.Background(), 0)
	if err != nil || ok {
		t.Errorf("expected false, nil; got %v, %v", ok, err)
	}
}
