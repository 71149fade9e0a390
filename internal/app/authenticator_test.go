package app

import (
	"context"
	"errors"
	"testing"

	"bikemarket/internal/adapter/memory"
	"bikemarket/internal/domain"

	"go.uber.org/zap"
)

func newSession(t *testing.T) (*Authenticator, *domain.Account) {
	t.Helper()
	db := memory.New()
	acct, err := newAccountService(db).SignUp(context.Background(),
		domain.NewAccount{Name: "Ann", Email: "ann@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("sign-up: %v", err)
	}
	return NewAuthenticator(db, plainHasher{}, zap.NewNop()), acct
}

func TestAuthenticator_Login_Success(t *testing.T) {
	a, acct := newSession(t)
	updates, cancel := a.Subscribe()
	defer cancel()

	id, err := a.Login(context.Background(), "ann@example.com", "pw")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if id.AccountID != acct.ID {
		t.Errorf("expected account %d, got %d", acct.ID, id.AccountID)
	}

	st := a.State()
	if !st.Authenticated || st.Identity != id {
		t.Errorf("expected authenticated state, got %+v", st)
	}
	if got := <-updates; got != st {
		t.Errorf("expected notification %+v, got %+v", st, got)
	}
}

func TestAuthenticator_Login_Failure(t *testing.T) {
	tests := []struct {
		name, email, password string
	}{
		{"wrong password", "ann@example.com", "nope"},
		{"unknown email", "bob@example.com", "pw"},
		{"email in other case", "Ann@Example.com", "pw"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _ := newSession(t)
			updates, cancel := a.Subscribe()
			defer cancel()

			_, err := a.Login(context.Background(), tt.email, tt.password)
			if !errors.Is(err, domain.ErrAuthenticationFailed) {
				t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
			}
			if a.State() != Anonymous {
				t.Errorf("expected Anonymous, got %+v", a.State())
			}
			select {
			case st := <-updates:
				t.Errorf("unexpected notification %+v", st)
			default:
			}
		})
	}
}

func TestAuthenticator_Login_FailureKeepsPreviousIdentity(t *testing.T) {
	a, acct := newSession(t)
	if _, err := a.Login(context.Background(), "ann@example.com", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := a.Login(context.Background(), "ann@example.com", "bad"); err == nil {
		t.Fatal("expected failure")
	}
	if id, ok := a.Identity(); !ok || id.AccountID != acct.ID {
		t.Errorf("expected identity to be kept, got %+v %v", id, ok)
	}
}

func TestAuthenticator_Login_StoreUnavailable(t *testing.T) {
	accounts := &mockAccountRepo{
		getByEmailFn: func(ctx context.Context, email string) (*domain.Account, error) {
			return nil, errors.New("dial tcp: connection refused")
		},
	}
	a := NewAuthenticator(accounts, plainHasher{}, zap.NewNop())

	_, err := a.Login(context.Background(), "ann@example.com", "pw")
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable, got %v", err)
	}
	if errors.Is(err, domain.ErrAuthenticationFailed) {
		t.Error("store failure must not look like bad credentials")
	}
}

func TestAuthenticator_Logout_AlwaysNotifies(t *testing.T) {
	a, _ := newSession(t)
	updates, cancel := a.Subscribe()
	defer cancel()

	a.Logout()
	if got := <-updates; got != Anonymous {
		t.Errorf("expected Anonymous notification, got %+v", got)
	}
}

func TestAuthenticator_SubscribeKeepsLatest(t *testing.T) {
	a, _ := newSession(t)
	updates, cancel := a.Subscribe()

	if _, err := a.Login(context.Background(), "ann@example.com", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	a.Logout()

	if got := <-updates; got != Anonymous {
		t.Errorf("expected latest state Anonymous, got %+v", got)
	}

	cancel()
	cancel()
	if _, ok := <-updates; ok {
		t.Error("expected channel to be closed after cancel")
	}
	a.Logout()
}

func TestAuthenticator_Context(t *testing.T) {
	a, acct := newSession(t)
	ctx := context.Background()

	if _, ok := domain.IdentityFrom(a.Context(ctx)); ok {
		t.Error("anonymous session must not carry an identity")
	}
	if _, err := a.Login(ctx, "ann@example.com", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	id, ok := domain.IdentityFrom(a.Context(ctx))
	if !ok || id.AccountID != acct.ID {
		t.Errorf("expected identity %d in context, got %+v %v", acct.ID, id, ok)
	}
}

func TestAuthenticator_SessionsAreIndependent(t *testing.T) {
	a, _ := newSession(t)
	b := NewAuthenticator(a.accounts, plainHasher{}, zap.NewNop())

	if _, err := a.Login(context.Background(), "ann@example.com", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if b.State() != Anonymous {
		t.Error("second session must stay Anonymous")
	}
}
