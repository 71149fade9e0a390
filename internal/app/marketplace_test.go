package app

import (
	"context"
	"errors"
	"testing"

	"bikemarket/internal/adapter/memory"
	"bikemarket/internal/domain"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestMarketplace_EndToEnd(t *testing.T) {
	ctx := context.Background()
	db := memory.New()
	m := NewMarketplace(Deps{
		Accounts: db,
		Listings: db,
		Messages: db,
		Files:    newRecordingFiles(),
		Hasher:   plainHasher{},
		Store:    db,
	})

	if err := m.Ready(ctx); err != nil {
		t.Fatalf("ready: %v", err)
	}
	if _, err := m.Accounts.SignUp(ctx, domain.NewAccount{Name: "Ann", Email: "ann@example.com", Password: "pw"}); err != nil {
		t.Fatalf("sign-up: %v", err)
	}

	session := m.NewSession()
	id, err := session.Login(ctx, "ann@example.com", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	l, err := m.ListingWriter.CreateListing(ctx, id.AccountID, trek520(), nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	newest, err := m.Listings.GetNewest(ctx, 0)
	if err != nil || len(newest) != 1 || newest[0].ID != l.ID {
		t.Errorf("expected the new listing, got %+v %v", newest, err)
	}

	who, _ := domain.IdentityFrom(session.Context(ctx))
	if err := m.ListingWriter.DeleteListing(ctx, who, l.ID); err != nil {
		t.Errorf("delete: %v", err)
	}

	if m.NewSession().State() != Anonymous {
		t.Error("new sessions start Anonymous")
	}
}

func TestMarketplace_Ready(t *testing.T) {
	down := errors.New("down")
	m := NewMarketplace(Deps{Store: pingerFunc(func(context.Context) error { return down })})
	if err := m.Ready(context.Background()); !errors.Is(err, down) {
		t.Errorf("expected ping error, got %v", err)
	}
	if err := NewMarketplace(Deps{}).Ready(context.Background()); err != nil {
		t.Errorf("no store means ready, got %v", err)
	}
}
