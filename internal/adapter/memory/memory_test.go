package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"bikemarket/internal/domain"

	"github.com/shopspring/decimal"
)

func seedAccount(t *testing.T, db *DB, name, email string) *domain.Account {
	t.Helper()
	a, err := db.CreateAccount(context.Background(), domain.Account{Name: name, Email: email, PasswordHash: "H"})
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	return a
}

func TestAccountRepository(t *testing.T) {
	db := New()
	ctx := context.Background()

	a := seedAccount(t, db, "Bob", "Bob@example.com")
	if a.ID == 0 {
		t.Error("expected non-zero ID")
	}

	got, err := db.GetAccountByEmail(ctx, " Bob@example.com ")
	if err != nil {
		t.Fatalf("GetAccountByEmail: %v", err)
	}
	if got == nil || got.ID != a.ID {
		t.Error("failed to retrieve account by email")
	}
	if got, _ := db.GetAccountByEmail(ctx, "bob@EXAMPLE.com"); got != nil {
		t.Errorf("expected no match for a differently cased email, got %+v", got)
	}

	if _, err := db.CreateAccount(ctx, domain.Account{Name: "Dup", Email: "Bob@example.com"}); !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Errorf("expected ErrDuplicateEmail, got %v", err)
	}
	if _, err := db.CreateAccount(ctx, domain.Account{Name: "Other", Email: "BOB@example.com"}); err != nil {
		t.Errorf("expected differently cased email to register, got %v", err)
	}

	ok, _ := db.AccountExists(ctx, a.ID)
	if !ok {
		t.Error("expected account to exist")
	}
	ok, _ = db.AccountExists(ctx, 999)
	if ok {
		t.Error("expected unknown account to be absent")
	}

	missing, err := db.GetAccountByID(ctx, 999)
	if err != nil || missing != nil {
		t.Errorf("expected (nil, nil), got (%v, %v)", missing, err)
	}

	count, _ := db.CountAccounts(ctx)
	if count != 1 {
		t.Errorf("expected 1 account, got %d", count)
	}
}

func TestListingRepository(t *testing.T) {
	db := New()
	ctx := context.Background()
	owner := seedAccount(t, db, "Ann", "ann@example.com")

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cheap, err := db.CreateListing(ctx, domain.Listing{
		OwnerID:           owner.ID,
		ListingAttributes: domain.ListingAttributes{Title: "Trek 520", Brand: "Trek", Price: decimal.NewFromInt(450)},
		CreatedAt:         base,
	})
	if err != nil {
		t.Fatalf("CreateListing: %v", err)
	}
	_, _ = db.CreateListing(ctx, domain.Listing{
		OwnerID:           owner.ID,
		ListingAttributes: domain.ListingAttributes{Title: "Trek Domane", Brand: "Trek", Price: decimal.NewFromInt(900)},
		CreatedAt:         base.Add(time.Minute),
	})

	if _, err := db.CreateListing(ctx, domain.Listing{OwnerID: 42}); !domain.IsReason(err, domain.ReasonUnknownOwner) {
		t.Errorf("expected unknown owner, got %v", err)
	}

	got, _ := db.GetListingByID(ctx, cheap.ID)
	if got == nil || got.OwnerName != "Ann" {
		t.Fatalf("expected owner name to be populated, got %+v", got)
	}

	preds := domain.SearchFilter{Brand: "trek", MaxPrice: ptr(decimal.NewFromInt(500))}.Predicates()
	res, err := db.SearchListings(ctx, preds, 50)
	if err != nil {
		t.Fatalf("SearchListings: %v", err)
	}
	if len(res) != 1 || res[0].ID != cheap.ID {
		t.Errorf("expected only the $450 listing, got %+v", res)
	}

	all, _ := db.SearchListings(ctx, nil, 50)
	if len(all) != 2 || !all[0].CreatedAt.After(all[1].CreatedAt) {
		t.Error("expected newest first")
	}

	limited, _ := db.SearchListings(ctx, nil, 1)
	if len(limited) != 1 {
		t.Errorf("expected limit to apply, got %d", len(limited))
	}

	byID, _ := db.ListListingsByID(ctx, 20)
	if len(byID) != 2 || byID[0].ID != cheap.ID {
		t.Error("expected id order")
	}
}

func TestDeleteListingKeepsMessages(t *testing.T) {
	db := New()
	ctx := context.Background()
	seller := seedAccount(t, db, "Seller", "s@example.com")
	buyer := seedAccount(t, db, "Buyer", "b@example.com")

	l, _ := db.CreateListing(ctx, domain.Listing{OwnerID: seller.ID, ListingAttributes: domain.ListingAttributes{Title: "x"}})
	_, err := db.CreateMessage(ctx, domain.Message{ListingID: l.ID, FromAccountID: buyer.ID, ToAccountID: seller.ID, Content: "hi"})
	if err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}

	thread, _ := db.ListMessagesByListing(ctx, l.ID)
	if len(thread) != 1 || thread[0].FromName != "Buyer" || thread[0].ToName != "Seller" {
		t.Fatalf("unexpected thread: %+v", thread)
	}

	ok, err := db.DeleteListing(ctx, l.ID)
	if ok || !errors.Is(err, domain.ErrListingHasMessages) {
		t.Fatalf("expected ErrListingHasMessages, got %v %v", ok, err)
	}
	thread, _ = db.ListMessagesByListing(ctx, l.ID)
	if len(thread) != 1 {
		t.Errorf("expected the thread to survive, got %d messages", len(thread))
	}
	if got, _ := db.GetListingByID(ctx, l.ID); got == nil {
		t.Error("expected listing to remain")
	}

	bare, _ := db.CreateListing(ctx, domain.Listing{OwnerID: seller.ID, ListingAttributes: domain.ListingAttributes{Title: "y"}})
	ok, err = db.DeleteListing(ctx, bare.ID)
	if err != nil || !ok {
		t.Fatalf("DeleteListing: %v %v", ok, err)
	}

	ok, _ = db.DeleteListing(ctx, bare.ID)
	if ok {
		t.Error("expected second delete to report no row")
	}
}

func ptr[T any](v T) *T { return &v }
