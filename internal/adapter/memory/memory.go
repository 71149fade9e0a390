// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"context"
	"sort"
	"sync"

	"bikemarket/internal/domain"
)

// DB implements an in-memory database storage.
type DB struct {
	mu       sync.Mutex
	accounts []*domain.Account
	listings []*domain.Listing
	messages []domain.Message

	accountIDCounter int64
	listingIDCounter int64
	messageIDCounter int64
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{}
}

// Ensure interfaces are met.
var _ domain.AccountRepository = (*DB)(nil)
var _ domain.ListingRepository = (*DB)(nil)
var _ domain.MessageRepository = (*DB)(nil)
var _ domain.Pinger = (*DB)(nil)

// Ping always succeeds.
func (db *DB) Ping(ctx context.Context) error {
	return ctx.Err()
}

// --- AccountRepository ---

// CreateAccount creates a new account.
func (db *DB) CreateAccount(ctx context.Context, a domain.Account) (*domain.Account, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.accounts {
		if u.Email == a.Email {
			return nil, domain.ErrDuplicateEmail
		}
	}

	db.accountIDCounter++
	a.ID = db.accountIDCounter
	a.CreatedAt = a.CreatedAt.UTC()
	db.accounts = append(db.accounts, &a)

	out := a
	return &out, nil
}

// GetAccountByID retrieves an account by ID.
func (db *DB) GetAccountByID(ctx context.Context, id int64) (*domain.Account, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if a := db.account(id); a != nil {
		out := *a
		return &out, nil
	}
	return nil, nil
}

// GetAccountByEmail retrieves an account by its exact email.
func (db *DB) GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, a := range db.accounts {
		if a.Email == domain.NormalizeEmail(email) {
			out := *a
			return &out, nil
		}
	}
	return nil, nil
}

// AccountExists reports whether the account exists.
func (db *DB) AccountExists(ctx context.Context, id int64) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.account(id) != nil, nil
}

// CountAccounts returns the total number of accounts.
func (db *DB) CountAccounts(ctx context.Context) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.accounts), nil
}

func (db *DB) account(id int64) *domain.Account {
	for _, a := range db.accounts {
		if a.ID == id {
			return a
		}
	}
	return nil
}

func (db *DB) accountName(id int64) string {
	if a := db.account(id); a != nil {
		return a.Name
	}
	return ""
}

// --- ListingRepository ---

// CreateListing inserts a listing. The owner must exist.
func (db *DB) CreateListing(ctx context.Context, l domain.Listing) (*domain.Listing, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.account(l.OwnerID) == nil {
		return nil, domain.NewValidationError(domain.ReasonUnknownOwner, "ownerId")
	}

	db.listingIDCounter++
	l.ID = db.listingIDCounter
	l.CreatedAt = l.CreatedAt.UTC()
	l.OwnerName = ""
	db.listings = append(db.listings, &l)

	return db.view(&l), nil
}

// GetListingByID retrieves a listing by ID with its owner name.
func (db *DB) GetListingByID(ctx context.Context, id int64) (*domain.Listing, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if l := db.listing(id); l != nil {
		return db.view(l), nil
	}
	return nil, nil
}

// SearchListings returns listings matching every predicate, newest first.
func (db *DB) SearchListings(ctx context.Context, preds []domain.Predicate, limit int) ([]domain.Listing, error) {
	for _, p := range preds {
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	result := make([]domain.Listing, 0)
	for _, l := range db.listings {
		if domain.MatchesAll(preds, l) {
			result = append(result, *db.view(l))
		}
	}

	// sort desc
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// ListListingsByID returns up to limit listings in id order.
func (db *DB) ListListingsByID(ctx context.Context, limit int) ([]domain.Listing, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	result := make([]domain.Listing, 0, limit)
	for _, l := range db.listings {
		if len(result) == limit {
			break
		}
		result = append(result, *db.view(l))
	}
	return result, nil
}

// ListListingsByOwner returns the listings of one owner, newest first.
func (db *DB) ListListingsByOwner(ctx context.Context, ownerID int64) ([]domain.Listing, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	result := make([]domain.Listing, 0)
	for i := len(db.listings) - 1; i >= 0; i-- {
		if db.listings[i].OwnerID == ownerID {
			result = append(result, *db.view(db.listings[i]))
		}
	}
	return result, nil
}

// UpdateListing replaces the attributes and image of an existing listing.
func (db *DB) UpdateListing(ctx context.Context, l domain.Listing) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	cur := db.listing(l.ID)
	if cur == nil {
		return false, nil
	}
	cur.ListingAttributes = l.ListingAttributes
	cur.ImageRef = l.ImageRef
	return true, nil
}

// DeleteListing removes a listing. A listing that still has messages is
// rejected with domain.ErrListingHasMessages.
func (db *DB) DeleteListing(ctx context.Context, id int64) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i, l := range db.listings {
		if l.ID != id {
			continue
		}
		for _, m := range db.messages {
			if m.ListingID == id {
				return false, domain.ErrListingHasMessages
			}
		}
		db.listings = append(db.listings[:i], db.listings[i+1:]...)
		return true, nil
	}
	return false, nil
}

// ListingOwner returns the owner id, or 0 when the listing does not exist.
func (db *DB) ListingOwner(ctx context.Context, id int64) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if l := db.listing(id); l != nil {
		return l.OwnerID, nil
	}
	return 0, nil
}

func (db *DB) listing(id int64) *domain.Listing {
	for _, l := range db.listings {
		if l.ID == id {
			return l
		}
	}
	return nil
}

// view returns a copy with the owner name denormalized.
func (db *DB) view(l *domain.Listing) *domain.Listing {
	out := *l
	out.OwnerName = db.accountName(l.OwnerID)
	return &out
}

// --- MessageRepository ---

// CreateMessage stores a message. Listing and both accounts must exist.
func (db *DB) CreateMessage(ctx context.Context, m domain.Message) (*domain.Message, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	switch {
	case db.listing(m.ListingID) == nil:
		return nil, domain.NewValidationError(domain.ReasonUnknownListing, "listingId")
	case db.account(m.FromAccountID) == nil:
		return nil, domain.NewValidationError(domain.ReasonUnknownSender, "fromAccountId")
	case db.account(m.ToAccountID) == nil:
		return nil, domain.NewValidationError(domain.ReasonUnknownRecipient, "toAccountId")
	}

	db.messageIDCounter++
	m.ID = db.messageIDCounter
	m.CreatedAt = m.CreatedAt.UTC()
	m.FromName = db.accountName(m.FromAccountID)
	m.ToName = db.accountName(m.ToAccountID)
	db.messages = append(db.messages, m)

	out := m
	return &out, nil
}

// ListMessagesByListing returns the thread of a listing, oldest first.
func (db *DB) ListMessagesByListing(ctx context.Context, listingID int64) ([]domain.Message, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	result := make([]domain.Message, 0)
	for _, m := range db.messages {
		if m.ListingID == listingID {
			m.FromName = db.accountName(m.FromAccountID)
			m.ToName = db.accountName(m.ToAccountID)
			result = append(result, m)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}
