package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bikemarket/internal/domain"
)

// ---------------------------------------------------------------------------
// Mock collaborators (function-fields pattern)
// ---------------------------------------------------------------------------

type mockListingRepo struct {
	domain.ListingRepository // unused methods panic

	createFn func(ctx context.Context, l domain.Listing) (*domain.Listing, error)
	getFn    func(ctx context.Context, id int64) (*domain.Listing, error)
	searchFn func(ctx context.Context, preds []domain.Predicate, limit int) ([]domain.Listing, error)
	updateFn func(ctx context.Context, l domain.Listing) (bool, error)
}

func (m *mockListingRepo) CreateListing(ctx context.Context, l domain.Listing) (*domain.Listing, error) {
	return m.createFn(ctx, l)
}

func (m *mockListingRepo) GetListingByID(ctx context.Context, id int64) (*domain.Listing, error) {
	return m.getFn(ctx, id)
}

func (m *mockListingRepo) SearchListings(ctx context.Context, preds []domain.Predicate, limit int) ([]domain.Listing, error) {
	return m.searchFn(ctx, preds, limit)
}

func (m *mockListingRepo) UpdateListing(ctx context.Context, l domain.Listing) (bool, error) {
	return m.updateFn(ctx, l)
}

type mockAccountRepo struct {
	domain.AccountRepository

	getByEmailFn func(ctx context.Context, email string) (*domain.Account, error)
	existsFn     func(ctx context.Context, id int64) (bool, error)
}

func (m *mockAccountRepo) GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return m.getByEmailFn(ctx, email)
}

func (m *mockAccountRepo) AccountExists(ctx context.Context, id int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, id)
	}
	return true, nil
}

// recordingFiles is an in-memory domain.FileStore.
type recordingFiles struct {
	mu      sync.Mutex
	next    int
	files   map[string][]byte
	removed []string
	saveErr error
}

func newRecordingFiles() *recordingFiles {
	return &recordingFiles{files: make(map[string][]byte)}
}

func (f *recordingFiles) Save(ctx context.Context, name string, data []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return "", f.saveErr
	}
	f.next++
	ref := fmt.Sprintf("/uploads/%d_%s", f.next, name)
	f.files[ref] = data
	return ref, nil
}

func (f *recordingFiles) Remove(ctx context.Context, ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.files, ref)
	f.removed = append(f.removed, ref)
	return nil
}

func (f *recordingFiles) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.files)
}

type recordingEvents struct {
	mu       sync.Mutex
	subjects []string
}

func (e *recordingEvents) Publish(ctx context.Context, subject string, payload any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subjects = append(e.subjects, subject)
	return nil
}

// mockCache keeps entries and generations in maps. getFn, when set, replaces
// the stored entry lookup.
type mockCache struct {
	getFn    func(ctx context.Context, id int64) (*domain.Listing, error)
	entries  map[int64]*domain.Listing
	gens     map[int64]uint64
	setCalls int
	deleted  []int64
}

func (c *mockCache) Get(ctx context.Context, id int64) (*domain.Listing, uint64, error) {
	if c.getFn != nil {
		l, err := c.getFn(ctx, id)
		return l, c.gens[id], err
	}
	return c.entries[id], c.gens[id], nil
}

func (c *mockCache) Set(ctx context.Context, l *domain.Listing, gen uint64) error {
	c.setCalls++
	if c.gens[l.ID] != gen {
		return nil
	}
	if c.entries == nil {
		c.entries = make(map[int64]*domain.Listing)
	}
	c.entries[l.ID] = l
	return nil
}

func (c *mockCache) Delete(ctx context.Context, id int64) error {
	c.deleted = append(c.deleted, id)
	if c.gens == nil {
		c.gens = make(map[int64]uint64)
	}
	c.gens[id]++
	delete(c.entries, id)
	return nil
}

// steppingClock advances one second on every call.
func steppingClock() *MonotonicClock {
	var mu sync.Mutex
	t := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return NewMonotonicClock(func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	})
}

// plainHasher is a deterministic stand-in for a password hasher.
type plainHasher struct{}

func (plainHasher) Hash(password string) string { return "H(" + password + ")" }
