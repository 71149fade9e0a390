package app

import (
	"context"
	"crypto/subtle"
	"errors"
	"sync"

	"bikemarket/internal/domain"

	"go.uber.org/zap"
)

// SessionState is a snapshot of an Authenticator. The zero value is Anonymous.
type SessionState struct {
	Authenticated bool
	Identity      domain.Identity
}

// Anonymous is the initial session state.
var Anonymous = SessionState{}

// Authenticator holds the identity of exactly one logical session. Create one
// per session; instances must not be shared between sessions.
type Authenticator struct {
	accounts domain.AccountRepository
	hasher   domain.PasswordHasher
	log      *zap.Logger

	mu    sync.RWMutex
	state SessionState
	subs  map[int]chan SessionState
	next  int
}

// NewAuthenticator creates an Authenticator in the Anonymous state.
func NewAuthenticator(accounts domain.AccountRepository, hasher domain.PasswordHasher, log *zap.Logger) *Authenticator {
	return &Authenticator{
		accounts: accounts,
		hasher:   hasher,
		log:      log,
		subs:     make(map[int]chan SessionState),
	}
}

// Login verifies the credentials. On a match the session becomes
// Authenticated and subscribers are notified. A mismatch leaves the state
// untouched and returns domain.ErrAuthenticationFailed.
func (a *Authenticator) Login(ctx context.Context, email, password string) (domain.Identity, error) {
	hash := a.hasher.Hash(password)

	acct, err := a.accounts.GetAccountByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if !errors.Is(err, domain.ErrStoreUnavailable) {
			err = domain.StoreError("login", err)
		}
		return domain.Identity{}, err
	}
	if acct == nil || !ConstantTimeCompare(acct.PasswordHash, hash) {
		a.log.Info("login rejected")
		return domain.Identity{}, domain.ErrAuthenticationFailed
	}

	id := domain.Identity{AccountID: acct.ID, Email: acct.Email}
	a.transition(SessionState{Authenticated: true, Identity: id})
	a.log.Info("login succeeded", zap.Int64("account_id", id.AccountID))
	return id, nil
}

// Logout returns the session to Anonymous. It always notifies subscribers,
// whatever the previous state was.
func (a *Authenticator) Logout() {
	a.transition(Anonymous)
}

// State returns the current session state.
func (a *Authenticator) State() SessionState {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

// Identity returns the authenticated identity, if any.
func (a *Authenticator) Identity() (domain.Identity, bool) {
	s := a.State()
	return s.Identity, s.Authenticated
}

// Context returns ctx carrying the current identity when authenticated.
func (a *Authenticator) Context(ctx context.Context) context.Context {
	if id, ok := a.Identity(); ok {
		return domain.WithIdentity(ctx, id)
	}
	return ctx
}

// Subscribe returns a channel that receives every state transition. The
// channel holds only the latest undelivered state, so a slow reader never
// blocks Login or Logout. Call cancel to unsubscribe; it closes the channel.
func (a *Authenticator) Subscribe() (<-chan SessionState, func()) {
	ch := make(chan SessionState, 1)

	a.mu.Lock()
	key := a.next
	a.next++
	a.subs[key] = ch
	a.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			a.mu.Lock()
			defer a.mu.Unlock()
			delete(a.subs, key)
			close(ch)
		})
	}
	return ch, cancel
}

func (a *Authenticator) transition(next SessionState) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.state = next
	for _, ch := range a.subs {
		select {
		case <-ch:
		default:
		}
		ch <- next
	}
}

// ConstantTimeCompare performs a constant-time comparison of two strings.
func ConstantTimeCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
