package app

import (
	"context"

	"bikemarket/internal/domain"

	"go.uber.org/zap"
)

// Deps are the ports the marketplace services are built on. Cache and Events
// are optional.
type Deps struct {
	Accounts domain.AccountRepository
	Listings domain.ListingRepository
	Messages domain.MessageRepository
	Files    domain.FileStore
	Hasher   domain.PasswordHasher
	Clock    domain.Clock
	Cache    domain.ListingCache
	Events   domain.EventPublisher
	Store    domain.Pinger
	Limits   Limits
	Log      *zap.Logger
}

// Marketplace bundles the services used by the presentation layer.
type Marketplace struct {
	Accounts      *AccountService
	Listings      *ListingQueryService
	ListingWriter *ListingService
	Messages      *MessageService

	deps Deps
}

// NewMarketplace wires the services around deps.
func NewMarketplace(deps Deps) *Marketplace {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if deps.Clock == nil {
		deps.Clock = NewMonotonicClock(nil)
	}
	log := deps.Log
	return &Marketplace{
		Accounts: NewAccountService(deps.Accounts, deps.Hasher, deps.Clock, log.Named("accounts")),
		Listings: NewListingQueryService(deps.Listings, deps.Cache, deps.Limits, log.Named("listings")),
		ListingWriter: NewListingService(
			deps.Listings, deps.Accounts, deps.Files, deps.Cache, deps.Events, deps.Clock, log.Named("listings"),
		),
		Messages: NewMessageService(
			deps.Messages, deps.Listings, deps.Accounts, deps.Events, deps.Clock, log.Named("messages"),
		),
		deps: deps,
	}
}

// NewSession returns a fresh Anonymous authenticator for one session.
func (m *Marketplace) NewSession() *Authenticator {
	return NewAuthenticator(m.deps.Accounts, m.deps.Hasher, m.deps.Log.Named("session"))
}

// Ready reports whether the backing store is reachable.
func (m *Marketplace) Ready(ctx context.Context) error {
	if m.deps.Store == nil {
		return nil
	}
	return m.deps.Store.Ping(ctx)
}
