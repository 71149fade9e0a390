package domain

import (
	"context"
	"time"
)

// FileStore persists uploaded bytes and hands back a reference string.
type FileStore interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
	Remove(ctx context.Context, ref string) error
}

// ListingCache is a read-through cache for single listings.
//
// Every id carries a generation that Delete advances. Get reports the
// generation it observed, nil listing on a miss, and Set stores only while
// that generation is still current, so a row read before an invalidation is
// never written back after it.
type ListingCache interface {
	Get(ctx context.Context, id int64) (*Listing, uint64, error)
	Set(ctx context.Context, l *Listing, gen uint64) error
	Delete(ctx context.Context, id int64) error
}

// EventPublisher announces domain events to other services.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, payload any) error
}

// Clock provides server timestamps.
type Clock interface {
	Now() time.Time
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Event subjects.
const (
	SubjectListingCreated = "listing.created"
	SubjectListingUpdated = "listing.updated"
	SubjectListingDeleted = "listing.deleted"
	SubjectMessageSent    = "message.sent"
)
