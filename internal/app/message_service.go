package app

import (
	"context"

	"bikemarket/internal/domain"

	"go.uber.org/zap"
)

// MessageService stores and reads per-listing message threads.
type MessageService struct {
	messages domain.MessageRepository
	listings domain.ListingRepository
	accounts domain.AccountRepository
	events   domain.EventPublisher
	clock    domain.Clock
	log      *zap.Logger
}

// NewMessageService creates a MessageService. events may be nil.
func NewMessageService(
	messages domain.MessageRepository,
	listings domain.ListingRepository,
	accounts domain.AccountRepository,
	events domain.EventPublisher,
	clock domain.Clock,
	log *zap.Logger,
) *MessageService {
	return &MessageService{
		messages: messages,
		listings: listings,
		accounts: accounts,
		events:   events,
		clock:    clock,
		log:      log,
	}
}

// GetThread returns the messages of a listing, oldest first, with sender and
// receiver names resolved.
func (s *MessageService) GetThread(ctx context.Context, listingID int64) ([]domain.Message, error) {
	return s.messages.ListMessagesByListing(ctx, listingID)
}

// Send stores a message after checking that the listing and both accounts
// exist. Empty content is allowed; a zero CreatedAt is set by the server.
func (s *MessageService) Send(ctx context.Context, m domain.Message) (*domain.Message, error) {
	owner, err := s.listings.ListingOwner(ctx, m.ListingID)
	if err != nil {
		return nil, err
	}
	if owner == 0 {
		return nil, domain.NewValidationError(domain.ReasonUnknownListing, "listingId")
	}

	ok, err := ownerExists(ctx, s.accounts, m.FromAccountID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.NewValidationError(domain.ReasonUnknownSender, "fromAccountId")
	}
	ok, err = ownerExists(ctx, s.accounts, m.ToAccountID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.NewValidationError(domain.ReasonUnknownRecipient, "toAccountId")
	}

	if m.CreatedAt.IsZero() {
		m.CreatedAt = s.clock.Now()
	}

	saved, err := s.messages.CreateMessage(ctx, m)
	if err != nil {
		return nil, err
	}

	s.log.Info("message sent",
		zap.Int64("message_id", saved.ID),
		zap.Int64("listing_id", saved.ListingID),
	)
	publish(ctx, s.events, s.log, domain.SubjectMessageSent, saved)
	return saved, nil
}

// Reply sends content from the authenticated identity. A zero toAccountID
// addresses the listing owner.
func (s *MessageService) Reply(ctx context.Context, who domain.Identity, listingID, toAccountID int64, content string) (*domain.Message, error) {
	if who.IsZero() {
		return nil, domain.ErrUnauthenticated
	}
	if toAccountID == 0 {
		owner, err := s.ResolveOwner(ctx, listingID)
		if err != nil {
			return nil, err
		}
		toAccountID = owner
	}
	return s.Send(ctx, domain.Message{
		ListingID:     listingID,
		FromAccountID: who.AccountID,
		ToAccountID:   toAccountID,
		Content:       content,
	})
}

// ResolveOwner returns the owner of a listing, or domain.ErrNotFound.
func (s *MessageService) ResolveOwner(ctx context.Context, listingID int64) (int64, error) {
	owner, err := s.listings.ListingOwner(ctx, listingID)
	if err != nil {
		return 0, err
	}
	if owner == 0 {
		return 0, domain.ErrNotFound
	}
	return owner, nil
}

// ListForOwner returns every listing of an account together with its thread.
func (s *MessageService) ListForOwner(ctx context.Context, ownerID int64) ([]domain.Thread, error) {
	listings, err := s.listings.ListListingsByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Thread, 0, len(listings))
	for _, l := range listings {
		msgs, err := s.messages.ListMessagesByListing(ctx, l.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.Thread{Listing: l, Messages: msgs})
	}
	return out, nil
}
