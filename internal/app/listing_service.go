package app

import (
	"context"

	"bikemarket/internal/domain"

	"go.uber.org/zap"
)

// ListingService encapsulates listing mutations.
type ListingService struct {
	listings domain.ListingRepository
	accounts domain.AccountRepository
	files    domain.FileStore
	cache    domain.ListingCache
	events   domain.EventPublisher
	clock    domain.Clock
	log      *zap.Logger
}

// NewListingService creates a ListingService. cache and events may be nil.
func NewListingService(
	listings domain.ListingRepository,
	accounts domain.AccountRepository,
	files domain.FileStore,
	cache domain.ListingCache,
	events domain.EventPublisher,
	clock domain.Clock,
	log *zap.Logger,
) *ListingService {
	return &ListingService{
		listings: listings,
		accounts: accounts,
		files:    files,
		cache:    cache,
		events:   events,
		clock:    clock,
		log:      log,
	}
}

// CreateListing validates the owner, stores the optional image and inserts
// the listing. If the insert fails the stored image is removed again.
func (s *ListingService) CreateListing(ctx context.Context, ownerID int64, attrs domain.ListingAttributes, img *domain.Image) (*domain.Listing, error) {
	attrs = attrs.WithDefaults()
	if err := attrs.Validate(); err != nil {
		return nil, err
	}

	ok, err := ownerExists(ctx, s.accounts, ownerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.NewValidationError(domain.ReasonUnknownOwner, "ownerId")
	}

	ref, err := s.saveImage(ctx, img)
	if err != nil {
		return nil, err
	}

	l, err := s.listings.CreateListing(ctx, domain.Listing{
		OwnerID:           ownerID,
		ListingAttributes: attrs,
		ImageRef:          ref,
		CreatedAt:         s.clock.Now(),
	})
	if err != nil {
		s.removeImage(ctx, ref)
		return nil, err
	}

	s.log.Info("listing created", zap.Int64("listing_id", l.ID), zap.Int64("owner_id", ownerID))
	s.publish(ctx, domain.SubjectListingCreated, l)
	return l, nil
}

// EditListing replaces every mutable attribute of the listing identified by
// l.ID. Only the owner may edit. A nil img keeps the current image.
func (s *ListingService) EditListing(ctx context.Context, who domain.Identity, l domain.Listing, img *domain.Image) (*domain.Listing, error) {
	if who.IsZero() {
		return nil, domain.ErrUnauthenticated
	}
	attrs := l.ListingAttributes.WithDefaults()
	if err := attrs.Validate(); err != nil {
		return nil, err
	}

	current, err := s.listings.GetListingByID(ctx, l.ID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, domain.ErrNotFound
	}
	if current.OwnerID != who.AccountID {
		return nil, domain.ErrForbidden
	}

	next := *current
	next.ListingAttributes = attrs

	newRef, err := s.saveImage(ctx, img)
	if err != nil {
		return nil, err
	}
	if newRef != "" {
		next.ImageRef = newRef
	}

	updated, err := s.listings.UpdateListing(ctx, next)
	if err != nil || !updated {
		s.removeImage(ctx, newRef)
		if err != nil {
			return nil, err
		}
		return nil, domain.ErrNotFound
	}
	if newRef != "" && current.ImageRef != "" {
		s.removeImage(ctx, current.ImageRef)
	}

	s.invalidate(ctx, l.ID)
	s.log.Info("listing updated", zap.Int64("listing_id", l.ID))
	s.publish(ctx, domain.SubjectListingUpdated, &next)
	return &next, nil
}

// DeleteListing hard-deletes the listing. It fails with
// domain.ErrListingHasMessages while messages reference it. Deleting an id
// that does not exist succeeds without effect.
func (s *ListingService) DeleteListing(ctx context.Context, who domain.Identity, id int64) error {
	if who.IsZero() {
		return domain.ErrUnauthenticated
	}

	current, err := s.listings.GetListingByID(ctx, id)
	if err != nil {
		return err
	}
	if current == nil {
		return nil
	}
	if current.OwnerID != who.AccountID {
		return domain.ErrForbidden
	}

	deleted, err := s.listings.DeleteListing(ctx, id)
	if err != nil {
		return err
	}
	s.invalidate(ctx, id)
	if !deleted {
		return nil
	}
	s.removeImage(ctx, current.ImageRef)

	s.log.Info("listing deleted", zap.Int64("listing_id", id))
	s.publish(ctx, domain.SubjectListingDeleted, map[string]int64{"id": id, "ownerId": current.OwnerID})
	return nil
}

func (s *ListingService) saveImage(ctx context.Context, img *domain.Image) (string, error) {
	if img == nil || len(img.Data) == 0 {
		return "", nil
	}
	ref, err := s.files.Save(ctx, img.Name, img.Data)
	if err != nil {
		s.log.Error("image upload failed", zap.String("name", img.Name), zap.Error(err))
		return "", err
	}
	return ref, nil
}

func (s *ListingService) removeImage(ctx context.Context, ref string) {
	if ref == "" {
		return
	}
	if err := s.files.Remove(context.WithoutCancel(ctx), ref); err != nil {
		s.log.Error("image cleanup failed", zap.String("ref", ref), zap.Error(err))
	}
}

func (s *ListingService) invalidate(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, id); err != nil {
		s.log.Warn("listing cache invalidation failed", zap.Int64("listing_id", id), zap.Error(err))
	}
}

func (s *ListingService) publish(ctx context.Context, subject string, payload any) {
	publish(ctx, s.events, s.log, subject, payload)
}

func publish(ctx context.Context, events domain.EventPublisher, log *zap.Logger, subject string, payload any) {
	if events == nil {
		return
	}
	if err := events.Publish(ctx, subject, payload); err != nil {
		log.Warn("event publish failed", zap.String("subject", subject), zap.Error(err))
	}
}

func ownerExists(ctx context.Context, accounts domain.AccountRepository, id int64) (bool, error) {
	if id <= 0 {
		return false, nil
	}
	return accounts.AccountExists(ctx, id)
}
