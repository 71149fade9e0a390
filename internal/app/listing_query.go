package app

import (
	"context"

	"bikemarket/internal/domain"

	"go.uber.org/zap"
)

// Default result caps for catalog reads.
const (
	SearchLimit        = 50
	DefaultNewestLimit = 8
	MaxNewestLimit     = 50
	RecentLimit        = 20
)

// Limits are the result caps of catalog reads. Zero fields take the
// package defaults.
type Limits struct {
	Search        int
	NewestDefault int
	NewestMax     int
}

func (l Limits) withDefaults() Limits {
	if l.Search <= 0 {
		l.Search = SearchLimit
	}
	if l.NewestMax <= 0 {
		l.NewestMax = MaxNewestLimit
	}
	if l.NewestDefault <= 0 {
		l.NewestDefault = DefaultNewestLimit
	}
	if l.NewestDefault > l.NewestMax {
		l.NewestDefault = l.NewestMax
	}
	return l
}

// ListingQueryService composes and runs catalog reads.
type ListingQueryService struct {
	repo   domain.ListingRepository
	cache  domain.ListingCache
	limits Limits
	log    *zap.Logger
}

// NewListingQueryService creates a ListingQueryService. cache may be nil.
func NewListingQueryService(repo domain.ListingRepository, cache domain.ListingCache, limits Limits, log *zap.Logger) *ListingQueryService {
	return &ListingQueryService{repo: repo, cache: cache, limits: limits.withDefaults(), log: log}
}

// Search returns listings matching every supplied filter, newest first,
// capped at the configured search limit.
func (s *ListingQueryService) Search(ctx context.Context, f domain.SearchFilter) ([]domain.Listing, error) {
	preds := f.Predicates()
	for _, p := range preds {
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}
	return s.repo.SearchListings(ctx, preds, s.limits.Search)
}

// GetByID returns the listing with its owner name, or nil when absent.
func (s *ListingQueryService) GetByID(ctx context.Context, id int64) (*domain.Listing, error) {
	var (
		gen       uint64
		cacheable bool
	)
	if s.cache != nil {
		l, g, err := s.cache.Get(ctx, id)
		if err != nil {
			s.log.Warn("listing cache read failed", zap.Int64("listing_id", id), zap.Error(err))
		} else if l != nil {
			return l, nil
		} else {
			gen, cacheable = g, true
		}
	}

	l, err := s.repo.GetListingByID(ctx, id)
	if err != nil || l == nil {
		return nil, err
	}

	if cacheable {
		if err := s.cache.Set(ctx, l, gen); err != nil {
			s.log.Warn("listing cache write failed", zap.Int64("listing_id", id), zap.Error(err))
		}
	}
	return l, nil
}

// GetNewest returns the newest listings. limit is clamped to the configured
// maximum; a non-positive limit means the configured default.
func (s *ListingQueryService) GetNewest(ctx context.Context, limit int) ([]domain.Listing, error) {
	return s.repo.SearchListings(ctx, nil, s.ClampNewestLimit(limit))
}

// ListRecent returns the first RecentLimit listings in id order.
func (s *ListingQueryService) ListRecent(ctx context.Context) ([]domain.Listing, error) {
	return s.repo.ListListingsByID(ctx, RecentLimit)
}

// ListByOwner returns the listings of one account, newest first.
func (s *ListingQueryService) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Listing, error) {
	return s.repo.ListListingsByOwner(ctx, ownerID)
}

// ClampNewestLimit applies the server-side bounds for GetNewest.
func (s *ListingQueryService) ClampNewestLimit(limit int) int {
	if limit <= 0 {
		return s.limits.NewestDefault
	}
	if limit > s.limits.NewestMax {
		return s.limits.NewestMax
	}
	return limit
}
