package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// UnknownGearType is stored when a listing does not state its gear type.
const UnknownGearType = "Unknown"

// ListingAttributes is the mutable attribute set of a listing. EditListing
// replaces all of it at once.
type ListingAttributes struct {
	Title          string          `json:"title"`
	Price          decimal.Decimal `json:"price"`
	Color          string          `json:"color"`
	Type           string          `json:"type"`
	ModelYear      int             `json:"modelYear"`
	GearType       string          `json:"gearType"`
	BrakeType      string          `json:"brakeType"`
	Weight         decimal.Decimal `json:"weight"`
	Condition      string          `json:"condition"`
	TargetAudience string          `json:"targetAudience"`
	Material       string          `json:"material"`
	Brand          string          `json:"brand"`
	Location       string          `json:"location"`
	Description    string          `json:"description"`
}

// WithDefaults returns a copy with absent optional values replaced by their
// documented defaults.
func (a ListingAttributes) WithDefaults() ListingAttributes {
	if a.GearType == "" {
		a.GearType = UnknownGearType
	}
	if a.ModelYear < 0 {
		a.ModelYear = 0
	}
	return a
}

// Validate checks the attribute rules that do not need a store lookup. Every
// attribute other than price is optional, title included.
func (a ListingAttributes) Validate() error {
	if a.Price.IsNegative() {
		return NewValidationError(ReasonNegativePrice, "price")
	}
	return nil
}

// Listing is a bicycle-for-sale record owned by one account.
type Listing struct {
	ID        int64  `json:"id"`
	OwnerID   int64  `json:"ownerId"`
	OwnerName string `json:"ownerName"`
	ListingAttributes
	ImageRef  string    `json:"imageRef"`
	CreatedAt time.Time `json:"createdAt"`
}

// Image is an uploaded picture handed to the file store.
type Image struct {
	Name string
	Data []byte
}

// ListingRepository is the port for listing persistence.
//
// GetListingByID returns (nil, nil) when the listing does not exist;
// ListingOwner returns 0 in that case. UpdateListing and DeleteListing report
// whether a row was affected.
type ListingRepository interface {
	CreateListing(ctx context.Context, l Listing) (*Listing, error)
	GetListingByID(ctx context.Context, id int64) (*Listing, error)
	SearchListings(ctx context.Context, preds []Predicate, limit int) ([]Listing, error)
	ListListingsByID(ctx context.Context, limit int) ([]Listing, error)
	ListListingsByOwner(ctx context.Context, ownerID int64) ([]Listing, error)
	UpdateListing(ctx context.Context, l Listing) (bool, error)
	DeleteListing(ctx context.Context, id int64) (bool, error)
	ListingOwner(ctx context.Context, id int64) (int64, error)
}
