package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"bikemarket/internal/domain"

	"github.com/shopspring/decimal"
)

var _ domain.ListingRepository = (*DB)(nil)

// listingRow mirrors listingColumns. Optional columns may be NULL in older
// rows and read back as their zero values, or the attribute default.
type listingRow struct {
	ID             int64               `db:"id"`
	OwnerID        int64               `db:"owner_id"`
	OwnerName      sql.NullString      `db:"owner_name"`
	Title          string              `db:"title"`
	Price          decimal.Decimal     `db:"price"`
	Color          sql.NullString      `db:"color"`
	Type           sql.NullString      `db:"type"`
	ModelYear      sql.NullInt64       `db:"model_year"`
	GearType       sql.NullString      `db:"gear_type"`
	BrakeType      sql.NullString      `db:"brake_type"`
	Weight         decimal.NullDecimal `db:"weight"`
	Condition      sql.NullString      `db:"condition"`
	TargetAudience sql.NullString      `db:"target_audience"`
	Material       sql.NullString      `db:"material"`
	Brand          sql.NullString      `db:"brand"`
	Location       sql.NullString      `db:"location"`
	Description    sql.NullString      `db:"description"`
	ImageRef       sql.NullString      `db:"image_ref"`
	CreatedAt      time.Time           `db:"created_at"`
}

func (r listingRow) toDomain() domain.Listing {
	return domain.Listing{
		ID:        r.ID,
		OwnerID:   r.OwnerID,
		OwnerName: r.OwnerName.String,
		ListingAttributes: domain.ListingAttributes{
			Title:          r.Title,
			Price:          r.Price,
			Color:          r.Color.String,
			Type:           r.Type.String,
			ModelYear:      int(r.ModelYear.Int64),
			GearType:       r.GearType.String,
			BrakeType:      r.BrakeType.String,
			Weight:         r.Weight.Decimal,
			Condition:      r.Condition.String,
			TargetAudience: r.TargetAudience.String,
			Material:       r.Material.String,
			Brand:          r.Brand.String,
			Location:       r.Location.String,
			Description:    r.Description.String,
		}.WithDefaults(),
		ImageRef:  r.ImageRef.String,
		CreatedAt: r.CreatedAt,
	}
}

func toListings(rows []listingRow) []domain.Listing {
	out := make([]domain.Listing, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out
}

func nullYear(y int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(y), Valid: y > 0}
}

// CreateListing inserts a listing and returns it with its ID and owner name.
func (d *DB) CreateListing(ctx context.Context, l domain.Listing) (_ *domain.Listing, err error) {
	ctx, done := d.begin(ctx, "create_listing")
	defer done(&err)

	var ownerName sql.NullString
	err = d.sql.QueryRowxContext(ctx,
		`INSERT INTO listings (owner_id, title, price, color, type, model_year, gear_type, brake_type, weight,
			condition, target_audience, material, brand, location, description, image_ref, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id, (SELECT name FROM accounts WHERE accounts.id = listings.owner_id)`,
		l.OwnerID, l.Title, l.Price, nullString(l.Color), nullString(l.Type), nullYear(l.ModelYear),
		nullString(l.GearType), nullString(l.BrakeType), l.Weight, nullString(l.Condition),
		nullString(l.TargetAudience), nullString(l.Material), nullString(l.Brand), nullString(l.Location),
		nullString(l.Description), nullString(l.ImageRef), l.CreatedAt,
	).Scan(&l.ID, &ownerName)
	if err != nil {
		return nil, err
	}
	l.OwnerName = ownerName.String
	return &l, nil
}

// GetListingByID retrieves a listing by ID.
func (d *DB) GetListingByID(ctx context.Context, id int64) (_ *domain.Listing, err error) {
	ctx, done := d.begin(ctx, "get_listing")
	defer done(&err)

	var r listingRow
	err = d.sql.GetContext(ctx, &r, "SELECT "+listingColumns+listingFrom+" WHERE l.id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	l := r.toDomain()
	return &l, nil
}

// SearchListings returns listings matching every predicate, newest first.
func (d *DB) SearchListings(ctx context.Context, preds []domain.Predicate, limit int) (_ []domain.Listing, err error) {
	ctx, done := d.begin(ctx, "search_listings")
	defer done(&err)

	q, args, err := searchQuery(preds, limit)
	if err != nil {
		return nil, err
	}
	var rows []listingRow
	if err = d.sql.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	return toListings(rows), nil
}

// ListListingsByID returns the first listings in ascending ID order.
func (d *DB) ListListingsByID(ctx context.Context, limit int) (_ []domain.Listing, err error) {
	ctx, done := d.begin(ctx, "list_listings")
	defer done(&err)

	var rows []listingRow
	err = d.sql.SelectContext(ctx, &rows,
		"SELECT "+listingColumns+listingFrom+" ORDER BY l.id ASC LIMIT $1", clampRows(limit))
	if err != nil {
		return nil, err
	}
	return toListings(rows), nil
}

// ListListingsByOwner returns every listing of ownerID, newest first.
func (d *DB) ListListingsByOwner(ctx context.Context, ownerID int64) (_ []domain.Listing, err error) {
	ctx, done := d.begin(ctx, "list_listings_by_owner")
	defer done(&err)

	var rows []listingRow
	err = d.sql.SelectContext(ctx, &rows,
		"SELECT "+listingColumns+listingFrom+" WHERE l.owner_id = $1 ORDER BY l.created_at DESC, l.id DESC", ownerID)
	if err != nil {
		return nil, err
	}
	return toListings(rows), nil
}

// UpdateListing replaces the attributes and image reference of a listing.
// Owner and creation time are never changed.
func (d *DB) UpdateListing(ctx context.Context, l domain.Listing) (_ bool, err error) {
	ctx, done := d.begin(ctx, "update_listing")
	defer done(&err)

	res, err := d.sql.ExecContext(ctx,
		`UPDATE listings SET title = $2, price = $3, color = $4, type = $5, model_year = $6, gear_type = $7,
			brake_type = $8, weight = $9, condition = $10, target_audience = $11, material = $12, brand = $13,
			location = $14, description = $15, image_ref = $16
		WHERE id = $1`,
		l.ID, l.Title, l.Price, nullString(l.Color), nullString(l.Type), nullYear(l.ModelYear),
		nullString(l.GearType), nullString(l.BrakeType), l.Weight, nullString(l.Condition),
		nullString(l.TargetAudience), nullString(l.Material), nullString(l.Brand), nullString(l.Location),
		nullString(l.Description), nullString(l.ImageRef),
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// DeleteListing removes a listing. Messages are never removed, so a listing
// that still has them is rejected by messages_listing_fk.
func (d *DB) DeleteListing(ctx context.Context, id int64) (_ bool, err error) {
	ctx, done := d.begin(ctx, opDeleteListing)
	defer done(&err)

	res, err := d.sql.ExecContext(ctx, "DELETE FROM listings WHERE id = $1", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ListingOwner returns the owner of a listing, or 0 if it does not exist.
func (d *DB) ListingOwner(ctx context.Context, id int64) (_ int64, err error) {
	ctx, done := d.begin(ctx, "listing_owner")
	defer done(&err)

	var owner int64
	err = d.sql.GetContext(ctx, &owner, "SELECT owner_id FROM listings WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return owner, err
}
