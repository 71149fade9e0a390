package postgres

import (
	"context"
	"database/sql"
	"time"

	"bikemarket/internal/domain"
)

var _ domain.MessageRepository = (*DB)(nil)

type messageRow struct {
	ID            int64          `db:"id"`
	ListingID     int64          `db:"listing_id"`
	FromAccountID int64          `db:"from_account_id"`
	ToAccountID   int64          `db:"to_account_id"`
	FromName      sql.NullString `db:"from_name"`
	ToName        sql.NullString `db:"to_name"`
	Content       sql.NullString `db:"content"`
	CreatedAt     time.Time      `db:"created_at"`
}

// CreateMessage inserts a message and returns it with its ID and party names.
func (d *DB) CreateMessage(ctx context.Context, m domain.Message) (_ *domain.Message, err error) {
	ctx, done := d.begin(ctx, "create_message")
	defer done(&err)

	var from, to sql.NullString
	err = d.sql.QueryRowxContext(ctx,
		`INSERT INTO messages (listing_id, from_account_id, to_account_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id,
			(SELECT name FROM accounts WHERE accounts.id = messages.from_account_id),
			(SELECT name FROM accounts WHERE accounts.id = messages.to_account_id)`,
		m.ListingID, m.FromAccountID, m.ToAccountID, m.Content, m.CreatedAt,
	).Scan(&m.ID, &from, &to)
	if err != nil {
		return nil, err
	}
	m.FromName, m.ToName = from.String, to.String
	return &m, nil
}

// ListMessagesByListing returns the messages of a listing, oldest first.
func (d *DB) ListMessagesByListing(ctx context.Context, listingID int64) (_ []domain.Message, err error) {
	ctx, done := d.begin(ctx, "list_messages")
	defer done(&err)

	var rows []messageRow
	err = d.sql.SelectContext(ctx, &rows,
		`SELECT m.id, m.listing_id, m.from_account_id, m.to_account_id, f.name AS from_name, t.name AS to_name,
			m.content, m.created_at
		FROM messages m
		LEFT JOIN accounts f ON f.id = m.from_account_id
		LEFT JOIN accounts t ON t.id = m.to_account_id
		WHERE m.listing_id = $1
		ORDER BY m.created_at ASC, m.id ASC`, listingID)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Message, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Message{
			ID:            r.ID,
			ListingID:     r.ListingID,
			FromAccountID: r.FromAccountID,
			ToAccountID:   r.ToAccountID,
			FromName:      r.FromName.String,
			ToName:        r.ToName.String,
			Content:       r.Content.String,
			CreatedAt:     r.CreatedAt,
		})
	}
	return out, nil
}
