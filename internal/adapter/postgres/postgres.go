package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bikemarket/internal/adapter/metrics"
	"bikemarket/internal/domain"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// Constraint names referenced by error translation.
const (
	constraintAccountsEmail  = "accounts_email_key"
	constraintListingOwner   = "listings_owner_fk"
	constraintMessageListing = "messages_listing_fk"
	constraintMessageFrom    = "messages_from_fk"
	constraintMessageTo      = "messages_to_fk"
)

const opDeleteListing = "delete_listing"

// Options tunes the connection pool and per-operation behaviour.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	QueryTimeout    time.Duration
	Metrics         *metrics.Store
	Log             *zap.Logger
}

// DB wraps a *sqlx.DB and implements domain repository interfaces.
type DB struct {
	sql     *sqlx.DB
	timeout time.Duration
	metrics *metrics.Store
	log     *zap.Logger
}

// Open connects to PostgreSQL, pings, and runs migrations.
func Open(connStr string, opts Options) (*DB, error) {
	s, err := sqlx.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	s.SetMaxOpenConns(orDefault(opts.MaxOpenConns, 10))
	s.SetMaxIdleConns(orDefault(opts.MaxIdleConns, 5))
	if opts.ConnMaxLifetime <= 0 {
		opts.ConnMaxLifetime = 5 * time.Minute
	}
	s.SetConnMaxLifetime(opts.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	d := newDB(s, opts)
	if err := d.migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return d, nil
}

// New wraps an already opened database handle without migrating it.
func New(db *sql.DB, opts Options) *DB {
	return newDB(sqlx.NewDb(db, "postgres"), opts)
}

func newDB(s *sqlx.DB, opts Options) *DB {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &DB{sql: s, timeout: opts.QueryTimeout, metrics: opts.Metrics, log: log}
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

// Ping checks connectivity.
func (d *DB) Ping(ctx context.Context) (err error) {
	ctx, done := d.begin(ctx, "ping")
	defer done(&err)
	return d.sql.PingContext(ctx)
}

func (d *DB) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			phone TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL
		);`,
		"CREATE UNIQUE INDEX IF NOT EXISTS " + constraintAccountsEmail + " ON accounts (email);",
		`CREATE TABLE IF NOT EXISTS listings (
			id BIGSERIAL PRIMARY KEY,
			owner_id BIGINT NOT NULL CONSTRAINT ` + constraintListingOwner + ` REFERENCES accounts(id),
			title TEXT NOT NULL,
			price NUMERIC(12,2) NOT NULL CHECK (price >= 0),
			color TEXT,
			type TEXT,
			model_year INTEGER,
			gear_type TEXT,
			brake_type TEXT,
			weight NUMERIC(6,2),
			condition TEXT,
			target_audience TEXT,
			material TEXT,
			brand TEXT,
			location TEXT,
			description TEXT,
			image_ref TEXT,
			created_at TIMESTAMPTZ NOT NULL
		);`,
		"CREATE INDEX IF NOT EXISTS listings_created_at_idx ON listings(created_at);",
		"CREATE INDEX IF NOT EXISTS listings_owner_id_idx ON listings(owner_id);",
		`CREATE TABLE IF NOT EXISTS messages (
			id BIGSERIAL PRIMARY KEY,
			listing_id BIGINT NOT NULL CONSTRAINT ` + constraintMessageListing + ` REFERENCES listings(id),
			from_account_id BIGINT NOT NULL CONSTRAINT ` + constraintMessageFrom + ` REFERENCES accounts(id),
			to_account_id BIGINT NOT NULL CONSTRAINT ` + constraintMessageTo + ` REFERENCES accounts(id),
			content TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL
		);`,
		"CREATE INDEX IF NOT EXISTS messages_listing_created_idx ON messages(listing_id, created_at);",
	}

	for _, stmt := range stmts {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// begin scopes one store operation: it applies the query timeout, and the
// returned done func releases the scope, translates the error and records
// metrics. Callers must defer done(&err).
func (d *DB) begin(ctx context.Context, op string) (context.Context, func(*error)) {
	var cancel context.CancelFunc
	if d.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	start := time.Now()

	return ctx, func(errp *error) {
		cancel()
		if *errp != nil {
			*errp = translate(op, *errp)
			if errors.Is(*errp, domain.ErrStoreUnavailable) {
				d.log.Error("store operation failed", zap.String("op", op), zap.Error(*errp))
			}
		}
		d.metrics.Observe(op, start, *errp)
	}
}

// translate collapses driver errors into the domain taxonomy. The only
// diagnostics interpreted are unique and foreign-key violations on the
// constraints this package creates.
func translate(op string, err error) error {
	if errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrDuplicateEmail) ||
		errors.Is(err, domain.ErrListingHasMessages) ||
		errors.Is(err, domain.ErrStoreUnavailable) {
		return err
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Name() {
		case "unique_violation":
			if pqErr.Constraint == constraintAccountsEmail {
				return domain.ErrDuplicateEmail
			}
		case "foreign_key_violation":
			switch pqErr.Constraint {
			case constraintListingOwner:
				return domain.NewValidationError(domain.ReasonUnknownOwner, "ownerId")
			case constraintMessageListing:
				// Deleting the referenced listing trips the same constraint.
				if op == opDeleteListing {
					return domain.ErrListingHasMessages
				}
				return domain.NewValidationError(domain.ReasonUnknownListing, "listingId")
			case constraintMessageFrom:
				return domain.NewValidationError(domain.ReasonUnknownSender, "fromAccountId")
			case constraintMessageTo:
				return domain.NewValidationError(domain.ReasonUnknownRecipient, "toAccountId")
			}
		}
	}
	return domain.StoreError(op, err)
}

func orDefault(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
