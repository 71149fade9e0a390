// Package postgres implements the domain repositories using PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"bikemarket/internal/domain"
)

var _ domain.AccountRepository = (*DB)(nil)

type accountRow struct {
	ID           int64          `db:"id"`
	Name         sql.NullString `db:"name"`
	Email        string         `db:"email"`
	PasswordHash string         `db:"password_hash"`
	Phone        sql.NullString `db:"phone"`
	CreatedAt    time.Time      `db:"created_at"`
}

func (r accountRow) toDomain() *domain.Account {
	return &domain.Account{
		ID:           r.ID,
		Name:         r.Name.String,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Phone:        r.Phone.String,
		CreatedAt:    r.CreatedAt,
	}
}

const accountColumns = "id, name, email, password_hash, phone, created_at"

// CreateAccount inserts a new account and returns it with its assigned ID.
func (d *DB) CreateAccount(ctx context.Context, a domain.Account) (_ *domain.Account, err error) {
	ctx, done := d.begin(ctx, "create_account")
	defer done(&err)

	err = d.sql.QueryRowxContext(ctx,
		"INSERT INTO accounts (name, email, password_hash, phone, created_at) VALUES ($1, $2, $3, $4, $5) RETURNING id",
		a.Name, a.Email, a.PasswordHash, a.Phone, a.CreatedAt,
	).Scan(&a.ID)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetAccountByID retrieves an account by ID.
func (d *DB) GetAccountByID(ctx context.Context, id int64) (_ *domain.Account, err error) {
	ctx, done := d.begin(ctx, "get_account")
	defer done(&err)

	var r accountRow
	err = d.sql.GetContext(ctx, &r, "SELECT "+accountColumns+" FROM accounts WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.toDomain(), nil
}

// GetAccountByEmail retrieves an account by its exact email.
func (d *DB) GetAccountByEmail(ctx context.Context, email string) (_ *domain.Account, err error) {
	ctx, done := d.begin(ctx, "get_account_by_email")
	defer done(&err)

	var r accountRow
	err = d.sql.GetContext(ctx, &r,
		"SELECT "+accountColumns+" FROM accounts WHERE email = $1",
		domain.NormalizeEmail(email),
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.toDomain(), nil
}

// AccountExists reports whether an account with id exists.
func (d *DB) AccountExists(ctx context.Context, id int64) (_ bool, err error) {
	ctx, done := d.begin(ctx, "account_exists")
	defer done(&err)

	var exists bool
	err = d.sql.GetContext(ctx, &exists, "SELECT EXISTS(SELECT 1 FROM accounts WHERE id = $1)", id)
	return exists, err
}

// CountAccounts returns the total number of accounts.
func (d *DB) CountAccounts(ctx context.Context) (_ int, err error) {
	ctx, done := d.begin(ctx, "count_accounts")
	defer done(&err)

	var count int
	err = d.sql.GetContext(ctx, &count, "SELECT COUNT(*) FROM accounts")
	return count, err
}
