package domain

import "context"

// Identity is the authenticated principal produced by a successful login.
type Identity struct {
	AccountID int64  `json:"accountId"`
	Email     string `json:"email"`
}

// IsZero reports whether the identity is the anonymous one.
func (i Identity) IsZero() bool {
	return i.AccountID == 0
}

type contextKey string

const identityContextKey contextKey = "identity"

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// IdentityFrom returns the identity carried by ctx, if any.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey).(Identity)
	if !ok || id.IsZero() {
		return Identity{}, false
	}
	return id, true
}
