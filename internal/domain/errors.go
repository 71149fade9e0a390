package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates that the referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation is the parent of every *ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicateEmail indicates that an account with the email is already registered.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrStoreUnavailable wraps every connectivity or driver failure of a backing store.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrAuthenticationFailed indicates that the email/password pair did not match an account.
	ErrAuthenticationFailed = errors.New("invalid email or password")
	// ErrUnauthenticated indicates that a mutating call was made without an identity.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrForbidden indicates that the identity does not own the target entity.
	ErrForbidden = errors.New("forbidden")
	// ErrListingHasMessages indicates that a listing cannot be deleted while
	// messages still reference it.
	ErrListingHasMessages = errors.New("listing has messages")
)

// Validation reasons.
const (
	ReasonUnknownOwner     = "unknown owner"
	ReasonUnknownListing   = "unknown listing"
	ReasonUnknownSender    = "unknown sender"
	ReasonUnknownRecipient = "unknown recipient"
	ReasonNegativePrice    = "price must not be negative"
	ReasonMissingField     = "missing required field"
	ReasonInvalidFilter    = "invalid filter predicate"
)

// ValidationError reports a request that references something that does not
// resolve or carries an invalid value.
type ValidationError struct {
	Reason string
	Field  string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (%s)", ErrValidation, e.Reason, e.Field)
	}
	return fmt.Sprintf("%s: %s", ErrValidation, e.Reason)
}

// Is makes errors.Is(err, ErrValidation) hold for every ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError builds a ValidationError for the given reason.
func NewValidationError(reason, field string) *ValidationError {
	return &ValidationError{Reason: reason, Field: field}
}

// IsReason reports whether err is a ValidationError with the given reason.
func IsReason(err error, reason string) bool {
	var ve *ValidationError
	return errors.As(err, &ve) && ve.Reason == reason
}

// StoreError wraps a backing-store failure so that it matches
// ErrStoreUnavailable while keeping the driver cause reachable.
func StoreError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
