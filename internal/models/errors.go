package models

import (
	"context"
	"errors"
	"fmt"
)

// DenialReason is a terminal authorization outcome. It is surfaced verbatim
// to the caller for messaging and is never treated as a fault.
type DenialReason string

const (
	DeniedBanned               DenialReason = "banned"
	DeniedNotAuthorized        DenialReason = "not_authorized"
	DeniedSubscriptionRequired DenialReason = "subscription_required"
)

var (
	// ErrEmptyQuery indicates a query with no search term left after
	// trimming. User-correctable, never logged as a fault.
	ErrEmptyQuery = errors.New("empty query")

	// ErrMalformed indicates a search request that failed validation.
	ErrMalformed = errors.New("malformed search request")
)

// StorageErrorKind classifies backing-store faults.
type StorageErrorKind string

const (
	StorageUnavailable StorageErrorKind = "unavailable"
	StorageTimeout     StorageErrorKind = "timeout"
	StorageCorrupt     StorageErrorKind = "corrupt"
)

// StorageError wraps a backing-store fault with its classification.
type StorageError struct {
	Kind StorageErrorKind
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Kind, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// WrapStorage classifies err as a StorageError. Context expiry maps to
// StorageTimeout, everything else to the given fallback kind. A nil err
// returns nil.
func WrapStorage(fallback StorageErrorKind, err error) error {
	if err == nil {
		return nil
	}
	kind := fallback
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		kind = StorageTimeout
	}
	return &StorageError{Kind: kind, Err: err}
}

// AsStorageError unwraps err into a StorageError when possible.
func AsStorageError(err error) (*StorageError, bool) {
	var se *StorageError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
