package models

import (
	"strings"
	"time"
)

// SearchRequest is a parsed search query.
type SearchRequest struct {
	Term        string
	ExactPhrase bool
	Kind        MediaKind
	Offset      int
	Limit       int
	Requester   int64
}

// Validate checks the request and normalizes the offset. A request whose term
// is empty after trimming is malformed.
func (r *SearchRequest) Validate() error {
	if strings.TrimSpace(r.Term) == "" {
		return ErrMalformed
	}
	if r.Offset < 0 {
		r.Offset = 0
	}
	return nil
}

// SearchResultPage is one bounded, ordered slice of results. NextOffset is
// nil when the result set is exhausted.
type SearchResultPage struct {
	Records    []MediaRecord
	NextOffset *int
}

// ResponseKind tags the outcome of one orchestrated search request.
type ResponseKind int

const (
	ResponseDenied ResponseKind = iota
	ResponseThrottled
	ResponseEmptyGuidance
	ResponsePage
	ResponseError
)

// ErrorKind classifies a ResponseError for the surface.
type ErrorKind string

const (
	// ErrorStorage is a backing-store fault; the caller should suggest a
	// retry.
	ErrorStorage ErrorKind = "storage"

	// ErrorCancelled means the request was abandoned before a page could be
	// committed.
	ErrorCancelled ErrorKind = "cancelled"

	// ErrorInternal is any other execution failure.
	ErrorInternal ErrorKind = "internal"
)

// Response is the union returned to the command surface for an inbound
// search request. Only the fields matching Kind are populated.
type Response struct {
	Kind ResponseKind

	// Denied
	DenyReason  DenialReason
	JoinChannel string

	// Throttled
	RetryAfter time.Duration

	// Page
	Page SearchResultPage

	// Error
	ErrKind ErrorKind
}
