// Package index holds the durable, text-searchable media catalog.
package index

import (
	"context"

	"MediaSearchBot/internal/models"
)

// Query describes one catalog search. Offset is a rank position from a
// previous page; Limit caps the page size.
type Query struct {
	Term        string
	ExactPhrase bool
	Kind        models.MediaKind
	Offset      int
	Limit       int
}

// Store is the catalog contract. All mutations are durable before a nil
// return; concurrent searches never observe a partially-written record.
type Store interface {
	// Upsert inserts or overwrites the record by its Key. It reports whether
	// a new record was created, as opposed to refreshing an existing one.
	Upsert(ctx context.Context, rec models.MediaRecord) (created bool, err error)

	// Delete removes a record if present; deleting an absent key is a no-op.
	Delete(ctx context.Context, key string) error

	// Search returns the ordered page of records matching the query.
	// Ordering is deterministic for a fixed term, filter and catalog
	// snapshot: phrase hits first for quoted terms, then name matches over
	// caption-only matches, then most recent ingestion, then key.
	Search(ctx context.Context, q Query) ([]models.MediaRecord, error)

	// Count returns the total number of indexed records.
	Count(ctx context.Context) (int64, error)

	// CountByKind breaks the catalog down by media kind.
	CountByKind(ctx context.Context) (map[models.MediaKind]int64, error)

	// CountByChannel breaks the catalog down by source channel.
	CountByChannel(ctx context.Context) (map[int64]int64, error)
}
