// Package search executes parsed requests against the catalog and
// orchestrates the full request path.
package search

import (
	"context"

	"MediaSearchBot/internal/index"
	"MediaSearchBot/internal/models"
)

// Engine runs one parsed request against the catalog.
type Engine struct {
	store       index.Store
	maxPageSize int
}

// NewEngine creates an Engine that caps pages at maxPageSize records.
func NewEngine(store index.Store, maxPageSize int) *Engine {
	return &Engine{store: store, maxPageSize: maxPageSize}
}

// Execute validates req, caps its limit and returns the result page. Zero
// results are a valid empty page, not an error. One extra record is probed
// past the page to decide whether a next offset exists.
func (e *Engine) Execute(ctx context.Context, req models.SearchRequest) (models.SearchResultPage, error) {
	if err := req.Validate(); err != nil {
		return models.SearchResultPage{}, models.ErrMalformed
	}

	limit := req.Limit
	if limit <= 0 || limit > e.maxPageSize {
		limit = e.maxPageSize
	}

	records, err := e.store.Search(ctx, index.Query{
		Term:        req.Term,
		ExactPhrase: req.ExactPhrase,
		Kind:        req.Kind,
		Offset:      req.Offset,
		Limit:       limit + 1,
	})
	if err != nil {
		return models.SearchResultPage{}, err
	}

	page := models.SearchResultPage{Records: records}
	if len(records) > limit {
		page.Records = records[:limit]
		next := req.Offset + limit
		page.NextOffset = &next
	}
	return page, nil
}
