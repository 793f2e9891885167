package repository

import (
	"context"
	"fmt"

	"postsurvey/internal/docstore"
	"postsurvey/internal/model"
)

// ResponseBatches iterates over a survey's responses one page at a time.
// The scan ends on the first short page, after the page ceiling, or when
// the context is done:
//
//	it := repo.Batches(surveyID)
//	for it.Next(ctx) {
//		for _, r := range it.Batch() { ... }
//	}
//	if err := it.Err(); err != nil { ... }
type ResponseBatches struct {
	store    docstore.Client
	entity   docstore.Entity
	surveyID string
	pageSize int
	maxPages int

	page      int
	batch     []model.Response
	err       error
	done      bool
	truncated bool
}

// Next fetches the next page and reports whether it holds any responses.
func (b *ResponseBatches) Next(ctx context.Context) bool {
	b.batch = nil
	if b.done {
		return false
	}
	if err := ctx.Err(); err != nil {
		b.err = err
		b.done = true
		return false
	}
	if b.page >= b.maxPages {
		b.done = true
		b.truncated, b.err = b.hasMore(ctx)
		return false
	}

	b.page++
	batch, err := docstore.Search[model.Response](ctx, b.store, b.entity, docstore.Query{
		Fields:   []string{"selectedOption"},
		Where:    docstore.Where{docstore.Eq("surveyId", b.surveyID)},
		Sort:     &docstore.Sort{Field: docstore.FieldID},
		Page:     b.page,
		PageSize: b.pageSize,
	})
	if err != nil {
		b.err = fmt.Errorf("scan responses for survey %s page %d: %w", b.surveyID, b.page, err)
		b.done = true
		return false
	}
	if len(batch) < b.pageSize {
		b.done = true
	}
	b.batch = batch
	return len(batch) > 0
}

// hasMore looks for a single response past the page ceiling, so a survey
// whose responses exactly fill the ceiling is not reported as truncated.
func (b *ResponseBatches) hasMore(ctx context.Context) (bool, error) {
	next, err := b.store.SearchDocuments(ctx, b.entity, docstore.Query{
		Fields:   []string{docstore.FieldID},
		Where:    docstore.Where{docstore.Eq("surveyId", b.surveyID)},
		Sort:     &docstore.Sort{Field: docstore.FieldID},
		Page:     b.maxPages*b.pageSize + 1,
		PageSize: 1,
	})
	if err != nil {
		return false, fmt.Errorf("scan responses for survey %s past page %d: %w", b.surveyID, b.page, err)
	}
	return len(next) > 0, nil
}

// Batch returns the page fetched by the last successful Next.
func (b *ResponseBatches) Batch() []model.Response {
	return b.batch
}

// Err returns the error that stopped the scan, if any.
func (b *ResponseBatches) Err() error {
	return b.err
}

// Pages returns how many pages have been requested so far.
func (b *ResponseBatches) Pages() int {
	return b.page
}

// Truncated reports whether the scan stopped at the page ceiling with
// responses left unread.
func (b *ResponseBatches) Truncated() bool {
	return b.truncated
}
