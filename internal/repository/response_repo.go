package repository

import (
	"context"
	"errors"
	"fmt"

	"postsurvey/internal/docstore"
	"postsurvey/internal/model"
)

// Dashboard scan limits: pages of ScanPageSize, at most ScanMaxPages pages.
const (
	ScanPageSize = docstore.MaxPageSize
	ScanMaxPages = 100
)

// ResponseRepo handles document-store operations for survey responses
type ResponseRepo interface {
	ExistsForOrder(ctx context.Context, orderID, surveyID string) (bool, error)
	Create(ctx context.Context, response *model.Response) (string, error)
	GetByID(ctx context.Context, id string) (*model.Response, error)
	Search(ctx context.Context, filter model.ResponseFilter) ([]model.Response, error)
	Batches(surveyID string) *ResponseBatches
	EnsureIndexes(ctx context.Context, uniqueOrders bool) error
}

type responseRepo struct {
	store        docstore.Client
	entity       docstore.Entity
	scanPageSize int
	scanMaxPages int
}

// ResponseRepoOption configures a response repository.
type ResponseRepoOption func(*responseRepo)

// WithScanLimits overrides the dashboard scan page size and page ceiling.
func WithScanLimits(pageSize, maxPages int) ResponseRepoOption {
	return func(r *responseRepo) {
		r.scanPageSize = pageSize
		r.scanMaxPages = maxPages
	}
}

// NewResponseRepo creates a new response repository
func NewResponseRepo(store docstore.Client, entity docstore.Entity, opts ...ResponseRepoOption) ResponseRepo {
	r := &responseRepo{
		store:        store,
		entity:       entity,
		scanPageSize: ScanPageSize,
		scanMaxPages: ScanMaxPages,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *responseRepo) ExistsForOrder(ctx context.Context, orderID, surveyID string) (bool, error) {
	found, err := r.store.SearchDocuments(ctx, r.entity, docstore.Query{
		Fields: []string{docstore.FieldID},
		Where: docstore.Where{
			docstore.Eq("orderId", orderID),
			docstore.Eq("surveyId", surveyID),
		},
		Page:     1,
		PageSize: 1,
	})
	if err != nil {
		return false, fmt.Errorf("check order %s for survey %s: %w", orderID, surveyID, err)
	}
	return len(found) > 0, nil
}

func (r *responseRepo) Create(ctx context.Context, response *model.Response) (string, error) {
	id, err := r.store.CreateDocument(ctx, r.entity, response)
	if err != nil {
		return "", fmt.Errorf("create response: %w", err)
	}
	return id, nil
}

// GetByID returns nil, nil when the response does not exist.
func (r *responseRepo) GetByID(ctx context.Context, id string) (*model.Response, error) {
	response, err := docstore.Get[model.Response](ctx, r.store, r.entity, id, model.ResponseFields)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get response %s: %w", id, err)
	}
	return response, nil
}

// Search returns one page of a survey's responses, newest first.
func (r *responseRepo) Search(ctx context.Context, filter model.ResponseFilter) ([]model.Response, error) {
	where := docstore.Where{docstore.Eq("surveyId", filter.SurveyID)}
	if !filter.DateFrom.IsZero() {
		where = append(where, docstore.Gte("respondedAt", filter.DateFrom))
	}
	if !filter.DateTo.IsZero() {
		where = append(where, docstore.Lte("respondedAt", filter.DateTo))
	}

	responses, err := docstore.Search[model.Response](ctx, r.store, r.entity, docstore.Query{
		Fields:   model.ResponseFields,
		Where:    where,
		Sort:     &docstore.Sort{Field: "respondedAt", Desc: true},
		Page:     filter.Page,
		PageSize: filter.PageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("search responses for survey %s: %w", filter.SurveyID, err)
	}
	return responses, nil
}

// Batches starts a bounded scan over every response of a survey.
func (r *responseRepo) Batches(surveyID string) *ResponseBatches {
	return &ResponseBatches{
		store:    r.store,
		entity:   r.entity,
		surveyID: surveyID,
		pageSize: r.scanPageSize,
		maxPages: r.scanMaxPages,
	}
}

// EnsureIndexes creates the lookup indexes. With uniqueOrders the
// (orderId, surveyId) pair is enforced unique by the store.
func (r *responseRepo) EnsureIndexes(ctx context.Context, uniqueOrders bool) error {
	ix, ok := r.store.(docstore.Indexer)
	if !ok {
		return nil
	}
	order := docstore.Index{Name: "orderId_surveyId", Keys: []string{"orderId", "surveyId"}}
	if uniqueOrders {
		order = docstore.Index{Name: "orderId_surveyId_unique", Keys: []string{"orderId", "surveyId"}, Unique: true}
	}
	return ix.EnsureIndexes(ctx, r.entity, []docstore.Index{
		order,
		{Name: "surveyId_respondedAt", Keys: []string{"surveyId", "respondedAt"}},
	})
}
