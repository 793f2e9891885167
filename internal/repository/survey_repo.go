package repository

import (
	"context"
	"errors"
	"fmt"

	"postsurvey/internal/docstore"
	"postsurvey/internal/model"
)

// ListLimit is how many surveys List returns. Older surveys are not reachable
// through listing.
const ListLimit = 100

// SurveyRepo handles document-store operations for surveys
type SurveyRepo interface {
	List(ctx context.Context) ([]model.Survey, error)
	GetByID(ctx context.Context, id string) (*model.Survey, error)
	FindActive(ctx context.Context, limit int) ([]model.Survey, error)
	Create(ctx context.Context, survey *model.Survey) (string, error)
	UpdateFields(ctx context.Context, id string, fields docstore.Fields) error
	Delete(ctx context.Context, id string) error
	EnsureIndexes(ctx context.Context) error
}

type surveyRepo struct {
	store  docstore.Client
	entity docstore.Entity
}

// NewSurveyRepo creates a new survey repository
func NewSurveyRepo(store docstore.Client, entity docstore.Entity) SurveyRepo {
	return &surveyRepo{store: store, entity: entity}
}

// List returns the most recently created surveys, newest first.
func (r *surveyRepo) List(ctx context.Context) ([]model.Survey, error) {
	surveys, err := docstore.Search[model.Survey](ctx, r.store, r.entity, docstore.Query{
		Fields:   model.SurveyFields,
		Sort:     &docstore.Sort{Field: "createdAt", Desc: true},
		Page:     1,
		PageSize: ListLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("list surveys: %w", err)
	}
	return surveys, nil
}

// GetByID returns nil, nil when the survey does not exist.
func (r *surveyRepo) GetByID(ctx context.Context, id string) (*model.Survey, error) {
	survey, err := docstore.Get[model.Survey](ctx, r.store, r.entity, id, model.SurveyFields)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get survey %s: %w", id, err)
	}
	return survey, nil
}

// FindActive returns up to limit surveys flagged active, in store order.
func (r *surveyRepo) FindActive(ctx context.Context, limit int) ([]model.Survey, error) {
	surveys, err := docstore.Search[model.Survey](ctx, r.store, r.entity, docstore.Query{
		Fields:   model.SurveyFields,
		Where:    docstore.Where{docstore.Eq("isActive", true)},
		Page:     1,
		PageSize: limit,
	})
	if err != nil {
		return nil, fmt.Errorf("find active surveys: %w", err)
	}
	return surveys, nil
}

func (r *surveyRepo) Create(ctx context.Context, survey *model.Survey) (string, error) {
	id, err := r.store.CreateDocument(ctx, r.entity, survey)
	if err != nil {
		return "", fmt.Errorf("create survey: %w", err)
	}
	return id, nil
}

func (r *surveyRepo) UpdateFields(ctx context.Context, id string, fields docstore.Fields) error {
	if err := r.store.UpdatePartialDocument(ctx, r.entity, id, fields); err != nil {
		return fmt.Errorf("update survey %s: %w", id, err)
	}
	return nil
}

func (r *surveyRepo) Delete(ctx context.Context, id string) error {
	if err := r.store.DeleteDocument(ctx, r.entity, id); err != nil {
		return fmt.Errorf("delete survey %s: %w", id, err)
	}
	return nil
}

// EnsureIndexes creates the lookup indexes when the backend supports them.
func (r *surveyRepo) EnsureIndexes(ctx context.Context) error {
	ix, ok := r.store.(docstore.Indexer)
	if !ok {
		return nil
	}
	return ix.EnsureIndexes(ctx, r.entity, []docstore.Index{
		{Name: "isActive", Keys: []string{"isActive"}},
		{Name: "createdAt", Keys: []string{"createdAt"}},
	})
}
