package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postsurvey/internal/docstore"
	"postsurvey/internal/model"
)

var (
	surveyEntity   = docstore.Entity{Name: "zpd_surveys", Schema: "survey-schema-v1"}
	responseEntity = docstore.Entity{Name: "zpd_responses", Schema: "response-schema-v1"}
)

func TestSurveyRepo_ListNewestFirstCapped(t *testing.T) {
	ctx := context.Background()
	repo := NewSurveyRepo(docstore.NewMemoryClient(), surveyEntity)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < ListLimit+5; i++ {
		_, err := repo.Create(ctx, &model.Survey{
			Question:  fmt.Sprintf("q%d", i),
			Options:   []string{"a", "b"},
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	surveys, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, surveys, ListLimit)
	assert.Equal(t, fmt.Sprintf("q%d", ListLimit+4), surveys[0].Question)
	for i := 1; i < len(surveys); i++ {
		assert.False(t, surveys[i].CreatedAt.After(surveys[i-1].CreatedAt))
	}
}

func TestSurveyRepo_GetMissingIsNil(t *testing.T) {
	repo := NewSurveyRepo(docstore.NewMemoryClient(), surveyEntity)
	survey, err := repo.GetByID(context.Background(), "000000000000000000000000")
	assert.NoError(t, err)
	assert.Nil(t, survey)
}

func TestSurveyRepo_FindActiveAndUpdate(t *testing.T) {
	ctx := context.Background()
	repo := NewSurveyRepo(docstore.NewMemoryClient(), surveyEntity)

	id, err := repo.Create(ctx, &model.Survey{Question: "q", Options: []string{"a", "b"}, IsActive: true})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &model.Survey{Question: "r", Options: []string{"a", "b"}})
	require.NoError(t, err)

	active, err := repo.FindActive(ctx, 10)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, id, active[0].ID)

	require.NoError(t, repo.UpdateFields(ctx, id, docstore.Fields{"isActive": false}))
	active, err = repo.FindActive(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, active)

	require.NoError(t, repo.Delete(ctx, id))
	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func seedResponses(t *testing.T, repo ResponseRepo, surveyID string, n int, start time.Time) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := repo.Create(context.Background(), &model.Response{
			SurveyID:       surveyID,
			SelectedOption: fmt.Sprintf("opt%d", i%3),
			OrderID:        fmt.Sprintf("%s-order-%d", surveyID, i),
			ClientEmail:    "shopper@example.com",
			RespondedAt:    start.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}
}

func TestResponseRepo_ExistsForOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewResponseRepo(docstore.NewMemoryClient(), responseEntity)
	seedResponses(t, repo, "s1", 2, time.Now())

	ok, err := repo.ExistsForOrder(ctx, "s1-order-1", "s1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.ExistsForOrder(ctx, "s1-order-1", "s2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResponseRepo_SearchRangeAndOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewResponseRepo(docstore.NewMemoryClient(), responseEntity)
	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	seedResponses(t, repo, "s1", 6, start)
	seedResponses(t, repo, "s2", 3, start)

	got, err := repo.Search(ctx, model.ResponseFilter{
		SurveyID: "s1",
		Page:     1,
		PageSize: 10,
		DateFrom: start.Add(1 * time.Hour),
		DateTo:   start.Add(4 * time.Hour),
	})
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, "s1-order-4", got[0].OrderID)
	assert.Equal(t, "s1-order-1", got[3].OrderID)
	for _, r := range got {
		assert.Equal(t, "s1", r.SurveyID)
	}
}

func TestResponseBatches(t *testing.T) {
	tests := []struct {
		name          string
		responses     int
		pageSize      int
		maxPages      int
		wantSeen      int
		wantPages     int
		wantTruncated bool
	}{
		{"empty", 0, 2, 3, 0, 1, false},
		{"short last page", 5, 2, 5, 5, 3, false},
		{"exact multiple", 4, 2, 5, 4, 3, false},
		{"exactly fills ceiling", 6, 2, 3, 6, 3, false},
		{"ceiling", 7, 2, 3, 6, 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			repo := NewResponseRepo(docstore.NewMemoryClient(), responseEntity, WithScanLimits(tt.pageSize, tt.maxPages))
			seedResponses(t, repo, "s1", tt.responses, time.Now())
			seedResponses(t, repo, "other", 3, time.Now())

			it := repo.Batches("s1")
			seen := 0
			for it.Next(ctx) {
				assert.LessOrEqual(t, len(it.Batch()), tt.pageSize)
				seen += len(it.Batch())
			}
			require.NoError(t, it.Err())
			assert.Equal(t, tt.wantSeen, seen)
			assert.Equal(t, tt.wantPages, it.Pages())
			assert.Equal(t, tt.wantTruncated, it.Truncated())
			assert.False(t, it.Next(ctx))
		})
	}
}

func TestResponseBatches_StopsOnCancel(t *testing.T) {
	repo := NewResponseRepo(docstore.NewMemoryClient(), responseEntity, WithScanLimits(1, 10))
	seedResponses(t, repo, "s1", 5, time.Now())

	ctx, cancel := context.WithCancel(context.Background())
	it := repo.Batches("s1")
	require.True(t, it.Next(ctx))
	cancel()
	assert.False(t, it.Next(ctx))
	assert.ErrorIs(t, it.Err(), context.Canceled)
	assert.Equal(t, 1, it.Pages())
}

func TestResponseRepo_UniqueOrderIndex(t *testing.T) {
	ctx := context.Background()
	repo := NewResponseRepo(docstore.NewMemoryClient(), responseEntity)
	require.NoError(t, repo.EnsureIndexes(ctx, true))

	r := &model.Response{SurveyID: "s1", OrderID: "o1", SelectedOption: "a"}
	_, err := repo.Create(ctx, r)
	require.NoError(t, err)
	_, err = repo.Create(ctx, &model.Response{SurveyID: "s1", OrderID: "o1", SelectedOption: "b"})
	assert.ErrorIs(t, err, docstore.ErrDuplicate)
}
