package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postsurvey/internal/docstore"
	"postsurvey/internal/lock"
	"postsurvey/internal/model"
)

func TestSubmitResponse(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	ctx := context.Background()
	survey := env.createSurvey(t, true)

	res, err := env.responseSvc.SubmitResponse(ctx, model.ResponseInput{
		SurveyID:       survey.ID,
		SelectedOption: model.OtherOption,
		OtherText:      "A podcast",
		OrderID:        "ORD-1234567",
		ClientEmail:    "maria@example.com",
	})
	require.NoError(t, err)
	assert.True(t, res.CounterUpdated)

	r := res.Response
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, survey.ID, r.SurveyID)
	assert.Equal(t, model.OtherOption, r.SelectedOption)
	assert.Equal(t, "A podcast", r.OtherText)
	assert.Equal(t, "ORD-1234567", r.OrderID)
	assert.Equal(t, "maria@example.com", r.ClientEmail)
	assert.WithinDuration(t, time.Now(), r.RespondedAt, 5*time.Second)

	got, _ := env.surveySvc.GetSurvey(ctx, survey.ID)
	assert.Equal(t, 1, got.ResponseCount)
}

func TestSubmitResponse_OptionIsNotChecked(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	survey := env.createSurvey(t, false, "X", "Y")

	res := env.submit(t, survey.ID, "ORD-1", "Z")
	assert.Equal(t, "Z", res.Response.SelectedOption)
}

func TestSubmitResponse_SecondSubmissionRejected(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	ctx := context.Background()
	survey := env.createSurvey(t, true)

	env.submit(t, survey.ID, "ORD-1", "X")
	_, err := env.responseSvc.SubmitResponse(ctx, model.ResponseInput{
		SurveyID: survey.ID, SelectedOption: "Y", OrderID: "ORD-1", ClientEmail: "a@example.com",
	})
	assert.ErrorIs(t, err, ErrOrderAlreadyResponded)
	assert.True(t, IsValidation(err))
	assert.Equal(t, 1, env.store.Count("create", responseEntity.Name))

	other := env.submit(t, survey.ID, "ORD-2", "Y")
	assert.NotEmpty(t, other.Response.ID)

	page, err := env.responseSvc.GetResponses(ctx, model.ResponseFilter{SurveyID: survey.ID})
	require.NoError(t, err)
	count := 0
	for _, r := range page.Data {
		if r.OrderID == "ORD-1" {
			count++
		}
	}
	assert.Equal(t, 1, count)

	got, _ := env.surveySvc.GetSurvey(ctx, survey.ID)
	assert.Equal(t, 2, got.ResponseCount)
}

func TestSubmitResponse_CounterFailureIsSwallowed(t *testing.T) {
	tests := []struct {
		name string
		fail func(env *testEnv)
	}{
		{"counter write fails", func(env *testEnv) { env.store.Fail(failOn("update", surveyEntity.Name)) }},
		{"counter read fails", func(env *testEnv) { env.store.Fail(failOn("get", surveyEntity.Name)) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, envOptions{})
			survey := env.createSurvey(t, true)
			tt.fail(env)

			res := env.submit(t, survey.ID, "ORD-1", "X")
			assert.False(t, res.CounterUpdated)
			assert.NotEmpty(t, res.Response.ID)

			env.store.Fail(nil)
			got, _ := env.surveySvc.GetSurvey(context.Background(), survey.ID)
			assert.Equal(t, 0, got.ResponseCount)
		})
	}

	t.Run("survey missing", func(t *testing.T) {
		env := newTestEnv(t, envOptions{})
		res := env.submit(t, "000000000000000000000000", "ORD-1", "X")
		assert.False(t, res.CounterUpdated)
	})
}

func TestSubmitResponse_StoreFailures(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	survey := env.createSurvey(t, true)
	input := model.ResponseInput{SurveyID: survey.ID, SelectedOption: "X", OrderID: "ORD-1"}

	env.store.Fail(failOn("search", responseEntity.Name))
	_, err := env.responseSvc.SubmitResponse(context.Background(), input)
	assert.ErrorIs(t, err, errStoreDown)
	assert.Zero(t, env.store.Count("create", responseEntity.Name))

	env.store.Fail(failOn("create", responseEntity.Name))
	_, err = env.responseSvc.SubmitResponse(context.Background(), input)
	assert.ErrorIs(t, err, errStoreDown)
	assert.Zero(t, env.store.Count("update", surveyEntity.Name))
}

func concurrentSubmit(env *testEnv, surveyID string, n int) []error {
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.responseSvc.SubmitResponse(context.Background(), model.ResponseInput{
				SurveyID:       surveyID,
				SelectedOption: "X",
				OrderID:        "ORD-RACE",
				ClientEmail:    "race@example.com",
			})
		}(i)
	}
	wg.Wait()
	return errs
}

func TestSubmitResponse_ConcurrentDuplicates(t *testing.T) {
	tests := []struct {
		name string
		opts envOptions
	}{
		{"unique index", envOptions{uniqueOrders: true}},
		{"order lock", envOptions{locker: lock.NewLocalLocker(time.Minute)}},
		{"lock and index", envOptions{locker: lock.NewLocalLocker(time.Minute), uniqueOrders: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, tt.opts)
			survey := env.createSurvey(t, true)

			errs := concurrentSubmit(env, survey.ID, 16)
			for _, err := range errs {
				if err != nil {
					assert.True(t, errors.Is(err, ErrOrderAlreadyResponded) || errors.Is(err, ErrConcurrentUpdate), "unexpected error %v", err)
				}
			}

			stored, err := env.responses.Search(context.Background(), model.ResponseFilter{
				SurveyID: survey.ID, Page: 1, PageSize: docstore.MaxPageSize,
			})
			require.NoError(t, err)
			assert.Len(t, stored, 1)
		})
	}
}

func TestGetResponses(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	ctx := context.Background()
	survey := env.createSurvey(t, true)
	base := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	tick := 0
	env.responseSvc.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Hour)
	}
	for i := 1; i <= 12; i++ {
		env.submit(t, survey.ID, fmt.Sprintf("ORD-%02d", i), "X")
	}
	env.submit(t, "another-survey", "ORD-01", "X")

	t.Run("defaults", func(t *testing.T) {
		page, err := env.responseSvc.GetResponses(ctx, model.ResponseFilter{SurveyID: survey.ID})
		require.NoError(t, err)
		assert.Equal(t, DefaultPage, page.Page)
		assert.Equal(t, DefaultPageSize, page.PageSize)
		require.Len(t, page.Data, 10)
		assert.Equal(t, 10, page.Total)
		assert.Equal(t, "ORD-12", page.Data[0].OrderID)
		assert.Equal(t, "ORD-03", page.Data[9].OrderID)
	})

	t.Run("total is the page length", func(t *testing.T) {
		page, err := env.responseSvc.GetResponses(ctx, model.ResponseFilter{SurveyID: survey.ID, Page: 2, PageSize: 10})
		require.NoError(t, err)
		assert.Equal(t, 2, page.Total)
		assert.Equal(t, "ORD-01", page.Data[1].OrderID)
	})

	t.Run("inclusive date range", func(t *testing.T) {
		page, err := env.responseSvc.GetResponses(ctx, model.ResponseFilter{
			SurveyID: survey.ID,
			DateFrom: base.Add(3 * time.Hour),
			DateTo:   base.Add(5 * time.Hour),
		})
		require.NoError(t, err)
		require.Len(t, page.Data, 3)
		assert.Equal(t, []string{"ORD-05", "ORD-04", "ORD-03"},
			[]string{page.Data[0].OrderID, page.Data[1].OrderID, page.Data[2].OrderID})
	})

	t.Run("open upper bound", func(t *testing.T) {
		page, err := env.responseSvc.GetResponses(ctx, model.ResponseFilter{
			SurveyID: survey.ID, PageSize: 100, DateFrom: base.Add(11 * time.Hour),
		})
		require.NoError(t, err)
		assert.Len(t, page.Data, 2)
	})

	t.Run("empty page", func(t *testing.T) {
		page, err := env.responseSvc.GetResponses(ctx, model.ResponseFilter{SurveyID: survey.ID, Page: 9})
		require.NoError(t, err)
		assert.NotNil(t, page.Data)
		assert.Zero(t, page.Total)
	})

	t.Run("oversized page", func(t *testing.T) {
		_, err := env.responseSvc.GetResponses(ctx, model.ResponseFilter{SurveyID: survey.ID, PageSize: 101})
		assert.ErrorIs(t, err, docstore.ErrInvalidQuery)
	})
}
