package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"postsurvey/internal/docstore"
	"postsurvey/internal/docstore/docstoretest"
	"postsurvey/internal/lock"
	"postsurvey/internal/model"
	"postsurvey/internal/repository"
)

var (
	surveyEntity   = docstore.Entity{Name: "zpd_surveys", Schema: "survey-schema-v1"}
	responseEntity = docstore.Entity{Name: "zpd_responses", Schema: "response-schema-v1"}
	errStoreDown   = errors.New("store unavailable")
)

type testEnv struct {
	store     *docstoretest.FaultyClient
	surveys   repository.SurveyRepo
	responses repository.ResponseRepo

	surveySvc    *SurveyService
	responseSvc  *ResponseService
	dashboardSvc *DashboardService
}

type envOptions struct {
	locker       lock.Locker
	uniqueOrders bool
	repoOpts     []repository.ResponseRepoOption
}

func newTestEnv(t *testing.T, opts envOptions) *testEnv {
	t.Helper()
	store := docstoretest.NewFaultyClient(docstore.NewMemoryClient())
	surveys := repository.NewSurveyRepo(store, surveyEntity)
	responses := repository.NewResponseRepo(store, responseEntity, opts.repoOpts...)
	require.NoError(t, responses.EnsureIndexes(context.Background(), opts.uniqueOrders))

	return &testEnv{
		store:        store,
		surveys:      surveys,
		responses:    responses,
		surveySvc:    NewSurveyService(surveys, opts.locker),
		responseSvc:  NewResponseService(responses, surveys, opts.locker),
		dashboardSvc: NewDashboardService(surveys, responses),
	}
}

func boolPtr(b bool) *bool { return &b }

func (e *testEnv) createSurvey(t *testing.T, active bool, options ...string) *model.Survey {
	t.Helper()
	if len(options) == 0 {
		options = []string{"X", "Y"}
	}
	survey, err := e.surveySvc.CreateSurvey(context.Background(), model.SurveyInput{
		Question: "How did you hear about us?",
		Options:  options,
		IsActive: boolPtr(active),
	})
	require.NoError(t, err)
	return survey
}

func (e *testEnv) activeCount(t *testing.T) int {
	t.Helper()
	active, err := e.surveys.FindActive(context.Background(), docstore.MaxPageSize)
	require.NoError(t, err)
	return len(active)
}

func (e *testEnv) submit(t *testing.T, surveyID, orderID, option string) *SubmitResult {
	t.Helper()
	res, err := e.responseSvc.SubmitResponse(context.Background(), model.ResponseInput{
		SurveyID:       surveyID,
		SelectedOption: option,
		OrderID:        orderID,
		ClientEmail:    "shopper@example.com",
	})
	require.NoError(t, err)
	return res
}

// failOn fails every call matching op and entity.
func failOn(op, entity string) func(docstoretest.Call) error {
	return func(c docstoretest.Call) error {
		if c.Op == op && c.Entity == entity {
			return errStoreDown
		}
		return nil
	}
}

// brokenLocker fails every acquisition with a backend error.
type brokenLocker struct{}

func (brokenLocker) Lock(context.Context, string) (lock.Unlock, error) {
	return nil, errors.New("redis: connection refused")
}
