package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"postsurvey/internal/docstore"
	"postsurvey/internal/lock"
	"postsurvey/internal/log"
	"postsurvey/internal/metrics"
	"postsurvey/internal/model"
	"postsurvey/internal/repository"
)

// Response page defaults.
const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

// SubmitResult is the outcome of SubmitResponse. CounterUpdated reports the
// best-effort responseCount increment; the submission succeeded either way.
type SubmitResult struct {
	Response       *model.Response `json:"response"`
	CounterUpdated bool            `json:"counterUpdated"`
}

// ResponseService records shopper responses and serves response pages
type ResponseService struct {
	responseRepo repository.ResponseRepo
	surveyRepo   repository.SurveyRepo
	locker       lock.Locker
	logger       zerolog.Logger
	now          func() time.Time
}

// NewResponseService creates a new response service. locker may be nil.
func NewResponseService(responseRepo repository.ResponseRepo, surveyRepo repository.SurveyRepo, locker lock.Locker) *ResponseService {
	return &ResponseService{
		responseRepo: responseRepo,
		surveyRepo:   surveyRepo,
		locker:       locker,
		logger:       log.WithComponent("response-service"),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// HasOrderResponded reports whether the order already answered the survey.
func (s *ResponseService) HasOrderResponded(ctx context.Context, orderID, surveyID string) (bool, error) {
	return s.responseRepo.ExistsForOrder(ctx, orderID, surveyID)
}

// SubmitResponse records one answer per (order, survey). The option is
// stored as given; it is not checked against the survey's options.
func (s *ResponseService) SubmitResponse(ctx context.Context, input model.ResponseInput) (*SubmitResult, error) {
	release, err := acquire(ctx, s.locker, lock.ResponseKey(input.SurveyID, input.OrderID), s.logger)
	if err != nil {
		return nil, err
	}
	defer release()

	exists, err := s.HasOrderResponded(ctx, input.OrderID, input.SurveyID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrOrderAlreadyResponded
	}

	response := &model.Response{
		SurveyID:       input.SurveyID,
		SelectedOption: input.SelectedOption,
		OtherText:      input.OtherText,
		OrderID:        input.OrderID,
		ClientEmail:    input.ClientEmail,
		RespondedAt:    s.now(),
	}
	id, err := s.responseRepo.Create(ctx, response)
	if errors.Is(err, docstore.ErrDuplicate) {
		return nil, ErrOrderAlreadyResponded
	}
	if err != nil {
		return nil, err
	}
	metrics.ResponsesSubmittedTotal.Inc()

	counterUpdated := s.incrementResponseCount(ctx, input.SurveyID)

	reloaded, err := s.responseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if reloaded == nil {
		return nil, fmt.Errorf("reload response %s: %w", id, docstore.ErrNotFound)
	}
	return &SubmitResult{Response: reloaded, CounterUpdated: counterUpdated}, nil
}

// incrementResponseCount reads the survey counter and writes it back plus
// one. Failures are logged and reported as false, never returned.
func (s *ResponseService) incrementResponseCount(ctx context.Context, surveyID string) bool {
	logger := log.WithSurveyID(s.logger, surveyID)

	survey, err := s.surveyRepo.GetByID(ctx, surveyID)
	if err == nil && survey == nil {
		err = docstore.ErrNotFound
	}
	if err == nil {
		err = s.surveyRepo.UpdateFields(ctx, surveyID, docstore.Fields{
			"responseCount": survey.ResponseCount + 1,
		})
	}
	if err != nil {
		metrics.ResponseCountFailuresTotal.Inc()
		logger.Warn().Err(err).Msg("failed to increment responseCount")
		return false
	}
	return true
}

// GetResponses returns one page of a survey's responses, newest first.
// Total is the size of the returned page.
func (s *ResponseService) GetResponses(ctx context.Context, filter model.ResponseFilter) (*model.ResponsePage, error) {
	if filter.Page <= 0 {
		filter.Page = DefaultPage
	}
	if filter.PageSize <= 0 {
		filter.PageSize = DefaultPageSize
	}

	responses, err := s.responseRepo.Search(ctx, filter)
	if err != nil {
		return nil, err
	}
	if responses == nil {
		responses = []model.Response{}
	}
	return &model.ResponsePage{
		Data:     responses,
		Total:    len(responses),
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}
