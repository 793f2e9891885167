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

// ActiveScanLimit bounds the deactivate-others scan. More active surveys
// than this are left active.
const ActiveScanLimit = 10

// SurveyService handles survey CRUD and the single-active rule
type SurveyService struct {
	surveyRepo repository.SurveyRepo
	locker     lock.Locker
	logger     zerolog.Logger
	now        func() time.Time
}

// NewSurveyService creates a new survey service. locker may be nil.
func NewSurveyService(surveyRepo repository.SurveyRepo, locker lock.Locker) *SurveyService {
	return &SurveyService{
		surveyRepo: surveyRepo,
		locker:     locker,
		logger:     log.WithComponent("survey-service"),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// ListSurveys returns the newest surveys first, capped at
// repository.ListLimit.
func (s *SurveyService) ListSurveys(ctx context.Context) ([]model.Survey, error) {
	return s.surveyRepo.List(ctx)
}

// GetSurvey looks a survey up by id. Store failures are logged and reported
// as not found.
func (s *SurveyService) GetSurvey(ctx context.Context, id string) (*model.Survey, bool) {
	survey, err := s.surveyRepo.GetByID(ctx, id)
	if err != nil {
		logger := log.WithSurveyID(s.logger, id)
		logger.Warn().Err(err).Msg("survey lookup failed, treating as not found")
		return nil, false
	}
	return survey, survey != nil
}

// GetActiveSurvey returns the active survey, or nil when none is active.
// If several are active the first match wins.
func (s *SurveyService) GetActiveSurvey(ctx context.Context) (*model.Survey, error) {
	active, err := s.surveyRepo.FindActive(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return nil, nil
	}
	return &active[0], nil
}

// CreateSurvey stores a new survey. When it is created active, the
// currently active surveys are deactivated first.
func (s *SurveyService) CreateSurvey(ctx context.Context, input model.SurveyInput) (*model.Survey, error) {
	if msg := input.Normalize(); msg != "" {
		return nil, &ValidationError{Message: msg}
	}
	if len(input.Options) < model.MinSurveyOptions {
		return nil, ErrTooFewOptions
	}

	if input.Activates() {
		release, err := acquire(ctx, s.locker, lock.ActivationKey, s.logger)
		if err != nil {
			return nil, err
		}
		defer release()

		if err := s.deactivateOthers(ctx, ""); err != nil {
			return nil, err
		}
	}

	now := s.now()
	survey := &model.Survey{
		Question:      input.Question,
		Options:       input.Options,
		IsActive:      input.Activates(),
		AllowOther:    input.AllowOther != nil && *input.AllowOther,
		ResponseCount: 0,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	id, err := s.surveyRepo.Create(ctx, survey)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("survey_id", id).Bool("active", survey.IsActive).Msg("survey created")

	return s.reload(ctx, id)
}

// UpdateSurvey overwrites the question and options, and the flags the input
// sets.
func (s *SurveyService) UpdateSurvey(ctx context.Context, id string, input model.SurveyInput) (*model.Survey, error) {
	if _, found := s.GetSurvey(ctx, id); !found {
		return nil, ErrSurveyNotFound
	}
	if msg := input.Normalize(); msg != "" {
		return nil, &ValidationError{Message: msg}
	}
	if len(input.Options) < model.MinSurveyOptions {
		return nil, ErrTooFewOptions
	}

	if input.Activates() {
		release, err := acquire(ctx, s.locker, lock.ActivationKey, s.logger)
		if err != nil {
			return nil, err
		}
		defer release()

		if err := s.deactivateOthers(ctx, id); err != nil {
			return nil, err
		}
	}

	fields := docstore.Fields{
		"question":  input.Question,
		"options":   input.Options,
		"updatedAt": s.now(),
	}
	if input.IsActive != nil {
		fields["isActive"] = *input.IsActive
	}
	if input.AllowOther != nil {
		fields["allowOther"] = *input.AllowOther
	}
	if err := s.surveyRepo.UpdateFields(ctx, id, fields); err != nil {
		return nil, surveyGone(err)
	}

	survey, err := s.reload(ctx, id)
	return survey, surveyGone(err)
}

// DeleteSurvey removes an inactive survey. Its responses are kept.
func (s *SurveyService) DeleteSurvey(ctx context.Context, id string) error {
	survey, found := s.GetSurvey(ctx, id)
	if !found {
		return ErrSurveyNotFound
	}
	if survey.IsActive {
		return ErrDeleteActive
	}
	if err := s.surveyRepo.Delete(ctx, id); err != nil {
		return surveyGone(err)
	}
	s.logger.Info().Str("survey_id", id).Msg("survey deleted")
	return nil
}

// ToggleSurveyStatus activates or deactivates a survey. Activation
// deactivates every other active survey first.
func (s *SurveyService) ToggleSurveyStatus(ctx context.Context, id string, isActive bool) (*model.Survey, error) {
	if _, found := s.GetSurvey(ctx, id); !found {
		return nil, ErrSurveyNotFound
	}

	if isActive {
		release, err := acquire(ctx, s.locker, lock.ActivationKey, s.logger)
		if err != nil {
			return nil, err
		}
		defer release()

		if err := s.deactivateOthers(ctx, id); err != nil {
			return nil, err
		}
	}

	err := s.surveyRepo.UpdateFields(ctx, id, docstore.Fields{
		"isActive":  isActive,
		"updatedAt": s.now(),
	})
	if err != nil {
		return nil, surveyGone(err)
	}
	s.logger.Info().Str("survey_id", id).Bool("active", isActive).Msg("survey status changed")

	survey, err := s.reload(ctx, id)
	return survey, surveyGone(err)
}

// deactivateOthers turns off up to ActiveScanLimit active surveys other
// than exceptID. It stops at the first failed write; surveys already
// deactivated stay deactivated.
func (s *SurveyService) deactivateOthers(ctx context.Context, exceptID string) error {
	active, err := s.surveyRepo.FindActive(ctx, ActiveScanLimit)
	if err != nil {
		return err
	}
	now := s.now()
	for _, other := range active {
		if other.ID == exceptID {
			continue
		}
		err := s.surveyRepo.UpdateFields(ctx, other.ID, docstore.Fields{
			"isActive":  false,
			"updatedAt": now,
		})
		if err != nil {
			return fmt.Errorf("deactivate survey %s: %w", other.ID, err)
		}
		metrics.SurveysDeactivatedTotal.Inc()
		logger := log.WithSurveyID(s.logger, other.ID)
		logger.Info().Msg("survey deactivated")
	}
	return nil
}

func (s *SurveyService) reload(ctx context.Context, id string) (*model.Survey, error) {
	survey, err := s.surveyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if survey == nil {
		return nil, fmt.Errorf("reload survey %s: %w", id, docstore.ErrNotFound)
	}
	return survey, nil
}

// surveyGone reports a survey removed between the existence check and the
// write as not found.
func surveyGone(err error) error {
	if errors.Is(err, docstore.ErrNotFound) {
		return ErrSurveyNotFound
	}
	return err
}
