package service

import (
	"context"
	"math"
	"sort"

	"github.com/rs/zerolog"

	"postsurvey/internal/log"
	"postsurvey/internal/metrics"
	"postsurvey/internal/model"
	"postsurvey/internal/repository"
)

// DashboardService computes option distributions from a full response scan
type DashboardService struct {
	surveyRepo   repository.SurveyRepo
	responseRepo repository.ResponseRepo
	logger       zerolog.Logger
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(surveyRepo repository.SurveyRepo, responseRepo repository.ResponseRepo) *DashboardService {
	return &DashboardService{
		surveyRepo:   surveyRepo,
		responseRepo: responseRepo,
		logger:       log.WithComponent("dashboard-service"),
	}
}

// GetSurveyDashboard tallies every response of a survey by selected option.
// The scan is bounded, so very large surveys undercount and the result is
// marked Truncated.
func (s *DashboardService) GetSurveyDashboard(ctx context.Context, surveyID string) (*model.Dashboard, error) {
	logger := log.WithSurveyID(s.logger, surveyID)

	survey, err := s.surveyRepo.GetByID(ctx, surveyID)
	if err != nil {
		logger.Warn().Err(err).Msg("survey lookup failed, treating as not found")
		return nil, ErrSurveyNotFound
	}
	if survey == nil {
		return nil, ErrSurveyNotFound
	}

	counts := make(map[string]int)
	var order []string
	total := 0

	batches := s.responseRepo.Batches(surveyID)
	for batches.Next(ctx) {
		for _, r := range batches.Batch() {
			if _, seen := counts[r.SelectedOption]; !seen {
				order = append(order, r.SelectedOption)
			}
			counts[r.SelectedOption]++
			total++
		}
	}
	if err := batches.Err(); err != nil {
		return nil, err
	}
	if batches.Truncated() {
		metrics.DashboardScanTruncatedTotal.Inc()
		logger.Warn().Int("pages", batches.Pages()).Int("total", total).Msg("dashboard scan hit page ceiling")
	}

	return &model.Dashboard{
		SurveyID:       surveyID,
		Question:       survey.Question,
		TotalResponses: total,
		Distribution:   distribution(order, counts, total),
		Truncated:      batches.Truncated(),
	}, nil
}

// distribution orders options by count, descending. Ties keep the order in
// which options were first seen.
func distribution(order []string, counts map[string]int, total int) []model.OptionCount {
	out := make([]model.OptionCount, 0, len(order))
	for _, option := range order {
		out = append(out, model.OptionCount{
			Option:     option,
			Count:      counts[option],
			Percentage: percentage(counts[option], total),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

func percentage(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(count)/float64(total)*10000) / 100
}
