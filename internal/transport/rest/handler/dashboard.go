package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"postsurvey/internal/log"
	"postsurvey/internal/service"
)

// DashboardHandler serves survey dashboards
type DashboardHandler struct {
	dashboardSvc *service.DashboardService
	logger       zerolog.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardSvc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardSvc: dashboardSvc,
		logger:       log.WithComponent("dashboard-handler"),
	}
}

// Get handles GET /v1/surveys/{surveyId}/dashboard
//
//	@Summary	Option distribution of a survey
//	@Tags		dashboard
//	@Produce	json
//	@Param		surveyId	path		string	true	"Survey ID"
//	@Success	200			{object}	model.Dashboard
//	@Failure	404			{object}	ErrorResponse
//	@Router		/surveys/{surveyId}/dashboard [get]
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.dashboardSvc.GetSurveyDashboard(r.Context(), mux.Vars(r)["surveyId"])
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}
