package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"postsurvey/internal/log"
	"postsurvey/internal/model"
	"postsurvey/internal/service"
)

// SurveyHandler handles survey endpoints
type SurveyHandler struct {
	surveySvc *service.SurveyService
	logger    zerolog.Logger
}

// NewSurveyHandler creates a new survey handler
func NewSurveyHandler(surveySvc *service.SurveyService) *SurveyHandler {
	return &SurveyHandler{
		surveySvc: surveySvc,
		logger:    log.WithComponent("survey-handler"),
	}
}

// DeleteResponse acknowledges a deletion.
type DeleteResponse struct {
	Success bool `json:"success"`
}

// List handles GET /v1/surveys
//
//	@Summary	List the 100 newest surveys
//	@Tags		surveys
//	@Produce	json
//	@Success	200	{array}	model.Survey
//	@Router		/surveys [get]
func (h *SurveyHandler) List(w http.ResponseWriter, r *http.Request) {
	surveys, err := h.surveySvc.ListSurveys(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	if surveys == nil {
		surveys = []model.Survey{}
	}
	writeJSON(w, http.StatusOK, surveys)
}

// Create handles POST /v1/surveys
//
//	@Summary	Create a survey
//	@Tags		surveys
//	@Accept		json
//	@Produce	json
//	@Param		survey	body		model.SurveyInput	true	"Survey"
//	@Success	201		{object}	model.Survey
//	@Failure	400		{object}	ErrorResponse
//	@Failure	409		{object}	ErrorResponse
//	@Router		/surveys [post]
func (h *SurveyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.SurveyInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	survey, err := h.surveySvc.CreateSurvey(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, survey)
}

// GetActive handles GET /v1/surveys/active
//
//	@Summary	Get the survey shown to shoppers
//	@Tags		surveys
//	@Produce	json
//	@Success	200	{object}	model.Survey
//	@Success	204
//	@Router		/surveys/active [get]
func (h *SurveyHandler) GetActive(w http.ResponseWriter, r *http.Request) {
	survey, err := h.surveySvc.GetActiveSurvey(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	if survey == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, survey)
}

// Get handles GET /v1/surveys/{surveyId}
//
//	@Summary	Get a survey
//	@Tags		surveys
//	@Produce	json
//	@Param		surveyId	path		string	true	"Survey ID"
//	@Success	200			{object}	model.Survey
//	@Failure	404			{object}	ErrorResponse
//	@Router		/surveys/{surveyId} [get]
func (h *SurveyHandler) Get(w http.ResponseWriter, r *http.Request) {
	survey, found := h.surveySvc.GetSurvey(r.Context(), mux.Vars(r)["surveyId"])
	if !found {
		writeError(w, http.StatusNotFound, service.ErrSurveyNotFound.Message)
		return
	}
	writeJSON(w, http.StatusOK, survey)
}

// Update handles PUT /v1/surveys/{surveyId}
//
//	@Summary	Update a survey
//	@Tags		surveys
//	@Accept		json
//	@Produce	json
//	@Param		surveyId	path		string				true	"Survey ID"
//	@Param		survey		body		model.SurveyInput	true	"Survey"
//	@Success	200			{object}	model.Survey
//	@Failure	400			{object}	ErrorResponse
//	@Failure	404			{object}	ErrorResponse
//	@Router		/surveys/{surveyId} [put]
func (h *SurveyHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.SurveyInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	survey, err := h.surveySvc.UpdateSurvey(r.Context(), mux.Vars(r)["surveyId"], req)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, survey)
}

// Delete handles DELETE /v1/surveys/{surveyId}
//
//	@Summary	Delete an inactive survey
//	@Tags		surveys
//	@Produce	json
//	@Param		surveyId	path		string	true	"Survey ID"
//	@Success	200			{object}	DeleteResponse
//	@Failure	400			{object}	ErrorResponse
//	@Failure	404			{object}	ErrorResponse
//	@Router		/surveys/{surveyId} [delete]
func (h *SurveyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.surveySvc.DeleteSurvey(r.Context(), mux.Vars(r)["surveyId"]); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, DeleteResponse{Success: true})
}

// ToggleStatus handles PATCH /v1/surveys/{surveyId}/status
//
//	@Summary	Activate or deactivate a survey
//	@Tags		surveys
//	@Accept		json
//	@Produce	json
//	@Param		surveyId	path		string				true	"Survey ID"
//	@Param		status		body		model.StatusInput	true	"Status"
//	@Success	200			{object}	model.Survey
//	@Failure	400			{object}	ErrorResponse
//	@Failure	404			{object}	ErrorResponse
//	@Failure	409			{object}	ErrorResponse
//	@Router		/surveys/{surveyId}/status [patch]
func (h *SurveyHandler) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	var req model.StatusInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.IsActive == nil {
		writeError(w, http.StatusBadRequest, "isActive is required")
		return
	}

	survey, err := h.surveySvc.ToggleSurveyStatus(r.Context(), mux.Vars(r)["surveyId"], *req.IsActive)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, survey)
}
