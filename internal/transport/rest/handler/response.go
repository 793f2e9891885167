package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"postsurvey/internal/log"
	"postsurvey/internal/model"
	"postsurvey/internal/service"
)

// ResponseHandler handles shopper response endpoints
type ResponseHandler struct {
	responseSvc *service.ResponseService
	logger      zerolog.Logger
}

// NewResponseHandler creates a new response handler
func NewResponseHandler(responseSvc *service.ResponseService) *ResponseHandler {
	return &ResponseHandler{
		responseSvc: responseSvc,
		logger:      log.WithComponent("response-handler"),
	}
}

// ExistsResponse answers whether an order already responded.
type ExistsResponse struct {
	Responded bool `json:"responded"`
}

// Exists handles GET /v1/responses/exists?orderId=&surveyId=
//
//	@Summary	Check whether an order already answered a survey
//	@Tags		responses
//	@Produce	json
//	@Param		orderId		query		string	true	"Order ID"
//	@Param		surveyId	query		string	true	"Survey ID"
//	@Success	200			{object}	ExistsResponse
//	@Failure	400			{object}	ErrorResponse
//	@Router		/responses/exists [get]
func (h *ResponseHandler) Exists(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	orderID, surveyID := strings.TrimSpace(q.Get("orderId")), strings.TrimSpace(q.Get("surveyId"))
	if orderID == "" || surveyID == "" {
		writeError(w, http.StatusBadRequest, "orderId and surveyId are required")
		return
	}

	responded, err := h.responseSvc.HasOrderResponded(r.Context(), orderID, surveyID)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, ExistsResponse{Responded: responded})
}

// Submit handles POST /v1/responses
//
//	@Summary	Record a shopper's answer
//	@Tags		responses
//	@Accept		json
//	@Produce	json
//	@Param		response	body		model.ResponseInput	true	"Response"
//	@Success	201			{object}	service.SubmitResult
//	@Failure	400			{object}	ErrorResponse
//	@Failure	409			{object}	ErrorResponse
//	@Router		/responses [post]
func (h *ResponseHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req model.ResponseInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.SurveyID = strings.TrimSpace(req.SurveyID)
	req.OrderID = strings.TrimSpace(req.OrderID)
	req.SelectedOption = strings.TrimSpace(req.SelectedOption)
	if req.SurveyID == "" || req.OrderID == "" || req.SelectedOption == "" {
		writeError(w, http.StatusBadRequest, "surveyId, orderId and selectedOption are required")
		return
	}

	result, err := h.responseSvc.SubmitResponse(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// List handles GET /v1/surveys/{surveyId}/responses
//
//	@Summary	Page through a survey's responses, newest first
//	@Description	total is the number of records on the returned page.
//	@Tags		responses
//	@Produce	json
//	@Param		surveyId	path		string	true	"Survey ID"
//	@Param		page		query		int		false	"Page (default 1)"
//	@Param		pageSize	query		int		false	"Page size (default 10, max 100)"
//	@Param		dateFrom	query		string	false	"Inclusive lower bound, RFC 3339 or YYYY-MM-DD"
//	@Param		dateTo		query		string	false	"Inclusive upper bound, RFC 3339 or YYYY-MM-DD"
//	@Success	200			{object}	model.ResponsePage
//	@Failure	400			{object}	ErrorResponse
//	@Router		/surveys/{surveyId}/responses [get]
func (h *ResponseHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseResponseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.responseSvc.GetResponses(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func parseResponseFilter(r *http.Request) (model.ResponseFilter, error) {
	q := r.URL.Query()
	filter := model.ResponseFilter{SurveyID: mux.Vars(r)["surveyId"]}

	var err error
	if filter.Page, err = parseIntParam(q.Get("page")); err != nil {
		return filter, fmt.Errorf("invalid page: %w", err)
	}
	if filter.PageSize, err = parseIntParam(q.Get("pageSize")); err != nil {
		return filter, fmt.Errorf("invalid pageSize: %w", err)
	}
	if filter.DateFrom, err = parseTimeParam(q.Get("dateFrom"), false); err != nil {
		return filter, fmt.Errorf("invalid dateFrom: %w", err)
	}
	if filter.DateTo, err = parseTimeParam(q.Get("dateTo"), true); err != nil {
		return filter, fmt.Errorf("invalid dateTo: %w", err)
	}
	return filter, nil
}

func parseIntParam(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}

// parseTimeParam accepts RFC 3339 timestamps or plain dates. A plain date
// used as an upper bound covers the whole day.
func parseTimeParam(v string, endOfDay bool) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected RFC 3339 or YYYY-MM-DD, got %q", v)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Millisecond)
	}
	return t, nil
}
