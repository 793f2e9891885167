package rest

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/swaggo/swag"

	"postsurvey/internal/log"
	"postsurvey/internal/metrics"
	"postsurvey/internal/service"
	"postsurvey/internal/transport/rest/handler"
	"postsurvey/internal/transport/rest/middleware"

	_ "postsurvey/docs"
)

// Container holds all dependencies for the router
type Container struct {
	SurveyService    *service.SurveyService
	ResponseService  *service.ResponseService
	DashboardService *service.DashboardService
	AllowedOrigins   []string
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	surveyHandler := handler.NewSurveyHandler(c.SurveyService)
	responseHandler := handler.NewResponseHandler(c.ResponseService)
	dashboardHandler := handler.NewDashboardHandler(c.DashboardService)

	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(c.AllowedOrigins))
	r.Use(middleware.AccessLog(log.WithComponent("http")))

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	v1.HandleFunc("/surveys", surveyHandler.List).Methods("GET", "OPTIONS")
	v1.HandleFunc("/surveys", surveyHandler.Create).Methods("POST", "OPTIONS")
	// Registered before /surveys/{surveyId} so "active" is not taken as an id.
	v1.HandleFunc("/surveys/active", surveyHandler.GetActive).Methods("GET", "OPTIONS")
	v1.HandleFunc("/surveys/{surveyId}", surveyHandler.Get).Methods("GET", "OPTIONS")
	v1.HandleFunc("/surveys/{surveyId}", surveyHandler.Update).Methods("PUT", "OPTIONS")
	v1.HandleFunc("/surveys/{surveyId}", surveyHandler.Delete).Methods("DELETE", "OPTIONS")
	v1.HandleFunc("/surveys/{surveyId}/status", surveyHandler.ToggleStatus).Methods("PATCH", "OPTIONS")
	v1.HandleFunc("/surveys/{surveyId}/responses", responseHandler.List).Methods("GET", "OPTIONS")
	v1.HandleFunc("/surveys/{surveyId}/dashboard", dashboardHandler.Get).Methods("GET", "OPTIONS")

	v1.HandleFunc("/responses/exists", responseHandler.Exists).Methods("GET", "OPTIONS")
	v1.HandleFunc("/responses", responseHandler.Submit).Methods("POST", "OPTIONS")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	r.Handle("/metrics", metrics.Handler()).Methods("GET")

	r.HandleFunc("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		doc, err := swag.ReadDoc()
		if err != nil {
			http.Error(w, `{"error":"api docs unavailable"}`, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(doc))
	}).Methods("GET")

	return r
}
