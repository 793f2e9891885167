// Package metrics registers the service's Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Document store metrics
	StoreOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "surveyd_store_operations_total",
			Help: "Total number of document store calls by entity, operation and outcome",
		},
		[]string{"entity", "op", "outcome"},
	)

	StoreOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "surveyd_store_operation_duration_seconds",
			Help:    "Document store call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"entity", "op"},
	)

	StoreRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "surveyd_store_retries_total",
			Help: "Total number of document store call retries",
		},
		[]string{"entity", "op"},
	)

	// API metrics
	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "surveyd_api_requests_total",
			Help: "Total number of API requests by route and status",
		},
		[]string{"route", "status"},
	)

	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "surveyd_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	// Domain metrics
	SurveysDeactivatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "surveyd_surveys_deactivated_total",
			Help: "Surveys deactivated because another survey was activated",
		},
	)

	ResponsesSubmittedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "surveyd_responses_submitted_total",
			Help: "Survey responses recorded",
		},
	)

	ResponseCountFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "surveyd_response_count_failures_total",
			Help: "Failed best-effort responseCount increments",
		},
	)

	DashboardScanTruncatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "surveyd_dashboard_scan_truncated_total",
			Help: "Dashboard scans stopped by the page ceiling",
		},
	)
)

func init() {
	prometheus.MustRegister(StoreOperationsTotal)
	prometheus.MustRegister(StoreOperationDuration)
	prometheus.MustRegister(StoreRetriesTotal)
	prometheus.MustRegister(APIRequestsTotal)
	prometheus.MustRegister(APIRequestDuration)
	prometheus.MustRegister(SurveysDeactivatedTotal)
	prometheus.MustRegister(ResponsesSubmittedTotal)
	prometheus.MustRegister(ResponseCountFailuresTotal)
	prometheus.MustRegister(DashboardScanTruncatedTotal)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
