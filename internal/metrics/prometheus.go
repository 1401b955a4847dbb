// Package metrics holds the Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recommendation outcomes.
const (
	OutcomeSpecialist = "specialist"
	OutcomeFallback   = "fallback"
	OutcomeNone       = "none"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// Business metrics
	diseasePredictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "disease_predictions_total",
			Help: "Total number of disease predictions by outcome",
		},
		[]string{"outcome"},
	)

	doctorRecommendations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "doctor_recommendations_total",
			Help: "Total number of doctor recommendations by specialization outcome",
		},
		[]string{"outcome"},
	)

	referenceRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "reference_rows",
			Help: "Rows loaded per reference table",
		},
		[]string{"table"},
	)
)

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request counts and latency keyed by the matched route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// RecordPrediction counts a prediction request; outcome is "ok", "invalid" or "error".
func RecordPrediction(outcome string) {
	diseasePredictions.WithLabelValues(outcome).Inc()
}

// RecordRecommendation counts a doctor recommendation by outcome.
func RecordRecommendation(outcome string) {
	doctorRecommendations.WithLabelValues(outcome).Inc()
}

// RecordReferenceRows publishes the loaded size of a reference table.
func RecordReferenceRows(table string, count int) {
	referenceRows.WithLabelValues(table).Set(float64(count))
}
