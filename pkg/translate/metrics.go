package translate

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Translation request metrics
	translationRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradutor_translation_requests_total",
			Help: "Total number of translate-and-detect requests",
		},
		[]string{"engine", "status"},
	)

	translationRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tradutor_translation_request_duration_seconds",
			Help:    "Duration of translate-and-detect requests in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
		},
		[]string{"engine", "status"},
	)

	translationRequestSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tradutor_translation_request_size_bytes",
			Help:    "Size of submitted text in bytes",
			Buckets: []float64{10, 50, 100, 250, 500, 1000, 5000, 10000},
		},
		[]string{"engine"},
	)

	translationResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tradutor_translation_response_size_bytes",
			Help:    "Size of translated text in bytes",
			Buckets: []float64{10, 50, 100, 250, 500, 1000, 5000, 10000},
		},
		[]string{"engine"},
	)
)

// RecordTranslationRequest records metrics for one translate-and-detect
// call. The status label distinguishes the missing-credential fault from
// ordinary failures so dashboards can separate misconfiguration from flaky
// backends.
func RecordTranslationRequest(engine string, duration time.Duration, err error, requestSize, responseSize int) {
	status := "success"
	switch {
	case errors.Is(err, ErrMissingCredential):
		status = "missing_credential"
	case err != nil:
		status = "error"
	}

	translationRequestsTotal.WithLabelValues(engine, status).Inc()
	translationRequestDuration.WithLabelValues(engine, status).Observe(duration.Seconds())
	translationRequestSize.WithLabelValues(engine).Observe(float64(requestSize))
	if err == nil {
		translationResponseSize.WithLabelValues(engine).Observe(float64(responseSize))
	}
}
