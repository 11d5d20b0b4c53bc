// Package metrics registers the Prometheus instruments of the feed path.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// metricsOnce ensures metrics are registered only once
	metricsOnce sync.Once

	// feedRequestsTotal tracks served feed requests by format and feed type
	feedRequestsTotal *prometheus.CounterVec

	// feedRequestDuration tracks end-to-end latency of feed requests
	feedRequestDuration prometheus.Histogram

	// feedItemsReturned tracks the size of served feeds
	feedItemsReturned prometheus.Histogram

	// feedValidationFailuresTotal tracks rejected requests by violated field
	feedValidationFailuresTotal *prometheus.CounterVec

	// statisticsWriteFailuresTotal tracks dropped statistics entries
	statisticsWriteFailuresTotal prometheus.Counter
)

// Init registers all Prometheus metrics for the feed endpoint.
// This should be called once at application startup.
func Init() {
	metricsOnce.Do(func() {
		feedRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "greedybear_feed_requests_total",
				Help: "Total number of served feed requests by format and feed type",
			},
			[]string{"format", "feed_type"},
		)

		feedRequestDuration = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "greedybear_feed_request_duration_seconds",
				Help:    "Duration of feed requests in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
			},
		)

		feedItemsReturned = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "greedybear_feed_items_returned",
				Help:    "Number of IOCs returned per feed request",
				Buckets: []float64{0, 10, 100, 500, 1000, 2500, 5000},
			},
		)

		feedValidationFailuresTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "greedybear_feed_validation_failures_total",
				Help: "Total number of rejected feed requests by violated field",
			},
			[]string{"field"},
		)

		statisticsWriteFailuresTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "greedybear_statistics_write_failures_total",
				Help: "Total number of statistics entries dropped on write failure",
			},
		)
	})
}

// ObserveFeedRequest records one served feed request.
func ObserveFeedRequest(format, feedType string, items int, seconds float64) {
	if feedRequestsTotal == nil {
		return
	}
	feedRequestsTotal.WithLabelValues(format, feedType).Inc()
	feedRequestDuration.Observe(seconds)
	feedItemsReturned.Observe(float64(items))
}

// RecordValidationFailure records one rejected request field.
func RecordValidationFailure(field string) {
	if feedValidationFailuresTotal == nil {
		return
	}
	feedValidationFailuresTotal.WithLabelValues(field).Inc()
}

// RecordStatisticsWriteFailure records one dropped statistics entry.
func RecordStatisticsWriteFailure() {
	if statisticsWriteFailuresTotal == nil {
		return
	}
	statisticsWriteFailuresTotal.Inc()
}
