// Package metrics exposes Prometheus collectors for the edge gateway.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	edgeRequestsTotal          *prometheus.CounterVec
	edgeRequestDurationSeconds *prometheus.HistogramVec
	rateLimitRejectionsTotal   *prometheus.CounterVec
	lookupsTotal               *prometheus.CounterVec
	shareCardsTotal            *prometheus.CounterVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		edgeRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edge_requests_total",
				Help: "Total HTTP requests handled, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		edgeRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "edge_request_duration_seconds",
				Help:    "Histogram of request latencies, labeled by method.",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method"},
		)

		rateLimitRejectionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edge_ratelimit_rejections_total",
				Help: "Total requests rejected by the rate limiter, labeled by tier.",
			},
			[]string{"tier"},
		)

		lookupsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edge_listing_lookups_total",
				Help: "Total listing lookups, labeled by outcome (found, not_found, failed).",
			},
			[]string{"outcome"},
		)

		shareCardsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edge_share_cards_total",
				Help: "Total share-card decisions, labeled by route class and audience.",
			},
			[]string{"route", "audience"},
		)
	})
}

// Handler returns the standard Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveRequest records one completed request.
func ObserveRequest(method string, code int, duration time.Duration) {
	if edgeRequestsTotal == nil {
		return
	}
	edgeRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	edgeRequestDurationSeconds.WithLabelValues(method).Observe(duration.Seconds())
}

// RateLimitRejected counts a 429 for the given tier.
func RateLimitRejected(tier string) {
	if rateLimitRejectionsTotal == nil {
		return
	}
	rateLimitRejectionsTotal.WithLabelValues(tier).Inc()
}

// LookupOutcome counts a listing lookup result.
func LookupOutcome(outcome string) {
	if lookupsTotal == nil {
		return
	}
	lookupsTotal.WithLabelValues(outcome).Inc()
}

// ShareCardDecision counts a crawler/human branch on a share-capable route.
func ShareCardDecision(route, audience string) {
	if shareCardsTotal == nil {
		return
	}
	shareCardsTotal.WithLabelValues(route, audience).Inc()
}
