// Package metrics defines and registers all custom Prometheus metrics for the
// sales intelligence API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// init and served by the /metrics route.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "salesintel"

// ── Auth metrics ─────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts register and login attempts.
// Labels:
//   - operation: "register" or "login"
//   - result: "success", "invalid_credentials", "user_exists", "invalid_input" or "error"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of register and login attempts, by outcome.",
	},
	[]string{"operation", "result"},
)

// TokenVerificationsTotal counts bearer token checks made by the auth gate.
// Label:
//   - result: "valid", "missing_token", "malformed_header", "invalid_token" or "token_expired"
var TokenVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_verifications_total",
		Help:      "Total number of bearer token verifications, by result.",
	},
	[]string{"result"},
)

// ── Sales metrics ────────────────────────────────────────────────────────────

// SalesRecordsCreatedTotal counts newly created sales records.
// Label:
//   - stage: known pipeline stage of the new record, or "other"
var SalesRecordsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sales_records_created_total",
		Help:      "Total number of sales records created, by stage.",
	},
	[]string{"stage"},
)

// ── Rate limiting ────────────────────────────────────────────────────────────

// RateLimitedTotal counts requests rejected with 429.
// Label:
//   - route: "auth" or "api"
var RateLimitedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Total number of requests rejected by a rate limiter.",
	},
	[]string{"route"},
)

// ── Store ────────────────────────────────────────────────────────────────────

// StoreQueryDuration measures store round trips.
// Label:
//   - query: short query name (e.g. "sales_list", "insights_trends")
var StoreQueryDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "store_query_duration_seconds",
		Help:      "Duration of store queries.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"query"},
)

// ObserveQuery records the time elapsed since start under query. Use with defer:
//
//	defer metrics.ObserveQuery("sales_list", time.Now())
func ObserveQuery(query string, start time.Time) {
	StoreQueryDuration.WithLabelValues(query).Observe(time.Since(start).Seconds())
}
