package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the cashback API.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration   *prometheus.HistogramVec
	externalErrors    *prometheus.CounterVec
	cacheHits         *prometheus.CounterVec
	cacheMisses       *prometheus.CounterVec
	redemptionsTotal  *prometheus.CounterVec
	cashbackGranted   prometheus.Counter
	couponsIssued     prometheus.Counter
	couponRedemptions *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pixinxa_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pixinxa_external_errors_total",
				Help: "Total errors from external services.",
			},
			[]string{"service"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pixinxa_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pixinxa_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		redemptionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pixinxa_redemptions_total",
				Help: "Total cashback code redemptions by outcome.",
			},
			[]string{"outcome"},
		),
		cashbackGranted: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "pixinxa_cashback_granted_brl_total",
				Help: "Total cashback credited, in BRL.",
			},
		),
		couponsIssued: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "pixinxa_coupons_issued_total",
				Help: "Total coupons created.",
			},
		),
		couponRedemptions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pixinxa_coupon_redemptions_total",
				Help: "Total coupon redemptions by outcome.",
			},
			[]string{"outcome"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrRedemption increments the redemption counter with an outcome label
// (confirmed, invalid_code, error).
func (m *Metrics) IncrRedemption(outcome string) {
	m.redemptionsTotal.WithLabelValues(outcome).Inc()
}

// AddCashbackGranted accumulates credited cashback in BRL.
func (m *Metrics) AddCashbackGranted(valor float64) {
	m.cashbackGranted.Add(valor)
}

// IncrCouponIssued increments the issued coupon counter.
func (m *Metrics) IncrCouponIssued() {
	m.couponsIssued.Inc()
}

// IncrCouponRedemption increments the coupon redemption counter with an
// outcome label (redeemed, expired, exhausted, reuse).
func (m *Metrics) IncrCouponRedemption(outcome string) {
	m.couponRedemptions.WithLabelValues(outcome).Inc()
}

// RedemptionsConfirmed returns the current confirmed-redemption count.
// Used by the admin metrics snapshot endpoint.
func (m *Metrics) RedemptionsConfirmed() float64 {
	return getCounterValue(m.redemptionsTotal, "confirmed")
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
