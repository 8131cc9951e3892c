package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "supply"

// Order and sale outcomes.
const (
	OutcomeCommitted         = "committed"
	OutcomeRolledBack        = "rolled_back"
	OutcomeRejected          = "rejected"
	OutcomeInsufficientStock = "insufficient_stock"
)

// Metrics groups the collectors recorded by the services and HTTP layer.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	orders          *prometheus.CounterVec
	sales           *prometheus.CounterVec
	journalFailures *prometheus.CounterVec
	requests        *prometheus.HistogramVec
}

// New registers the collectors on reg. A nil registerer yields a no-op value.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	orders := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_total",
		Help:      "Online orders by final outcome.",
	}, []string{"outcome"})
	sales := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_sales_total",
		Help:      "In-store sales recordings by outcome.",
	}, []string{"outcome"})
	journalFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "journal_failures_total",
		Help:      "Audit journal appends that failed after a committed write.",
	}, []string{"stream"})
	requests := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
	reg.MustRegister(orders, sales, journalFailures, requests)
	return &Metrics{
		orders:          orders,
		sales:           sales,
		journalFailures: journalFailures,
		requests:        requests,
	}
}

func (m *Metrics) IncOrder(outcome string) {
	if m == nil || m.orders == nil {
		return
	}
	m.orders.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func (m *Metrics) IncSale(outcome string) {
	if m == nil || m.sales == nil {
		return
	}
	m.sales.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func (m *Metrics) IncJournalFailure(stream string) {
	if m == nil || m.journalFailures == nil {
		return
	}
	m.journalFailures.WithLabelValues(normalizeLabel(stream)).Inc()
}

// ObserveRequest records one served HTTP request. route should be the chi
// route pattern, not the raw path, to keep label cardinality bounded.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil || m.requests == nil {
		return
	}
	m.requests.WithLabelValues(method, normalizeLabel(route), strconv.Itoa(status)).Observe(elapsed.Seconds())
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
