// Package metrics exposes Prometheus collectors for the scan and trade
// paths, replacing the old sqlite-backed performance sink.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all collectors. It is injected into the components that
// record against it.
type Metrics struct {
	pairsDiscovered  *prometheus.CounterVec
	pairsFiltered    *prometheus.CounterVec
	safetyChecks     *prometheus.CounterVec
	safetyCheckTime  prometheus.Histogram
	alertsSent       *prometheus.CounterVec
	tradesExecuted   *prometheus.CounterVec
	scanCycleTime    prometheus.Histogram
	upstreamFailures *prometheus.CounterVec
}

// New creates a Metrics instance and registers all collectors. A nil
// registry uses the default registerer.
func New(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		pairsDiscovered: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sniper_pairs_discovered_total",
			Help: "New pairs that passed all discovery filters, by chain",
		}, []string{"chain"}),
		pairsFiltered: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sniper_pairs_filtered_total",
			Help: "Pairs rejected by a discovery filter, by chain and filter",
		}, []string{"chain", "filter"}),
		safetyChecks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sniper_safety_checks_total",
			Help: "Honeypot checks by outcome (pass, fail, unavailable)",
		}, []string{"outcome"}),
		safetyCheckTime: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "sniper_safety_check_duration_seconds",
			Help:    "Latency of honeypot checks",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 60},
		}),
		alertsSent: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sniper_alerts_sent_total",
			Help: "Alerts dispatched, by kind (actionable, info)",
		}, []string{"kind"}),
		tradesExecuted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sniper_trades_executed_total",
			Help: "Trade executions by action and status",
		}, []string{"action", "status"}),
		scanCycleTime: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "sniper_scan_cycle_duration_seconds",
			Help:    "Duration of a full scan cycle across all chains",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
		upstreamFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sniper_upstream_failures_total",
			Help: "Transient upstream failures by service",
		}, []string{"service"}),
	}
}

func (m *Metrics) PairDiscovered(chain string) {
	m.pairsDiscovered.WithLabelValues(chain).Inc()
}

func (m *Metrics) PairFiltered(chain, filter string) {
	m.pairsFiltered.WithLabelValues(chain, filter).Inc()
}

func (m *Metrics) SafetyCheck(outcome string, elapsed time.Duration) {
	m.safetyChecks.WithLabelValues(outcome).Inc()
	m.safetyCheckTime.Observe(elapsed.Seconds())
}

func (m *Metrics) AlertSent(kind string) {
	m.alertsSent.WithLabelValues(kind).Inc()
}

func (m *Metrics) TradeExecuted(action, status string) {
	m.tradesExecuted.WithLabelValues(action, status).Inc()
}

func (m *Metrics) ScanCycle(elapsed time.Duration) {
	m.scanCycleTime.Observe(elapsed.Seconds())
}

func (m *Metrics) UpstreamFailure(service string) {
	m.upstreamFailures.WithLabelValues(service).Inc()
}

// Serve exposes /metrics on addr. Intended to run on its own goroutine.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, mux)
}
