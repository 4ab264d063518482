package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// AggregationRuns counts completed aggregation runs by outcome ("ok" or "failed").
	AggregationRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "waletapp_aggregation_runs_total",
		Help: "Portfolio aggregation runs by outcome.",
	}, []string{"status"})

	// PriceFetchFailures counts per-asset price fetches that degraded to zero.
	PriceFetchFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "waletapp_price_fetch_failures_total",
		Help: "Price oracle calls that failed and were degraded to a zero price.",
	})

	// MalformedBalances counts raw balances skipped because they could not be parsed.
	MalformedBalances = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "waletapp_malformed_balances_total",
		Help: "Raw token balances skipped as unparseable.",
	})

	// AggregationDuration observes wall time of successful aggregation runs.
	AggregationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "waletapp_aggregation_duration_seconds",
		Help:    "Duration of portfolio aggregation runs.",
		Buckets: prometheus.DefBuckets,
	})
)

// MustRegisterMetrics registers all collectors on the default registry.
// Call once at startup.
func MustRegisterMetrics() {
	prometheus.MustRegister(AggregationRuns, PriceFetchFailures, MalformedBalances, AggregationDuration)
}
