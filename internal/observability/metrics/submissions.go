// Package metrics exposes Prometheus collectors for transaction submissions.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeFault    = "fault"
	OutcomeNetwork  = "network_error"
	OutcomeDecoding = "decoding_error"
	OutcomeLocal    = "local_error"
)

// Collector records submission counts, gas and latency.
type Collector struct {
	submissions *prometheus.CounterVec
	gas         *prometheus.HistogramVec
	latency     *prometheus.HistogramVec
}

// NewCollector registers the collectors on reg. A nil reg uses the default
// registerer.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := &Collector{
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "suiai",
			Name:      "submissions_total",
			Help:      "Transactions submitted by operation and outcome.",
		}, []string{"operation", "outcome"}),
		gas: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "suiai",
			Name:      "submission_gas_used",
			Help:      "Computation cost reported in transaction effects.",
			Buckets:   prometheus.ExponentialBuckets(1_000, 10, 7),
		}, []string{"operation"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "suiai",
			Name:      "submission_duration_seconds",
			Help:      "Wall time from build to mapped result.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"operation"}),
	}
	for _, col := range []prometheus.Collector{c.submissions, c.gas, c.latency} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// ObserveSubmission records one finished operation. gasUsed is only
// observed when the ledger executed the transaction.
func (c *Collector) ObserveSubmission(operation, outcome string, gasUsed uint64, executed bool, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.submissions.WithLabelValues(operation, outcome).Inc()
	if executed {
		c.gas.WithLabelValues(operation).Observe(float64(gasUsed))
	}
	c.latency.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
