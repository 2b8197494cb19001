package server

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sells-group/lead-cli/internal/model"
)

// Metrics exposes counters and histograms for lead scoring traffic. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	batchesTotal    *prometheus.CounterVec
	leadsScored     *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewMetrics registers the collectors with reg, or the default registerer
// when reg is nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		batchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leads",
			Name:      "batches_total",
			Help:      "Lead batches processed, by outcome",
		}, []string{"outcome"}),
		leadsScored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leads",
			Name:      "scored_total",
			Help:      "Leads scored, by status",
		}, []string{"status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "leads",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.batchesTotal, m.leadsScored, m.requestDuration)
	return m
}

// RecordBatch counts one processed batch and the status of each scored lead.
func (m *Metrics) RecordBatch(outcome string, scored *model.Batch) {
	if m == nil {
		return
	}
	m.batchesTotal.WithLabelValues(outcome).Inc()
	if scored == nil {
		return
	}
	for _, l := range scored.Leads {
		if l.Scored() {
			m.leadsScored.WithLabelValues(string(l.Status)).Inc()
		}
	}
}

// ObserveRequest records the latency of one request to route.
func (m *Metrics) ObserveRequest(route string, seconds float64) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(route).Observe(seconds)
}
