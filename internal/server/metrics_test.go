package server

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"

	"github.com/sells-group/lead-cli/internal/model"
	"github.com/sells-group/lead-cli/internal/pipeline"
)

// counterValue finds one labelled counter in gathered metric families.
func counterValue(families []*dto.MetricFamily, name, label, value string) float64 {
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == label && lp.GetValue() == value {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestMetrics_RecordBatch(t *testing.T) {
	t.Parallel()

	m := NewMetrics(prometheus.NewRegistry())
	hot, cold := 90, 10
	m.RecordBatch(pipeline.OutcomeScored, &model.Batch{Leads: []model.Lead{
		{Name: "a", Score: &hot, Status: model.StatusHot},
		{Name: "b", Score: &hot, Status: model.StatusHot},
		{Name: "c", Score: &cold, Status: model.StatusCold},
		{Name: "unscored"},
	}})
	m.RecordBatch(pipeline.OutcomeRejected, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.batchesTotal.WithLabelValues(pipeline.OutcomeScored)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.batchesTotal.WithLabelValues(pipeline.OutcomeRejected)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.leadsScored.WithLabelValues(string(model.StatusHot))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.leadsScored.WithLabelValues(string(model.StatusCold))))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.leadsScored.WithLabelValues(string(model.StatusWarm))))
}

func TestMetrics_ObserveRequest(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.ObserveRequest("/health", 0.01)
	m.ObserveRequest("/health", 0.02)

	assert.Equal(t, 1, testutil.CollectAndCount(m.requestDuration))
}

func TestMetrics_NilSafe(t *testing.T) {
	t.Parallel()

	var m *Metrics
	m.RecordBatch(pipeline.OutcomeScored, model.NewBatch())
	m.ObserveRequest("/health", 0.1)
}
