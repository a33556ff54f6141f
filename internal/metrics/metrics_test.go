package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Counters(t *testing.T) {
	r := NewRegistry()

	r.IncrementCounter("pages_fetched_total", map[string]string{"table": "candidates"}, "")
	r.IncrementCounter("pages_fetched_total", map[string]string{"table": "candidates"}, "")
	r.AddToCounter("pages_fetched_total", 3, map[string]string{"table": "jobs"}, "")

	assert.Equal(t, 2.0, r.CounterValue("pages_fetched_total", map[string]string{"table": "candidates"}))
	assert.Equal(t, 3.0, r.CounterValue("pages_fetched_total", map[string]string{"table": "jobs"}))
	assert.Zero(t, r.CounterValue("missing", nil))
}

func TestMetricKey_LabelOrderIndependent(t *testing.T) {
	a := metricKey("m", map[string]string{"a": "1", "b": "2"})
	b := metricKey("m", map[string]string{"b": "2", "a": "1"})
	assert.Equal(t, a, b)
	assert.Equal(t, "m_a:1_b:2", a)
	assert.Equal(t, "m", metricKey("m", nil))
}

func TestRegistry_Timers(t *testing.T) {
	r := NewRegistry()
	for i := 1; i <= 20; i++ {
		r.RecordTimer("aggregation_duration", time.Duration(i)*time.Millisecond, nil)
	}

	snap := r.Snapshot()
	timer, ok := snap.Timers["aggregation_duration"]
	require.True(t, ok)
	assert.Equal(t, int64(20), timer.Count)
	assert.InDelta(t, 1.0, timer.Min, 0.001)
	assert.InDelta(t, 20.0, timer.Max, 0.001)
	assert.InDelta(t, 10.5, timer.Average, 0.001)
	assert.InDelta(t, 20.0, timer.P95, 0.001)
}

func TestRegistry_Gauges(t *testing.T) {
	r := NewRegistry()
	r.SetGauge("active_sessions", 4, nil, "")
	r.SetGauge("active_sessions", 2, nil, "")

	snap := r.Snapshot()
	assert.Equal(t, 2.0, snap.Gauges["active_sessions"].Value)
}
