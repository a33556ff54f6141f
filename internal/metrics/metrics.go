package metrics

import (
	"slices"
	"sort"
	"strings"
	"sync"
	"time"
)

// maxTimerSamples bounds the per-timer sample window used for percentiles
const maxTimerSamples = 1000

// Metric is a counter or gauge value with its labels
type Metric struct {
	Name        string            `json:"name"`
	Value       float64           `json:"value"`
	Labels      map[string]string `json:"labels,omitempty"`
	Description string            `json:"description,omitempty"`
	LastUpdate  time.Time         `json:"last_update"`
}

// TimerMetric stores timing information in milliseconds
type TimerMetric struct {
	Count   int64   `json:"count"`
	Sum     float64 `json:"sum_ms"`
	Min     float64 `json:"min_ms"`
	Max     float64 `json:"max_ms"`
	Average float64 `json:"avg_ms"`
	P95     float64 `json:"p95_ms,omitempty"`
	samples []float64
}

// Snapshot is a point-in-time copy of every metric
type Snapshot struct {
	Counters map[string]Metric      `json:"counters"`
	Timers   map[string]TimerMetric `json:"timers"`
	Gauges   map[string]Metric      `json:"gauges"`
	UptimeMs int64                  `json:"uptime_ms"`
}

// Registry manages all metrics in memory
type Registry struct {
	mu        sync.RWMutex
	counters  map[string]*Metric
	timers    map[string]*TimerMetric
	gauges    map[string]*Metric
	startTime time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		counters:  make(map[string]*Metric),
		timers:    make(map[string]*TimerMetric),
		gauges:    make(map[string]*Metric),
		startTime: time.Now(),
	}
}

var globalRegistry = NewRegistry()

// GetRegistry returns the global registry instance
func GetRegistry() *Registry {
	return globalRegistry
}

func (r *Registry) IncrementCounter(name string, labels map[string]string, description string) {
	r.AddToCounter(name, 1, labels, description)
}

func (r *Registry) AddToCounter(name string, value float64, labels map[string]string, description string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := metricKey(name, labels)
	if counter, ok := r.counters[key]; ok {
		counter.Value += value
		counter.LastUpdate = time.Now()
		return
	}
	r.counters[key] = &Metric{
		Name:        name,
		Value:       value,
		Labels:      copyLabels(labels),
		Description: description,
		LastUpdate:  time.Now(),
	}
}

func (r *Registry) SetGauge(name string, value float64, labels map[string]string, description string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.gauges[metricKey(name, labels)] = &Metric{
		Name:        name,
		Value:       value,
		Labels:      copyLabels(labels),
		Description: description,
		LastUpdate:  time.Now(),
	}
}

func (r *Registry) RecordTimer(name string, duration time.Duration, labels map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := metricKey(name, labels)
	ms := float64(duration.Nanoseconds()) / 1e6

	timer, ok := r.timers[key]
	if !ok {
		r.timers[key] = &TimerMetric{Count: 1, Sum: ms, Min: ms, Max: ms, Average: ms, samples: []float64{ms}}
		return
	}

	timer.Count++
	timer.Sum += ms
	timer.Min = min(timer.Min, ms)
	timer.Max = max(timer.Max, ms)
	timer.Average = timer.Sum / float64(timer.Count)
	timer.samples = append(timer.samples, ms)
	if len(timer.samples) > maxTimerSamples {
		timer.samples = timer.samples[len(timer.samples)-maxTimerSamples:]
	}
	if len(timer.samples) >= 10 {
		timer.P95 = percentile(timer.samples, 0.95)
	}
}

// CounterValue returns the current value of a counter, or 0 if it was never touched
func (r *Registry) CounterValue(name string, labels map[string]string) float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if c, ok := r.counters[metricKey(name, labels)]; ok {
		return c.Value
	}
	return 0
}

func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := Snapshot{
		Counters: make(map[string]Metric, len(r.counters)),
		Timers:   make(map[string]TimerMetric, len(r.timers)),
		Gauges:   make(map[string]Metric, len(r.gauges)),
		UptimeMs: time.Since(r.startTime).Milliseconds(),
	}
	for k, v := range r.counters {
		snap.Counters[k] = *v
	}
	for k, v := range r.timers {
		t := *v
		t.samples = nil
		snap.Timers[k] = t
	}
	for k, v := range r.gauges {
		snap.Gauges[k] = *v
	}
	return snap
}

// metricKey builds a stable key; labels are sorted so map order never matters
func metricKey(name string, labels map[string]string) string {
	if len(labels) == 0 {
		return name
	}

	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(name)
	for _, k := range keys {
		b.WriteString("_")
		b.WriteString(k)
		b.WriteString(":")
		b.WriteString(labels[k])
	}
	return b.String()
}

func percentile(samples []float64, p float64) float64 {
	sorted := slices.Clone(samples)
	sort.Float64s(sorted)

	idx := int(float64(len(sorted)) * p)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func copyLabels(labels map[string]string) map[string]string {
	if labels == nil {
		return nil
	}
	out := make(map[string]string, len(labels))
	for k, v := range labels {
		out[k] = v
	}
	return out
}

// Convenience functions for the global registry

func IncrementCounter(name string, labels map[string]string, description string) {
	globalRegistry.IncrementCounter(name, labels, description)
}

func AddToCounter(name string, value float64, labels map[string]string, description string) {
	globalRegistry.AddToCounter(name, value, labels, description)
}

func SetGauge(name string, value float64, labels map[string]string, description string) {
	globalRegistry.SetGauge(name, value, labels, description)
}

func RecordTimer(name string, duration time.Duration, labels map[string]string) {
	globalRegistry.RecordTimer(name, duration, labels)
}

func GetSnapshot() Snapshot {
	return globalRegistry.Snapshot()
}
