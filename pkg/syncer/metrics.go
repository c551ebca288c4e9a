package syncer

import "github.com/prometheus/client_golang/prometheus"

// Snapshot is a point-in-time introspection read of one stream within a
// syncer (§C7): its core ring's occupancy against its configured capacity,
// plus the adapter's own collector_usage forwarded from upstream.
type Snapshot struct {
	StreamID       string
	Length         int
	Capacity       int
	CollectorUsage float64
}

// UsageRatio returns Length/Capacity, or 0 for a zero-capacity snapshot
// (which never occurs for a constructed syncer, but guards a stray caller).
func (s Snapshot) UsageRatio() float64 {
	if s.Capacity == 0 {
		return 0
	}
	return float64(s.Length) / float64(s.Capacity)
}

// metricsCollector exposes engine's introspection surface as Prometheus
// metrics: ring occupancy ratio and adapter collector usage per stream
// (gauges), count of emitted synced measurements (a counter), and the
// running flag (a gauge). Grounded on client_golang's usual
// role of instrumenting a service's own internals rather than, as the
// teacher uses it, querying someone else's.
type metricsCollector struct {
	snapshotsFn func() []Snapshot
	runningFn   func() bool
	processedFn func() uint64

	usageDesc          *prometheus.Desc
	collectorUsageDesc *prometheus.Desc
	processedDesc      *prometheus.Desc
	runningDesc        *prometheus.Desc
}

func newMetricsCollector(
	snapshotsFn func() []Snapshot,
	runningFn func() bool,
	processedFn func() uint64,
	namespace string,
) *metricsCollector {
	return &metricsCollector{
		snapshotsFn: snapshotsFn,
		runningFn:   runningFn,
		processedFn: processedFn,
		usageDesc: prometheus.NewDesc(
			namespace+"_stream_usage_ratio",
			"Fraction of a stream's ring buffer currently occupied.",
			[]string{"stream_id"}, nil,
		),
		collectorUsageDesc: prometheus.NewDesc(
			namespace+"_stream_collector_usage_ratio",
			"Fraction of a stream adapter's own backlog currently occupied.",
			[]string{"stream_id"}, nil,
		),
		processedDesc: prometheus.NewDesc(
			namespace+"_processed_total",
			"Number of synced measurements emitted since the last start.",
			nil, nil,
		),
		runningDesc: prometheus.NewDesc(
			namespace+"_running",
			"1 if the syncer is currently running, 0 otherwise.",
			nil, nil,
		),
	}
}

func (c *metricsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.usageDesc
	ch <- c.collectorUsageDesc
	ch <- c.processedDesc
	ch <- c.runningDesc
}

func (c *metricsCollector) Collect(ch chan<- prometheus.Metric) {
	for _, snap := range c.snapshotsFn() {
		ch <- prometheus.MustNewConstMetric(c.usageDesc, prometheus.GaugeValue, snap.UsageRatio(), snap.StreamID)
		ch <- prometheus.MustNewConstMetric(c.collectorUsageDesc, prometheus.GaugeValue, snap.CollectorUsage, snap.StreamID)
	}
	ch <- prometheus.MustNewConstMetric(c.processedDesc, prometheus.CounterValue, float64(c.processedFn()))
	running := 0.0
	if c.runningFn() {
		running = 1.0
	}
	ch <- prometheus.MustNewConstMetric(c.runningDesc, prometheus.GaugeValue, running)
}
