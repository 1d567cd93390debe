package profile

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector exposes cumulative engine totals as Prometheus metrics. The
// frame thread adds to it after every frame; scrapes happen from the
// metrics handler's goroutine, so all totals are atomics.
type Collector struct {
	frames   [3]atomic.Uint64 // indexed by BuildMode
	lookups  [classCount]atomic.Uint64
	stores   atomic.Uint64
	dirty    atomic.Uint64
	tornDown atomic.Uint64

	framesDesc  *prometheus.Desc
	lookupsDesc *prometheus.Desc
	storesDesc  *prometheus.Desc
	dirtyDesc   *prometheus.Desc
	tornDesc    *prometheus.Desc
}

// NewCollector creates an unregistered collector; register it with a
// prometheus.Registerer to expose it.
func NewCollector() *Collector {
	return &Collector{
		framesDesc: prometheus.NewDesc(
			"loom_frames_total",
			"Frames processed, by build mode.",
			[]string{"mode"}, nil),
		lookupsDesc: prometheus.NewDesc(
			"loom_layout_lookups_total",
			"Layout cache lookups, by classification.",
			[]string{"class"}, nil),
		storesDesc: prometheus.NewDesc(
			"loom_layout_stores_total",
			"Layout cache entries written.",
			nil, nil),
		dirtyDesc: prometheus.NewDesc(
			"loom_dirty_nodes_total",
			"Nodes marked dirty, including ancestor propagation.",
			nil, nil),
		tornDesc: prometheus.NewDesc(
			"loom_nodes_torn_down_total",
			"Nodes reclaimed by the post-build sweep.",
			nil, nil),
	}
}

// Observe folds one finished frame into the cumulative totals.
func (c *Collector) Observe(mode BuildMode, stats *FrameStats) {
	if int(mode) < len(c.frames) {
		c.frames[mode].Add(1)
	}
	for i := range stats.Lookups {
		if n := stats.Lookups[i]; n > 0 {
			c.lookups[i].Add(n)
		}
	}
	c.stores.Add(stats.Stores)
	c.dirty.Add(stats.DirtyTotal)
	c.tornDown.Add(stats.TornDown)
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.framesDesc
	ch <- c.lookupsDesc
	ch <- c.storesDesc
	ch <- c.dirtyDesc
	ch <- c.tornDesc
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for mode := BuildMode(0); int(mode) < len(c.frames); mode++ {
		ch <- prometheus.MustNewConstMetric(c.framesDesc, prometheus.CounterValue,
			float64(c.frames[mode].Load()), mode.String())
	}
	for _, class := range Classifications() {
		ch <- prometheus.MustNewConstMetric(c.lookupsDesc, prometheus.CounterValue,
			float64(c.lookups[class].Load()), class.String())
	}
	ch <- prometheus.MustNewConstMetric(c.storesDesc, prometheus.CounterValue,
		float64(c.stores.Load()))
	ch <- prometheus.MustNewConstMetric(c.dirtyDesc, prometheus.CounterValue,
		float64(c.dirty.Load()))
	ch <- prometheus.MustNewConstMetric(c.tornDesc, prometheus.CounterValue,
		float64(c.tornDown.Load()))
}

var _ prometheus.Collector = (*Collector)(nil)
