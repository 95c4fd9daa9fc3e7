package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	NameRenders        = "renders_total"
	NameCacheHits      = "render_cache_hits_total"
	NameCacheMisses    = "render_cache_misses_total"
	NameCoalescedWaits = "render_coalesced_waits_total"
	NameWarmSchedules  = "warm_schedules_total"
	NameWarmFires      = "warm_fires_total"
	NameRenderDuration = "render_duration_seconds"
)

var Renders = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:      NameRenders,
		Help:      "Render engine invocations",
		Namespace: Namespace,
	},
	[]string{LabelKind, LabelResult},
)

var CacheHits = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:      NameCacheHits,
		Help:      "Render cache hits",
		Namespace: Namespace,
	},
	[]string{LabelKind},
)

var CacheMisses = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:      NameCacheMisses,
		Help:      "Render cache misses",
		Namespace: Namespace,
	},
	[]string{LabelKind},
)

var CoalescedWaits = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:      NameCoalescedWaits,
		Help:      "Callers that shared an in-flight render instead of starting one",
		Namespace: Namespace,
	},
	[]string{LabelKind},
)

var WarmSchedules = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:      NameWarmSchedules,
		Help:      "Warm requests scheduled (including superseded ones)",
		Namespace: Namespace,
	},
	[]string{LabelKind},
)

var WarmFires = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:      NameWarmFires,
		Help:      "Warm timers that fired after the debounce window",
		Namespace: Namespace,
	},
	[]string{LabelKind},
)

var RenderDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:      NameRenderDuration,
		Help:      "Render engine call duration",
		Namespace: Namespace,
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
	},
	[]string{LabelKind},
)
