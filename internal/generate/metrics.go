package generate

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// cacheRequests counts structural cache lookups by result
	cacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shape_synth_cache_requests_total",
		Help: "Structural cache lookups by result",
	}, []string{"result"}) // "hit" or "miss"

	// rejections counts discarded attempts by reason
	rejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shape_synth_generation_rejections_total",
		Help: "Generated values discarded and retried, by reason",
	}, []string{"reason"}) // "filter" or "skip"

	uniquenessCollisions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shape_synth_uniqueness_collisions_total",
		Help: "Duplicate elements drawn for set-like containers",
	})

	samples = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shape_synth_samples_total",
		Help: "Generation passes by outcome",
	}, []string{"result"}) // "ok" or "error"
)
