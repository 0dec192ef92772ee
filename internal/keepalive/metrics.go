package keepalive

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the counters the bot updates as it serves traffic.
type Metrics struct {
	Queries      *prometheus.CounterVec
	Ingests      prometheus.Counter
	IndexedFiles prometheus.Gauge
}

// NewMetrics registers the bot metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Queries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mediasearch_queries_total",
			Help: "Inline queries handled, labelled by outcome.",
		}, []string{"outcome"}),
		Ingests: factory.NewCounter(prometheus.CounterOpts{
			Name: "mediasearch_ingests_total",
			Help: "Media messages ingested into the index.",
		}),
		IndexedFiles: factory.NewGauge(prometheus.GaugeOpts{
			Name: "mediasearch_indexed_files",
			Help: "Files currently in the index.",
		}),
	}
}
