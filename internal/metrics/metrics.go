package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Download queue metrics
var (
	QueueItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plutodl_queue_items_total",
			Help: "Total number of queued downloads processed, by method and status.",
		},
		[]string{"method", "status"},
	)

	QueueRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plutodl_queue_runs_total",
			Help: "Total number of queue runs, by how they ended.",
		},
		[]string{"status"},
	)
)

// Catalog page metrics
var (
	PageFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plutodl_page_fetches_total",
			Help: "Total number of catalog page fetches.",
		},
		[]string{"status"},
	)

	EpisodesExtractedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "plutodl_episodes_extracted_total",
			Help: "Total number of episodes extracted from catalog pages.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		QueueItemsTotal,
		QueueRunsTotal,
		PageFetchesTotal,
		EpisodesExtractedTotal,
	)
}
