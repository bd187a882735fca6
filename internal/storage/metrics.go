package storage

import "github.com/prometheus/client_golang/prometheus"

var (
	documentsStored = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "documents_stored_total",
			Help: "Total document files written to storage",
		},
	)
	documentsRemoved = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "documents_removed_total",
			Help: "Total document files deleted from storage",
		},
	)
)

func init() {
	prometheus.MustRegister(documentsStored)
	prometheus.MustRegister(documentsRemoved)
}
