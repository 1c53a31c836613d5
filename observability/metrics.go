package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PagesFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "practicescout_pages_fetched_total",
		Help: "Detail pages fetched, by broker and fetch mode (static or rendered).",
	}, []string{"broker", "mode"})

	FetchErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "practicescout_fetch_errors_total",
		Help: "Failed page fetches, by broker.",
	}, []string{"broker"})

	RecordsExtracted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "practicescout_records_extracted_total",
		Help: "Detail pages that produced a listing record, by broker.",
	}, []string{"broker"})

	RecordsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "practicescout_records_rejected_total",
		Help: "Detail pages discarded for lack of economic signal, by broker.",
	}, []string{"broker"})

	RunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "practicescout_run_duration_seconds",
		Help:    "Wall time of a full broker crawl.",
		Buckets: prometheus.ExponentialBuckets(5, 2, 10),
	}, []string{"broker"})

	CuratedArchiveSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "practicescout_curated_archive_rows",
		Help: "Rows in the curated appraisal archive after the last merge.",
	})
)
