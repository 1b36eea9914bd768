// Package metrics
package metrics

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_requests_total",
			Help: "Total number of HTTP requests issued, labeled by status code.",
		},
		[]string{"status_code"},
	)
	RetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_retries_total",
			Help: "Total number of fetch attempts that failed and were retried.",
		},
	)
	CacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_cache_hits_total",
			Help: "Total number of fetches served from the response cache.",
		},
	)
	RecordsHarvested = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_records_harvested_total",
			Help: "Total number of normalized records produced, labeled by category.",
		},
		[]string{"category"},
	)
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RetriesTotal)
	prometheus.MustRegister(CacheHitsTotal)
	prometheus.MustRegister(RecordsHarvested)
}

func ExposeMetrics(addr string) {
	slog.Info("Exposing Prometheus metrics", "address", addr)
	http.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, nil); err != nil {
		slog.Error("Failed to start Prometheus metrics server", "error", err)
	}
}
