// Package metrics provides Prometheus metrics for the collection backend.
// Scrape these at /metrics for Grafana dashboards and alerting.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Price Refresh Metrics
	PriceRefreshesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collectique_price_refreshes_total",
			Help: "Price refresh outcomes by result",
		},
		[]string{"result"}, // "updated", "cache_hit", "rate_limited", "fetch_failed", "save_failed"
	)

	PriceUpdatesToday = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "collectique_price_updates_today",
			Help: "Number of item prices processed today (resets at midnight)",
		},
	)

	BatchRefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "collectique_batch_refresh_duration_seconds",
			Help:    "Time taken to process a batch price refresh",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	// Marketplace API Metrics
	QuoteFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collectique_quote_fetches_total",
			Help: "Marketplace quote fetches by outcome",
		},
		[]string{"outcome"}, // "success" or "error"
	)

	QuotaRemaining = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "collectique_marketplace_quota_remaining",
			Help: "Remaining marketplace API calls for today",
		},
	)

	QuotaLimit = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "collectique_marketplace_quota_limit",
			Help: "Daily marketplace API call limit",
		},
	)

	// Quote Cache Metrics
	QuoteCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "collectique_quote_cache_hits_total",
			Help: "Quote cache hit count",
		},
	)

	QuoteCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "collectique_quote_cache_misses_total",
			Help: "Quote cache miss count",
		},
	)

	// Portfolio Metrics
	CollectionMarketValueUSD = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "collectique_collection_market_value",
			Help: "Total estimated market value of tracked items",
		},
	)

	TrackedItemsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "collectique_tracked_items_total",
			Help: "Number of items with both purchase and market price",
		},
	)
)
