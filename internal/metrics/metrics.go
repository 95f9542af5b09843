package metrics

import (
	"context"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"keywordpyramid/internal/db"
)

var (
	// CacheHits counts cache-aside hits by resource.
	CacheHits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "keywordpyramid_cache_hits_total",
		Help: "Cache-aside hits by resource",
	}, []string{"resource"})

	// CacheMisses counts cache-aside misses by resource.
	CacheMisses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "keywordpyramid_cache_misses_total",
		Help: "Cache-aside misses by resource",
	}, []string{"resource"})

	// ImportRows counts processed import rows by outcome.
	ImportRows = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "keywordpyramid_import_rows_total",
		Help: "Bulk import rows by outcome (imported, updated, failed)",
	}, []string{"outcome"})

	// KeywordsClassified counts tier assignments made by auto-classify.
	KeywordsClassified = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "keywordpyramid_keywords_classified_total",
		Help: "Keywords assigned a tier by auto-classify, by tier",
	}, []string{"tier"})
)

var tierCountDesc = prometheus.NewDesc(
	"keywordpyramid_keywords_by_tier",
	"Current keyword count per priority tier",
	[]string{"tier"},
	nil,
)

// TierCollector is a custom Prometheus collector that reads per-tier
// keyword counts from the database on each scrape.
type TierCollector struct {
	db *db.DB
}

// Describe sends the metric descriptor to the channel.
func (c *TierCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- tierCountDesc
}

// Collect queries the pyramid aggregate and emits per-tier gauges.
func (c *TierCollector) Collect(ch chan<- prometheus.Metric) {
	pyramid, err := c.db.GetPyramid(context.Background())
	if err != nil {
		slog.Error("failed to collect tier metrics", "error", err)
		return
	}
	for _, t := range pyramid.Tiers {
		ch <- prometheus.MustNewConstMetric(
			tierCountDesc,
			prometheus.GaugeValue,
			float64(t.Count),
			t.Tier,
		)
	}
}

var initOnce sync.Once

// Init registers all collectors. Must be called once at startup.
func Init(database *db.DB) {
	initOnce.Do(func() {
		prometheus.MustRegister(CacheHits, CacheMisses, ImportRows, KeywordsClassified)
		prometheus.MustRegister(&TierCollector{db: database})
	})
}
