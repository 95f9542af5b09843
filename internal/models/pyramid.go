package models

// PyramidTier is the aggregate view of one priority tier.
type PyramidTier struct {
	Tier            string  `json:"tier"`
	Count           int64   `json:"count"`
	AvgSearchVolume float64 `json:"avg_search_volume"`
	TotalTraffic    int64   `json:"total_traffic"`
	AIOActiveCount  int64   `json:"aio_active_count"`
}

// PyramidSummary totals the classified inventory.
type PyramidSummary struct {
	TotalKeywords  int64 `json:"total_keywords"`
	TotalTraffic   int64 `json:"total_traffic"`
	AIOActiveCount int64 `json:"aio_active_count"`
}

// Pyramid is the tier-grouped aggregate of all classified keywords.
// Unclassified (null tier) rows are excluded.
type Pyramid struct {
	Tiers   []PyramidTier  `json:"tiers"`
	Summary PyramidSummary `json:"summary"`
}
