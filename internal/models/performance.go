package models

import (
	"time"

	"github.com/google/uuid"
)

// KeywordPerformance holds one day of search performance for a keyword.
// Rows are upserted idempotently per (keyword, date).
type KeywordPerformance struct {
	ID             uuid.UUID `json:"id"`
	KeywordID      uuid.UUID `json:"keyword_id"`
	Date           time.Time `json:"date"`
	Impressions    int64     `json:"impressions"`
	Clicks         int64     `json:"clicks"`
	CTR            float64   `json:"ctr"`
	AvgPosition    *float64  `json:"avg_position"`
	AIOAppearances int       `json:"aio_appearances"`
	CreatedAt      time.Time `json:"created_at"`
}

// DailyMetrics is the caller-supplied payload for TrackPerformance.
type DailyMetrics struct {
	Date           time.Time `json:"date"`
	Impressions    int64     `json:"impressions"`
	Clicks         int64     `json:"clicks"`
	CTR            float64   `json:"ctr"`
	AvgPosition    *float64  `json:"avg_position"`
	AIOAppearances int       `json:"aio_appearances"`
}
