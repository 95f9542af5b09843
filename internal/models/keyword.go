package models

import (
	"time"

	"github.com/google/uuid"
)

// Priority tier constants, P0 highest.
const (
	TierP0 = "P0"
	TierP1 = "P1"
	TierP2 = "P2"
	TierP3 = "P3"
	TierP4 = "P4"
)

// Tiers lists all priority tiers in descending priority order.
var Tiers = []string{TierP0, TierP1, TierP2, TierP3, TierP4}

// AIO status constants.
const (
	AIOActive     = "active"
	AIOInactive   = "inactive"
	AIOMonitoring = "monitoring"
)

// Keyword represents one tracked search term and its SEO attributes.
type Keyword struct {
	ID              uuid.UUID      `json:"id"`
	Keyword         string         `json:"keyword"`
	SearchVolume    int64          `json:"search_volume"`
	Difficulty      *float64       `json:"difficulty"`
	CPC             float64        `json:"cpc"`
	Competition     *float64       `json:"competition"`
	PriorityTier    *string        `json:"priority_tier"`
	AIOStatus       string         `json:"aio_status"`
	CurrentRank     *int           `json:"current_rank"`
	PreviousRank    *int           `json:"previous_rank"`
	Traffic         int64          `json:"traffic"`
	TrafficValue    float64        `json:"traffic_value"`
	ProductCategory *string        `json:"product_category"`
	UserIntent      *string        `json:"user_intent"`
	Metadata        map[string]any `json:"metadata"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// ValidTier reports whether s is one of the five priority tiers.
func ValidTier(s string) bool {
	switch s {
	case TierP0, TierP1, TierP2, TierP3, TierP4:
		return true
	}
	return false
}

// ValidAIOStatus reports whether s is a recognized AIO status.
func ValidAIOStatus(s string) bool {
	switch s {
	case AIOActive, AIOInactive, AIOMonitoring:
		return true
	}
	return false
}

// KeywordFilter narrows keyword list queries. Zero values mean "no filter".
type KeywordFilter struct {
	Tier      string
	AIOStatus string
	Category  string
	MinVolume *int64
	MaxVolume *int64
	Search    string
}

// KeywordPage is one page of a filtered keyword listing.
type KeywordPage struct {
	Keywords []Keyword `json:"keywords"`
	Total    int64     `json:"total"`
	Page     int       `json:"page"`
	PerPage  int       `json:"per_page"`
}
