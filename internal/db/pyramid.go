package db

import (
	"context"

	"keywordpyramid/internal/models"
)

// GetPyramid computes the tier-grouped aggregate view of the classified
// inventory in a single query. Unclassified rows are excluded.
func (d *DB) GetPyramid(ctx context.Context) (*models.Pyramid, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT priority_tier,
			COUNT(*),
			COALESCE(AVG(search_volume), 0),
			COALESCE(SUM(traffic), 0),
			COUNT(*) FILTER (WHERE aio_status = 'active')
		FROM keywords
		WHERE priority_tier IS NOT NULL
		GROUP BY priority_tier
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byTier := make(map[string]models.PyramidTier)
	for rows.Next() {
		var t models.PyramidTier
		if err := rows.Scan(&t.Tier, &t.Count, &t.AvgSearchVolume, &t.TotalTraffic, &t.AIOActiveCount); err != nil {
			return nil, err
		}
		byTier[t.Tier] = t
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	pyramid := &models.Pyramid{}
	for _, tier := range models.Tiers {
		t, ok := byTier[tier]
		if !ok {
			t = models.PyramidTier{Tier: tier}
		}
		pyramid.Tiers = append(pyramid.Tiers, t)
		pyramid.Summary.TotalKeywords += t.Count
		pyramid.Summary.TotalTraffic += t.TotalTraffic
		pyramid.Summary.AIOActiveCount += t.AIOActiveCount
	}

	return pyramid, nil
}
