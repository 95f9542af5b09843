// Package classifier assigns priority tiers to keywords from their
// numeric attributes. It is pure computation with no store dependencies.
package classifier

import "keywordpyramid/internal/models"

// Volume thresholds for base tier assignment, inclusive lower bounds.
const (
	volumeP0 = 30000
	volumeP1 = 20000
	volumeP2 = 15000
	volumeP3 = 10000
)

// Boost conditions: commercially valuable keywords that are still winnable
// move up exactly one tier.
const (
	boostMinCPC        = 5
	boostMaxDifficulty = 50
)

// tierUpgrade maps each tier one step toward P0. P0 is a fixed point.
var tierUpgrade = map[string]string{
	models.TierP0: models.TierP0,
	models.TierP1: models.TierP0,
	models.TierP2: models.TierP1,
	models.TierP3: models.TierP2,
	models.TierP4: models.TierP3,
}

// Classify returns the priority tier for the given keyword attributes.
// An absent difficulty defaults to 50 and an absent cpc to 0, both of
// which disable the commercial boost.
func Classify(searchVolume int64, difficulty *float64, cpc float64) string {
	if searchVolume < 0 {
		searchVolume = 0
	}

	tier := baseTier(searchVolume)

	diff := 50.0
	if difficulty != nil {
		diff = *difficulty
	}

	// At most one boost pass is applied.
	if cpc > boostMinCPC && diff < boostMaxDifficulty && tier != models.TierP0 {
		tier = tierUpgrade[tier]
	}

	return tier
}

func baseTier(volume int64) string {
	switch {
	case volume >= volumeP0:
		return models.TierP0
	case volume >= volumeP1:
		return models.TierP1
	case volume >= volumeP2:
		return models.TierP2
	case volume >= volumeP3:
		return models.TierP3
	default:
		return models.TierP4
	}
}
