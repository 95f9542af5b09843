package classifier

import (
	"testing"

	"keywordpyramid/internal/models"
)

func f(v float64) *float64 { return &v }

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		volume     int64
		difficulty *float64
		cpc        float64
		want       string
	}{
		{"volume at P0 threshold", 30000, f(60), 0, models.TierP0},
		{"just below P0 threshold", 29999, f(60), 0, models.TierP1},
		{"volume at P1 threshold", 20000, f(60), 0, models.TierP1},
		{"just below P1 threshold", 19999, f(60), 0, models.TierP2},
		{"volume at P2 threshold", 15000, f(60), 0, models.TierP2},
		{"volume at P3 threshold", 10000, f(60), 0, models.TierP3},
		{"just below P3 threshold", 9999, f(60), 0, models.TierP4},
		{"zero volume", 0, f(60), 0, models.TierP4},
		{"negative volume treated as zero", -500, f(60), 0, models.TierP4},
		{"boost P1 to P0", 25000, f(30), 10, models.TierP0},
		{"no boost when difficulty too high", 25000, f(60), 10, models.TierP1},
		{"no boost at difficulty exactly 50", 25000, f(50), 10, models.TierP1},
		{"no boost at cpc exactly 5", 25000, f(30), 5, models.TierP1},
		{"boost only one step", 5000, f(10), 100, models.TierP3},
		{"P0 is a fixed point", 40000, f(10), 100, models.TierP0},
		{"missing difficulty disables boost", 25000, nil, 10, models.TierP1},
		{"missing cpc disables boost", 25000, f(30), 0, models.TierP1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.volume, tt.difficulty, tt.cpc)
			if got != tt.want {
				t.Errorf("Classify(%d, %v, %v) = %q, want %q", tt.volume, tt.difficulty, tt.cpc, got, tt.want)
			}
		})
	}
}

func TestClassifyIdempotent(t *testing.T) {
	first := Classify(25000, f(30), 10)
	second := Classify(25000, f(30), 10)
	if first != second {
		t.Errorf("Classify is not deterministic: %q != %q", first, second)
	}
}
