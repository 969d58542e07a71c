package insights

import (
	"github.com/shopspring/decimal"

	"github.com/ternarybob/creatorlogic/internal/models"
)

// Winner values
const (
	WinnerA    = "a"
	WinnerB    = "b"
	WinnerTie  = "tie"
	WinnerNone = "none"
)

// CreatorSide is one column of a comparison
type CreatorSide struct {
	Seed  string      `json:"seed"`
	Stats PostStats   `json:"stats"`
	Deal  DealMetrics `json:"deal"`
}

// Comparison puts two creators side by side at the same base cost
type Comparison struct {
	BaseCost decimal.Decimal   `json:"base_cost"`
	A        CreatorSide       `json:"a"`
	B        CreatorSide       `json:"b"`
	Winners  map[string]string `json:"winners"`
}

// Compare computes both sides and picks a winner per metric. Reach and
// engagement are higher-is-better; unit costs are lower-is-better and a side
// with no data never wins a cost metric.
func Compare(seedA string, postsA []models.ContentPost, seedB string, postsB []models.ContentPost, baseCost decimal.Decimal) Comparison {
	if baseCost.IsZero() {
		baseCost = DefaultBaseCost
	}

	side := func(seed string, posts []models.ContentPost) CreatorSide {
		stats := ComputePostStats(posts)
		return CreatorSide{Seed: seed, Stats: stats, Deal: ComputeDealMetrics(stats, baseCost)}
	}
	a, b := side(seedA, postsA), side(seedB, postsB)

	return Comparison{
		BaseCost: baseCost,
		A:        a,
		B:        b,
		Winners: map[string]string{
			"avg_plays":           higher(a.Stats.AvgPlays, b.Stats.AvgPlays),
			"avg_engagement":      higher(a.Stats.AvgEngagement, b.Stats.AvgEngagement),
			"cost_per_view":       lower(a.Deal.CostPerView, b.Deal.CostPerView),
			"cost_per_engagement": lower(a.Deal.CostPerEngagement, b.Deal.CostPerEngagement),
		},
	}
}

func higher(a, b int64) string {
	switch {
	case a == 0 && b == 0:
		return WinnerNone
	case a > b:
		return WinnerA
	case b > a:
		return WinnerB
	default:
		return WinnerTie
	}
}

// lower treats zero as missing data
func lower(a, b decimal.Decimal) string {
	switch {
	case a.IsZero() && b.IsZero():
		return WinnerNone
	case b.IsZero():
		return WinnerA
	case a.IsZero():
		return WinnerB
	case a.LessThan(b):
		return WinnerA
	case b.LessThan(a):
		return WinnerB
	default:
		return WinnerTie
	}
}
