package insights

import (
	"github.com/shopspring/decimal"

	"github.com/ternarybob/creatorlogic/internal/models"
)

// Grade rates a deal by its cost per view
type Grade string

const (
	GradeS    Grade = "S"
	GradeA    Grade = "A"
	GradeB    Grade = "B"
	GradeC    Grade = "C"
	GradeNone Grade = "-"
)

var (
	thresholdS = decimal.RequireFromString("0.03")
	thresholdA = decimal.RequireFromString("0.06")
	thresholdB = decimal.RequireFromString("0.12")

	thousand = decimal.NewFromInt(1000)
)

var gradeLabels = map[Grade]string{
	GradeS:    "Insane Value",
	GradeA:    "Great Deal",
	GradeB:    "Fair Price",
	GradeC:    "Expensive",
	GradeNone: "No Data",
}

// DealMetrics prices one post from a creator at a given cost
type DealMetrics struct {
	Cost              decimal.Decimal `json:"cost"`
	CostPerView       decimal.Decimal `json:"cost_per_view"`
	CostPerEngagement decimal.Decimal `json:"cost_per_engagement"`
	Grade             Grade           `json:"grade"`
	Label             string          `json:"label"`
}

// ComputeDealMetrics divides cost by average plays and engagement. Zero
// averages yield zero unit costs; no plays grades as GradeNone.
func ComputeDealMetrics(stats PostStats, cost decimal.Decimal) DealMetrics {
	m := DealMetrics{
		Cost:              cost,
		CostPerView:       perUnit(cost, stats.AvgPlays),
		CostPerEngagement: perUnit(cost, stats.AvgEngagement),
	}
	m.Grade = gradeFor(stats.AvgPlays, m.CostPerView)
	m.Label = gradeLabels[m.Grade]
	return m
}

func gradeFor(avgPlays int64, cpv decimal.Decimal) Grade {
	switch {
	case avgPlays <= 0:
		return GradeNone
	case cpv.LessThan(thresholdS):
		return GradeS
	case cpv.LessThan(thresholdA):
		return GradeA
	case cpv.LessThan(thresholdB):
		return GradeB
	default:
		return GradeC
	}
}

func perUnit(cost decimal.Decimal, units int64) decimal.Decimal {
	if units <= 0 {
		return decimal.Zero
	}
	return cost.Div(decimal.NewFromInt(units)).Round(4)
}

// PartnershipMetrics are the live figures for one tracked deal
type PartnershipMetrics struct {
	PartnershipID     string          `json:"partnership_id"`
	Engagement        int64           `json:"engagement"`
	EngagementRatePct float64         `json:"engagement_rate_pct"`
	CostPerView       decimal.Decimal `json:"cost_per_view"`
	CostPerMille      decimal.Decimal `json:"cost_per_mille"`
}

// ComputePartnershipMetrics derives engagement rate, CPV and CPM from a
// partnership's refreshed counters.
func ComputePartnershipMetrics(p *models.Partnership) PartnershipMetrics {
	engagement := p.Likes + p.Comments + p.Shares
	m := PartnershipMetrics{
		PartnershipID:     p.ID,
		Engagement:        engagement,
		EngagementRatePct: ratePct(engagement, p.Views),
		CostPerView:       perUnit(p.CostUSD, p.Views),
		CostPerMille:      decimal.Zero,
	}
	if p.Views > 0 {
		m.CostPerMille = p.CostUSD.Mul(thousand).Div(decimal.NewFromInt(p.Views)).Round(2)
	}
	return m
}
