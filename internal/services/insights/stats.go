// Package insights derives per-creator performance figures and deal pricing
// from normalized analytics posts and tracked partnerships. Pure functions only.
package insights

import (
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ternarybob/creatorlogic/internal/models"
)

// DefaultBaseCost is the per-post price assumed when comparing two creators
var DefaultBaseCost = decimal.NewFromInt(500)

// PostStats summarizes a creator's recent posts
type PostStats struct {
	Posts             int     `json:"posts"`
	TotalPlays        int64   `json:"total_plays"`
	TotalEngagement   int64   `json:"total_engagement"`
	AvgPlays          int64   `json:"avg_plays"`
	AvgEngagement     int64   `json:"avg_engagement"`
	EngagementRatePct float64 `json:"engagement_rate_pct"`
}

// ComputePostStats totals reach (plays, falling back to views) and engagement
// (likes + comments + shares) and derives rounded per-post averages.
func ComputePostStats(posts []models.ContentPost) PostStats {
	stats := PostStats{Posts: len(posts)}
	if len(posts) == 0 {
		return stats
	}

	for _, p := range posts {
		stats.TotalPlays += p.ReachCount()
		stats.TotalEngagement += p.Engagement()
	}

	n := float64(len(posts))
	stats.AvgPlays = int64(math.Round(float64(stats.TotalPlays) / n))
	stats.AvgEngagement = int64(math.Round(float64(stats.TotalEngagement) / n))
	stats.EngagementRatePct = ratePct(stats.AvgEngagement, stats.AvgPlays)
	return stats
}

// HashtagCount is one row of a hashtag frequency table
type HashtagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// TopHashtags returns the n most used hashtags, most frequent first. Ties keep
// first-appearance order. Tags are compared case-insensitively.
func TopHashtags(posts []models.ContentPost, n int) []HashtagCount {
	index := map[string]int{}
	var counts []HashtagCount
	for _, p := range posts {
		for _, tag := range p.Hashtags {
			key := strings.ToLower(tag)
			if i, ok := index[key]; ok {
				counts[i].Count++
				continue
			}
			index[key] = len(counts)
			counts = append(counts, HashtagCount{Tag: tag, Count: 1})
		}
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	if n > 0 && len(counts) > n {
		counts = counts[:n]
	}
	return counts
}

// ratePct is part/whole as a percentage rounded to two places; 0 when whole is 0
func ratePct(part, whole int64) float64 {
	if whole <= 0 {
		return 0
	}
	return math.Round(float64(part)/float64(whole)*10000) / 100
}
