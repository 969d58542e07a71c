package insights

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/creatorlogic/internal/models"
)

func int64Ptr(v int64) *int64 { return &v }

func samplePosts() []models.ContentPost {
	return []models.ContentPost{
		{ShortCode: "a", PlayCount: int64Ptr(1000), ViewCount: int64Ptr(600), LikeCount: 40, CommentCount: 10, Hashtags: []string{"fitness", "Gym"}},
		{ShortCode: "b", ViewCount: int64Ptr(2000), LikeCount: 80, CommentCount: 15, ShareCount: int64Ptr(5), Hashtags: []string{"gym", "travel"}},
	}
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func TestComputePostStats(t *testing.T) {
	stats := ComputePostStats(samplePosts())

	assert.Equal(t, 2, stats.Posts)
	assert.Equal(t, int64(3000), stats.TotalPlays)
	assert.Equal(t, int64(150), stats.TotalEngagement)
	assert.Equal(t, int64(1500), stats.AvgPlays)
	assert.Equal(t, int64(75), stats.AvgEngagement)
	assert.Equal(t, 5.0, stats.EngagementRatePct)

	assert.Equal(t, PostStats{}, ComputePostStats(nil))
}

func TestComputeDealMetrics_Grades(t *testing.T) {
	stats := PostStats{AvgPlays: 1500, AvgEngagement: 75}

	tests := []struct {
		cost  int64
		grade Grade
	}{
		{30, GradeS},
		{60, GradeA},
		{90, GradeB},
		{150, GradeB},
		{500, GradeC},
	}
	for _, tt := range tests {
		t.Run(string(tt.grade), func(t *testing.T) {
			m := ComputeDealMetrics(stats, decimal.NewFromInt(tt.cost))
			assert.Equal(t, tt.grade, m.Grade)
			assert.Equal(t, gradeLabels[tt.grade], m.Label)
		})
	}

	m := ComputeDealMetrics(stats, decimal.NewFromInt(500))
	assertDecimal(t, "0.3333", m.CostPerView)
	assertDecimal(t, "6.6667", m.CostPerEngagement)

	none := ComputeDealMetrics(PostStats{}, decimal.NewFromInt(500))
	assert.Equal(t, GradeNone, none.Grade)
	assert.True(t, none.CostPerView.IsZero())
}

func TestComputePartnershipMetrics(t *testing.T) {
	p := &models.Partnership{ID: "p1", CostUSD: decimal.NewFromInt(500), Views: 20000, Likes: 900, Comments: 80, Shares: 20}

	m := ComputePartnershipMetrics(p)
	assert.Equal(t, int64(1000), m.Engagement)
	assert.Equal(t, 5.0, m.EngagementRatePct)
	assertDecimal(t, "0.025", m.CostPerView)
	assertDecimal(t, "25", m.CostPerMille)

	empty := ComputePartnershipMetrics(&models.Partnership{ID: "p2", CostUSD: decimal.NewFromInt(100)})
	assert.Zero(t, empty.EngagementRatePct)
	assert.True(t, empty.CostPerMille.IsZero())
}

func TestTopHashtags(t *testing.T) {
	posts := append(samplePosts(), models.ContentPost{Hashtags: []string{"travel", "food"}})

	top := TopHashtags(posts, 2)
	require.Len(t, top, 2)
	assert.Equal(t, HashtagCount{Tag: "Gym", Count: 2}, top[0])
	assert.Equal(t, HashtagCount{Tag: "travel", Count: 2}, top[1])

	all := TopHashtags(posts, 0)
	assert.Len(t, all, 4)
	assert.Empty(t, TopHashtags(nil, 5))
}

func TestCompare(t *testing.T) {
	weaker := []models.ContentPost{{PlayCount: int64Ptr(500), LikeCount: 20, CommentCount: 5}}

	c := Compare("alpha", samplePosts(), "beta", weaker, decimal.Zero)
	assertDecimal(t, "500", c.BaseCost)
	assert.Equal(t, "alpha", c.A.Seed)
	assert.Equal(t, WinnerA, c.Winners["avg_plays"])
	assert.Equal(t, WinnerA, c.Winners["avg_engagement"])
	assert.Equal(t, WinnerA, c.Winners["cost_per_view"])
	assert.Equal(t, WinnerA, c.Winners["cost_per_engagement"])

	c = Compare("alpha", samplePosts(), "empty", nil, decimal.NewFromInt(100))
	assert.Equal(t, WinnerA, c.Winners["cost_per_view"], "a side with no data never wins on cost")
	assert.Equal(t, GradeNone, c.B.Deal.Grade)

	c = Compare("x", nil, "y", nil, decimal.Zero)
	assert.Equal(t, WinnerNone, c.Winners["avg_plays"])
	assert.Equal(t, WinnerNone, c.Winners["cost_per_view"])
}
