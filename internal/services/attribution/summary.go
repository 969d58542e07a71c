package attribution

import "github.com/ternarybob/creatorlogic/internal/models"

// Summary totals a daily series for dashboard headline figures
type Summary struct {
	Days                 int     `json:"days"`
	TotalInstalls        int     `json:"total_installs"`
	TotalUninstalls      int     `json:"total_uninstalls"`
	AverageRetentionPct  float64 `json:"average_retention_pct"`
	TotalAttributedViews int64   `json:"total_attributed_views"`
}

// Summarize totals installs, uninstalls and attributed views and averages retention
func Summarize(series []models.DailyMetric) Summary {
	s := Summary{Days: len(series)}
	if len(series) == 0 {
		return s
	}

	retention := 0
	for _, m := range series {
		s.TotalInstalls += m.Installs
		s.TotalUninstalls += m.Uninstalls
		s.TotalAttributedViews += m.AttributedViews
		retention += m.RetentionPct
	}
	s.AverageRetentionPct = float64(retention) / float64(len(series))
	return s
}
