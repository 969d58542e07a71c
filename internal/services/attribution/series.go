// Package attribution computes the daily install series that correlates
// creator posts with app installs. All functions are pure and perform no I/O.
package attribution

import (
	"math"
	"time"

	"github.com/ternarybob/creatorlogic/internal/models"
)

const (
	// WindowDays is the trailing period during which a post's views influence installs
	WindowDays = 7

	baselineFloor  = 45
	baselineBand   = 20
	viewsPerImpact = 200
	fallbackImpact = 50
	uninstallRate  = 0.2
	dateLayout     = "2006-01-02"
)

// RangeDays maps a range label to a day count. Unknown labels get 30.
func RangeDays(label string) int {
	switch label {
	case "7d":
		return 7
	case "90d":
		return 90
	case "all":
		return 365
	default:
		return 30
	}
}

// ComputeDailySeries returns one entry per UTC day from rangeDays before
// today through today inclusive, oldest first. The result depends only on
// its inputs.
//
// Uninstalls and RetentionPct are synthetic placeholders and do not reflect
// any real signal.
func ComputeDailySeries(partnerships []*models.Partnership, rangeDays int, today time.Time) []models.DailyMetric {
	if rangeDays < 0 {
		rangeDays = 0
	}
	day0 := truncateDay(today)

	series := make([]models.DailyMetric, 0, rangeDays+1)
	for offset := rangeDays; offset >= 0; offset-- {
		day := day0.AddDate(0, 0, -offset)
		date := day.Format(dateLayout)

		installs := Baseline(date)
		var views int64
		for _, p := range partnerships {
			if p.PostedDate.IsZero() {
				continue
			}
			posted := truncateDay(p.PostedDate)
			if posted.Equal(day) {
				views += p.Views
			}
			installs += Boost(p.Views, daysBetween(posted, day))
		}

		series = append(series, models.DailyMetric{
			Date:            date,
			Installs:        installs,
			Uninstalls:      int(math.Floor(float64(installs) * uninstallRate)),
			RetentionPct:    100 - offset%10,
			AttributedViews: views,
		})
	}
	return series
}

// Baseline is the organic install count for a date string, in [45, 64].
func Baseline(date string) int {
	return baselineFloor + int(stableHash(date)%baselineBand)
}

// Boost is the installs one post contributes daysSince days after it went
// live. Zero outside the window or before posting.
func Boost(views int64, daysSince int) int {
	if daysSince < 0 || daysSince > WindowDays {
		return 0
	}
	impact := int64(fallbackImpact)
	if views > 0 {
		impact = (views + viewsPerImpact - 1) / viewsPerImpact
	}
	return int(impact / int64(daysSince+1))
}

// stableHash is the 31-multiplier string hash with 32-bit wrap-around,
// returned as an absolute value.
func stableHash(s string) int64 {
	var h int32
	for _, c := range s {
		h = h*31 + int32(c)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return v
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
