package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

var followerLabelPattern = regexp.MustCompile(`(?i)(\d[\d,]*(?:\.\d+)?)\s*([km])?`)

// ParseFollowerLabel extracts an approximate count from labels like
// "35.7k followers" or "1.2M followers". k scales by 1e3, M by 1e6.
func ParseFollowerLabel(label string) (int64, bool) {
	m := followerLabelPattern.FindStringSubmatch(label)
	if m == nil {
		return 0, false
	}

	n, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return 0, false
	}

	switch strings.ToLower(m[2]) {
	case "k":
		n *= 1_000
	case "m":
		n *= 1_000_000
	}
	return int64(math.Round(n)), true
}

// followerLabel reads the known label fields only; free text such as a
// biography is never parsed for a count.
func followerLabel(raw gjson.Result) (string, bool) {
	for _, path := range creatorFollowerLabel {
		if v := raw.Get(path); v.Type == gjson.String && mentionsFollowers(v.String()) {
			return v.String(), true
		}
	}
	return "", false
}

func mentionsFollowers(s string) bool {
	return strings.Contains(strings.ToLower(s), "follower")
}
