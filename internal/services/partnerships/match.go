package partnerships

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/ternarybob/creatorlogic/internal/models"
	"github.com/ternarybob/creatorlogic/internal/normalize"
)

var shortCodePattern = regexp.MustCompile(`/(?:p|reel|reels)/([A-Za-z0-9_-]+)`)

var (
	itemShortCode = normalize.Fields{"shortCode", "shortcode", "code"}
	itemURL       = normalize.Fields{"url"}
	itemInputURL  = normalize.Fields{"inputUrl", "input_url"}
	itemPlays     = normalize.Fields{"videoPlayCount", "video_play_count"}
	itemViews     = normalize.Fields{"videoViewCount", "video_view_count"}
	itemLikes     = normalize.Fields{"likesCount", "like_count"}
	itemComments  = normalize.Fields{"commentsCount", "comment_count"}
	itemShares    = normalize.Fields{"sharesCount", "share_count"}
)

// ShortCode extracts the post short code that follows a /p/, /reel/ or
// /reels/ path segment, ignoring query parameters. "" when there is no marker.
func ShortCode(videoURL string) string {
	if m := shortCodePattern.FindStringSubmatch(videoURL); m != nil {
		return m[1]
	}
	return ""
}

// Match maps extraction records back onto partnerships and returns updated
// copies plus the number matched. A record matches when its short code equals
// the partnership's, its url contains that short code, or its input url or url
// equals the partnership's video url verbatim. Partnerships without a short
// code only match verbatim. Metrics are only overwritten by
// present, non-zero values; views prefer play count over view count.
func Match(partnerships []*models.Partnership, items []json.RawMessage) ([]*models.Partnership, int) {
	parsed := make([]gjson.Result, 0, len(items))
	for _, raw := range items {
		if gjson.ValidBytes(raw) {
			parsed = append(parsed, gjson.ParseBytes(raw))
		}
	}

	updated := make([]*models.Partnership, len(partnerships))
	matched := 0
	for i, p := range partnerships {
		cp := *p
		updated[i] = &cp

		item, ok := findMatch(&cp, parsed)
		if !ok {
			continue
		}
		matched++
		mergeMetrics(&cp, item)
	}
	return updated, matched
}

func findMatch(p *models.Partnership, items []gjson.Result) (gjson.Result, bool) {
	code := ShortCode(p.VideoURL)
	for _, item := range items {
		itemCode := itemShortCode.StringOr(item, "")
		link := itemURL.StringOr(item, "")

		switch {
		case code != "" && itemCode == code:
			return item, true
		case code != "" && link != "" && strings.Contains(link, code):
			return item, true
		case p.VideoURL != "" && itemInputURL.StringOr(item, "") == p.VideoURL:
			return item, true
		case link != "" && link == p.VideoURL:
			return item, true
		}
	}
	return gjson.Result{}, false
}

func mergeMetrics(p *models.Partnership, item gjson.Result) {
	if n := itemPlays.IntOr(item); n > 0 {
		p.Views = n
	} else if n := itemViews.IntOr(item); n > 0 {
		p.Views = n
	}
	if n := itemLikes.IntOr(item); n > 0 {
		p.Likes = n
	}
	if n := itemComments.IntOr(item); n > 0 {
		p.Comments = n
	}
	if n := itemShares.IntOr(item); n > 0 {
		p.Shares = n
	}
}
