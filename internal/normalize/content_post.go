package normalize

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/ternarybob/creatorlogic/internal/models"
)

var (
	postID           = Fields{"id", "pk"}
	postType         = Fields{"type", "productType", "media_type"}
	postShortCode    = Fields{"shortCode", "shortcode", "code"}
	postCaption      = Fields{"caption", "caption.text", "edge_media_to_caption.edges.0.node.text"}
	postHashtags     = Fields{"hashtags"}
	postURL          = Fields{"url", "postUrl", "permalink"}
	postComments     = Fields{"commentsCount", "comment_count"}
	postLikes        = Fields{"likesCount", "like_count"}
	postShares       = Fields{"sharesCount", "share_count", "reshare_count"}
	postTimestamp    = Fields{"timestamp", "taken_at_timestamp", "taken_at"}
	postViews        = Fields{"videoViewCount", "video_view_count", "viewCount"}
	postPlays        = Fields{"videoPlayCount", "video_play_count", "playCount", "play_count"}
	postDuration     = Fields{"videoDuration", "video_duration"}
	postThumbnail    = Fields{"displayUrl", "display_url", "thumbnailUrl", "thumbnail_url"}
	postMusicArtist  = Fields{"musicInfo.artist_name", "music_info.artist_name", "musicInfo.artistName"}
	postMusicTrack   = Fields{"musicInfo.song_name", "music_info.song_name", "musicInfo.songName"}
	postOwnerFollows = Fields{"ownerFollowerCount", "owner.followerCount", "owner.followersCount", "owner.follower_count"}
)

var hashtagPattern = regexp.MustCompile(`#([\p{L}\p{N}_]+)`)

// ContentPost maps one raw analytics record. ok is false when the record has
// neither a short code nor a URL.
func ContentPost(raw json.RawMessage) (models.ContentPost, bool) {
	if !gjson.ValidBytes(raw) {
		return models.ContentPost{}, false
	}
	r := gjson.ParseBytes(raw)
	if !r.IsObject() {
		return models.ContentPost{}, false
	}

	shortCode := postShortCode.StringOr(r, "")
	postURLValue, hasURL := postURL.String(r)
	if shortCode == "" && !hasURL {
		return models.ContentPost{}, false
	}
	if !hasURL {
		postURLValue = "https://instagram.com/reel/" + shortCode
	}

	caption := postCaption.StringOr(r, "")
	p := models.ContentPost{
		ID:                 postID.StringOr(r, firstNonEmpty(shortCode, postURLValue)),
		Type:               postType.StringOr(r, "video"),
		ShortCode:          shortCode,
		Caption:            caption,
		URL:                postURLValue,
		CommentCount:       postComments.IntOr(r),
		LikeCount:          postLikes.IntOr(r),
		ThumbnailURL:       postThumbnail.StringOr(r, ""),
		OwnerFollowerCount: postOwnerFollows.IntOr(r),
	}

	if tags, ok := postHashtags.Strings(r); ok {
		p.Hashtags = tags
	} else {
		p.Hashtags = CaptionHashtags(caption)
	}
	if ts, ok := postTimestamp.Time(r); ok {
		p.Timestamp = ts
	}
	if n, ok := postShares.Int(r); ok {
		p.ShareCount = &n
	}
	if n, ok := postViews.Int(r); ok {
		p.ViewCount = &n
	}
	if n, ok := postPlays.Int(r); ok {
		p.PlayCount = &n
	}
	if d, ok := postDuration.Float(r); ok {
		p.DurationSeconds = &d
	}

	artist, hasArtist := postMusicArtist.String(r)
	track, hasTrack := postMusicTrack.String(r)
	if hasArtist || hasTrack {
		p.Music = &models.MusicAttribution{Artist: artist, Track: track}
	}

	return p, true
}

// ContentPosts maps a dataset, dropping unmappable records.
func ContentPosts(raws []json.RawMessage) []models.ContentPost {
	out := make([]models.ContentPost, 0, len(raws))
	for _, raw := range raws {
		if p, ok := ContentPost(raw); ok {
			out = append(out, p)
		}
	}
	return out
}

// CaptionHashtags returns hashtags in order of first appearance, without duplicates.
func CaptionHashtags(caption string) []string {
	seen := map[string]bool{}
	tags := []string{}
	for _, m := range hashtagPattern.FindAllStringSubmatch(caption, -1) {
		key := strings.ToLower(m[1])
		if seen[key] {
			continue
		}
		seen[key] = true
		tags = append(tags, m[1])
	}
	return tags
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
