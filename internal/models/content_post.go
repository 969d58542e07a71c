package models

import "time"

// MusicAttribution names the audio used on a post.
type MusicAttribution struct {
	Artist string `json:"artist"`
	Track  string `json:"track"`
}

// ContentPost is a normalized analytics record for one published post.
// At least one of ShortCode or URL is always set.
type ContentPost struct {
	ID                 string            `json:"id"`
	Type               string            `json:"type"`
	ShortCode          string            `json:"short_code"`
	Caption            string            `json:"caption"`
	Hashtags           []string          `json:"hashtags"`
	URL                string            `json:"url"`
	CommentCount       int64             `json:"comment_count"`
	LikeCount          int64             `json:"like_count"`
	ShareCount         *int64            `json:"share_count,omitempty"`
	Timestamp          time.Time         `json:"timestamp"`
	ViewCount          *int64            `json:"view_count,omitempty"`
	PlayCount          *int64            `json:"play_count,omitempty"`
	DurationSeconds    *float64          `json:"duration_seconds,omitempty"`
	ThumbnailURL       string            `json:"thumbnail_url"`
	Music              *MusicAttribution `json:"music,omitempty"`
	OwnerFollowerCount int64             `json:"owner_follower_count,omitempty"`
}

// ReachCount is the canonical reach metric: play count, falling back to view count.
func (p ContentPost) ReachCount() int64 {
	if p.PlayCount != nil && *p.PlayCount > 0 {
		return *p.PlayCount
	}
	if p.ViewCount != nil {
		return *p.ViewCount
	}
	return 0
}

// Shares returns the share count or zero when the upstream omitted it.
func (p ContentPost) Shares() int64 {
	if p.ShareCount == nil {
		return 0
	}
	return *p.ShareCount
}

// Engagement is likes + comments + shares.
func (p ContentPost) Engagement() int64 {
	return p.LikeCount + p.CommentCount + p.Shares()
}
