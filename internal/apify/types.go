// Package apify is a thin client for the Apify actor platform: submit a run,
// poll its status, fetch its dataset and read the tail of its log.
// It does not retry; the pollers above it own retry and timeout policy.
package apify

import (
	"fmt"
	"time"
)

// APIError represents a non-2xx response from the Apify API.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Apify API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// RateLimitError represents a 429 from Apify or a cancelled limiter wait.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("Apify rate limit exceeded, retry after %v", e.RetryAfter)
}

// ConfigError is raised at call time when the client cannot authenticate.
type ConfigError struct {
	Setting string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("Apify configuration error: %s is missing", e.Setting)
}

// DiscoveryInput is the actor input for a lookalike-profile discovery run.
type DiscoveryInput struct {
	Username        []string `json:"username"`
	MaxItem         int      `json:"maxItem"`
	Type            string   `json:"type"`
	ProfileEnriched bool     `json:"profileEnriched"`
}

// NewDiscoveryInput builds the input for a similar-users search seeded by one handle.
func NewDiscoveryInput(seed string, limit int) DiscoveryInput {
	return DiscoveryInput{
		Username:        []string{seed},
		MaxItem:         limit,
		Type:            "similar_users",
		ProfileEnriched: true,
	}
}

// ReelInput is the input for the reel scraper, used both for a creator's
// recent posts (Username = handles) and for tracked videos (Username = post URLs).
type ReelInput struct {
	Username               []string `json:"username"`
	ResultsLimit           int      `json:"resultsLimit"`
	SkipPinnedPosts        bool     `json:"skipPinnedPosts"`
	IncludeDownloadedVideo *bool    `json:"includeDownloadedVideo,omitempty"`
	IncludeSharesCount     *bool    `json:"includeSharesCount,omitempty"`
	IncludeTranscript      *bool    `json:"includeTranscript,omitempty"`
	OnlyPostsNewerThan     string   `json:"onlyPostsNewerThan,omitempty"`
}

// NewAnalyticsInput builds the input for a creator's recent posts.
func NewAnalyticsInput(seed string, limit int) ReelInput {
	return ReelInput{
		Username:        []string{seed},
		ResultsLimit:    limit,
		SkipPinnedPosts: true,
	}
}

// NewVideoStatsInput builds the input for re-scraping tracked video URLs.
// ResultsLimit equals the URL count so the actor stops once every URL is covered.
func NewVideoStatsInput(urls []string, newerThan string) ReelInput {
	no, yes := false, true
	return ReelInput{
		Username:               urls,
		ResultsLimit:           len(urls),
		SkipPinnedPosts:        true,
		IncludeDownloadedVideo: &no,
		IncludeSharesCount:     &yes,
		IncludeTranscript:      &no,
		OnlyPostsNewerThan:     newerThan,
	}
}
