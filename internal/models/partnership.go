package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PartnershipStatus tracks where a sponsored deal is in its lifecycle.
type PartnershipStatus string

const (
	PartnershipLive      PartnershipStatus = "live"
	PartnershipScheduled PartnershipStatus = "scheduled"
	PartnershipDraft     PartnershipStatus = "draft"
	PartnershipCompleted PartnershipStatus = "completed"
)

// Partnership is a tracked sponsored-content deal. Performance counters are
// written only by the refresh coordinator.
type Partnership struct {
	ID          string            `json:"id"`
	CreatorName string            `json:"creator_name" validate:"required"`
	VideoURL    string            `json:"video_url" validate:"required,url"`
	CostUSD     decimal.Decimal   `json:"cost_usd"`
	Status      PartnershipStatus `json:"status" validate:"required,oneof=live scheduled draft completed"`
	PostedDate  time.Time         `json:"posted_date"`
	Platform    string            `json:"platform" validate:"required,oneof=instagram tiktok youtube"`
	Views       int64             `json:"views"`
	Likes       int64             `json:"likes"`
	Comments    int64             `json:"comments"`
	Shares      int64             `json:"shares"`
	OwnerID     string            `json:"owner_id,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// DailyMetric is one day of the attribution series. Never persisted.
type DailyMetric struct {
	Date            string `json:"date"`
	Installs        int    `json:"installs"`
	Uninstalls      int    `json:"uninstalls"`
	RetentionPct    int    `json:"retention_pct"`
	AttributedViews int64  `json:"attributed_views"`
}
