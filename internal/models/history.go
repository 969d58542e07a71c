package models

import (
	"strings"
	"time"
)

// HistoryRecord is the durable summary of one job. Exactly one exists per job id.
type HistoryRecord struct {
	ID                  string    `json:"id"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
	Kind                JobKind   `json:"kind" badgerhold:"index"`
	Seed                string    `json:"seed"`
	SeedKey             string    `json:"-" badgerhold:"index"`
	Status              JobStatus `json:"status"`
	ResultCount         int       `json:"result_count"`
	EmailsFoundCount    int       `json:"emails_found_count"`
	FollowerCountOfSeed int64     `json:"follower_count_of_seed,omitempty"`
	OwnerID             string    `json:"owner_id,omitempty"`
}

// SeedKey normalizes a seed for case-insensitive lookups.
func SeedKey(seed string) string {
	return strings.ToLower(strings.TrimSpace(seed))
}

// NewHistoryRecord summarizes a job as it currently stands.
func NewHistoryRecord(j *Job) *HistoryRecord {
	rec := &HistoryRecord{
		ID:          j.ID,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
		Kind:        j.Kind,
		Seed:        j.Seed,
		SeedKey:     SeedKey(j.Seed),
		Status:      j.Status,
		ResultCount: j.ResultCount(),
		OwnerID:     j.OwnerID,
	}
	for _, c := range j.Creators {
		if c.HasEmail() {
			rec.EmailsFoundCount++
		}
	}
	if j.Kind == JobKindAnalytics && len(j.Posts) > 0 {
		rec.FollowerCountOfSeed = j.Posts[0].OwnerFollowerCount
	}
	return rec
}

// View renders a persisted record as a status view (no live log tail).
func (h *HistoryRecord) View(results *JobResults, source string) *JobStatusView {
	v := &JobStatusView{
		JobID:       h.ID,
		Kind:        h.Kind,
		Seed:        h.Seed,
		Status:      h.Status,
		Logs:        []string{},
		ResultCount: h.ResultCount,
		Source:      source,
		CreatedAt:   h.CreatedAt,
		UpdatedAt:   h.UpdatedAt,
	}
	if h.Status == JobStatusCompleted {
		v.Progress = 100
		if results != nil {
			v.Creators = results.Creators
			v.Posts = results.Posts
		}
	}
	return v
}

// JobResults is the persisted blob of normalized records for one job.
type JobResults struct {
	JobID    string        `json:"job_id"`
	Kind     JobKind       `json:"kind"`
	Creators []Creator     `json:"creators,omitempty"`
	Posts    []ContentPost `json:"posts,omitempty"`
	StoredAt time.Time     `json:"stored_at"`
}

// Count returns the number of records in the blob.
func (r *JobResults) Count() int {
	if r.Kind == JobKindAnalytics {
		return len(r.Posts)
	}
	return len(r.Creators)
}
