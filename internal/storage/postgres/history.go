package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ternarybob/creatorlogic/internal/models"
)

const historyColumns = `id, kind, seed, status, result_count, emails_found_count, follower_count_of_seed, created_at, updated_at`

func (s *Store) UpsertHistory(ctx context.Context, ownerID string, rec *models.HistoryRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO search_jobs (id, user_id, kind, seed, status, result_count, emails_found_count, follower_count_of_seed, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (user_id, id) DO UPDATE SET
			status = EXCLUDED.status,
			result_count = EXCLUDED.result_count,
			emails_found_count = EXCLUDED.emails_found_count,
			follower_count_of_seed = EXCLUDED.follower_count_of_seed,
			updated_at = EXCLUDED.updated_at
		WHERE search_jobs.updated_at <= EXCLUDED.updated_at`,
		rec.ID, ownerID, string(rec.Kind), rec.Seed, string(rec.Status),
		rec.ResultCount, rec.EmailsFoundCount, rec.FollowerCountOfSeed, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert history %s: %w", rec.ID, err)
	}
	return nil
}

func (s *Store) GetHistory(ctx context.Context, ownerID, id string) (*models.HistoryRecord, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+historyColumns+` FROM search_jobs WHERE user_id = $1 AND id = $2`, ownerID, id)
	rec, err := scanHistory(row, ownerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get history %s: %w", id, err)
	}
	return rec, nil
}

func (s *Store) ListHistory(ctx context.Context, ownerID string) ([]*models.HistoryRecord, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+historyColumns+` FROM search_jobs WHERE user_id = $1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var out []*models.HistoryRecord
	for rows.Next() {
		rec, err := scanHistory(rows, ownerID)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) DeleteHistory(ctx context.Context, ownerID, id string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM search_jobs WHERE user_id = $1 AND id = $2`, ownerID, id); err != nil {
		return fmt.Errorf("failed to delete history %s: %w", id, err)
	}
	return nil
}

func scanHistory(row pgx.Row, ownerID string) (*models.HistoryRecord, error) {
	var (
		rec          models.HistoryRecord
		kind, status string
	)
	if err := row.Scan(&rec.ID, &kind, &rec.Seed, &status, &rec.ResultCount, &rec.EmailsFoundCount,
		&rec.FollowerCountOfSeed, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	rec.Kind = models.JobKind(kind)
	rec.Status = models.JobStatus(status)
	rec.SeedKey = models.SeedKey(rec.Seed)
	rec.OwnerID = ownerID
	return &rec, nil
}

type resultsPayload struct {
	Creators []models.Creator     `json:"creators,omitempty"`
	Posts    []models.ContentPost `json:"posts,omitempty"`
}

func (s *Store) UpsertResults(ctx context.Context, ownerID string, results *models.JobResults) error {
	payload, err := json.Marshal(resultsPayload{Creators: results.Creators, Posts: results.Posts})
	if err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	storedAt := results.StoredAt
	if storedAt.IsZero() {
		storedAt = time.Now()
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO search_results (job_id, user_id, kind, payload, stored_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (user_id, job_id) DO UPDATE SET payload = EXCLUDED.payload, stored_at = EXCLUDED.stored_at`,
		results.JobID, ownerID, string(results.Kind), payload, storedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert results %s: %w", results.JobID, err)
	}
	return nil
}

func (s *Store) GetResults(ctx context.Context, ownerID, jobID string) (*models.JobResults, error) {
	var (
		kind    string
		payload []byte
		results = models.JobResults{JobID: jobID}
	)
	err := s.pool.QueryRow(ctx, `SELECT kind, payload, stored_at FROM search_results WHERE user_id = $1 AND job_id = $2`, ownerID, jobID).
		Scan(&kind, &payload, &results.StoredAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get results %s: %w", jobID, err)
	}

	var decoded resultsPayload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode results %s: %w", jobID, err)
	}
	results.Kind = models.JobKind(kind)
	results.Creators = decoded.Creators
	results.Posts = decoded.Posts
	return &results, nil
}

func (s *Store) DeleteResults(ctx context.Context, ownerID, jobID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM search_results WHERE user_id = $1 AND job_id = $2`, ownerID, jobID); err != nil {
		return fmt.Errorf("failed to delete results %s: %w", jobID, err)
	}
	return nil
}
