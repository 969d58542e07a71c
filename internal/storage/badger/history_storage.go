package badger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/creatorlogic/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// HistoryStorage persists job history records and their result blobs
type HistoryStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewHistoryStorage creates a new HistoryStorage instance
func NewHistoryStorage(db *BadgerDB, logger arbor.ILogger) *HistoryStorage {
	return &HistoryStorage{
		db:     db,
		logger: logger,
	}
}

func (s *HistoryStorage) SaveHistory(ctx context.Context, rec *models.HistoryRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("history record ID is required")
	}

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = rec.CreatedAt
	}
	rec.SeedKey = models.SeedKey(rec.Seed)

	if err := s.db.Store().Upsert(rec.ID, rec); err != nil {
		return fmt.Errorf("failed to save history record: %w", err)
	}
	return nil
}

func (s *HistoryStorage) GetHistory(ctx context.Context, id string) (*models.HistoryRecord, error) {
	var rec models.HistoryRecord
	if err := s.db.Store().Get(id, &rec); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get history record: %w", err)
	}
	return &rec, nil
}

// ListHistory returns every record, newest first
func (s *HistoryStorage) ListHistory(ctx context.Context) ([]*models.HistoryRecord, error) {
	var records []models.HistoryRecord
	if err := s.db.Store().Find(&records, nil); err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}

	result := make([]*models.HistoryRecord, len(records))
	for i := range records {
		result[i] = &records[i]
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// FindBySeed returns records for a seed regardless of case
func (s *HistoryStorage) FindBySeed(ctx context.Context, kind models.JobKind, seed string) ([]*models.HistoryRecord, error) {
	var records []models.HistoryRecord
	query := badgerhold.Where("SeedKey").Eq(models.SeedKey(seed)).And("Kind").Eq(kind).Index("SeedKey")
	if err := s.db.Store().Find(&records, query); err != nil {
		return nil, fmt.Errorf("failed to find history by seed: %w", err)
	}

	result := make([]*models.HistoryRecord, len(records))
	for i := range records {
		result[i] = &records[i]
	}
	return result, nil
}

func (s *HistoryStorage) DeleteHistory(ctx context.Context, id string) error {
	if err := s.db.Store().Delete(id, &models.HistoryRecord{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete history record: %w", err)
	}
	return nil
}

func (s *HistoryStorage) SaveResults(ctx context.Context, results *models.JobResults) error {
	if results.JobID == "" {
		return fmt.Errorf("results job ID is required")
	}
	if results.StoredAt.IsZero() {
		results.StoredAt = time.Now()
	}
	if err := s.db.Store().Upsert(results.JobID, results); err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}
	return nil
}

func (s *HistoryStorage) GetResults(ctx context.Context, jobID string) (*models.JobResults, error) {
	var results models.JobResults
	if err := s.db.Store().Get(jobID, &results); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get results: %w", err)
	}
	return &results, nil
}

func (s *HistoryStorage) DeleteResults(ctx context.Context, jobID string) error {
	if err := s.db.Store().Delete(jobID, &models.JobResults{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete results: %w", err)
	}
	return nil
}
