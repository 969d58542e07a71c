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

// PartnershipStorage persists tracked partnerships
type PartnershipStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewPartnershipStorage creates a new PartnershipStorage instance
func NewPartnershipStorage(db *BadgerDB, logger arbor.ILogger) *PartnershipStorage {
	return &PartnershipStorage{
		db:     db,
		logger: logger,
	}
}

// SavePartnerships upserts each partnership by id
func (s *PartnershipStorage) SavePartnerships(ctx context.Context, partnerships []*models.Partnership) error {
	now := time.Now()
	for _, p := range partnerships {
		if p.ID == "" {
			return fmt.Errorf("partnership ID is required")
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		if p.UpdatedAt.IsZero() {
			p.UpdatedAt = now
		}
		if err := s.db.Store().Upsert(p.ID, p); err != nil {
			return fmt.Errorf("failed to save partnership %s: %w", p.ID, err)
		}
	}
	return nil
}

// ListPartnerships returns partnerships, most recently posted first
func (s *PartnershipStorage) ListPartnerships(ctx context.Context) ([]*models.Partnership, error) {
	var partnerships []models.Partnership
	if err := s.db.Store().Find(&partnerships, nil); err != nil {
		return nil, fmt.Errorf("failed to list partnerships: %w", err)
	}

	result := make([]*models.Partnership, len(partnerships))
	for i := range partnerships {
		result[i] = &partnerships[i]
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].PostedDate.After(result[j].PostedDate)
	})
	return result, nil
}

func (s *PartnershipStorage) DeletePartnership(ctx context.Context, id string) error {
	if err := s.db.Store().Delete(id, &models.Partnership{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete partnership: %w", err)
	}
	return nil
}
