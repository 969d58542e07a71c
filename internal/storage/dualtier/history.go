package dualtier

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/creatorlogic/internal/interfaces"
	"github.com/ternarybob/creatorlogic/internal/models"
)

// ListHistory merges both tiers, local winning, newest first
func (s *Store) ListHistory(ctx context.Context) ([]*models.HistoryRecord, error) {
	local, remote, err := readBoth(ctx, s, "list-history",
		s.local.ListHistory,
		func(ctx context.Context, r interfaces.RemoteStorage, owner string) ([]*models.HistoryRecord, error) {
			return r.ListHistory(ctx, owner)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}

	return mergeByID(local, remote,
		func(r *models.HistoryRecord) string { return r.ID },
		func(r *models.HistoryRecord) time.Time { return r.CreatedAt },
	), nil
}

// SaveHistory writes locally then mirrors
func (s *Store) SaveHistory(ctx context.Context, rec *models.HistoryRecord) error {
	if err := s.local.SaveHistory(ctx, rec); err != nil {
		return err
	}

	snapshot := *rec
	s.mirror("upsert-history", func(ctx context.Context, r interfaces.RemoteStorage, owner string) error {
		return r.UpsertHistory(ctx, owner, &snapshot)
	})
	return nil
}

// SaveResults writes the result blob locally then mirrors
func (s *Store) SaveResults(ctx context.Context, results *models.JobResults) error {
	if err := s.local.SaveResults(ctx, results); err != nil {
		return err
	}

	s.mirror("upsert-results", func(ctx context.Context, r interfaces.RemoteStorage, owner string) error {
		return r.UpsertResults(ctx, owner, results)
	})
	return nil
}

// LookupJob walks local then remote. Results are optional; a record without
// a stored blob is still returned.
func (s *Store) LookupJob(ctx context.Context, id string) (*interfaces.JobLookup, error) {
	rec, err := s.local.GetHistory(ctx, id)
	if err == nil {
		results, err := s.local.GetResults(ctx, id)
		if err != nil && !isNotFound(err) {
			return nil, err
		}
		return &interfaces.JobLookup{Record: rec, Results: results, Source: models.StatusSourceLocal}, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	owner := s.ownerID()
	if owner == "" {
		return nil, models.ErrNotFound
	}

	rec, err = s.remote.GetHistory(ctx, owner, id)
	if err != nil {
		if !isNotFound(err) {
			s.logger.Warn().Err(err).Str("job_id", id).Msg("Remote history lookup failed")
		}
		return nil, models.ErrNotFound
	}

	results, err := s.remote.GetResults(ctx, owner, id)
	if err != nil {
		if !isNotFound(err) {
			s.logger.Warn().Err(err).Str("job_id", id).Msg("Remote results lookup failed")
		}
		results = nil
	}
	return &interfaces.JobLookup{Record: rec, Results: results, Source: models.StatusSourceRemote}, nil
}

// DeleteJob removes the history record and result blob from both tiers
func (s *Store) DeleteJob(ctx context.Context, id string) error {
	if err := s.local.DeleteHistory(ctx, id); err != nil {
		return err
	}
	if err := s.local.DeleteResults(ctx, id); err != nil {
		return err
	}

	s.mirror("delete-job", func(ctx context.Context, r interfaces.RemoteStorage, owner string) error {
		if err := r.DeleteResults(ctx, owner, id); err != nil {
			return err
		}
		return r.DeleteHistory(ctx, owner, id)
	})
	return nil
}
