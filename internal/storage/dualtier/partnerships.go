package dualtier

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/creatorlogic/internal/interfaces"
	"github.com/ternarybob/creatorlogic/internal/models"
)

// ListPartnerships merges both tiers, local winning, most recently posted first
func (s *Store) ListPartnerships(ctx context.Context) ([]*models.Partnership, error) {
	local, remote, err := readBoth(ctx, s, "list-partnerships",
		s.local.ListPartnerships,
		func(ctx context.Context, r interfaces.RemoteStorage, owner string) ([]*models.Partnership, error) {
			return r.ListPartnerships(ctx, owner)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list partnerships: %w", err)
	}

	return mergeByID(local, remote,
		func(p *models.Partnership) string { return p.ID },
		func(p *models.Partnership) time.Time { return p.PostedDate },
	), nil
}

// SavePartnerships writes locally then mirrors the batch
func (s *Store) SavePartnerships(ctx context.Context, partnerships []*models.Partnership) error {
	if err := s.local.SavePartnerships(ctx, partnerships); err != nil {
		return err
	}

	snapshot := make([]*models.Partnership, len(partnerships))
	for i, p := range partnerships {
		cp := *p
		snapshot[i] = &cp
	}
	s.mirror("upsert-partnerships", func(ctx context.Context, r interfaces.RemoteStorage, owner string) error {
		return r.UpsertPartnerships(ctx, owner, snapshot)
	})
	return nil
}

// DeletePartnership removes locally then best-effort remotely
func (s *Store) DeletePartnership(ctx context.Context, id string) error {
	if err := s.local.DeletePartnership(ctx, id); err != nil {
		return err
	}

	s.mirror("delete-partnership", func(ctx context.Context, r interfaces.RemoteStorage, owner string) error {
		return r.DeletePartnership(ctx, owner, id)
	})
	return nil
}

// GetCredentials prefers the local copy and falls back to the remote one
func (s *Store) GetCredentials(ctx context.Context) (*models.AppStoreCredentials, error) {
	creds, err := s.local.GetCredentials(ctx)
	if err == nil || !isNotFound(err) {
		return creds, err
	}

	owner := s.ownerID()
	if owner == "" {
		return nil, models.ErrNotFound
	}
	creds, err = s.remote.GetCredentials(ctx, owner)
	if err != nil {
		if !isNotFound(err) {
			s.logger.Warn().Err(err).Msg("Remote credentials lookup failed")
		}
		return nil, models.ErrNotFound
	}
	return creds, nil
}

// SaveCredentials writes locally then mirrors
func (s *Store) SaveCredentials(ctx context.Context, creds *models.AppStoreCredentials) error {
	if err := s.local.SaveCredentials(ctx, creds); err != nil {
		return err
	}

	snapshot := *creds
	s.mirror("upsert-credentials", func(ctx context.Context, r interfaces.RemoteStorage, owner string) error {
		return r.UpsertCredentials(ctx, owner, &snapshot)
	})
	return nil
}
