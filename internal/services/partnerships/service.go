// Package partnerships manages tracked sponsored-content deals and keeps
// their performance metrics fresh through the refresh coordinator.
package partnerships

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/creatorlogic/internal/common"
	"github.com/ternarybob/creatorlogic/internal/interfaces"
	"github.com/ternarybob/creatorlogic/internal/models"
)

// Service fronts the durable store with the in-process cache. mu serializes
// every cache read-modify-write sequence.
type Service struct {
	store       interfaces.DurableStore
	cache       interfaces.PartnershipCache
	coordinator *Coordinator
	validate    *validator.Validate
	logger      arbor.ILogger
	mu          sync.Mutex
}

// NewService creates the partnership service and its refresh coordinator
func NewService(store interfaces.DurableStore, cache interfaces.PartnershipCache, client interfaces.RunClient, config *common.Config, logger arbor.ILogger) *Service {
	s := &Service{
		store:    store,
		cache:    cache,
		validate: validator.New(),
		logger:   logger,
	}
	s.coordinator = NewCoordinator(client, s.applyRefresh, config, logger)
	return s
}

// List returns partnerships from the cache, repopulating it from the store when empty
func (s *Service) List(ctx context.Context) ([]*models.Partnership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listLocked(ctx)
}

func (s *Service) listLocked(ctx context.Context) ([]*models.Partnership, error) {
	if cached, ok := s.cache.Get(); ok {
		return cached, nil
	}

	partnerships, err := s.store.ListPartnerships(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(partnerships)
	return clonePartnerships(partnerships), nil
}

// Save creates or updates a partnership and returns the updated collection,
// newest edit first. New partnerships start with zero counters; updates keep
// the existing counters since only a refresh may change them.
func (s *Service) Save(ctx context.Context, p *models.Partnership) ([]*models.Partnership, error) {
	if p.Platform == "" {
		p.Platform = "instagram"
	}
	if p.Status == "" {
		p.Status = models.PartnershipLive
	}
	p.CreatorName = strings.TrimSpace(p.CreatorName)
	p.VideoURL = strings.TrimSpace(p.VideoURL)

	if err := s.validate.Struct(p); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}
	if p.CostUSD.IsNegative() {
		return nil, fmt.Errorf("%w: cost must not be negative", models.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.listLocked(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var existing *models.Partnership
	for _, c := range current {
		if p.ID != "" && c.ID == p.ID {
			existing = c
			break
		}
	}

	if existing == nil {
		if p.ID == "" {
			p.ID = common.NewPartnershipID()
		}
		p.Views, p.Likes, p.Comments, p.Shares = 0, 0, 0, 0
		p.CreatedAt = now
	} else {
		p.Views, p.Likes, p.Comments, p.Shares = existing.Views, existing.Likes, existing.Comments, existing.Shares
		p.CreatedAt = existing.CreatedAt
	}
	if p.PostedDate.IsZero() {
		p.PostedDate = now
	}
	p.UpdatedAt = now

	if err := s.store.SavePartnerships(ctx, []*models.Partnership{p}); err != nil {
		return nil, err
	}

	updated := make([]*models.Partnership, 0, len(current)+1)
	updated = append(updated, p)
	for _, c := range current {
		if c.ID != p.ID {
			updated = append(updated, c)
		}
	}
	s.cache.Set(updated)

	s.logger.Info().Str("partnership_id", p.ID).Str("creator", p.CreatorName).Bool("created", existing == nil).Msg("Partnership saved")
	return clonePartnerships(updated), nil
}

// Delete removes a partnership and returns the remaining collection
func (s *Service) Delete(ctx context.Context, id string) ([]*models.Partnership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.listLocked(ctx)
	if err != nil {
		return nil, err
	}

	found := false
	remaining := make([]*models.Partnership, 0, len(current))
	for _, p := range current {
		if p.ID == id {
			found = true
			continue
		}
		remaining = append(remaining, p)
	}
	if !found {
		return nil, models.ErrNotFound
	}

	if err := s.store.DeletePartnership(ctx, id); err != nil {
		return nil, err
	}
	s.cache.Set(remaining)
	return clonePartnerships(remaining), nil
}

// Invalidate clears the cache. Called on logout; waits for any in-progress
// refresh merge so it cannot repopulate the cache afterwards.
func (s *Service) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Invalidate()
}

// Refresh starts a metrics refresh. explicit, when non-nil, is used instead
// of the stored collection so just-created partnerships are included.
func (s *Service) Refresh(ctx context.Context, explicit []*models.Partnership) (bool, error) {
	partnerships := explicit
	if partnerships == nil {
		var err error
		if partnerships, err = s.List(ctx); err != nil {
			return false, err
		}
	}
	if len(partnerships) == 0 {
		return false, nil
	}
	return s.coordinator.Refresh(ctx, partnerships)
}

// RefreshState reports the current or last refresh run
func (s *Service) RefreshState() RefreshState {
	state := s.coordinator.State()
	state.InFlight = s.coordinator.InFlight()
	return state
}

// Shutdown stops an in-flight refresh poll
func (s *Service) Shutdown(ctx context.Context) error {
	return s.coordinator.Shutdown(ctx)
}

// applyRefresh merges extraction records into the current collection and
// persists every partnership that matched.
func (s *Service) applyRefresh(ctx context.Context, items []json.RawMessage) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.listLocked(ctx)
	if err != nil {
		return 0, err
	}

	updated, matched := Match(current, items)
	if matched == 0 {
		return 0, nil
	}

	now := time.Now()
	changed := make([]*models.Partnership, 0, matched)
	for i, p := range updated {
		old := current[i]
		if p.Views != old.Views || p.Likes != old.Likes || p.Comments != old.Comments || p.Shares != old.Shares {
			p.UpdatedAt = now
			changed = append(changed, p)
		}
	}

	if len(changed) > 0 {
		if err := s.store.SavePartnerships(ctx, changed); err != nil {
			return matched, err
		}
	}
	s.cache.Set(updated)
	return matched, nil
}
