package partnerships

import (
	"sync"

	"github.com/ternarybob/creatorlogic/internal/interfaces"
	"github.com/ternarybob/creatorlogic/internal/models"
)

// MemoryCache is a mutex-guarded snapshot of the partnerships collection.
//
// Consistency is local-wins: the snapshot is filled from the merged store read
// and overwritten after every local write, so it never trails the local tier.
// Invalidate empties it; the next read repopulates it.
type MemoryCache struct {
	mu    sync.RWMutex
	items []*models.Partnership
	valid bool
}

var _ interfaces.PartnershipCache = (*MemoryCache)(nil)

// NewMemoryCache creates an empty cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{}
}

func (c *MemoryCache) Get() ([]*models.Partnership, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.valid {
		return nil, false
	}
	return clonePartnerships(c.items), true
}

func (c *MemoryCache) Set(partnerships []*models.Partnership) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = clonePartnerships(partnerships)
	c.valid = true
}

func (c *MemoryCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	c.valid = false
}

func clonePartnerships(in []*models.Partnership) []*models.Partnership {
	out := make([]*models.Partnership, len(in))
	for i, p := range in {
		cp := *p
		out[i] = &cp
	}
	return out
}
