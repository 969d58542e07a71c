// -----------------------------------------------------------------------
// Job Registry - explicit in-memory store of live jobs
// -----------------------------------------------------------------------

// Package jobs runs discovery and analytics jobs against the remote job
// platform.
//
// The Registry holds live Job state and is authoritative only until a job
// reaches a terminal status and is persisted; after that the durable
// HistoryRecord is the source of truth and the registry entry is swept.
//
// Each job owns one goroutine: submit, then poll sequentially until the run
// ends or the poll budget is spent. Jobs never share a poll loop, so no two
// polls for one job race; polls across jobs interleave freely.
package jobs

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ternarybob/creatorlogic/internal/models"
)

// Registry manages live jobs under a mutex. Callers only ever see clones.
type Registry struct {
	jobs map[string]*models.Job
	mu   sync.RWMutex
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		jobs: make(map[string]*models.Job),
	}
}

// Create registers a new job. Ids are unique; re-registering is an error.
func (r *Registry) Create(job *models.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.jobs[job.ID]; exists {
		return fmt.Errorf("job %s already registered", job.ID)
	}
	r.jobs[job.ID] = job.Clone()
	return nil
}

// Get returns a snapshot of the job
func (r *Registry) Get(id string) (*models.Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.jobs[id]
	if !ok {
		return nil, false
	}
	return job.Clone(), true
}

// Update applies fn to the live job under the lock and returns the resulting snapshot.
// If fn returns an error the job is left unchanged.
func (r *Registry) Update(id string, fn func(job *models.Job) error) (*models.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return nil, models.ErrNotFound
	}

	working := job.Clone()
	if err := fn(working); err != nil {
		return job.Clone(), err
	}
	r.jobs[id] = working
	return working.Clone(), nil
}

// Evict drops a job from the registry
func (r *Registry) Evict(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.jobs, id)
}

// Snapshot returns clones of every job, newest first
func (r *Registry) Snapshot() []*models.Job {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.Job, 0, len(r.jobs))
	for _, job := range r.jobs {
		out = append(out, job.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Active returns clones of jobs that have not reached a terminal status
func (r *Registry) Active() []*models.Job {
	var out []*models.Job
	for _, job := range r.Snapshot() {
		if !job.Status.IsTerminal() {
			out = append(out, job)
		}
	}
	return out
}

// SweepFinished evicts terminal jobs last updated before now-retain.
// Returns the number evicted.
func (r *Registry) SweepFinished(retain time.Duration, now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := now.Add(-retain)
	evicted := 0
	for id, job := range r.jobs {
		if job.Status.IsTerminal() && job.UpdatedAt.Before(cutoff) {
			delete(r.jobs, id)
			evicted++
		}
	}
	return evicted
}

// Len returns the number of registered jobs
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs)
}
