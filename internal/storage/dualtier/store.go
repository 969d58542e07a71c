// Package dualtier composes the local cache and the remote mirror.
//
// Local is truth: every write lands locally first and synchronously, then is
// mirrored remotely in the background. Remote writes drain through a single
// FIFO queue so they land in the order they were issued. Remote failures are
// logged, never returned. Reads merge both tiers by id with the local copy winning.
//
// Two devices writing different local caches for the same owner diverge;
// the remote keeps whichever synced last.
package dualtier

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/creatorlogic/internal/common"
	"github.com/ternarybob/creatorlogic/internal/interfaces"
	"github.com/ternarybob/creatorlogic/internal/models"
	"golang.org/x/sync/errgroup"
)

const defaultSyncTimeout = 30 * time.Second

// Store implements interfaces.DurableStore
type Store struct {
	local       interfaces.LocalStorage
	remote      interfaces.RemoteStorage
	identity    interfaces.IdentityProvider
	logger      arbor.ILogger
	syncTimeout time.Duration
	wg          sync.WaitGroup

	mu       sync.Mutex
	queue    []mirrorTask
	draining bool
}

type mirrorTask struct {
	op    string
	owner string
	fn    func(ctx context.Context, remote interfaces.RemoteStorage, ownerID string) error
}

var _ interfaces.DurableStore = (*Store)(nil)

// NewStore creates the composite store. remote may be nil (local-only mode).
func NewStore(local interfaces.LocalStorage, remote interfaces.RemoteStorage, identity interfaces.IdentityProvider, logger arbor.ILogger) *Store {
	return &Store{
		local:       local,
		remote:      remote,
		identity:    identity,
		logger:      logger,
		syncTimeout: defaultSyncTimeout,
	}
}

// HasRemote reports whether a remote tier is configured
func (s *Store) HasRemote() bool {
	return s.remote != nil
}

// Wait blocks until background remote syncs have finished
func (s *Store) Wait() {
	s.wg.Wait()
}

// ownerID returns the identity scoping remote calls, or "" when remote legs must be skipped
func (s *Store) ownerID() string {
	if s.remote == nil || s.identity == nil {
		return ""
	}
	return s.identity.CurrentUserID()
}

// mirror queues a remote write under the current owner. One drain goroutine
// runs the queue while it is non-empty.
func (s *Store) mirror(op string, fn func(ctx context.Context, remote interfaces.RemoteStorage, ownerID string) error) {
	owner := s.ownerID()
	if owner == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.wg.Add(1)
	s.queue = append(s.queue, mirrorTask{op: op, owner: owner, fn: fn})
	if s.draining {
		return
	}
	s.draining = true
	common.SafeGo(s.logger, "remote-sync", s.drain)
}

func (s *Store) drain() {
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.draining = false
			s.mu.Unlock()
			return
		}
		task := s.queue[0]
		s.queue[0] = mirrorTask{}
		s.queue = s.queue[1:]
		s.mu.Unlock()

		s.runMirror(task)
	}
}

func (s *Store) runMirror(task mirrorTask) {
	defer s.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Str("op", task.op).Msgf("Remote sync panicked: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.syncTimeout)
	defer cancel()

	if err := task.fn(ctx, s.remote, task.owner); err != nil {
		s.logger.Warn().Err(err).Str("op", task.op).Str("owner_id", task.owner).Msg("Remote sync failed, local copy kept")
		return
	}
	s.logger.Debug().Str("op", task.op).Msg("Remote sync complete")
}

// readBoth runs the local and remote reads in parallel. A remote failure
// degrades to local-only; a local failure is returned.
func readBoth[T any](ctx context.Context, s *Store, op string,
	readLocal func(ctx context.Context) ([]T, error),
	readRemote func(ctx context.Context, remote interfaces.RemoteStorage, ownerID string) ([]T, error),
) (local, remote []T, err error) {
	owner := s.ownerID()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		local, err = readLocal(gctx)
		return err
	})
	if owner != "" {
		g.Go(func() error {
			var err error
			remote, err = readRemote(gctx, s.remote, owner)
			if err != nil {
				s.logger.Warn().Err(err).Str("op", op).Msg("Remote read failed, serving local records")
				remote = nil
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return local, remote, nil
}

// mergeByID dedupes by id with local records winning, newest first
func mergeByID[T any](local, remote []T, id func(T) string, date func(T) time.Time) []T {
	seen := make(map[string]bool, len(local))
	out := make([]T, 0, len(local)+len(remote))
	for _, rec := range local {
		seen[id(rec)] = true
		out = append(out, rec)
	}
	for _, rec := range remote {
		if seen[id(rec)] {
			continue
		}
		seen[id(rec)] = true
		out = append(out, rec)
	}
	sortByDateDesc(out, date)
	return out
}

func isNotFound(err error) bool {
	return errors.Is(err, models.ErrNotFound)
}
