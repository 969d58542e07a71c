package partnerships

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/creatorlogic/internal/common"
	"github.com/ternarybob/creatorlogic/internal/models"
	"github.com/ternarybob/creatorlogic/internal/storage/badger"
	"github.com/ternarybob/creatorlogic/internal/storage/dualtier"
)

type fakeRunClient struct {
	mu        sync.Mutex
	submitErr error
	status    models.RunStatus
	items     []json.RawMessage
	submits   int
	inputs    []interface{}
}

func (f *fakeRunClient) SubmitRun(ctx context.Context, actorID string, input interface{}) (*models.RemoteRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submits++
	f.inputs = append(f.inputs, input)
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return &models.RemoteRun{ID: "run-p", ActorID: actorID, Status: models.RunStatusReady}, nil
}

func (f *fakeRunClient) GetRun(ctx context.Context, actorID, runID string) (*models.RemoteRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &models.RemoteRun{ID: runID, Status: f.status, DefaultDatasetID: "ds-p"}, nil
}

func (f *fakeRunClient) GetDatasetItems(ctx context.Context, datasetID string) ([]json.RawMessage, error) {
	return f.items, nil
}

func (f *fakeRunClient) GetLogTail(ctx context.Context, runID string, lines int) ([]string, error) {
	return nil, nil
}

func (f *fakeRunClient) setStatus(s models.RunStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = s
}

func (f *fakeRunClient) submitCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submits
}

func newTestService(t *testing.T, client *fakeRunClient, tune func(cfg *common.Config)) (*Service, *badger.Manager) {
	t.Helper()
	logger := arbor.NewLogger()

	local, err := badger.NewManager(logger, &common.BadgerConfig{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { local.Close() })

	cfg := common.NewDefaultConfig()
	cfg.Partnerships.PollInterval = "2ms"
	if tune != nil {
		tune(cfg)
	}

	svc := NewService(dualtier.NewStore(local, nil, nil, logger), NewMemoryCache(), client, cfg, logger)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		svc.Shutdown(ctx)
	})
	return svc, local
}

// gatedCache blocks Set while armed so tests can hold a merge mid-flight
type gatedCache struct {
	*MemoryCache
	mu      sync.Mutex
	entered chan struct{}
	release chan struct{}
}

func (c *gatedCache) arm() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entered = make(chan struct{})
	c.release = make(chan struct{})
}

func (c *gatedCache) Set(partnerships []*models.Partnership) {
	c.mu.Lock()
	entered, release := c.entered, c.release
	c.entered, c.release = nil, nil
	c.mu.Unlock()

	if entered != nil {
		close(entered)
		<-release
	}
	c.MemoryCache.Set(partnerships)
}

func newPartnership(creator, videoURL string) *models.Partnership {
	return &models.Partnership{
		CreatorName: creator,
		VideoURL:    videoURL,
		CostUSD:     decimal.NewFromInt(500),
	}
}

func TestShortCode(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.instagram.com/reel/C1a2B3c/", "C1a2B3c"},
		{"https://www.instagram.com/p/XyZ_9-8/?igsh=abc", "XyZ_9-8"},
		{"https://www.instagram.com/reels/Q7w/", "Q7w"},
		{"https://www.tiktok.com/@someone/video/12345", ""},
		{"https://www.instagram.com/anna/", ""},
		{"https://example.com/shop/abc", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, ShortCode(tt.url))
		})
	}
}

func TestMatch_ByShortCodeAndURL(t *testing.T) {
	partnerships := []*models.Partnership{
		{ID: "p1", VideoURL: "https://www.instagram.com/reel/AAA111/", Likes: 50},
		{ID: "p2", VideoURL: "https://www.instagram.com/p/BBB222/?utm=x"},
		{ID: "p3", VideoURL: "https://www.instagram.com/reel/CCC333/"},
		{ID: "p4", VideoURL: "https://www.instagram.com/reel/DDD444/", Views: 10},
	}
	items := []json.RawMessage{
		json.RawMessage(`{"shortCode":"AAA111","videoPlayCount":900,"videoViewCount":400,"likesCount":0,"commentsCount":7}`),
		json.RawMessage(`{"url":"https://www.instagram.com/p/BBB222/","videoViewCount":300,"likesCount":12}`),
		json.RawMessage(`{"inputUrl":"https://www.instagram.com/reel/CCC333/","sharesCount":4}`),
		json.RawMessage(`not json`),
	}

	updated, matched := Match(partnerships, items)
	assert.Equal(t, 3, matched)

	assert.Equal(t, int64(900), updated[0].Views)
	assert.Equal(t, int64(50), updated[0].Likes, "a zero from the extractor must not regress a counter")
	assert.Equal(t, int64(7), updated[0].Comments)

	assert.Equal(t, int64(300), updated[1].Views)
	assert.Equal(t, int64(12), updated[1].Likes)

	assert.Equal(t, int64(4), updated[2].Shares)

	assert.Equal(t, int64(10), updated[3].Views)

	// inputs untouched
	assert.Equal(t, int64(0), partnerships[0].Views)
}

func TestMatch_WithoutShortCodeOnlyMatchesVerbatim(t *testing.T) {
	partnerships := []*models.Partnership{
		{ID: "tiktok", VideoURL: "https://www.tiktok.com/@anna/video/7", Views: 10},
		{ID: "profile", VideoURL: "https://www.instagram.com/anna/", Views: 20},
		{ID: "exact", VideoURL: "https://www.tiktok.com/@ben/video/8"},
	}
	items := []json.RawMessage{
		json.RawMessage(`{"url":"https://www.instagram.com/reel/Cx7yz/","shortCode":"Cx7yz","inputUrl":"https://www.instagram.com/anna/reels/","videoPlayCount":999999}`),
		json.RawMessage(`{"inputUrl":"https://www.tiktok.com/@ben/video/8","videoPlayCount":321}`),
	}

	updated, matched := Match(partnerships, items)
	assert.Equal(t, 1, matched)
	assert.Equal(t, int64(10), updated[0].Views)
	assert.Equal(t, int64(20), updated[1].Views)
	assert.Equal(t, int64(321), updated[2].Views)
}

func TestService_SaveCreatesAndUpdates(t *testing.T) {
	svc, local := newTestService(t, &fakeRunClient{}, nil)
	ctx := context.Background()

	first := newPartnership("Anna", "https://www.instagram.com/reel/AAA111/")
	first.Views = 999
	list, err := svc.Save(ctx, first)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.NotEmpty(t, list[0].ID)
	assert.Equal(t, "instagram", list[0].Platform)
	assert.Equal(t, models.PartnershipLive, list[0].Status)
	assert.Equal(t, int64(0), list[0].Views, "new partnerships start with zero counters")

	second := newPartnership("Ben", "https://www.instagram.com/reel/BBB222/")
	list, err = svc.Save(ctx, second)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Ben", list[0].CreatorName, "newest edit first")

	stored, err := local.ListPartnerships(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 2)

	edit := *list[1]
	edit.CostUSD = decimal.RequireFromString("750.50")
	edit.Views = 12345
	list, err = svc.Save(ctx, &edit)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Anna", list[0].CreatorName)
	assert.True(t, decimal.RequireFromString("750.50").Equal(list[0].CostUSD))
	assert.Equal(t, int64(0), list[0].Views, "edits keep the stored counters")
}

func TestService_SaveRejectsInvalid(t *testing.T) {
	svc, _ := newTestService(t, &fakeRunClient{}, nil)
	ctx := context.Background()

	_, err := svc.Save(ctx, newPartnership("", "https://www.instagram.com/reel/AAA111/"))
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = svc.Save(ctx, newPartnership("Anna", "not a url"))
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	bad := newPartnership("Anna", "https://www.instagram.com/reel/AAA111/")
	bad.CostUSD = decimal.NewFromInt(-1)
	_, err = svc.Save(ctx, bad)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestService_Delete(t *testing.T) {
	svc, local := newTestService(t, &fakeRunClient{}, nil)
	ctx := context.Background()

	list, err := svc.Save(ctx, newPartnership("Anna", "https://www.instagram.com/reel/AAA111/"))
	require.NoError(t, err)

	remaining, err := svc.Delete(ctx, list[0].ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	stored, err := local.ListPartnerships(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored)

	_, err = svc.Delete(ctx, "p_missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestService_ListRepopulatesAfterInvalidate(t *testing.T) {
	svc, local := newTestService(t, &fakeRunClient{}, nil)
	ctx := context.Background()

	_, err := svc.Save(ctx, newPartnership("Anna", "https://www.instagram.com/reel/AAA111/"))
	require.NoError(t, err)

	// Written behind the cache's back
	require.NoError(t, local.SavePartnerships(ctx, []*models.Partnership{{
		ID: "p_direct", CreatorName: "Direct", VideoURL: "https://www.instagram.com/reel/ZZZ/", PostedDate: time.Now().Add(-time.Hour),
	}}))

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	svc.Invalidate()
	list, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestInvalidate_WaitsForRefreshMerge(t *testing.T) {
	logger := arbor.NewLogger()
	local, err := badger.NewManager(logger, &common.BadgerConfig{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { local.Close() })

	cache := &gatedCache{MemoryCache: NewMemoryCache()}
	svc := NewService(dualtier.NewStore(local, nil, nil, logger), cache, &fakeRunClient{}, common.NewDefaultConfig(), logger)
	ctx := context.Background()

	_, err = svc.Save(ctx, newPartnership("Anna", "https://www.instagram.com/reel/AAA111/"))
	require.NoError(t, err)

	cache.arm()
	entered, release := cache.entered, cache.release
	merged := make(chan struct{})
	go func() {
		defer close(merged)
		svc.applyRefresh(ctx, []json.RawMessage{json.RawMessage(`{"shortCode":"AAA111","videoPlayCount":4200}`)})
	}()
	<-entered

	invalidated := make(chan struct{})
	go func() {
		svc.Invalidate()
		close(invalidated)
	}()

	select {
	case <-invalidated:
		t.Fatal("Invalidate returned while a refresh merge held the cache")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	<-merged
	<-invalidated

	_, ok := cache.Get()
	assert.False(t, ok)
}

func TestRefresh_SingleFlight(t *testing.T) {
	client := &fakeRunClient{status: models.RunStatusRunning}
	svc, _ := newTestService(t, client, func(cfg *common.Config) {
		cfg.Partnerships.MaxPollAttempts = 100000
	})
	ctx := context.Background()

	list, err := svc.Save(ctx, newPartnership("Anna", "https://www.instagram.com/reel/AAA111/"))
	require.NoError(t, err)

	started, err := svc.Refresh(ctx, list)
	require.NoError(t, err)
	assert.True(t, started)

	started, err = svc.Refresh(ctx, list)
	require.NoError(t, err)
	assert.False(t, started)
	assert.Equal(t, 1, client.submitCount())

	state := svc.RefreshState()
	assert.True(t, state.InFlight)
	assert.Equal(t, "run-p", state.RunID)
	assert.Equal(t, 1, state.URLCount)
}

func TestRefresh_AppliesMetrics(t *testing.T) {
	client := &fakeRunClient{
		status: models.RunStatusSucceeded,
		items: []json.RawMessage{
			json.RawMessage(`{"shortCode":"AAA111","videoPlayCount":4200,"likesCount":310,"commentsCount":12}`),
		},
	}
	svc, local := newTestService(t, client, nil)
	ctx := context.Background()

	_, err := svc.Save(ctx, newPartnership("Anna", "https://www.instagram.com/reel/AAA111/"))
	require.NoError(t, err)
	_, err = svc.Save(ctx, newPartnership("Ben", "https://www.tiktok.com/@ben/video/1"))
	require.NoError(t, err)

	started, err := svc.Refresh(ctx, nil)
	require.NoError(t, err)
	require.True(t, started)

	require.Eventually(t, func() bool {
		s := svc.RefreshState()
		return !s.InFlight && s.Outcome == OutcomeSucceeded
	}, 2*time.Second, 2*time.Millisecond)

	assert.Equal(t, 1, svc.RefreshState().Matched)
	assert.Equal(t, 1, svc.RefreshState().URLCount, "only instagram urls are submitted")

	stored, err := local.ListPartnerships(ctx)
	require.NoError(t, err)
	for _, p := range stored {
		if p.CreatorName == "Anna" {
			assert.Equal(t, int64(4200), p.Views)
			assert.Equal(t, int64(310), p.Likes)
		} else {
			assert.Equal(t, int64(0), p.Views)
		}
	}
}

func TestRefresh_LockReleasedOnSubmitFailure(t *testing.T) {
	client := &fakeRunClient{submitErr: errors.New("boom"), status: models.RunStatusSucceeded}
	svc, _ := newTestService(t, client, nil)
	ctx := context.Background()

	list, err := svc.Save(ctx, newPartnership("Anna", "https://www.instagram.com/reel/AAA111/"))
	require.NoError(t, err)

	started, err := svc.Refresh(ctx, list)
	assert.Error(t, err)
	assert.False(t, started)
	assert.False(t, svc.RefreshState().InFlight)
	assert.Equal(t, OutcomeSubmitFailed, svc.RefreshState().Outcome)

	client.mu.Lock()
	client.submitErr = nil
	client.mu.Unlock()

	started, err = svc.Refresh(ctx, list)
	require.NoError(t, err)
	assert.True(t, started)
}

func TestRefresh_LockReleasedOnTimeoutAndFailure(t *testing.T) {
	client := &fakeRunClient{status: models.RunStatusRunning}
	svc, _ := newTestService(t, client, func(cfg *common.Config) {
		cfg.Partnerships.MaxPollAttempts = 3
	})
	ctx := context.Background()

	list, err := svc.Save(ctx, newPartnership("Anna", "https://www.instagram.com/reel/AAA111/"))
	require.NoError(t, err)

	started, err := svc.Refresh(ctx, list)
	require.NoError(t, err)
	require.True(t, started)

	require.Eventually(t, func() bool {
		return !svc.RefreshState().InFlight
	}, 2*time.Second, 2*time.Millisecond)
	assert.Equal(t, OutcomeTimedOut, svc.RefreshState().Outcome)

	client.setStatus(models.RunStatusFailed)
	started, err = svc.Refresh(ctx, list)
	require.NoError(t, err)
	require.True(t, started)

	require.Eventually(t, func() bool {
		return !svc.RefreshState().InFlight
	}, 2*time.Second, 2*time.Millisecond)
	assert.Equal(t, OutcomeFailed, svc.RefreshState().Outcome)
	assert.Equal(t, 2, client.submitCount())
}

func TestRefresh_NoInstagramURLs(t *testing.T) {
	client := &fakeRunClient{status: models.RunStatusSucceeded}
	svc, _ := newTestService(t, client, nil)

	started, err := svc.Refresh(context.Background(), []*models.Partnership{
		{ID: "p1", VideoURL: "https://youtube.com/watch?v=1"},
	})
	require.NoError(t, err)
	assert.False(t, started)
	assert.Equal(t, 0, client.submitCount())
}
