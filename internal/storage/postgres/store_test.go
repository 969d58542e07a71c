package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/creatorlogic/internal/common"
	"github.com/ternarybob/creatorlogic/internal/interfaces"
	"github.com/ternarybob/creatorlogic/internal/models"
)

var _ interfaces.RemoteStorage = (*Store)(nil)

// newTestStore connects to CREATORLOGIC_TEST_POSTGRES_DSN or skips
func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("CREATORLOGIC_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("CREATORLOGIC_TEST_POSTGRES_DSN not set")
	}

	store, err := NewStore(context.Background(), arbor.NewLogger(), &common.PostgresConfig{DSN: dsn, MaxConns: 2})
	require.NoError(t, err)
	t.Cleanup(store.Close)
	return store
}

func TestNewStore_RequiresDSN(t *testing.T) {
	_, err := NewStore(context.Background(), arbor.NewLogger(), &common.PostgresConfig{})
	assert.Error(t, err)
}

func TestStore_HistoryScopedByOwner(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	owner := "u_" + uuid.NewString()
	other := "u_" + uuid.NewString()

	now := time.Now().UTC().Truncate(time.Millisecond)
	rec := &models.HistoryRecord{ID: uuid.NewString(), Kind: models.JobKindDiscovery, Seed: "chef_anna", Status: models.JobStatusCompleted, ResultCount: 3, EmailsFoundCount: 1, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, store.UpsertHistory(ctx, owner, rec))

	got, err := store.GetHistory(ctx, owner, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.ResultCount)
	assert.Equal(t, owner, got.OwnerID)

	_, err = store.GetHistory(ctx, other, rec.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	list, err := store.ListHistory(ctx, other)
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, store.DeleteHistory(ctx, owner, rec.ID))
	_, err = store.GetHistory(ctx, owner, rec.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestStore_StaleHistoryUpsertIgnored(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	owner := "u_" + uuid.NewString()

	now := time.Now().UTC().Truncate(time.Millisecond)
	id := uuid.NewString()
	done := &models.HistoryRecord{ID: id, Kind: models.JobKindDiscovery, Seed: "chef_anna", Status: models.JobStatusCompleted, CreatedAt: now, UpdatedAt: now}
	stale := &models.HistoryRecord{ID: id, Kind: models.JobKindDiscovery, Seed: "chef_anna", Status: models.JobStatusPolling, CreatedAt: now, UpdatedAt: now.Add(-time.Second)}
	require.NoError(t, store.UpsertHistory(ctx, owner, done))
	require.NoError(t, store.UpsertHistory(ctx, owner, stale))

	got, err := store.GetHistory(ctx, owner, id)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, got.Status)
}

func TestStore_ResultsRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	owner := "u_" + uuid.NewString()

	results := &models.JobResults{JobID: uuid.NewString(), Kind: models.JobKindDiscovery, Creators: []models.Creator{{ID: "1", Username: "anna", Email: "a@b.c"}}}
	require.NoError(t, store.UpsertResults(ctx, owner, results))

	got, err := store.GetResults(ctx, owner, results.JobID)
	require.NoError(t, err)
	require.Len(t, got.Creators, 1)
	assert.Equal(t, "anna", got.Creators[0].Username)

	require.NoError(t, store.DeleteResults(ctx, owner, results.JobID))
}

func TestStore_PartnershipsAndCredentials(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	owner := "u_" + uuid.NewString()
	now := time.Now().UTC()

	p := &models.Partnership{ID: "p_" + uuid.NewString(), CreatorName: "anna", VideoURL: "https://instagram.com/reel/abc", CostUSD: decimal.RequireFromString("199.99"), Status: models.PartnershipLive, Platform: "instagram", PostedDate: now, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, store.UpsertPartnerships(ctx, owner, []*models.Partnership{p}))

	list, err := store.ListPartnerships(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].CostUSD.Equal(decimal.RequireFromString("199.99")))
	require.NoError(t, store.DeletePartnership(ctx, owner, p.ID))

	_, err = store.GetCredentials(ctx, owner)
	assert.ErrorIs(t, err, models.ErrNotFound)
	require.NoError(t, store.UpsertCredentials(ctx, owner, &models.AppStoreCredentials{IssuerID: "iss", KeyID: "kid", PrivateKey: "pem"}))
	creds, err := store.GetCredentials(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, "kid", creds.KeyID)
}
