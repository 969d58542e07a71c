package config

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/creatorlogic/internal/common"
)

func TestSnapshot_RedactsSecrets(t *testing.T) {
	cfg := common.NewDefaultConfig()
	cfg.Apify.Token = "apify_api_secret"
	cfg.Storage.Postgres.DSN = "postgres://user:pw@db/creatorlogic"

	snap := NewService(cfg).Snapshot()
	assert.True(t, snap.ApifyConfigured)
	assert.False(t, snap.LocalOnly)
	assert.Equal(t, "http://localhost:8086", snap.ServerURL)

	data, err := json.Marshal(snap)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "apify_api_secret")
	assert.NotContains(t, string(data), "pw@db")
}

func TestSnapshot_LocalOnly(t *testing.T) {
	snap := NewService(common.NewDefaultConfig()).Snapshot()
	assert.True(t, snap.LocalOnly)
	assert.False(t, snap.ApifyConfigured)
	assert.Equal(t, "@every 6h", snap.Scheduler.PartnershipRefresh)
}
