package apify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/creatorlogic/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient("secret",
		WithBaseURL(server.URL),
		WithLogger(arbor.NewNoOpLogger()),
		WithRateLimit(1000),
	)
}

func TestSubmitRun(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/acts/thenetaji~instagram-related-user-scraper/runs", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("token"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var input DiscoveryInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&input))
		assert.Equal(t, []string{"seed"}, input.Username)
		assert.Equal(t, 25, input.MaxItem)
		assert.Equal(t, "similar_users", input.Type)
		assert.True(t, input.ProfileEnriched)

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"id":"run-1","status":"READY"}}`))
	})

	run, err := client.SubmitRun(context.Background(), "thenetaji/instagram-related-user-scraper", NewDiscoveryInput("seed", 25))
	require.NoError(t, err)
	assert.Equal(t, "run-1", run.ID)
	assert.Equal(t, models.RunStatusReady, run.Status)
}

func TestGetRun(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/acts/apify~instagram-reel-scraper/runs/run-9", r.URL.Path)
		w.Write([]byte(`{"data":{"id":"run-9","status":"SUCCEEDED","defaultDatasetId":"ds-1"}}`))
	})

	run, err := client.GetRun(context.Background(), "apify/instagram-reel-scraper", "run-9")
	require.NoError(t, err)
	assert.True(t, run.Status.IsSucceeded())
	assert.Equal(t, "ds-1", run.DefaultDatasetID)
}

func TestGetDatasetItems(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/datasets/ds-1/items", r.URL.Path)
		w.Write([]byte(`[{"username":"a"},{"username":"b"}]`))
	})

	items, err := client.GetDatasetItems(context.Background(), "ds-1")
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.JSONEq(t, `{"username":"a"}`, string(items[0]))
}

func TestGetLogTail(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/actor-runs/run-1/log", r.URL.Path)
		w.Write([]byte("one\n\ntwo\n   \nthree\nfour\n"))
	})

	lines, err := client.GetLogTail(context.Background(), "run-1", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"three", "four"}, lines)
}

func TestMissingTokenIsConfigError(t *testing.T) {
	client := NewClient("")

	_, err := client.GetRun(context.Background(), "a/b", "r")
	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
}

func TestNon2xxIsAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusPaymentRequired)
	})

	_, err := client.SubmitRun(context.Background(), "a/b", map[string]string{})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusPaymentRequired, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "quota exceeded")
}

func TestTooManyRequestsIsRateLimitError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.GetDatasetItems(context.Background(), "ds")
	var rlErr *RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, "7s", rlErr.RetryAfter.String())
}

func TestVideoStatsInputSizedToURLs(t *testing.T) {
	input := NewVideoStatsInput([]string{"u1", "u2", "u3"}, "2020-01-01")
	raw, err := json.Marshal(input)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"username": ["u1","u2","u3"],
		"resultsLimit": 3,
		"skipPinnedPosts": true,
		"includeDownloadedVideo": false,
		"includeSharesCount": true,
		"includeTranscript": false,
		"onlyPostsNewerThan": "2020-01-01"
	}`, string(raw))
}
