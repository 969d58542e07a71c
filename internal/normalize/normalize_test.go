package normalize

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFollowerLabel(t *testing.T) {
	tests := []struct {
		label string
		want  int64
		ok    bool
	}{
		{"35.7k followers", 35700, true},
		{"1.2M followers", 1200000, true},
		{"1.2m Followers", 1200000, true},
		{"1,234 followers", 1234, true},
		{"812 followers", 812, true},
		{"followers", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, ok := ParseFollowerLabel(tt.label)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCreator_CamelCaseFields(t *testing.T) {
	raw := json.RawMessage(`{
		"id": "123",
		"username": "chef_anna",
		"fullName": "Anna Cooks",
		"profilePicUrl": "https://cdn.example.com/a.jpg",
		"verified": true,
		"isBusinessAccount": true,
		"biography": "Home cooking",
		"publicEmail": "anna@example.com",
		"followersCount": 48210,
		"followsCount": 310,
		"postsCount": 522
	}`)

	c, ok := Creator(raw)
	require.True(t, ok)
	assert.Equal(t, "123", c.ID)
	assert.Equal(t, "chef_anna", c.Username)
	assert.Equal(t, "Anna Cooks", c.DisplayName)
	assert.True(t, c.IsVerified)
	assert.True(t, c.IsBusinessAccount)
	assert.False(t, c.IsPrivate)
	assert.Equal(t, "anna@example.com", c.Email)
	assert.Equal(t, int64(48210), c.FollowerCount)
	assert.Equal(t, int64(310), c.FollowingCount)
	assert.Equal(t, int64(522), c.PostCount)
	assert.Equal(t, "https://instagram.com/chef_anna", c.ProfileLink)
}

func TestCreator_PrefersCamelCaseOverLegacy(t *testing.T) {
	raw := json.RawMessage(`{"username":"a","followersCount":10,"follower_count":99,"is_verified":true}`)

	c, ok := Creator(raw)
	require.True(t, ok)
	assert.Equal(t, int64(10), c.FollowerCount)
	assert.True(t, c.IsVerified)
	assert.Equal(t, "a", c.ID)
}

func TestCreator_FollowerLabelFallback(t *testing.T) {
	raw := json.RawMessage(`{"username":"tiny","social_context":"35.7k followers"}`)

	c, ok := Creator(raw)
	require.True(t, ok)
	assert.Equal(t, int64(35700), c.FollowerCount)
}

func TestCreator_BiographyNotReadAsFollowerLabel(t *testing.T) {
	raw := json.RawMessage(`{"username":"dreamer","biography":"road to 100k followers","headline":"2M followers soon"}`)

	c, ok := Creator(raw)
	require.True(t, ok)
	assert.Equal(t, int64(0), c.FollowerCount)
}

func TestCreator_EmailOnlyFromPublicField(t *testing.T) {
	raw := json.RawMessage(`{"username":"x","email":"hidden@example.com","biography":"mail me at me@example.com"}`)

	c, ok := Creator(raw)
	require.True(t, ok)
	assert.Empty(t, c.Email)
	assert.False(t, c.HasEmail())
}

func TestCreators_DropsRecordsWithoutUsername(t *testing.T) {
	raws := []json.RawMessage{
		json.RawMessage(`{"username":"keep"}`),
		json.RawMessage(`{"fullName":"No Handle"}`),
		json.RawMessage(`not json`),
		json.RawMessage(`{"user_name":"legacy"}`),
	}

	creators := Creators(raws)
	require.Len(t, creators, 2)
	assert.Equal(t, "keep", creators[0].Username)
	assert.Equal(t, "legacy", creators[1].Username)
}

func TestContentPost_PlayCountWins(t *testing.T) {
	raw := json.RawMessage(`{"shortCode":"Cabc123","videoViewCount":500,"videoPlayCount":900,"likesCount":40,"commentsCount":3}`)

	p, ok := ContentPost(raw)
	require.True(t, ok)
	assert.Equal(t, int64(900), p.ReachCount())
	assert.Equal(t, "https://instagram.com/reel/Cabc123", p.URL)
	assert.Equal(t, "Cabc123", p.ID)
	assert.Equal(t, "video", p.Type)
}

func TestContentPost_FullRecord(t *testing.T) {
	raw := json.RawMessage(`{
		"id": "987",
		"type": "Video",
		"shortCode": "Cxyz",
		"caption": "Dinner #pasta #easy #pasta",
		"url": "https://www.instagram.com/p/Cxyz/",
		"sharesCount": 12,
		"timestamp": "2025-03-01T10:00:00.000Z",
		"videoDuration": 31.5,
		"displayUrl": "https://cdn.example.com/t.jpg",
		"musicInfo": {"artist_name": "Band", "song_name": "Song"},
		"ownerFollowerCount": 48210
	}`)

	p, ok := ContentPost(raw)
	require.True(t, ok)
	assert.Equal(t, "987", p.ID)
	assert.Equal(t, []string{"pasta", "easy"}, p.Hashtags)
	require.NotNil(t, p.ShareCount)
	assert.Equal(t, int64(12), *p.ShareCount)
	assert.Equal(t, time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC), p.Timestamp)
	require.NotNil(t, p.DurationSeconds)
	assert.InDelta(t, 31.5, *p.DurationSeconds, 0.001)
	require.NotNil(t, p.Music)
	assert.Equal(t, "Band", p.Music.Artist)
	assert.Equal(t, int64(48210), p.OwnerFollowerCount)
	assert.Nil(t, p.PlayCount)
}

func TestContentPost_HashtagArrayWins(t *testing.T) {
	raw := json.RawMessage(`{"shortCode":"C1","caption":"#one #two","hashtags":["three"]}`)

	p, ok := ContentPost(raw)
	require.True(t, ok)
	assert.Equal(t, []string{"three"}, p.Hashtags)
}

func TestContentPost_OwnerFollowerFallback(t *testing.T) {
	raw := json.RawMessage(`{"shortCode":"C1","owner":{"followerCount":77}}`)

	p, ok := ContentPost(raw)
	require.True(t, ok)
	assert.Equal(t, int64(77), p.OwnerFollowerCount)
}

func TestContentPosts_DropsWithoutShortCodeOrURL(t *testing.T) {
	raws := []json.RawMessage{
		json.RawMessage(`{"caption":"orphan"}`),
		json.RawMessage(`{"url":"https://instagram.com/reel/abc"}`),
	}

	posts := ContentPosts(raws)
	require.Len(t, posts, 1)
	assert.Equal(t, "https://instagram.com/reel/abc", posts[0].URL)
}
