package normalize

import (
	"encoding/json"
	"net/url"

	"github.com/tidwall/gjson"

	"github.com/ternarybob/creatorlogic/internal/models"
)

var (
	creatorID          = Fields{"id", "pk", "username"}
	creatorUsername    = Fields{"username", "user_name"}
	creatorDisplayName = Fields{"fullName", "full_name"}
	creatorAvatar      = Fields{"profilePicUrlHD", "profilePicUrl", "profile_pic_url_hd", "profile_pic_url"}
	creatorVerified    = Fields{"verified", "isVerified", "is_verified"}
	creatorPrivate     = Fields{"isPrivate", "private", "is_private"}
	creatorBusiness    = Fields{"isBusinessAccount", "is_business_account", "is_business"}
	creatorBiography   = Fields{"biography", "bio"}
	creatorExternalURL = Fields{"externalUrl", "external_url"}
	creatorCategory    = Fields{"businessCategoryName", "categoryName", "category_name", "category"}
	creatorEmail       = Fields{"publicEmail", "public_email"}
	creatorFollowers   = Fields{"followersCount", "follower_count", "edge_followed_by.count"}
	creatorFollowing   = Fields{"followsCount", "following_count", "edge_follow.count"}
	creatorPosts       = Fields{"postsCount", "media_count", "edge_owner_to_timeline_media.count"}
	creatorLink        = Fields{"url", "profileUrl", "instagram_url"}

	creatorFollowerLabel = Fields{"followersText", "follower_text", "social_context", "subtitle"}
)

// Creator maps one raw discovery record. ok is false when the record has no username.
func Creator(raw json.RawMessage) (models.Creator, bool) {
	if !gjson.ValidBytes(raw) {
		return models.Creator{}, false
	}
	r := gjson.ParseBytes(raw)
	if !r.IsObject() {
		return models.Creator{}, false
	}

	username, ok := creatorUsername.String(r)
	if !ok {
		return models.Creator{}, false
	}

	c := models.Creator{
		ID:                creatorID.StringOr(r, username),
		Username:          username,
		DisplayName:       creatorDisplayName.StringOr(r, ""),
		AvatarURL:         creatorAvatar.StringOr(r, "https://ui-avatars.com/api/?name="+url.QueryEscape(username)),
		IsVerified:        creatorVerified.Bool(r),
		IsPrivate:         creatorPrivate.Bool(r),
		IsBusinessAccount: creatorBusiness.Bool(r),
		Biography:         creatorBiography.StringOr(r, ""),
		ExternalURL:       creatorExternalURL.StringOr(r, ""),
		Category:          creatorCategory.StringOr(r, ""),
		Email:             creatorEmail.StringOr(r, ""),
		FollowingCount:    creatorFollowing.IntOr(r),
		PostCount:         creatorPosts.IntOr(r),
		ProfileLink:       creatorLink.StringOr(r, "https://instagram.com/"+username),
	}

	if n, ok := creatorFollowers.Int(r); ok {
		c.FollowerCount = n
	} else if label, ok := followerLabel(r); ok {
		c.FollowerCount, _ = ParseFollowerLabel(label)
	}

	return c, true
}

// Creators maps a dataset, dropping unmappable records.
func Creators(raws []json.RawMessage) []models.Creator {
	out := make([]models.Creator, 0, len(raws))
	for _, raw := range raws {
		if c, ok := Creator(raw); ok {
			out = append(out, c)
		}
	}
	return out
}
