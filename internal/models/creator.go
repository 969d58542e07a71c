package models

// Creator is a normalized discovery record for one candidate profile.
type Creator struct {
	ID                string `json:"id"`
	Username          string `json:"username"`
	DisplayName       string `json:"display_name"`
	AvatarURL         string `json:"avatar_url"`
	IsVerified        bool   `json:"is_verified"`
	IsPrivate         bool   `json:"is_private"`
	IsBusinessAccount bool   `json:"is_business_account"`
	Biography         string `json:"biography"`
	ExternalURL       string `json:"external_url,omitempty"`
	Category          string `json:"category,omitempty"`
	Email             string `json:"email,omitempty"`
	FollowerCount     int64  `json:"follower_count"`
	FollowingCount    int64  `json:"following_count"`
	PostCount         int64  `json:"post_count"`
	ProfileLink       string `json:"profile_link"`
}

// HasEmail reports whether a public contact email was supplied.
func (c Creator) HasEmail() bool {
	return c.Email != ""
}
