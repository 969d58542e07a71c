package models

import "time"

// User roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is the logged-in identity the core scopes remote records by.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	AvatarURL string    `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
}

// AppStoreCredentials hold the App Store Connect API key used for install data.
type AppStoreCredentials struct {
	AppName      string     `json:"app_name"`
	AppID        string     `json:"app_id,omitempty"`
	VendorNumber string     `json:"vendor_number"`
	IssuerID     string     `json:"issuer_id" validate:"required"`
	KeyID        string     `json:"key_id" validate:"required"`
	PrivateKey   string     `json:"private_key,omitempty" validate:"required"`
	VerifiedAt   *time.Time `json:"verified_at,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Redacted returns a copy without the private key.
func (c AppStoreCredentials) Redacted() AppStoreCredentials {
	c.PrivateKey = ""
	return c
}
