// Package appstore checks App Store Connect API keys and stores them for the
// install-data integration.
package appstore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/tidwall/gjson"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/creatorlogic/internal/common"
	"github.com/ternarybob/creatorlogic/internal/models"
)

const (
	audience      = "appstoreconnect-v1"
	tokenLifetime = 20 * time.Minute
	unknownApp    = "Unknown App"
)

// Verification is what a successful check learned about the account
type Verification struct {
	AppName string `json:"app_name"`
	AppID   string `json:"app_id,omitempty"`
}

// VerifyError is a non-2xx answer from App Store Connect
type VerifyError struct {
	StatusCode int
	Message    string
}

func (e *VerifyError) Error() string {
	return fmt.Sprintf("App Store Connect error: %d - %s", e.StatusCode, e.Message)
}

// Verifier signs short-lived ES256 tokens and makes one cheap API call with them
type Verifier struct {
	baseURL    string
	httpClient *http.Client
	logger     arbor.ILogger
	now        func() time.Time
}

// NewVerifier creates a verifier from the [appstore] config section
func NewVerifier(config *common.AppStoreConfig, logger arbor.ILogger) *Verifier {
	return &Verifier{
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: common.ParseDuration(config.RequestTimeout, 15*time.Second),
		},
		logger: logger,
		now:    time.Now,
	}
}

// Token signs an API token for the credentials. The key id travels in the
// "kid" header; Apple rejects lifetimes over 20 minutes.
func (v *Verifier) Token(creds *models.AppStoreCredentials) (string, error) {
	key, err := jwt.ParseECPrivateKeyFromPEM([]byte(creds.PrivateKey))
	if err != nil {
		return "", fmt.Errorf("failed to parse private key: %w", err)
	}

	now := v.now()
	token := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.StandardClaims{
		Issuer:    creds.IssuerID,
		Audience:  audience,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(tokenLifetime).Unix(),
	})
	token.Header["kid"] = creds.KeyID

	signed, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify lists at most one app with the credentials and returns its name
func (v *Verifier) Verify(ctx context.Context, creds *models.AppStoreCredentials) (*Verification, error) {
	token, err := v.Token(creds)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/v1/apps?limit=1", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &VerifyError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	parsed := gjson.ParseBytes(body)
	result := &Verification{
		AppName: parsed.Get("data.0.attributes.name").String(),
		AppID:   parsed.Get("data.0.id").String(),
	}
	if result.AppName == "" {
		result.AppName = unknownApp
	}

	v.logger.Info().Str("app", result.AppName).Str("key_id", creds.KeyID).Msg("Verified App Store Connect credentials")
	return result, nil
}
