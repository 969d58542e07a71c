package appstore

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/creatorlogic/internal/common"
	"github.com/ternarybob/creatorlogic/internal/models"
	"github.com/ternarybob/creatorlogic/internal/storage/badger"
	"github.com/ternarybob/creatorlogic/internal/storage/dualtier"
)

func newKey(t *testing.T) (*ecdsa.PrivateKey, string) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	return key, string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}))
}

func newTestService(t *testing.T, handler http.HandlerFunc) (*Service, *badger.Manager) {
	t.Helper()
	logger := arbor.NewLogger()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	local, err := badger.NewManager(logger, &common.BadgerConfig{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { local.Close() })

	verifier := NewVerifier(&common.AppStoreConfig{BaseURL: server.URL, RequestTimeout: "2s"}, logger)
	return NewService(dualtier.NewStore(local, nil, nil, logger), verifier, logger), local
}

func TestVerify_SignsTokenAndReadsAppName(t *testing.T) {
	key, keyPEM := newKey(t)

	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/apps", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("limit"))

		raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		claims := &jwt.StandardClaims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
			return &key.PublicKey, nil
		})
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		assert.True(t, token.Valid)
		assert.Equal(t, "ES256", token.Header["alg"])
		assert.Equal(t, "KEY123", token.Header["kid"])
		assert.Equal(t, "issuer-1", claims.Issuer)
		assert.Equal(t, "appstoreconnect-v1", claims.Audience)
		assert.LessOrEqual(t, claims.ExpiresAt-claims.IssuedAt, int64(20*60))

		w.Write([]byte(`{"data":[{"id":"1234567","attributes":{"name":"Habit Tracker"}}]}`))
	})

	result, err := svc.verifier.Verify(context.Background(), &models.AppStoreCredentials{IssuerID: "issuer-1", KeyID: "KEY123", PrivateKey: keyPEM})
	require.NoError(t, err)
	assert.Equal(t, "Habit Tracker", result.AppName)
	assert.Equal(t, "1234567", result.AppID)
}

func TestVerify_UnknownAppWhenListEmpty(t *testing.T) {
	_, keyPEM := newKey(t)
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	})

	result, err := svc.verifier.Verify(context.Background(), &models.AppStoreCredentials{IssuerID: "i", KeyID: "k", PrivateKey: keyPEM})
	require.NoError(t, err)
	assert.Equal(t, "Unknown App", result.AppName)
}

func TestVerify_BadKey(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err := svc.verifier.Verify(context.Background(), &models.AppStoreCredentials{IssuerID: "i", KeyID: "k", PrivateKey: "not a key"})
	assert.Error(t, err)
}

func TestSaveCredentials_PersistsVerified(t *testing.T) {
	_, keyPEM := newKey(t)
	svc, local := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"id":"42","attributes":{"name":"Sleep Well"}}]}`))
	})
	ctx := context.Background()

	result, err := svc.SaveCredentials(ctx, &models.AppStoreCredentials{IssuerID: " issuer ", KeyID: "KEY", PrivateKey: keyPEM, VendorNumber: "8000"})
	require.NoError(t, err)
	assert.True(t, result.Verified)
	assert.Equal(t, "Sleep Well", result.Credentials.AppName)
	assert.Empty(t, result.Credentials.PrivateKey)

	stored, err := local.GetCredentials(ctx)
	require.NoError(t, err)
	assert.Equal(t, "issuer", stored.IssuerID)
	assert.Equal(t, "42", stored.AppID)
	assert.NotNil(t, stored.VerifiedAt)
	assert.NotEmpty(t, stored.PrivateKey)

	got, err := svc.GetCredentials(ctx)
	require.NoError(t, err)
	assert.Empty(t, got.PrivateKey)
	assert.Equal(t, "8000", got.VendorNumber)
}

func TestSaveCredentials_PersistsEvenWhenVerificationFails(t *testing.T) {
	_, keyPEM := newKey(t)
	svc, local := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"errors":[{"status":"401"}]}`))
	})
	ctx := context.Background()

	result, err := svc.SaveCredentials(ctx, &models.AppStoreCredentials{IssuerID: "issuer", KeyID: "KEY", PrivateKey: keyPEM})
	require.NoError(t, err)
	assert.False(t, result.Verified)
	assert.Contains(t, result.VerifyError, "401")

	stored, err := local.GetCredentials(ctx)
	require.NoError(t, err)
	assert.Equal(t, "KEY", stored.KeyID)
	assert.Nil(t, stored.VerifiedAt)
}

func TestSaveCredentials_RequiresFields(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err := svc.SaveCredentials(context.Background(), &models.AppStoreCredentials{IssuerID: "issuer"})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}
