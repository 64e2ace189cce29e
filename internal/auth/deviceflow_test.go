package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"docsearch/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type oauthServer struct {
	*httptest.Server
	deviceCalls  atomic.Int32
	tokenCalls   atomic.Int32
	pendingPolls int32
	denied       bool
}

func newOAuthServer(t *testing.T) *oauthServer {
	t.Helper()
	s := &oauthServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("/devicecode", func(w http.ResponseWriter, r *http.Request) {
		s.deviceCalls.Add(1)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "client-1", r.Form.Get("client_id"))
		assert.Equal(t, "Files.Read.All User.Read", r.Form.Get("scope"))
		writeJSON(w, http.StatusOK, map[string]any{
			"device_code":      "device-code",
			"user_code":        "ABCD-1234",
			"verification_uri": "https://microsoft.com/devicelogin",
			"expires_in":       60,
			"interval":         1,
		})
	})
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		n := s.tokenCalls.Add(1)
		assert.NoError(t, r.ParseForm())
		switch r.Form.Get("grant_type") {
		case "refresh_token":
			writeJSON(w, http.StatusOK, map[string]any{
				"access_token": "refreshed", "token_type": "Bearer", "expires_in": 3600,
			})
		case "urn:ietf:params:oauth:grant-type:device_code":
			if s.denied {
				writeJSON(w, http.StatusBadRequest, map[string]any{"error": "access_denied"})
				return
			}
			if n <= s.pendingPolls {
				writeJSON(w, http.StatusBadRequest, map[string]any{"error": "authorization_pending"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{
				"access_token": "fresh", "token_type": "Bearer", "refresh_token": "refresh-1", "expires_in": 3600,
			})
		default:
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "unsupported_grant_type"})
		}
	})
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestFlow(s *oauthServer, cachePath string, prompt func(context.Context, DeviceCode)) *DeviceFlow {
	return NewDeviceFlow(config.AuthConfig{
		ClientID:      "client-1",
		Scopes:        []string{"Files.Read.All", "User.Read"},
		TokenCache:    cachePath,
		DeviceAuthURL: s.URL + "/devicecode",
		TokenURL:      s.URL + "/token",
	}, prompt)
}

func writeCache(t *testing.T, path string, tok *oauth2.Token) {
	t.Helper()
	data, err := json.Marshal(tok)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))
}

func TestDeviceFlow_FreshSignInWritesCache(t *testing.T) {
	s := newOAuthServer(t)
	s.pendingPolls = 1
	cache := filepath.Join(t.TempDir(), "ms_token.json")

	var prompted []DeviceCode
	flow := newTestFlow(s, cache, func(_ context.Context, c DeviceCode) { prompted = append(prompted, c) })

	tok, err := flow.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", tok)

	require.Len(t, prompted, 1)
	assert.Equal(t, "ABCD-1234", prompted[0].UserCode)
	assert.Equal(t, "https://microsoft.com/devicelogin", prompted[0].VerificationURI)
	assert.EqualValues(t, 2, s.tokenCalls.Load())

	var cached oauth2.Token
	data, err := os.ReadFile(cache)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &cached))
	assert.Equal(t, "fresh", cached.AccessToken)
	assert.Equal(t, "refresh-1", cached.RefreshToken)
}

func TestDeviceFlow_ValidCacheSkipsNetwork(t *testing.T) {
	s := newOAuthServer(t)
	cache := filepath.Join(t.TempDir(), "ms_token.json")
	writeCache(t, cache, &oauth2.Token{AccessToken: "cached", TokenType: "Bearer", Expiry: time.Now().Add(time.Hour)})

	flow := newTestFlow(s, cache, func(context.Context, DeviceCode) { t.Fatal("device flow should not start") })

	tok, err := flow.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cached", tok)
	assert.Zero(t, s.deviceCalls.Load())
	assert.Zero(t, s.tokenCalls.Load())
}

func TestDeviceFlow_ExpiredCacheRefreshesSilently(t *testing.T) {
	s := newOAuthServer(t)
	cache := filepath.Join(t.TempDir(), "ms_token.json")
	writeCache(t, cache, &oauth2.Token{
		AccessToken: "old", RefreshToken: "refresh-0", TokenType: "Bearer", Expiry: time.Now().Add(-time.Hour),
	})
	before, err := os.ReadFile(cache)
	require.NoError(t, err)

	flow := newTestFlow(s, cache, func(context.Context, DeviceCode) { t.Fatal("device flow should not start") })

	tok, err := flow.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "refreshed", tok)
	assert.Zero(t, s.deviceCalls.Load())

	after, err := os.ReadFile(cache)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestDeviceFlow_CorruptCacheFallsBackToDeviceFlow(t *testing.T) {
	s := newOAuthServer(t)
	cache := filepath.Join(t.TempDir(), "ms_token.json")
	require.NoError(t, os.WriteFile(cache, []byte("{not json"), 0o600))

	tok, err := newTestFlow(s, cache, nil).AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", tok)
	assert.EqualValues(t, 1, s.deviceCalls.Load())
}

func TestDeviceFlow_Denied(t *testing.T) {
	s := newOAuthServer(t)
	s.denied = true
	cache := filepath.Join(t.TempDir(), "ms_token.json")

	_, err := newTestFlow(s, cache, nil).AccessToken(context.Background())
	assert.ErrorIs(t, err, ErrAuth)
	assert.NoFileExists(t, cache)
}

func TestDeviceFlow_Unreachable(t *testing.T) {
	s := newOAuthServer(t)
	flow := newTestFlow(s, "", nil)
	s.Close()

	_, err := flow.AccessToken(context.Background())
	assert.ErrorIs(t, err, ErrAuth)
}

func TestNewDeviceFlow_Defaults(t *testing.T) {
	flow := NewDeviceFlow(config.AuthConfig{ClientID: "id", TenantID: "contoso", Scopes: []string{"User.Read"}}, nil)

	assert.Equal(t, "https://login.microsoftonline.com/contoso/oauth2/v2.0/token", flow.Config.Endpoint.TokenURL)
	assert.Equal(t, "https://login.microsoftonline.com/contoso/oauth2/v2.0/devicecode", flow.Config.Endpoint.DeviceAuthURL)
}

func TestStatic(t *testing.T) {
	tok, err := Static("abc").AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	_, err = Static("").AccessToken(context.Background())
	assert.ErrorIs(t, err, ErrAuth)
}
