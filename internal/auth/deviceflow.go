// Package auth supplies bearer tokens for the drive API.
//
// Tokens come from the OAuth 2.0 device authorization grant: the user opens a
// verification URL on any device, types the displayed code, and the process
// polls until the grant completes or expires. The resulting token is cached on
// disk so later runs refresh silently.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"docsearch/internal/config"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"
)

var ErrAuth = errors.New("authentication failed")

// Provider hands out a bearer token for the drive API.
type Provider interface {
	AccessToken(ctx context.Context) (string, error)
}

// DeviceCode is what the user needs to approve the sign-in.
type DeviceCode struct {
	VerificationURI string
	UserCode        string
	ExpiresAt       time.Time
}

type DeviceFlow struct {
	Config    *oauth2.Config
	CachePath string
	// Prompt is called once per device authorization, before polling starts.
	Prompt func(ctx context.Context, code DeviceCode)
}

// NewDeviceFlow builds a device-code provider for a public client registration.
func NewDeviceFlow(cfg config.AuthConfig, prompt func(context.Context, DeviceCode)) *DeviceFlow {
	endpoint := microsoft.AzureADEndpoint(cfg.TenantID)
	if endpoint.DeviceAuthURL == "" {
		endpoint.DeviceAuthURL = strings.TrimSuffix(endpoint.TokenURL, "/token") + "/devicecode"
	}
	if cfg.DeviceAuthURL != "" {
		endpoint.DeviceAuthURL = cfg.DeviceAuthURL
	}
	if cfg.TokenURL != "" {
		endpoint.TokenURL = cfg.TokenURL
	}
	endpoint.AuthStyle = oauth2.AuthStyleInParams

	return &DeviceFlow{
		Config: &oauth2.Config{
			ClientID: cfg.ClientID,
			Endpoint: endpoint,
			Scopes:   cfg.Scopes,
		},
		CachePath: cfg.TokenCache,
		Prompt:    prompt,
	}
}

func (f *DeviceFlow) AccessToken(ctx context.Context) (string, error) {
	if tok := f.cachedToken(ctx); tok != nil {
		return tok.AccessToken, nil
	}

	da, err := f.Config.DeviceAuth(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: starting device authorization: %v", ErrAuth, err)
	}

	code := DeviceCode{
		VerificationURI: da.VerificationURI,
		UserCode:        da.UserCode,
		ExpiresAt:       da.Expiry,
	}
	log.Info().
		Str("verification_uri", code.VerificationURI).
		Str("user_code", code.UserCode).
		Msg("Waiting for device sign-in")
	if f.Prompt != nil {
		f.Prompt(ctx, code)
	}

	tok, err := f.Config.DeviceAccessToken(ctx, da)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuth, err)
	}

	if err := f.saveToken(tok); err != nil {
		log.Warn().Err(err).Str("path", f.CachePath).Msg("Could not write token cache")
	}
	return tok.AccessToken, nil
}

// cachedToken returns a usable token from the cache, refreshing it when
// expired. The cache file itself is only written after a device sign-in.
func (f *DeviceFlow) cachedToken(ctx context.Context) *oauth2.Token {
	if f.CachePath == "" {
		return nil
	}
	data, err := os.ReadFile(f.CachePath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warn().Err(err).Str("path", f.CachePath).Msg("Could not read token cache")
		}
		return nil
	}

	var cached oauth2.Token
	if err := json.Unmarshal(data, &cached); err != nil {
		log.Warn().Err(err).Str("path", f.CachePath).Msg("Ignoring corrupt token cache")
		return nil
	}
	if cached.AccessToken == "" && cached.RefreshToken == "" {
		return nil
	}

	tok, err := f.Config.TokenSource(ctx, &cached).Token()
	if err != nil {
		log.Debug().Err(err).Msg("Cached token unusable, starting device flow")
		return nil
	}
	return tok
}

func (f *DeviceFlow) saveToken(tok *oauth2.Token) error {
	if f.CachePath == "" {
		return nil
	}
	data, err := json.Marshal(tok)
	if err != nil {
		return err
	}
	return os.WriteFile(f.CachePath, data, 0o600)
}

// Static always returns the same token.
type Static string

func (s Static) AccessToken(context.Context) (string, error) {
	if s == "" {
		return "", fmt.Errorf("%w: no access token configured", ErrAuth)
	}
	return string(s), nil
}
