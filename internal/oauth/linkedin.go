package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nasihat/dashboard-api/internal/domain/entity"
)

// Error kinds for the two provider round-trips. Wrapped errors carry the
// provider's raw response body for diagnostics.
var (
	ErrExchangeFailed     = errors.New("oauth code exchange failed")
	ErrProfileFetchFailed = errors.New("oauth profile fetch failed")
)

const (
	defaultAuthURL     = "https://www.linkedin.com/oauth/v2/authorization"
	defaultTokenURL    = "https://www.linkedin.com/oauth/v2/accessToken"
	defaultUserInfoURL = "https://api.linkedin.com/v2/userinfo"

	scopes = "openid profile email"
)

// Profile holds the attributes fetched from the provider's userinfo
// endpoint that the auth layer needs.
type Profile struct {
	ExternalID string
	Email      string
	Name       string
	Avatar     string
	Provider   entity.Provider
}

// LinkedInClient drives the authorization-code grant against LinkedIn.
// It keeps no state between calls; the anti-CSRF state value is generated
// and verified by the caller.
type LinkedInClient struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string

	// Endpoint overrides for tests; defaults are used when empty.
	AuthURL     string
	TokenURL    string
	UserInfoURL string

	HTTPClient *http.Client
}

func NewLinkedInClient(clientID, clientSecret, redirectURI string) *LinkedInClient {
	return &LinkedInClient{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURI:  redirectURI,
		HTTPClient:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Configured reports whether the provider credentials are present.
func (c *LinkedInClient) Configured() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// AuthorizationURL builds the provider's authorization endpoint URL with
// the given anti-CSRF state value.
func (c *LinkedInClient) AuthorizationURL(state string) string {
	params := url.Values{
		"response_type": {"code"},
		"client_id":     {c.ClientID},
		"redirect_uri":  {c.RedirectURI},
		"scope":         {scopes},
		"state":         {state},
	}
	base := c.AuthURL
	if base == "" {
		base = defaultAuthURL
	}
	return base + "?" + params.Encode()
}

// ExchangeCode trades the one-time authorization code for an access token.
func (c *LinkedInClient) ExchangeCode(ctx context.Context, code string) (string, error) {
	form := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"client_id":     {c.ClientID},
		"client_secret": {c.ClientSecret},
		"redirect_uri":  {c.RedirectURI},
	}
	endpoint := c.TokenURL
	if endpoint == "" {
		endpoint = defaultTokenURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("%w: status %d: %s", ErrExchangeFailed, resp.StatusCode, string(body))
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", ErrExchangeFailed)
	}
	return payload.AccessToken, nil
}

// UserInfo fetches the profile attributes for the given access token.
// Missing sub or email counts as a failed fetch.
func (c *LinkedInClient) UserInfo(ctx context.Context, accessToken string) (*Profile, error) {
	endpoint := c.UserInfoURL
	if endpoint == "" {
		endpoint = defaultUserInfoURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProfileFetchFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProfileFetchFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: status %d: %s", ErrProfileFetchFailed, resp.StatusCode, string(body))
	}

	var payload struct {
		Sub     string `json:"sub"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProfileFetchFailed, err)
	}
	if payload.Sub == "" || payload.Email == "" {
		return nil, fmt.Errorf("%w: missing sub or email in profile", ErrProfileFetchFailed)
	}

	return &Profile{
		ExternalID: payload.Sub,
		Email:      payload.Email,
		Name:       payload.Name,
		Avatar:     payload.Picture,
		Provider:   entity.ProviderLinkedIn,
	}, nil
}

func (c *LinkedInClient) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 10 * time.Second}
}
