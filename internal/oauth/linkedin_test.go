package oauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nasihat/dashboard-api/internal/domain/entity"
)

func testClient(tokenURL, userInfoURL string) *LinkedInClient {
	c := NewLinkedInClient("client-id", "client-secret", "https://app.example.com/callback")
	c.TokenURL = tokenURL
	c.UserInfoURL = userInfoURL
	return c
}

func TestAuthorizationURL(t *testing.T) {
	c := NewLinkedInClient("client-id", "client-secret", "https://app.example.com/callback")

	raw := c.AuthorizationURL("state-xyz")
	u, err := url.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "www.linkedin.com", u.Host)
	q := u.Query()
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "https://app.example.com/callback", q.Get("redirect_uri"))
	assert.Equal(t, "openid profile email", q.Get("scope"))
	assert.Equal(t, "state-xyz", q.Get("state"))
}

func TestConfigured(t *testing.T) {
	assert.True(t, NewLinkedInClient("id", "secret", "uri").Configured())
	assert.False(t, NewLinkedInClient("", "secret", "uri").Configured())
	assert.False(t, NewLinkedInClient("id", "", "uri").Configured())
}

func TestExchangeCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "the-code", r.PostForm.Get("code"))
		assert.Equal(t, "client-id", r.PostForm.Get("client_id"))
		assert.Equal(t, "client-secret", r.PostForm.Get("client_secret"))
		assert.Equal(t, "https://app.example.com/callback", r.PostForm.Get("redirect_uri"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at-123","expires_in":5183999}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL, "")
	token, err := c.ExchangeCode(context.Background(), "the-code")
	require.NoError(t, err)
	assert.Equal(t, "at-123", token)
}

func TestExchangeCode_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL, "")
	_, err := c.ExchangeCode(context.Background(), "stale-code")
	assert.ErrorIs(t, err, ErrExchangeFailed)
	assert.Contains(t, err.Error(), "invalid_grant")
}

func TestExchangeCode_EmptyToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL, "")
	_, err := c.ExchangeCode(context.Background(), "the-code")
	assert.ErrorIs(t, err, ErrExchangeFailed)
}

func TestUserInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer at-123", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"sub": "li-sub-1",
			"email": "member@example.com",
			"name": "Member Name",
			"picture": "https://cdn.example.com/pic.jpg"
		}`))
	}))
	defer srv.Close()

	c := testClient("", srv.URL)
	p, err := c.UserInfo(context.Background(), "at-123")
	require.NoError(t, err)
	assert.Equal(t, "li-sub-1", p.ExternalID)
	assert.Equal(t, "member@example.com", p.Email)
	assert.Equal(t, "Member Name", p.Name)
	assert.Equal(t, "https://cdn.example.com/pic.jpg", p.Avatar)
	assert.Equal(t, entity.ProviderLinkedIn, p.Provider)
}

func TestUserInfo_MissingFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name":"No Subject"}`))
	}))
	defer srv.Close()

	c := testClient("", srv.URL)
	_, err := c.UserInfo(context.Background(), "at-123")
	assert.ErrorIs(t, err, ErrProfileFetchFailed)
}

func TestUserInfo_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := testClient("", srv.URL)
	_, err := c.UserInfo(context.Background(), "expired")
	assert.ErrorIs(t, err, ErrProfileFetchFailed)
}
