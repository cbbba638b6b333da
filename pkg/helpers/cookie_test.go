package helpers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCtx(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestSetAuthToken(t *testing.T) {
	c, w := testCtx(t)
	m := NewCookie("example.com", true)
	m.SetAuthToken(c, "tok-abc", time.Now().Add(time.Hour))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	ck := cookies[0]
	assert.Equal(t, AuthCookieName, ck.Name)
	assert.Equal(t, "tok-abc", ck.Value)
	assert.True(t, ck.HttpOnly)
	assert.True(t, ck.Secure)
	assert.Equal(t, http.SameSiteStrictMode, ck.SameSite)
	assert.InDelta(t, 3600, ck.MaxAge, 5)
}

func TestClear(t *testing.T) {
	c, w := testCtx(t)
	m := NewCookie("example.com", false)
	m.Clear(c)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, AuthCookieName, cookies[0].Name)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func TestTokenFromRequest_HeaderWinsOverCookie(t *testing.T) {
	c, _ := testCtx(t)
	c.Request.Header.Set("Authorization", "Bearer header-token")
	c.Request.AddCookie(&http.Cookie{Name: AuthCookieName, Value: "cookie-token"})

	assert.Equal(t, "header-token", TokenFromRequest(c))
}

func TestTokenFromRequest_CookieFallback(t *testing.T) {
	c, _ := testCtx(t)
	c.Request.AddCookie(&http.Cookie{Name: AuthCookieName, Value: "cookie-token"})
	assert.Equal(t, "cookie-token", TokenFromRequest(c))
}

func TestTokenFromRequest_Absent(t *testing.T) {
	c, _ := testCtx(t)
	assert.Equal(t, "", TokenFromRequest(c))
}

func TestGenerateState(t *testing.T) {
	s1, err := GenerateState()
	require.NoError(t, err)
	s2, err := GenerateState()
	require.NoError(t, err)

	assert.NotEqual(t, s1, s2)
	assert.Len(t, s1, 43) // 32 bytes, base64url without padding
}
