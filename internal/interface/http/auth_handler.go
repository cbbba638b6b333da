package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/nasihat/dashboard-api/config"
	"github.com/nasihat/dashboard-api/internal/application"
	"github.com/nasihat/dashboard-api/internal/oauth"
	"github.com/nasihat/dashboard-api/pkg/helpers"
	"github.com/nasihat/dashboard-api/pkg/response"
	"github.com/nasihat/dashboard-api/pkg/validation"
)

// oauthStateTTL bounds one authorization round-trip.
const oauthStateTTL = 10 * time.Minute

type AuthHandler struct {
	Svc      *application.AuthService
	LinkedIn *oauth.LinkedInClient
	RDB      *redis.Client
	Logger   *logrus.Logger
	Cfg      *config.Config
	Cookies  *helpers.Manager
}

func NewAuthHandler(svc *application.AuthService, linkedin *oauth.LinkedInClient, rdb *redis.Client, logger *logrus.Logger, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		Svc:      svc,
		LinkedIn: linkedin,
		RDB:      rdb,
		Logger:   logger,
		Cfg:      cfg,
		Cookies:  helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure || cfg.IsProduction()),
	}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
	Name     string `json:"name"`
}

type oauthCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

// Login POST /api/auth/login — credential login with silent
// auto-registration for unknown emails.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	res, err := h.Svc.LoginOrRegister(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		h.authError(c, err)
		return
	}
	h.Cookies.SetAuthToken(c, res.Token, res.TokenExpiry)
	response.Success(c, http.StatusOK, gin.H{
		"user":        profileJSON(&res.User),
		"token":       res.Token,
		"is_new_user": res.IsNewUser,
	}, "login successful", gin.H{"expires_at": res.TokenExpiry})
}

// LinkedInRedirect GET /api/auth/linkedin — 302 to the provider's
// authorization endpoint. The anti-CSRF state is stored server-side so the
// callback can verify it regardless of client storage.
func (h *AuthHandler) LinkedInRedirect(c *gin.Context) {
	if !h.LinkedIn.Configured() {
		response.Error[any](c, http.StatusInternalServerError, "linkedin oauth not configured", nil)
		return
	}
	state, err := helpers.GenerateState()
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "state generation failed", nil)
		return
	}
	if err := helpers.StoreOAuthState(c.Request.Context(), h.RDB, state, oauthStateTTL); err != nil {
		h.Logger.WithError(err).Error("oauth state store failed")
		response.Error[any](c, http.StatusInternalServerError, "state store failed", nil)
		return
	}
	c.Redirect(http.StatusFound, h.LinkedIn.AuthorizationURL(state))
}

// LinkedInCallback GET /api/auth/linkedin/callback — provider redirect
// target. On success sets the auth cookie and sends the browser to the
// dashboard; on any failure redirects back to the login page with an error.
func (h *AuthHandler) LinkedInCallback(c *gin.Context) {
	if provErr := c.Query("error"); provErr != "" {
		h.Logger.WithField("error", provErr).Warn("linkedin oauth denied")
		h.redirectLogin(c, "LinkedIn authentication failed")
		return
	}
	code := c.Query("code")
	if code == "" {
		h.redirectLogin(c, "No authorization code received")
		return
	}
	ok, err := helpers.ConsumeOAuthState(c.Request.Context(), h.RDB, c.Query("state"))
	if err != nil {
		h.Logger.WithError(err).Error("oauth state lookup failed")
		h.redirectLogin(c, "LinkedIn authentication failed")
		return
	}
	if !ok {
		h.redirectLogin(c, "Invalid or expired sign-in attempt")
		return
	}

	res, err := h.completeOAuth(c, code)
	if err != nil {
		h.redirectLogin(c, "LinkedIn authentication failed")
		return
	}
	h.Cookies.SetAuthToken(c, res.Token, res.TokenExpiry)
	c.Redirect(http.StatusFound, h.Cfg.DashboardURL)
}

// LinkedInExchange POST /api/auth/linkedin — JSON variant of the callback
// for clients that receive the code themselves.
func (h *AuthHandler) LinkedInExchange(c *gin.Context) {
	var req oauthCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	res, err := h.completeOAuth(c, req.Code)
	if err != nil {
		h.authError(c, err)
		return
	}
	h.Cookies.SetAuthToken(c, res.Token, res.TokenExpiry)
	response.Success(c, http.StatusOK, gin.H{
		"user":  profileJSON(&res.User),
		"token": res.Token,
	}, "login successful", gin.H{"expires_at": res.TokenExpiry})
}

func (h *AuthHandler) completeOAuth(c *gin.Context, code string) (*application.AuthResult, error) {
	ctx := c.Request.Context()
	accessToken, err := h.LinkedIn.ExchangeCode(ctx, code)
	if err != nil {
		h.Logger.WithError(err).Warn("linkedin code exchange failed")
		return nil, err
	}
	profile, err := h.LinkedIn.UserInfo(ctx, accessToken)
	if err != nil {
		h.Logger.WithError(err).Warn("linkedin profile fetch failed")
		return nil, err
	}
	res, err := h.Svc.HandleOAuthCallback(ctx, profile)
	if err != nil {
		h.Logger.WithError(err).Warn("oauth login failed")
		return nil, err
	}
	return res, nil
}

// Me GET /api/auth/me — resolves the bearer token (cookie or
// Authorization header) to the current user.
func (h *AuthHandler) Me(c *gin.Context) {
	token := helpers.TokenFromRequest(c)
	if token == "" {
		response.Error[any](c, http.StatusUnauthorized, "no token provided", nil)
		return
	}
	u, err := h.Svc.GetCurrentUser(c.Request.Context(), token)
	if err != nil {
		response.Error[any](c, http.StatusUnauthorized, "invalid token", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": profileJSON(u)}, "current user", nil)
}

// Refresh POST /api/auth/refresh — re-issues the token with a fresh
// 7-day window and resets the cookie.
func (h *AuthHandler) Refresh(c *gin.Context) {
	token := helpers.TokenFromRequest(c)
	if token == "" {
		response.Error[any](c, http.StatusUnauthorized, "no token provided", nil)
		return
	}
	newToken, exp, err := h.Svc.Refresh(c.Request.Context(), token)
	if err != nil {
		response.Error[any](c, http.StatusUnauthorized, "invalid token", nil)
		return
	}
	h.Cookies.SetAuthToken(c, newToken, exp)
	response.Success(c, http.StatusOK, gin.H{"token": newToken}, "token refreshed", gin.H{"expires_at": exp})
}

// Logout POST /api/auth/logout — clears the cookie; the token itself
// stays valid until expiry since nothing is tracked server-side.
func (h *AuthHandler) Logout(c *gin.Context) {
	_ = h.Svc.Logout(c.Request.Context())
	h.Cookies.Clear(c)
	response.Success(c, http.StatusOK, gin.H{"logged_out": true}, "logged out", nil)
}

// authError maps the service error taxonomy to status codes and
// non-revealing messages.
func (h *AuthHandler) authError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, application.ErrInvalidCredentials):
		response.Error[any](c, http.StatusUnauthorized, "invalid credentials", nil)
	case errors.Is(err, application.ErrProviderMismatch):
		response.Error[any](c, http.StatusUnauthorized, "please sign in with your original provider", nil)
	case errors.Is(err, application.ErrAccountConflict):
		response.Error[any](c, http.StatusUnauthorized, "email already registered with another provider", nil)
	case errors.Is(err, oauth.ErrExchangeFailed), errors.Is(err, oauth.ErrProfileFetchFailed):
		response.Error[any](c, http.StatusUnauthorized, "authentication with provider failed", nil)
	case errors.Is(err, application.ErrInvalidToken):
		response.Error[any](c, http.StatusUnauthorized, "invalid token", nil)
	default:
		h.Logger.WithError(err).Error("auth request failed")
		response.Error[any](c, http.StatusInternalServerError, "authentication failed", nil)
	}
}

func (h *AuthHandler) redirectLogin(c *gin.Context, msg string) {
	c.Redirect(http.StatusFound, h.Cfg.LoginURL+"?error="+url.QueryEscape(msg))
}
