package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nasihat/dashboard-api/internal/container"
	handlers "github.com/nasihat/dashboard-api/internal/interface/http"
	"github.com/nasihat/dashboard-api/internal/interface/middleware"
)

// AuthModule wires the authentication endpoints.
// Public: POST /api/auth/login, GET/POST /api/auth/linkedin,
// GET /api/auth/linkedin/callback, GET /api/auth/me,
// POST /api/auth/refresh, POST /api/auth/logout.
type AuthModule struct {
	Handler *handlers.AuthHandler
}

func NewAuthModule(h *handlers.AuthHandler) *AuthModule {
	return &AuthModule{Handler: h}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	loginLimiter := middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())
	oauthLimiter := middleware.RateLimit(rdb, 30, time.Minute, middleware.KeyByIPAndPath(), nil)
	refreshLimiter := middleware.RateLimit(rdb, 60, time.Minute, middleware.KeyByIP(), nil)

	rg.POST("/auth/login", loginLimiter, m.Handler.Login)
	rg.GET("/auth/linkedin", oauthLimiter, m.Handler.LinkedInRedirect)
	rg.GET("/auth/linkedin/callback", oauthLimiter, m.Handler.LinkedInCallback)
	rg.POST("/auth/linkedin", oauthLimiter, m.Handler.LinkedInExchange)
	rg.GET("/auth/me", m.Handler.Me)
	rg.POST("/auth/refresh", refreshLimiter, m.Handler.Refresh)
	rg.POST("/auth/logout", m.Handler.Logout)
}
