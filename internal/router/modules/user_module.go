package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nasihat/dashboard-api/internal/container"
	handlers "github.com/nasihat/dashboard-api/internal/interface/http"
	"github.com/nasihat/dashboard-api/internal/interface/middleware"
	"github.com/nasihat/dashboard-api/pkg/helpers"
)

// UserModule wires the authenticated profile endpoints.
type UserModule struct {
	Handler *handlers.UserHandler
	JWT     *helpers.JWTManager
}

func NewUserModule(h *handlers.UserHandler, jwt *helpers.JWTManager) *UserModule {
	return &UserModule{Handler: h, JWT: jwt}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/profile", m.Handler.GetProfile)
		auth.PUT("/profile", m.Handler.UpdateProfile)
		auth.POST("/profile/avatar", m.Handler.UploadAvatar)
	}
}
