package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nasihat/dashboard-api/internal/container"
	handlers "github.com/nasihat/dashboard-api/internal/interface/http"
	"github.com/nasihat/dashboard-api/internal/interface/middleware"
	"github.com/nasihat/dashboard-api/pkg/helpers"
)

// JobModule wires the dashboard job-listing endpoints. Reads require an
// authenticated user like the rest of the dashboard.
type JobModule struct {
	Handler *handlers.JobHandler
	JWT     *helpers.JWTManager
}

func NewJobModule(h *handlers.JobHandler, jwt *helpers.JWTManager) *JobModule {
	return &JobModule{Handler: h, JWT: jwt}
}

func (m *JobModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), nil))
	{
		auth.GET("/jobs", m.Handler.List)
		auth.GET("/jobs/search", m.Handler.Search)
		auth.GET("/jobs/:id", m.Handler.Get)
	}
}
