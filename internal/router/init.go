package router

import (
	"github.com/nasihat/dashboard-api/internal/application"
	"github.com/nasihat/dashboard-api/internal/container"
	pginfra "github.com/nasihat/dashboard-api/internal/infrastructure/postgres"
	handlers "github.com/nasihat/dashboard-api/internal/interface/http"
	"github.com/nasihat/dashboard-api/internal/router/modules"
)

// InitModules builds the repositories, services, and handlers from the
// container singletons and registers every feature module. Called once
// during startup, after the container has been populated.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	pool := container.GetPGPool()

	userRepo := pginfra.NewUserRepository(pool)
	jobRepo := pginfra.NewJobRepository(pool)

	// Keep a nil *RabbitPublisher out of the interface so the service's
	// nil check still works when the queue is not configured.
	var pub application.Publisher
	if p := container.GetRabbitPub(); p != nil {
		pub = p
	}
	authSvc := application.NewAuthService(userRepo, container.GetJWT(), logger, pub)
	profileSvc := application.NewProfileService(userRepo, container.GetGCS(), cfg.GCSBucket, logger)
	jobSvc := application.NewJobService(jobRepo, logger, container.GetES(), cfg.ESJobsIndex)

	authHandler := handlers.NewAuthHandler(authSvc, container.GetLinkedIn(), container.GetRedis(), logger, cfg)
	userHandler := handlers.NewUserHandler(profileSvc, logger)
	jobHandler := handlers.NewJobHandler(jobSvc, logger)

	r.Add(modules.NewAuthModule(authHandler))
	r.Add(modules.NewUserModule(userHandler, container.GetJWT()))
	r.Add(modules.NewJobModule(jobHandler, container.GetJWT()))
}
