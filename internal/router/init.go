package router

import (
	"github.com/satriawb/postboard/internal/application"
	"github.com/satriawb/postboard/internal/container"
	pginfra "github.com/satriawb/postboard/internal/infrastructure/postgres"
	handlers "github.com/satriawb/postboard/internal/interface/http"
	"github.com/satriawb/postboard/internal/router/modules"
)

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	pool := container.GetPGPool()

	users := pginfra.NewUserRepository(pool)
	posts := pginfra.NewPostRepository(pool)

	authSvc := application.NewAuthService(
		users,
		container.GetJWT(),
		logger,
		container.GetRabbitPub(),
		cfg.AppName,
		cfg.MailSendEnabled,
	)
	postSvc := application.NewPostService(
		posts,
		container.GetMediaStore(),
		container.GetRedis(),
		cfg.PostCacheTTL,
		logger,
		container.GetES(),
		cfg.ESPostsIndex,
	)
	profileSvc := application.NewProfileService(
		users,
		container.GetGCS(),
		cfg.GCSBucket,
		logger,
	)

	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(authSvc, logger)))
	r.Add(modules.NewPostModule(handlers.NewPostHandler(postSvc, logger, cfg.PublicBaseURL), container.GetJWT()))
	r.Add(modules.NewProfileModule(handlers.NewProfileHandler(profileSvc, logger), container.GetJWT()))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
