package http

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	appsvc "threads-accounts/internal/app"
	"threads-accounts/internal/bootstrap"
	"threads-accounts/internal/cache"
	"threads-accounts/internal/pkg/jwtutil"
	"threads-accounts/internal/pkg/password"
	"threads-accounts/internal/platform/rabbitmq"
	"threads-accounts/internal/transport/http/handler"
	"threads-accounts/internal/transport/http/middleware"
)

// Services are the application services the router exposes.
type Services struct {
	Auth    *appsvc.AuthService
	Follow  *appsvc.FollowService
	Profile *appsvc.ProfileService
}

func NewServices(app *bootstrap.App) *Services {
	cfg := app.Config
	tokens := jwtutil.NewIssuer(cfg.Auth.JWTSecret, cfg.TokenTTL())
	sessions := cache.NewSessionStore(app.Redis)
	profiles := cache.NewProfileCache(app.Redis, cfg.ProfileTTL())
	publisher := rabbitmq.NewFollowEventPublisher(app.MQConn, cfg.RabbitMQ.FollowEventQueue)

	return &Services{
		Auth: appsvc.NewAuthService(
			app.Users,
			password.NewBcryptHasher(cfg.Auth.BcryptCost),
			tokens,
			sessions,
			app.Metrics,
			app.Log,
		),
		Follow:  appsvc.NewFollowService(app.Users, publisher, app.Metrics, app.Log),
		Profile: appsvc.NewProfileService(app.Users, profiles, app.Log),
	}
}

func NewRouter(app *bootstrap.App) (*gin.Engine, error) {
	gin.SetMode(app.Config.App.GinMode)
	if err := handler.RegisterValidators(); err != nil {
		return nil, err
	}

	svc := NewServices(app)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(app.Log), middleware.Metrics(app.Metrics))

	healthHandler := handler.NewHealthHandler(app.Config.App.Name, app.Config.App.Env, app.StartedAt, map[string]handler.Check{
		"mongo": func(ctx context.Context) error {
			return app.Mongo.Ping(ctx, readpref.Primary())
		},
		"redis": func(ctx context.Context) error {
			return app.Redis.Ping(ctx).Err()
		},
		"rabbitmq": func(context.Context) error {
			if app.MQConn == nil || app.MQConn.IsClosed() {
				return errors.New("connection closed")
			}
			return nil
		},
	})
	router.GET("/healthz", healthHandler.Check)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(app.Registry, promhttp.HandlerOpts{})))

	secureCookie := app.Config.Auth.CookieSecure || strings.EqualFold(app.Config.App.Env, "prod")
	Register(router, svc.Auth, svc.Follow, svc.Profile, app.Log, secureCookie)
	return router, nil
}
