package http

import (
	"context"
	"log/slog"

	"github.com/geocoder89/accounthub/internal/account"
	"github.com/geocoder89/accounthub/internal/config"
	"github.com/geocoder89/accounthub/internal/http/handlers"
	"github.com/geocoder89/accounthub/internal/http/middlewares"
	"github.com/geocoder89/accounthub/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type RouterDeps struct {
	Config   config.Config
	Accounts *account.Service
	Ping     func(ctx context.Context) error
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer
}

func NewRouter(log *slog.Logger, deps RouterDeps) *gin.Engine {
	if deps.Config.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	maxBody := deps.Config.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 1 << 20
	}

	// middleware
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("accounthub"))
	r.Use(middlewares.RequestID())
	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(deps.Config.AllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(maxBody))
	r.Use(middlewares.RequireJSON())

	// health
	h := handlers.NewHealthHandler(deps.Ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	r.GET("/docs", handlers.SwaggerUI)
	r.GET("/docs/openapi.yaml", handlers.OpenAPISpec)

	usersHandler := handlers.NewUsersHandler(deps.Accounts, log)
	authMW := middlewares.NewAuthMiddleware(deps.Accounts)

	api := r.Group("/api")
	{
		users := api.Group("/users")
		users.POST("", usersHandler.Register)
		users.POST("/google", usersHandler.RegisterGoogle)
		users.POST("/login", usersHandler.Login)
		users.GET("/me", authMW.RequireAuth(), usersHandler.Me)
	}

	return r
}
