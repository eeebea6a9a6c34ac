package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mx-space/landing/internal/config"
	"github.com/mx-space/landing/internal/middleware"
	"github.com/mx-space/landing/internal/modules/auth"
	"github.com/mx-space/landing/internal/modules/backup"
	"github.com/mx-space/landing/internal/modules/content/section"
	"github.com/mx-space/landing/internal/modules/processing/chart"
	"github.com/mx-space/landing/internal/modules/processing/render"
	"github.com/mx-space/landing/internal/modules/system/core/health"
	"github.com/mx-space/landing/internal/modules/tasks/crontask"
	"github.com/mx-space/landing/internal/pkg/response"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const apiPrefix = "/api/v2"

var appInfo = gin.H{
	"name":    "landing",
	"version": "1.0.0",
}

func newRouter(cfg *config.AppConfig, logger *zap.Logger, deps components) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(logger))
	r.Use(newCORS(cfg))

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	var rdb *redis.Client
	if deps.redis != nil {
		rdb = deps.redis.Raw()
	}
	gate := auth.NewGate(deps.auth)
	optionalAuth := middleware.OptionalAuth(deps.auth)
	authMW := middleware.Auth(deps.auth)

	// Pages
	pages := r.Group("", optionalAuth)
	pageHandler := render.NewHandler(deps.store, deps.dispatch, cfg.Page.Title, gate, logger)
	pageHandler.RegisterRoutes(pages, middleware.AuthRedirect(deps.auth, "/login"))

	// Versioned API. Authentication runs before rate limiting so signed-in
	// editors are not throttled.
	api := r.Group(apiPrefix)
	api.Use(optionalAuth)
	api.Use(middleware.RateLimit(rdb, logger))
	api.Use(middleware.Idempotence(rdb))

	api.GET("", func(c *gin.Context) { c.PureJSON(http.StatusOK, appInfo) })
	api.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"data": "pong"}) })
	api.GET("/uptime", func(c *gin.Context) {
		uptime := time.Since(processStart)
		c.JSON(http.StatusOK, gin.H{
			"timestamp": uptime.Milliseconds(),
			"humanize":  humanizeDuration(uptime),
		})
	})
	health.NewHandler(cfg.Paths.Logs, healthProbes(deps)...).RegisterRoutes(api, authMW)

	section.NewHandler(deps.store, deps.factory, logger).RegisterRoutes(api, authMW)
	pageHandler.RegisterAPIRoutes(api)
	chart.NewHandler(deps.fetcher).RegisterRoutes(api)
	auth.NewHandler(deps.auth, gate).RegisterRoutes(api, authMW)
	backup.NewHandler(deps.backups).RegisterRoutes(api, authMW)
	crontask.NewHandler(deps.sched).RegisterRoutes(api, authMW)

	return r
}

func healthProbes(c components) []health.Probe {
	probes := []health.Probe{{
		Name: "sections",
		Check: func(ctx context.Context) error {
			_, err := c.store.List(ctx)
			return err
		},
	}}
	if c.db != nil {
		probes = append(probes, health.Probe{
			Name: "database",
			Check: func(ctx context.Context) error {
				sqlDB, err := c.db.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			},
		})
	}
	if c.redis != nil {
		probes = append(probes, health.Probe{Name: "redis", Check: c.redis.Ping, Optional: true})
	}
	return probes
}
