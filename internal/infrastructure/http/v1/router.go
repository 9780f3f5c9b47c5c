// Package v1 provides HTTP API version 1.
package v1

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"peopledesk/internal/export"
	"peopledesk/internal/infrastructure/http/v1/middleware"
	"peopledesk/internal/listing"
	"peopledesk/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	Service   *listing.Service
	Logger    *logger.Logger
	Formatter export.Formatter

	// CORSOrigins lists allowed origins; "*" allows any. Empty disables CORS.
	CORSOrigins []string

	// RateLimit is a limiter formatted rate ("600-M"); empty disables it.
	RateLimit string

	// Metrics enables /metrics and request instrumentation when set.
	Metrics *middleware.Metrics

	Version string
}

// NewRouter creates and configures the gin router.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}

	router := gin.New()

	// Order matters: errors raised by any later middleware are rendered.
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())
	if cfg.Metrics != nil {
		router.Use(cfg.Metrics.Middleware())
		router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}
	if len(cfg.CORSOrigins) > 0 {
		router.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	}

	registerHealthRoutes(router, cfg)

	v1 := router.Group("/api/v1")
	if cfg.RateLimit != "" {
		limit, err := middleware.RateLimit(cfg.RateLimit)
		if err != nil {
			return nil, err
		}
		v1.Use(limit)
	}
	registerListRoutes(v1, cfg)
	registerMetaRoutes(v1, cfg)

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.HeaderRequestID},
		ExposeHeaders: []string{"Content-Disposition", middleware.HeaderRequestID, middleware.HeaderTraceID},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	c.AllowOrigins = origins
	return c
}
