package v1

import (
	"github.com/gin-gonic/gin"

	"peopledesk/internal/infrastructure/http/v1/handlers"
)

func registerHealthRoutes(router *gin.Engine, cfg RouterConfig) {
	h := handlers.NewHealthHandler(cfg.Service, cfg.Version)
	health := router.Group("/health")
	{
		health.GET("/live", h.Live)
		health.GET("/ready", h.Ready)
		health.GET("/info", h.Info)
	}
}

func registerListRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	handlers.NewListHandler(handlers.NewBaseHandler(), cfg.Service, cfg.Formatter).RegisterRoutes(rg)
}

func registerMetaRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	h := handlers.NewMetadataHandler(handlers.NewBaseHandler(), cfg.Service)
	meta := rg.Group("/meta")
	{
		meta.GET("", h.List)
		meta.GET("/:screen", h.Get)
	}
}
