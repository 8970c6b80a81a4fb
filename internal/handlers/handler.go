package handlers

import (
	"smart_bulb/internal/logger"
	"smart_bulb/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// Versioned API endpoints
	h.registerAPIRoutes(router)

	// WebSocket observer connection (HTTP upgrade) — same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		relay := api.Group("/relay")
		{
			relay.POST("/toggle", h.toggleRelay)
			relay.GET("/state", h.getState)
		}

		// Body example: {"minutes":10,"action":"off"}
		api.POST("/timer", h.setTimer)
		api.DELETE("/timer", h.cancelTimer)

		api.GET("/stats", h.getStats)
		api.GET("/logs", h.getLogs)
	}
}
