package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API v1
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	limited := h.rateLimitMiddleware()

	// Алерты
	alerts := api.Group("/alerts")
	{
		alerts.POST("", limited, h.createAlert)
		alerts.GET("", h.listAlerts)
		alerts.GET("/nearby", h.nearbyAlerts)
		alerts.GET("/:id", h.getAlert)
		alerts.PUT("/:id", h.updateAlert)
		alerts.POST("/:id/vote", limited, h.voteAlert)
	}

	// Справочники и определение зоны
	api.GET("/zones", h.listZones)
	api.GET("/alert-types", h.listAlertTypes)
	api.POST("/detect-zone", h.detectZone)

	api.GET("/stats", h.getStats)

	// Живая лента (websocket)
	api.GET("/live", h.liveFeed)

	// Маршрут Health-check
	api.GET("/system/health", h.healthCheck)
}
