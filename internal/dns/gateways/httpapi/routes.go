package httpapi

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the API under /api. Health stays public; everything else
// requires the API key when one is configured.
func RegisterRoutes(r *gin.Engine, h *Handler, apiKey string) {
	api := r.Group("/api")
	api.GET("/health", h.Health)

	protected := api.Group("")
	if apiKey != "" {
		protected.Use(RequireAPIKey(apiKey))
	}

	protected.POST("/reload", h.Reload)

	protected.GET("/zones", h.ListZones)
	protected.POST("/zones", h.CreateZone)
	protected.DELETE("/zones/:zone", h.DeleteZone)
	protected.GET("/zones/:zone/check", h.CheckZone)
	protected.GET("/zones/:zone/records", h.ListRecords)
	protected.POST("/zones/:zone/records", h.AddRecord)
	protected.PUT("/zones/:zone/records/:id", h.UpdateRecord)
	protected.DELETE("/zones/:zone/records/:id", h.DeleteRecord)

	settings := protected.Group("/settings")

	settings.GET("/blocked-zones", h.ListBlockedZones)
	settings.POST("/blocked-zones", h.BlockZone)
	settings.DELETE("/blocked-zones/:domain", h.UnblockZone)
	settings.POST("/blocked-zones/import", h.ImportBlocklist)
	settings.GET("/blocked-zones/check/:domain", h.CheckBlocked)
	settings.GET("/blocked-zones/stats", h.BlocklistStats)

	settings.POST("/null-routes", h.NullRoute)
	settings.DELETE("/null-routes/:domain", h.RemoveNullRoute)

	settings.GET("/forwarders", h.ListForwarders)
	settings.POST("/forwarders", h.AddForwarder)
	settings.GET("/forwarders/check", h.CheckForwarders)
	settings.DELETE("/forwarders/:ip", h.RemoveForwarder)

	settings.GET("/recursion", h.GetRecursion)
	settings.PUT("/recursion", h.SetRecursion)
	settings.POST("/recursion/networks", h.AddRecursionNetwork)
	settings.DELETE("/recursion/networks/*network", h.RemoveRecursionNetwork)

	settings.GET("/config", h.GetConfiguration)
	settings.PUT("/config", h.PutConfiguration)
}
