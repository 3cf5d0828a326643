package server

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/givebridge-backend/internal/http/handlers"
	"github.com/yungbote/givebridge-backend/internal/http/middleware"
	"github.com/yungbote/givebridge-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log             *logger.Logger
	AuthMiddleware  *middleware.AuthMiddleware
	DonationHandler *handlers.DonationHandler
	CampaignHandler *handlers.CampaignHandler
	EventsHandler   *handlers.EventsHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.RequestLogger(cfg.Log))

	api := router.Group("/api")

	// Public
	api.GET("/health", handlers.HealthCheck)
	api.GET("/campaigns", cfg.CampaignHandler.List)
	api.GET("/campaigns/:id", cfg.CampaignHandler.Get)
	api.GET("/donations/campaign/:campaignId", cfg.DonationHandler.ListForCampaign)
	api.GET("/events/campaigns/:campaignId", cfg.EventsHandler.CampaignFeed)

	// Protected
	protected := api.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	protected.POST("/donations", cfg.DonationHandler.Create)
	protected.GET("/donations", cfg.DonationHandler.ListMine)
	protected.GET("/donations/:id", cfg.DonationHandler.Get)
	protected.POST("/campaigns", cfg.CampaignHandler.Create)
	protected.PATCH("/campaigns/:id/status", cfg.CampaignHandler.UpdateStatus)

	// Admin
	admin := protected.Group("/")
	admin.Use(cfg.AuthMiddleware.RequireAdmin())
	admin.DELETE("/donations/:id", cfg.DonationHandler.Delete)

	return router
}
