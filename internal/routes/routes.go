package routes

import (
	"github.com/gin-gonic/gin"

	"supplier-pricing-backend/internal/config"
	handler "supplier-pricing-backend/internal/handlers"
	"supplier-pricing-backend/internal/services/pricing"
)

func RegisterRoutes(r *gin.Engine, svc *pricing.Service, cfg *config.Config) {
	pricingHandler := handler.NewPricingHandler(svc, cfg.MaxUploadBytes())

	api := r.Group("/api")

	// Health check
	api.GET("/health", pricingHandler.Health)

	// Supplier bids -> bidding sheet
	bidding := api.Group("/bidding")
	bidding.POST("/sheet", pricingHandler.BuildBidSheet)

	// Bidding sheet -> catalog
	catalog := api.Group("/catalog")
	catalog.POST("/sheet", pricingHandler.BuildCatalog)

	// Two-sheet price QC
	qc := api.Group("/qc")
	{
		qc.POST("/columns", pricingHandler.QCColumns)
		qc.POST("/report", pricingHandler.QCReport)
	}
}
