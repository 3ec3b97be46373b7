// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/nice1tools/market-backend/internal/chain"
	"github.com/nice1tools/market-backend/internal/config"
	"github.com/nice1tools/market-backend/internal/handlers"
	"github.com/nice1tools/market-backend/internal/market"
	"github.com/nice1tools/market-backend/internal/middleware"
	"github.com/nice1tools/market-backend/internal/services"
	"github.com/nice1tools/market-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	bridge := chain.NewBridge(cfg.Chain)
	inventoryService := services.NewInventoryService(cfg)
	productService := services.NewProductService(cfg)
	storageService, _ := services.NewStorageService(cfg)
	metadataService := services.NewMetadataService(db, storageService)
	sessionService := services.NewSessionService(db, cfg, bridge, inventoryService)

	var flowStore market.FlowStore
	if db != nil {
		flowStore = market.NewGormFlowStore(db)
	} else {
		flowStore = market.NewMemoryFlowStore()
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(sessionService)
	inventoryHandler := handlers.NewInventoryHandler(inventoryService, cfg)
	flowHandler := handlers.NewFlowHandler(cfg, flowStore, inventoryService)
	actionHandler := handlers.NewActionHandler(cfg, inventoryService)
	productHandler := handlers.NewProductHandler(productService, cfg)
	metadataHandler := handlers.NewMetadataHandler(metadataService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.Frontend.BaseURL))
	r.Use(middleware.GeneralRateLimit())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
			auth.POST("/logout", middleware.AuthRequired(), authHandler.Logout)
		}

		// Inventory routes
		inventory := v1.Group("/inventory")
		inventory.Use(middleware.AuthRequired())
		{
			inventory.GET("", inventoryHandler.GetInventory)
			inventory.GET("/raw", inventoryHandler.GetRawAssets)
			inventory.GET("/whitelist", inventoryHandler.GetWhitelistStatus)
		}

		// Flow routes (creator surface)
		flows := v1.Group("/flows")
		flows.Use(middleware.AuthRequired())
		{
			flows.GET("/records", flowHandler.GetRecords)

			protected := flows.Group("")
			protected.Use(middleware.WhitelistRequired(), middleware.TransactRateLimit())
			{
				protected.POST("/:kind", flowHandler.ExecuteFlow)
				protected.POST("/:kind/restock", flowHandler.Restock)
			}
		}

		// Product routes
		products := v1.Group("/products")
		products.Use(middleware.AuthRequired())
		{
			products.GET("/:kind", productHandler.GetProducts)
		}

		// Action routes
		actions := v1.Group("/actions")
		actions.Use(middleware.AuthRequired(), middleware.TransactRateLimit())
		{
			actions.POST("/toggle", actionHandler.Toggle)
			actions.POST("/price", actionHandler.UpdatePrice)
			actions.POST("/split", actionHandler.UpdateSplit)
			actions.POST("/demo-period", actionHandler.SetDemoPeriod)
			actions.POST("/burn", actionHandler.Burn)
			actions.POST("/duplicate", actionHandler.Duplicate)
			actions.POST("/modify", actionHandler.Modify)
		}

		// Metadata routes
		metadata := v1.Group("/metadata")
		metadata.Use(middleware.AuthRequired())
		{
			metadata.GET("", metadataHandler.List)
			metadata.GET("/:product", metadataHandler.Get)
			metadata.PUT("/:product", metadataHandler.Upsert)
			metadata.DELETE("/:product", metadataHandler.Delete)
			metadata.POST("/:product/preview", middleware.UploadRateLimit(), metadataHandler.UploadPreview)
		}
	}

	// Static file serving (for development)
	if cfg.Environment == "development" {
		r.Static("/uploads", "./uploads")
	}

	return r
}
