package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/microgreens/internal/config"
	"github.com/mamadbah2/microgreens/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares. webhook may be nil when
// the WhatsApp channel is not configured.
func New(cfg config.ServerConfig, farm *handlers.FarmHandler, webhook *handlers.WebhookHandler, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))
	r.Use(cors.New(corsConfig(cfg.AllowedOrigins)))

	limited := newIPLimiter(cfg.RateLimit, cfg.RateBurst).middleware()

	r.GET("/healthz", farm.Health)

	api := r.Group("/api")
	{
		orders := api.Group("/orders")
		orders.GET("", farm.ListOrders)
		orders.POST("", farm.CreateOrder)
		orders.DELETE("", farm.DeleteAllOrders)
		orders.POST("/import", farm.ImportOrders)
		orders.PUT("/:id", farm.UpdateOrder)
		orders.DELETE("/:id", farm.DeleteOrder)
		orders.POST("/:id/dispatch", farm.DispatchOrder)
		orders.POST("/:id/complete", farm.CompleteOrder)

		api.GET("/varieties", farm.ListVarieties)
		api.POST("/varieties", farm.CreateVariety)
		api.POST("/varieties/import", farm.ImportVarieties)
		api.DELETE("/varieties/:name", farm.DeleteVariety)

		api.GET("/delivery-modes", farm.ListDeliveryModes)
		api.POST("/delivery-modes", farm.CreateDeliveryMode)

		api.GET("/sowing-log", farm.ListSowingLog)
		api.POST("/sowing-log", farm.SaveSowingLog)

		api.GET("/seed-inventory", farm.ListSeedInventory)
		api.PATCH("/seed-inventory/:variety", farm.PatchSeedInventory)

		api.GET("/harvest/picklist", farm.PickList)
		api.GET("/harvest/picklist.pdf", farm.PickListPDF)
		api.POST("/harvest", farm.RecordHarvest)
		api.GET("/dispatch/manifest.pdf", farm.ManifestPDF)

		purchases := api.Group("/purchase-orders")
		purchases.GET("", farm.ListPurchaseOrders)
		purchases.POST("", farm.CreatePurchaseOrder)
		purchases.PUT("/:id", farm.UpdatePurchaseOrder)
		purchases.DELETE("/:id", farm.DeletePurchaseOrder)
		purchases.POST("/:id/order", farm.MarkPurchaseOrdered)
		purchases.POST("/:id/receive", farm.ReceivePurchaseOrder)
		purchases.POST("/:id/cancel", farm.CancelPurchaseOrder)

		api.GET("/waste-log", farm.ListWaste)
		api.POST("/waste-log", farm.CreateWaste)
		api.DELETE("/waste-log/:id", farm.DeleteWaste)

		api.GET("/delivery-expenses", farm.ListExpenses)
		api.POST("/delivery-expenses", farm.CreateExpense)
		api.DELETE("/delivery-expenses/:id", farm.DeleteExpense)

		api.GET("/planning/sowing", farm.SowingPlan)
		api.GET("/planning/intelligent", limited, farm.IntelligentPlan)
		api.GET("/planning/suggestions", limited, farm.Suggestions)

		reports := api.Group("/reports")
		reports.GET("/yield", farm.YieldReport)
		reports.GET("/seed-to-sale", farm.SeedToSaleReport)
		reports.GET("/summary", farm.SummaryReport)
		reports.GET("/locations", farm.LocationReport)
		reports.GET("/engagement", farm.EngagementReport)
		reports.GET("/upcoming-harvests", farm.UpcomingHarvestsReport)

		api.GET("/data/export", farm.ExportData)
		api.POST("/data/import", farm.ImportData)
		api.POST("/data/reset", farm.ResetData)
	}

	if webhook != nil {
		r.GET("/webhook", webhook.Verify)
		r.POST("/webhook", limited, webhook.Receive)
		api.POST("/notifications", webhook.SendMessage)
	} else {
		logger.Warn("whatsapp channel disabled, webhook routes not registered")
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})

	logger.Info("router initialized")
	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
