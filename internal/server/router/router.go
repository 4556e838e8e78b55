package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockledger/internal/metrics"
	"github.com/mamadbah2/stockledger/internal/server/handlers"
)

// Handlers groups the HTTP handlers the router mounts.
type Handlers struct {
	Inventory *handlers.InventoryHandler
	Tickets   *handlers.TicketHandler
	Catalogs  *handlers.CatalogHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, allowedOrigins []string, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))
	r.Use(metrics.PrometheusMiddleware())
	r.Use(cors.New(corsConfig(allowedOrigins)))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.POST("/ledger/refresh", h.Inventory.Refresh)
		api.GET("/ledger/next-number", h.Inventory.NextNumber)

		api.GET("/inventory", h.Inventory.Report)
		api.GET("/inventory/item", h.Inventory.Item)
		api.GET("/inventory/export", h.Inventory.Export)
		api.GET("/inventory/snapshots/latest", h.Inventory.LatestSnapshot)
		api.GET("/dashboard", h.Inventory.Dashboard)

		api.GET("/tickets", h.Tickets.Tickets)
		api.GET("/tickets/items", h.Tickets.TicketItems)
		api.GET("/tickets/analysis", h.Tickets.Analysis)
		api.GET("/labels", h.Tickets.SearchLabels)
	}

	drafts := api.Group("/drafts/current")
	{
		drafts.GET("", h.Tickets.CurrentDraft)
		drafts.PUT("/type", h.Tickets.SwitchType)
		drafts.PATCH("/header", h.Tickets.UpdateHeader)
		drafts.POST("/items", h.Tickets.AddItem)
		drafts.DELETE("/items/:index", h.Tickets.RemoveItem)
		drafts.POST("/submit", h.Tickets.Submit)
	}

	catalogs := api.Group("/catalogs")
	{
		catalogs.GET("/:name", h.Catalogs.List)
		catalogs.GET("/:name/names", h.Catalogs.Names)
		catalogs.POST("/:name", h.Catalogs.Add)
	}
	api.GET("/devices/:code", h.Catalogs.Device)

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func corsConfig(allowedOrigins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", handlers.OperatorHeader},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}

	if len(allowedOrigins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	for _, origin := range allowedOrigins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = allowedOrigins
	cfg.AllowCredentials = true
	return cfg
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("operator", c.GetHeader(handlers.OperatorHeader)))
	}
}
