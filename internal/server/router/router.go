package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lagranja/livestock/internal/server/handlers"
)

// Handlers bundles the HTTP adapters the router mounts.
type Handlers struct {
	Clients   *handlers.ClientHandler
	FeedTypes *handlers.FeedTypeHandler
	Animals   *handlers.AnimalHandler
	Reports   *handlers.ReportHandler
	Imports   *handlers.ImportHandler
	Audit     *handlers.AuditHandler
	GraphQL   gin.HandlerFunc
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	api := r.Group("/api")

	clients := api.Group("/clients")
	clients.POST("", h.Clients.Create)
	clients.GET("", h.Clients.List)
	clients.GET("/:id", h.Clients.Get)
	clients.PUT("/:id", h.Clients.Update)
	clients.DELETE("/:id", h.Clients.Delete)

	feedTypes := api.Group("/feed-types")
	feedTypes.POST("", h.FeedTypes.Create)
	feedTypes.GET("", h.FeedTypes.List)
	feedTypes.GET("/:id", h.FeedTypes.Get)
	feedTypes.PUT("/:id", h.FeedTypes.Update)
	feedTypes.POST("/:id/restock", h.FeedTypes.Restock)
	feedTypes.DELETE("/:id", h.FeedTypes.Delete)

	animals := api.Group("/animals")
	animals.POST("", h.Animals.Create)
	animals.GET("", h.Animals.List)
	animals.GET("/:id", h.Animals.Get)
	animals.PUT("/:id", h.Animals.Update)
	animals.DELETE("/:id", h.Animals.Delete)
	animals.POST("/:id/feedings", h.Animals.RecordFeeding)
	animals.PUT("/:id/feedings/:eventId", h.Animals.CorrectFeeding)
	animals.DELETE("/:id/feedings/:eventId", h.Animals.RemoveFeeding)

	reports := api.Group("/reports")
	reports.GET("/traceability-by-feed", h.Reports.TraceabilityByFeed)
	reports.GET("/consumption-by-client", h.Reports.ConsumptionByClient)
	reports.GET("/consumption-by-feed", h.Reports.ConsumptionByFeed)

	api.POST("/import/:kind", h.Imports.Import)
	api.POST("/audit/run", h.Audit.Run)

	if h.GraphQL != nil {
		r.POST("/graphql", h.GraphQL)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
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
			zap.String("client_ip", c.ClientIP()))
	}
}
