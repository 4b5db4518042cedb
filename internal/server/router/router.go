package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/rifqipratama/sibat/internal/domain/models"
	"github.com/rifqipratama/sibat/internal/server/handlers"
	"github.com/rifqipratama/sibat/internal/service/auth"
)

// Handlers bundles the handler adapters the router wires up.
type Handlers struct {
	Auth      *handlers.AuthHandler
	Partner   *handlers.PartnerHandler
	Protocol  *handlers.ProtocolHandler
	Reporting *handlers.ReportingHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, authSvc *auth.Service, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/login", h.Auth.Login)
	r.POST("/logout", h.Auth.Logout)

	// Field scanners work without dashboard accounts.
	r.GET("/scan/:code", h.Protocol.Scan)
	r.POST("/api/confirm-usage/:code", h.Protocol.ConfirmUsage)
	r.GET("/barcode/:code", h.Protocol.Barcode)
	r.GET("/download/barcode/:code", h.Protocol.DownloadBarcode)

	api := r.Group("/api", handlers.RequireAuth(authSvc))
	{
		api.GET("/provinces", h.Partner.Provinces)
		api.GET("/partners", h.Partner.List)
		api.GET("/partners/province/:code", h.Partner.ListByProvince)
		api.GET("/protocols", h.Protocol.List)
		api.GET("/stock", h.Reporting.Stock)
		api.GET("/dashboard", h.Reporting.Dashboard)
		api.GET("/analytics", h.Reporting.Analytics)
		api.GET("/activity", h.Reporting.Activity)

		staff := api.Group("", handlers.RequireRole(models.RoleOperator, models.RoleAdmin))
		{
			staff.POST("/partners", h.Partner.Create)
			staff.POST("/partners/:id/toggle-status", h.Partner.Toggle)
			staff.POST("/protocols", h.Protocol.CreateBatch)
			staff.POST("/protocols/:id/status", h.Protocol.SetStatus)
		}

		admin := api.Group("/users", handlers.RequireRole(models.RoleAdmin))
		{
			admin.GET("", h.Auth.ListUsers)
			admin.POST("", h.Auth.CreateUser)
			admin.POST("/:id/toggle-status", h.Auth.ToggleUser)
			admin.POST("/:id/reset-password", h.Auth.ResetPassword)
		}
	}

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
