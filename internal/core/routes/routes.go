package routes

import (
	"os"

	"itinventory/internal/core/config"
	"itinventory/internal/core/container"
	"itinventory/internal/middleware"
	"itinventory/pkg/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter builds the engine with the shared middleware chain and every route
// group registered.
func NewRouter(cfg *config.Config, c *container.Container, logger *zap.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.RequestIDMiddleware(),
		middleware.RequestLoggerMiddleware(logger),
		middleware.TimeoutMiddleware(cfg.RequestTimeout),
	)
	if cfg.Metrics.Enabled {
		router.Use(middleware.MetricsMiddleware())
	}

	RegisterUtilityRoutes(router, cfg, c, logger)
	RegisterPublicRoutes(router, c)
	RegisterProtectedRoutes(router, c)

	return router
}

func RegisterPublicRoutes(router *gin.Engine, container *container.Container) {
	container.LoginHandler.RegisterRoutes(router)
}

func RegisterProtectedRoutes(router *gin.Engine, container *container.Container) {
	protectedRoutes := router.Group("")
	protectedRoutes.Use(security.JWTMiddleware())

	container.AssetHandler.RegisterRoutes(protectedRoutes)
	container.PurchaseOrderHandler.RegisterRoutes(protectedRoutes)
	container.VendorHandler.RegisterRoutes(protectedRoutes)
	container.CatalogHandler.RegisterRoutes(protectedRoutes)
	container.SoftwareHandler.RegisterRoutes(protectedRoutes)
	container.TagsHandler.RegisterRoutes(protectedRoutes)
	container.HistoryHandler.RegisterRoutes(protectedRoutes)
	container.AuditLogHandler.RegisterRoutes(protectedRoutes)
	container.UserHandler.RegisterRoutes(protectedRoutes)
	container.ReportsHandler.RegisterRoutes(protectedRoutes)
}

func RegisterUtilityRoutes(router *gin.Engine, cfg *config.Config, container *container.Container, logger *zap.Logger) {
	router.GET("/health", middleware.HealthCheckMiddleware(container.DB))

	if cfg.Metrics.Enabled {
		router.GET(cfg.Metrics.Path, middleware.MetricsHandler())
	}

	openapiFilePath := "./docs/index.html"
	if _, err := os.Stat(openapiFilePath); err == nil {
		router.GET("/openapi.html", func(c *gin.Context) {
			c.File(openapiFilePath)
		})
		logger.Info("Route registered", zap.String("path", "/openapi.html"))
	} else {
		logger.Debug("OpenAPI document not found, route not registered", zap.String("file", openapiFilePath))
	}
}
