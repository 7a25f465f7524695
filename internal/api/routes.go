package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"nearbot/internal/api/handlers"
	"nearbot/internal/api/middleware"
	"nearbot/internal/logging"
	"nearbot/internal/observability"
)

type Router struct {
	webhookHandler  *handlers.WebhookHandler
	locationHandler *handlers.LocationHandler
	adminHandler    *handlers.AdminHandler
	metrics         *observability.Metrics
	logger          *zap.Logger
	requestTimeout  time.Duration
	adminToken      string
}

func NewRouter(
	webhookHandler *handlers.WebhookHandler,
	locationHandler *handlers.LocationHandler,
	adminHandler *handlers.AdminHandler,
	metrics *observability.Metrics,
	logger *zap.Logger,
	requestTimeout time.Duration,
	adminToken string,
) *Router {
	return &Router{
		webhookHandler:  webhookHandler,
		locationHandler: locationHandler,
		adminHandler:    adminHandler,
		metrics:         metrics,
		logger:          logger,
		requestTimeout:  requestTimeout,
		adminToken:      adminToken,
	}
}

func (r *Router) Setup(engine *gin.Engine) {
	engine.Use(middleware.RequestID(), logging.Middleware(r.logger))

	// Health check endpoint
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if r.metrics != nil {
		engine.GET("/metrics", gin.WrapH(r.metrics.Handler()))
	}

	// LINE webhook. The signature check happens in the handler since it needs
	// the raw body.
	engine.GET("/", r.webhookHandler.Hello)
	hook := engine.Group("/")
	hook.Use(middleware.Timeout(r.requestTimeout))
	{
		hook.POST("/", r.webhookHandler.Callback)
		hook.POST("/callback", r.webhookHandler.Callback)
	}

	// Operator endpoints
	debug := engine.Group("/debug")
	debug.Use(middleware.AdminAuth(r.adminToken), middleware.Timeout(r.requestTimeout))
	{
		debug.GET("/toilets", r.locationHandler.SearchToilets)
		debug.GET("/garbage", r.locationHandler.NearbyGarbage)
	}

	// The import has its own, longer client timeout.
	admin := engine.Group("/admin")
	admin.Use(middleware.AdminAuth(r.adminToken))
	{
		admin.POST("/toilets/import", r.adminHandler.ImportToilets)
	}
}
