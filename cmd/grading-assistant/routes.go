package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/grading-assistant/internal/handler"
	"github.com/noah-isme/grading-assistant/internal/middleware"
	"github.com/noah-isme/grading-assistant/internal/service"
	"github.com/noah-isme/grading-assistant/pkg/config"
	"github.com/noah-isme/grading-assistant/pkg/logger"
	corsmiddleware "github.com/noah-isme/grading-assistant/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/grading-assistant/pkg/middleware/requestid"
)

type routeHandlers struct {
	config  *handler.ConfigHandler
	catalog *handler.CatalogHandler
	session *handler.SessionHandler
	state   *handler.StateHandler
	history *handler.HistoryHandler
	metrics *handler.MetricsHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, metrics *service.MetricsService, h routeHandlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics, "/metrics", "/health", "/ready", "/docs"))

	r.GET("/health", h.metrics.Health)
	r.GET("/ready", h.metrics.Ready)
	r.GET("/metrics", h.metrics.Prometheus)
	r.GET("/metrics/summary", h.metrics.Summary)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.WithResponseMeta())

	api.GET("/config", h.config.Get)
	api.POST("/config", h.config.Update)

	api.GET("/assignments", h.catalog.Assignments)
	api.GET("/assignment-details", h.catalog.AssignmentDetails)
	api.GET("/submissions", h.catalog.Submissions)
	api.GET("/submissions/:userId/file/:fileId", h.catalog.Attachment)
	api.POST("/submissions/sync", h.catalog.Sync)

	sessions := api.Group("/session")
	sessions.GET("", h.session.State)
	sessions.POST("/load", h.session.Load)
	sessions.GET("/stats", h.session.Stats)
	sessions.POST("/flush", h.session.Flush)
	sessions.GET("/export", h.session.Export)
	sessions.DELETE("/drafts", h.session.ClearAll)
	sessions.DELETE("/drafts/:userId", h.session.ClearOne)
	sessions.PUT("/drafts/:userId/grade", h.session.SetGrade)
	sessions.PUT("/drafts/:userId/comment", h.session.SetComment)
	sessions.PUT("/drafts/:userId/status", h.session.SetStatus)
	sessions.PUT("/drafts/:userId/rubric/:criterionId", h.session.SetRubricComment)
	sessions.POST("/drafts/:userId/copy-to-group", h.session.CopyToGroup)

	api.GET("/state/:key", h.state.Get)
	api.PUT("/state/:key", h.state.Put)

	api.GET("/history", h.history.List)

	return r
}
