package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-timetable-api/api/swagger"
	"github.com/noah-isme/sma-timetable-api/internal/middleware"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/pkg/config"
	"github.com/noah-isme/sma-timetable-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-timetable-api/pkg/middleware/requestid"
)

func newRouter(cfg *config.Config, app *application, logr *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(app.metrics, "/metrics", "/health", "/ready"))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", app.monitoring.Health)
	r.GET("/ready", app.monitoring.Ready)
	r.GET("/metrics", app.monitoring.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	// Downloads authenticate through the signed token.
	api.GET("/export/:token", app.export.Download)

	secured := api.Group("", middleware.JWT(app.tokens))
	editor := middleware.RequireEditor()

	secured.GET("/metrics/summary", middleware.RequireRoles(models.RoleAdmin), app.monitoring.Summary)

	tutors := secured.Group("/tutors")
	tutors.GET("", app.tutors.List)
	tutors.GET("/:id", app.tutors.Get)
	tutors.POST("", editor, app.tutors.Create)
	tutors.PUT("/:id", editor, app.tutors.Update)
	tutors.DELETE("/:id", editor, app.tutors.Delete)

	courses := secured.Group("/courses")
	courses.GET("", app.courses.List)
	courses.GET("/:id", app.courses.Get)
	courses.POST("", editor, app.courses.Create)
	courses.PUT("/:id", editor, app.courses.Update)
	courses.DELETE("/:id", editor, app.courses.Delete)

	sessions := secured.Group("/sessions")
	sessions.GET("", app.sessions.List)
	sessions.GET("/:id", app.sessions.Get)
	sessions.POST("", editor, app.sessions.Create)
	sessions.PUT("/:id", editor, app.sessions.Update)
	sessions.DELETE("/:id", editor, app.sessions.Delete)

	blockedSlots := secured.Group("/blocked-slots")
	blockedSlots.GET("", app.blocked.ListSlots)
	blockedSlots.GET("/:id", app.blocked.GetSlot)
	blockedSlots.POST("", editor, app.blocked.BlockSlot)
	blockedSlots.DELETE("/:id", editor, app.blocked.UnblockSlot)

	blockedTexts := secured.Group("/blocked-texts")
	blockedTexts.GET("", app.blocked.ListTexts)
	blockedTexts.POST("", editor, app.blocked.AddText)
	blockedTexts.DELETE("/:id", editor, app.blocked.RemoveText)

	secured.GET("/templates", app.templates.List)
	secured.DELETE("/templates/:id", editor, app.templates.Delete)

	workspaces := secured.Group("/workspaces")
	workspaces.GET("", app.workspace.List)
	workspaces.GET("/:id", app.workspace.Get)

	ws := workspaces.Group("", editor)
	ws.POST("", app.workspace.Create)
	ws.DELETE("/:id", app.workspace.Delete)
	ws.POST("/:id/select", app.workspace.Select)
	ws.POST("/:id/clear-selection", app.workspace.ClearSelection)
	ws.POST("/:id/merge", app.workspace.Merge)
	ws.POST("/:id/unmerge", app.workspace.Unmerge)
	ws.POST("/:id/columns", app.workspace.AddColumn)
	ws.DELETE("/:id/columns/:index", app.workspace.DeleteColumn)
	ws.POST("/:id/durations", app.workspace.SetDuration)
	ws.PUT("/:id/timing", app.workspace.SetTiming)
	ws.POST("/:id/edit/begin", app.workspace.BeginEdit)
	ws.POST("/:id/edit/buffer", app.workspace.UpdateBuffer)
	ws.POST("/:id/edit/save", app.workspace.SaveEdit)
	ws.POST("/:id/edit/cancel", app.workspace.CancelEdit)
	ws.POST("/:id/cells", app.workspace.SetCell)
	ws.POST("/:id/format", app.workspace.Format)
	ws.POST("/:id/generate", app.workspace.Generate)
	ws.POST("/:id/templates", app.templates.Save)
	ws.POST("/:id/templates/:templateId/apply", app.templates.Apply)
	workspaces.POST("/:id/export", app.export.Export)

	return r
}
