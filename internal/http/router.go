package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/VAshish07243/Chai-Shots/internal/domain/user"
	httpH "github.com/VAshish07243/Chai-Shots/internal/http/handlers"
	httpMW "github.com/VAshish07243/Chai-Shots/internal/http/middleware"
	"github.com/VAshish07243/Chai-Shots/internal/pkg/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string

	AuthHandler    *httpH.AuthHandler
	AuthMiddleware *httpMW.AuthMiddleware
	UserHandler    *httpH.UserHandler
	TopicHandler   *httpH.TopicHandler
	ProgramHandler *httpH.ProgramHandler
	LessonHandler  *httpH.LessonHandler
	CatalogHandler *httpH.CatalogHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/health", cfg.HealthHandler.HealthCheck)
	}

	// Public catalog
	if cfg.CatalogHandler != nil {
		catalog := r.Group("/catalog")
		catalog.GET("/programs", cfg.CatalogHandler.ListPrograms)
		catalog.GET("/programs/:id", cfg.CatalogHandler.GetProgram)
		catalog.GET("/lessons/:id", cfg.CatalogHandler.GetLesson)
	}

	api := r.Group("/api")
	if cfg.AuthHandler != nil {
		api.POST("/auth/login", cfg.AuthHandler.Login)
	}
	if cfg.AuthMiddleware == nil {
		return r
	}

	am := cfg.AuthMiddleware
	read := am.RequireRole(user.RoleAdmin, user.RoleEditor, user.RoleViewer)
	write := am.RequireRole(user.RoleAdmin, user.RoleEditor)
	admin := am.RequireRole(user.RoleAdmin)

	protected := api.Group("/")
	protected.Use(am.RequireAuth())

	// Auth (protected)
	if cfg.AuthHandler != nil {
		protected.GET("/auth/me", cfg.AuthHandler.Me)
	}

	cms := protected.Group("/cms")

	// Programs + terms
	if cfg.ProgramHandler != nil {
		cms.GET("/programs", read, cfg.ProgramHandler.List)
		cms.GET("/programs/:id", read, cfg.ProgramHandler.Get)
		cms.POST("/programs", write, cfg.ProgramHandler.Create)
		cms.PUT("/programs/:id", write, cfg.ProgramHandler.Update)
		cms.POST("/programs/:id/assets", write, cfg.ProgramHandler.AddAsset)
		cms.DELETE("/programs/:id/assets/:assetId", write, cfg.ProgramHandler.DeleteAsset)
		cms.POST("/programs/:id/terms", write, cfg.ProgramHandler.CreateTerm)
	}

	// Lessons
	if cfg.LessonHandler != nil {
		cms.GET("/lessons/:id", read, cfg.LessonHandler.Get)
		cms.POST("/terms/:termId/lessons", write, cfg.LessonHandler.Create)
		cms.PUT("/lessons/:id", write, cfg.LessonHandler.Update)
		cms.POST("/lessons/:id/publish", write, cfg.LessonHandler.Publish)
		cms.POST("/lessons/:id/schedule", write, cfg.LessonHandler.Schedule)
		cms.POST("/lessons/:id/archive", write, cfg.LessonHandler.Archive)
		cms.POST("/lessons/:id/assets", write, cfg.LessonHandler.AddAsset)
		cms.DELETE("/lessons/:id/assets/:assetId", write, cfg.LessonHandler.DeleteAsset)
	}

	// Topics
	if cfg.TopicHandler != nil {
		cms.GET("/topics", read, cfg.TopicHandler.List)
		cms.POST("/topics", write, cfg.TopicHandler.Create)
	}

	// Users
	if cfg.UserHandler != nil {
		cms.GET("/users", admin, cfg.UserHandler.List)
	}

	return r
}
