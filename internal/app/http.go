package app

import (
	"github.com/gin-gonic/gin"

	"github.com/VAshish07243/Chai-Shots/internal/http"
	httpH "github.com/VAshish07243/Chai-Shots/internal/http/handlers"
	httpMW "github.com/VAshish07243/Chai-Shots/internal/http/middleware"
)

func (a *App) routerConfig() http.RouterConfig {
	a.Log.Info("Wiring handlers...")
	s := a.Services
	cfg := http.RouterConfig{
		Log:            a.Log,
		CORSOrigins:    a.Cfg.CORSOrigins,
		AuthHandler:    httpH.NewAuthHandler(s.Auth),
		AuthMiddleware: httpMW.NewAuthMiddleware(a.Log, s.Auth),
		UserHandler:    httpH.NewUserHandler(s.User),
		TopicHandler:   httpH.NewTopicHandler(s.Topic),
		ProgramHandler: httpH.NewProgramHandler(s.Program, s.Term),
		LessonHandler:  httpH.NewLessonHandler(s.Lesson),
		CatalogHandler: httpH.NewCatalogHandler(s.Catalog),
		HealthHandler:  httpH.NewHealthHandler(a.Log, a.Store),
	}
	if a.Cfg.Otel.Enabled {
		cfg.ServiceName = a.Cfg.Otel.ServiceName
	}
	return cfg
}

func (a *App) Router() *gin.Engine {
	return http.NewRouter(a.routerConfig())
}

func (a *App) Server() *http.Server {
	return http.NewServer(a.routerConfig())
}
