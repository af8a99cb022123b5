package app

import (
	"gorm.io/gorm"

	"github.com/VAshish07243/Chai-Shots/internal/data/aggregates"
	"github.com/VAshish07243/Chai-Shots/internal/data/cache"
	"github.com/VAshish07243/Chai-Shots/internal/pkg/logger"
	"github.com/VAshish07243/Chai-Shots/internal/services"
)

type Services struct {
	Auth        services.AuthService
	User        services.UserService
	Topic       services.TopicService
	Program     services.ProgramService
	Term        services.TermService
	Lesson      services.LessonService
	Catalog     services.CatalogService
	Publication aggregates.LessonPublicationAggregate
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, events services.EventPublisher, catalogCache cache.CatalogCache) Services {
	log.Info("Wiring services...")
	runner := aggregates.NewGormTxRunner(db)
	publication := aggregates.NewLessonPublicationAggregate(aggregates.LessonPublicationDeps{
		Base:     aggregates.BaseDeps{DB: db, Log: log, Runner: runner},
		Lessons:  repos.Lesson,
		Programs: repos.Program,
	})
	return Services{
		Auth:        services.NewAuthService(log, repos.User, cfg.JWTSecret, cfg.JWTTTL),
		User:        services.NewUserService(log, repos.User),
		Topic:       services.NewTopicService(log, repos.Topic),
		Program:     services.NewProgramService(log, runner, repos.Program, repos.Asset, events),
		Term:        services.NewTermService(log, repos.Program, repos.Term),
		Lesson:      services.NewLessonService(log, runner, repos.Lesson, repos.Term, repos.Asset, publication, events),
		Catalog:     services.NewCatalogService(log, repos.Program, repos.Lesson, catalogCache),
		Publication: publication,
	}
}
