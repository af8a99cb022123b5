package app

import (
	"gorm.io/gorm"

	"github.com/VAshish07243/Chai-Shots/internal/data/repos"
	"github.com/VAshish07243/Chai-Shots/internal/pkg/logger"
)

type Repos = repos.Set

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return repos.NewSet(db, log)
}
