// Package repos is the single import point for the content store repositories.
package repos

import (
	"gorm.io/gorm"

	"github.com/VAshish07243/Chai-Shots/internal/data/repos/content"
	"github.com/VAshish07243/Chai-Shots/internal/data/repos/user"
	"github.com/VAshish07243/Chai-Shots/internal/pkg/logger"
)

type UserRepo = user.UserRepo

type TopicRepo = content.TopicRepo
type ProgramRepo = content.ProgramRepo
type TermRepo = content.TermRepo
type LessonRepo = content.LessonRepo
type AssetRepo = content.AssetRepo

type ProgramFilter = content.ProgramFilter
type CatalogPage = content.CatalogPage

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }

func NewTopicRepo(db *gorm.DB, baseLog *logger.Logger) TopicRepo {
	return content.NewTopicRepo(db, baseLog)
}
func NewProgramRepo(db *gorm.DB, baseLog *logger.Logger) ProgramRepo {
	return content.NewProgramRepo(db, baseLog)
}
func NewTermRepo(db *gorm.DB, baseLog *logger.Logger) TermRepo {
	return content.NewTermRepo(db, baseLog)
}
func NewLessonRepo(db *gorm.DB, baseLog *logger.Logger) LessonRepo {
	return content.NewLessonRepo(db, baseLog)
}
func NewAssetRepo(db *gorm.DB, baseLog *logger.Logger) AssetRepo {
	return content.NewAssetRepo(db, baseLog)
}

// Set bundles every repository over one *gorm.DB.
type Set struct {
	User    UserRepo
	Topic   TopicRepo
	Program ProgramRepo
	Term    TermRepo
	Lesson  LessonRepo
	Asset   AssetRepo
}

func NewSet(db *gorm.DB, baseLog *logger.Logger) Set {
	return Set{
		User:    NewUserRepo(db, baseLog),
		Topic:   NewTopicRepo(db, baseLog),
		Program: NewProgramRepo(db, baseLog),
		Term:    NewTermRepo(db, baseLog),
		Lesson:  NewLessonRepo(db, baseLog),
		Asset:   NewAssetRepo(db, baseLog),
	}
}
