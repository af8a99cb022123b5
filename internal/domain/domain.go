package domain

import (
	"github.com/VAshish07243/Chai-Shots/internal/domain/content"
	"github.com/VAshish07243/Chai-Shots/internal/domain/user"
)

type (
	User         = user.User
	Program      = content.Program
	Term         = content.Term
	Lesson       = content.Lesson
	ProgramAsset = content.ProgramAsset
	LessonAsset  = content.LessonAsset
	Topic        = content.Topic
	ProgramTopic = content.ProgramTopic
)

// Models lists every persisted type in dependency order.
func Models() []any {
	return []any{
		&user.User{},
		&content.Topic{},
		&content.Program{},
		&content.ProgramTopic{},
		&content.ProgramAsset{},
		&content.Term{},
		&content.Lesson{},
		&content.LessonAsset{},
	}
}
