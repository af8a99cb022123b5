package realtime

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventLessonPublished     EventType = "lesson.published"
	EventLessonScheduled     EventType = "lesson.scheduled"
	EventLessonArchived      EventType = "lesson.archived"
	EventLessonScheduleStale EventType = "lesson.schedule_stale"
	EventProgramPublished    EventType = "program.published"
	EventProgramUpdated      EventType = "program.updated"
)

// Event is an after-commit notification about catalog content. Consumers use
// it for cache invalidation and alerting; nothing depends on delivery.
type Event struct {
	Type      EventType      `json:"type"`
	LessonID  *uuid.UUID     `json:"lessonId,omitempty"`
	ProgramID *uuid.UUID     `json:"programId,omitempty"`
	At        time.Time      `json:"at"`
	Data      map[string]any `json:"data,omitempty"`
}

func LessonEvent(t EventType, lessonID, programID uuid.UUID, at time.Time) Event {
	e := Event{Type: t, At: at.UTC()}
	if lessonID != uuid.Nil {
		e.LessonID = &lessonID
	}
	if programID != uuid.Nil {
		e.ProgramID = &programID
	}
	return e
}

func ProgramEvent(t EventType, programID uuid.UUID, at time.Time) Event {
	return LessonEvent(t, uuid.Nil, programID, at)
}

// AffectsCatalog reports whether the public catalog may look different after e.
func (e Event) AffectsCatalog() bool {
	switch e.Type {
	case EventLessonPublished, EventLessonArchived, EventProgramPublished, EventProgramUpdated:
		return true
	default:
		return false
	}
}
