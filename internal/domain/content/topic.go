package content

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Topic struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"column:name;not null;uniqueIndex" json:"name"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
}

func (Topic) TableName() string { return "topic" }

func (t *Topic) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// ProgramTopic joins programs to topics.
type ProgramTopic struct {
	ProgramID uuid.UUID `gorm:"type:uuid;primaryKey" json:"programId"`
	TopicID   uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"topicId"`
}

func (ProgramTopic) TableName() string { return "program_topic" }
