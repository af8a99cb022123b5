package content

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Term struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProgramID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_term_program_number" json:"programId"`
	Program    *Program  `gorm:"constraint:OnDelete:CASCADE;foreignKey:ProgramID;references:ID" json:"program,omitempty"`
	TermNumber int       `gorm:"column:term_number;not null;uniqueIndex:idx_term_program_number" json:"termNumber"`
	Title      string    `gorm:"column:title" json:"title"`

	Lessons []*Lesson `gorm:"foreignKey:TermID;references:ID" json:"lessons,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (Term) TableName() string { return "term" }

func (t *Term) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
