package content

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProgramAsset is a localized poster image owned by a program.
type ProgramAsset struct {
	ID        uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	ProgramID uuid.UUID    `gorm:"type:uuid;not null;index" json:"programId"`
	Program   *Program     `gorm:"constraint:OnDelete:CASCADE;foreignKey:ProgramID;references:ID" json:"-"`
	Language  string       `gorm:"column:language;not null" json:"language"`
	Variant   AssetVariant `gorm:"column:variant;not null" json:"variant"`
	AssetType AssetType    `gorm:"column:asset_type;not null" json:"assetType"`
	URL       string       `gorm:"column:url;not null" json:"url"`
	CreatedAt time.Time    `gorm:"not null" json:"createdAt"`
}

func (ProgramAsset) TableName() string { return "program_asset" }

func (a *ProgramAsset) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// LessonAsset is a localized thumbnail image owned by a lesson.
type LessonAsset struct {
	ID        uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	LessonID  uuid.UUID    `gorm:"type:uuid;not null;index" json:"lessonId"`
	Lesson    *Lesson      `gorm:"constraint:OnDelete:CASCADE;foreignKey:LessonID;references:ID" json:"-"`
	Language  string       `gorm:"column:language;not null" json:"language"`
	Variant   AssetVariant `gorm:"column:variant;not null" json:"variant"`
	AssetType AssetType    `gorm:"column:asset_type;not null" json:"assetType"`
	URL       string       `gorm:"column:url;not null" json:"url"`
	CreatedAt time.Time    `gorm:"not null" json:"createdAt"`
}

func (LessonAsset) TableName() string { return "lesson_asset" }

func (a *LessonAsset) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
