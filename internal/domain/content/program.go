package content

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Program struct {
	ID                 uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	Title              string                      `gorm:"column:title;not null" json:"title"`
	Description        string                      `gorm:"column:description;type:text" json:"description"`
	LanguagePrimary    string                      `gorm:"column:language_primary;not null;index" json:"languagePrimary"`
	LanguagesAvailable datatypes.JSONSlice[string] `gorm:"column:languages_available;type:jsonb" json:"languagesAvailable"`

	Status      ProgramStatus `gorm:"column:status;not null;default:'draft';index" json:"status"`
	PublishedAt *time.Time    `gorm:"column:published_at;index" json:"publishedAt"`

	Topics []*Topic        `gorm:"many2many:program_topic;joinForeignKey:ProgramID;joinReferences:TopicID" json:"topics,omitempty"`
	Terms  []*Term         `gorm:"foreignKey:ProgramID;references:ID" json:"terms,omitempty"`
	Assets []*ProgramAsset `gorm:"foreignKey:ProgramID;references:ID" json:"assets,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (Program) TableName() string { return "program" }

func (p *Program) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// HasLanguage reports whether lang is one of the program's available languages.
func (p *Program) HasLanguage(lang string) bool {
	return containsLang(p.LanguagesAvailable, lang)
}

func containsLang(langs []string, lang string) bool {
	for _, l := range langs {
		if l == lang {
			return true
		}
	}
	return false
}
