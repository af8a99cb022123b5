package content

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Lesson struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	TermID       uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_lesson_term_number" json:"termId"`
	Term         *Term       `gorm:"constraint:OnDelete:CASCADE;foreignKey:TermID;references:ID" json:"term,omitempty"`
	LessonNumber int         `gorm:"column:lesson_number;not null;uniqueIndex:idx_lesson_term_number" json:"lessonNumber"`
	Title        string      `gorm:"column:title;not null" json:"title"`
	ContentType  ContentType `gorm:"column:content_type;not null" json:"contentType"`
	DurationMs   *int64      `gorm:"column:duration_ms" json:"durationMs"`
	IsPaid       bool        `gorm:"column:is_paid;not null;default:false" json:"isPaid"`

	ContentLanguagePrimary    string                      `gorm:"column:content_language_primary;not null" json:"contentLanguagePrimary"`
	ContentLanguagesAvailable datatypes.JSONSlice[string] `gorm:"column:content_languages_available;type:jsonb" json:"contentLanguagesAvailable"`
	ContentURLsByLanguage     datatypes.JSONMap           `gorm:"column:content_urls_by_language;type:jsonb" json:"contentUrlsByLanguage"`
	SubtitleLanguages         datatypes.JSONSlice[string] `gorm:"column:subtitle_languages;type:jsonb" json:"subtitleLanguages"`
	SubtitleURLsByLanguage    datatypes.JSONMap           `gorm:"column:subtitle_urls_by_language;type:jsonb" json:"subtitleUrlsByLanguage"`

	// PublishAt is required while Status is scheduled. PublishedAt is written once, on first publish.
	Status      LessonStatus `gorm:"column:status;not null;default:'draft';index" json:"status"`
	PublishAt   *time.Time   `gorm:"column:publish_at" json:"publishAt"`
	PublishedAt *time.Time   `gorm:"column:published_at" json:"publishedAt"`

	Assets []*LessonAsset `gorm:"foreignKey:LessonID;references:ID" json:"assets,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (Lesson) TableName() string { return "lesson" }

func (l *Lesson) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

func (l *Lesson) HasLanguage(lang string) bool {
	return containsLang(l.ContentLanguagesAvailable, lang)
}
