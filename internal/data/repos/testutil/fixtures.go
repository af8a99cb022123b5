package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/VAshish07243/Chai-Shots/internal/domain/content"
)

func SeedProgram(tb testing.TB, ctx context.Context, tx *gorm.DB, status content.ProgramStatus) *content.Program {
	tb.Helper()
	p := &content.Program{
		ID:                 uuid.New(),
		Title:              "Telugu Language Learning",
		LanguagePrimary:    "Telugu",
		LanguagesAvailable: []string{"Telugu", "English"},
		Status:             status,
	}
	if status == content.ProgramPublished {
		at := time.Now().UTC().Add(-time.Hour).Truncate(time.Second)
		p.PublishedAt = &at
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed program: %v", err)
	}
	return p
}

func SeedTerm(tb testing.TB, ctx context.Context, tx *gorm.DB, programID uuid.UUID, number int) *content.Term {
	tb.Helper()
	t := &content.Term{ID: uuid.New(), ProgramID: programID, TermNumber: number, Title: "Basics"}
	if err := tx.WithContext(ctx).Create(t).Error; err != nil {
		tb.Fatalf("seed term: %v", err)
	}
	return t
}

// SeedLesson creates a lesson with Telugu as its primary language. A non-nil
// publishAt is stored in UTC.
func SeedLesson(tb testing.TB, ctx context.Context, tx *gorm.DB, termID uuid.UUID, number int, status content.LessonStatus, publishAt *time.Time) *content.Lesson {
	tb.Helper()
	l := &content.Lesson{
		ID:                        uuid.New(),
		TermID:                    termID,
		LessonNumber:              number,
		Title:                     "Introduction to Telugu",
		ContentType:               content.ContentVideo,
		ContentLanguagePrimary:    "Telugu",
		ContentLanguagesAvailable: []string{"Telugu"},
		ContentURLsByLanguage:     map[string]interface{}{"Telugu": "https://example.com/video/telugu/intro.mp4"},
		Status:                    status,
	}
	if publishAt != nil {
		at := publishAt.UTC()
		l.PublishAt = &at
	}
	if status == content.LessonPublished {
		at := time.Now().UTC().Truncate(time.Second)
		l.PublishedAt = &at
	}
	if err := tx.WithContext(ctx).Create(l).Error; err != nil {
		tb.Fatalf("seed lesson: %v", err)
	}
	return l
}

func SeedThumbnail(tb testing.TB, ctx context.Context, tx *gorm.DB, lessonID uuid.UUID, lang string, v content.AssetVariant) *content.LessonAsset {
	tb.Helper()
	a := &content.LessonAsset{
		ID:        uuid.New(),
		LessonID:  lessonID,
		Language:  lang,
		Variant:   v,
		AssetType: content.AssetThumbnail,
		URL:       "https://example.com/thumb/" + string(v) + ".png",
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed thumbnail: %v", err)
	}
	return a
}

// SeedPublishableThumbnails gives the lesson both required primary-language thumbnails.
func SeedPublishableThumbnails(tb testing.TB, ctx context.Context, tx *gorm.DB, lessonID uuid.UUID) {
	tb.Helper()
	SeedThumbnail(tb, ctx, tx, lessonID, "Telugu", content.VariantPortrait)
	SeedThumbnail(tb, ctx, tx, lessonID, "Telugu", content.VariantLandscape)
}

func SeedTopic(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *content.Topic {
	tb.Helper()
	tp := &content.Topic{ID: uuid.New(), Name: name}
	if err := tx.WithContext(ctx).Create(tp).Error; err != nil {
		tb.Fatalf("seed topic: %v", err)
	}
	return tp
}

func ReloadLesson(tb testing.TB, ctx context.Context, tx *gorm.DB, id uuid.UUID) *content.Lesson {
	tb.Helper()
	var l content.Lesson
	if err := tx.WithContext(ctx).Where("id = ?", id).First(&l).Error; err != nil {
		tb.Fatalf("reload lesson: %v", err)
	}
	return &l
}

func ReloadProgram(tb testing.TB, ctx context.Context, tx *gorm.DB, id uuid.UUID) *content.Program {
	tb.Helper()
	var p content.Program
	if err := tx.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		tb.Fatalf("reload program: %v", err)
	}
	return &p
}
