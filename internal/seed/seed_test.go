package seed

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/VAshish07243/Chai-Shots/internal/data/repos/testutil"
	"github.com/VAshish07243/Chai-Shots/internal/domain/content"
	"github.com/VAshish07243/Chai-Shots/internal/domain/user"
)

func TestDefaultCatalogIsValid(t *testing.T) {
	f, err := Default()
	require.NoError(t, err)
	require.Len(t, f.Users, 3)
	require.Len(t, f.Programs, 2)
}

func TestParseRejectsPublishedLessonWithoutThumbnails(t *testing.T) {
	raw := `
programs:
  - title: Broken
    languagePrimary: te
    languagesAvailable: [te]
    status: draft
    terms:
      - termNumber: 1
        lessons:
          - lessonNumber: 1
            title: No art
            contentType: video
            contentLanguagePrimary: te
            contentLanguagesAvailable: [te]
            status: published
            thumbnails:
              - { language: te, variant: portrait, url: "https://x/p.png" }
`
	_, err := Parse([]byte(raw))
	require.Error(t, err)
	require.Contains(t, err.Error(), "MISSING_REQUIRED_ASSETS")
	require.Contains(t, err.Error(), "landscape")
}

func TestParseRejectsScheduledLessonWithoutDelay(t *testing.T) {
	raw := `
programs:
  - title: Later
    languagePrimary: te
    languagesAvailable: [te]
    status: draft
    terms:
      - termNumber: 1
        lessons:
          - lessonNumber: 1
            title: Soon
            contentType: article
            contentLanguagePrimary: te
            contentLanguagesAvailable: [te]
            status: scheduled
`
	_, err := Parse([]byte(raw))
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "publishIn"), err.Error())
}

func TestParseRejectsUnknownRole(t *testing.T) {
	_, err := Parse([]byte("users:\n  - {email: a@b.c, password: x, role: owner}\n"))
	require.Error(t, err)
}

func TestLoadDefaultCatalog(t *testing.T) {
	ctx := context.Background()
	db := testutil.SQLite(t)
	f, err := Default()
	require.NoError(t, err)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewSeeder(db, testutil.Logger(t))
	s.now = func() time.Time { return now }

	sum, err := s.Load(ctx, f)
	require.NoError(t, err)
	require.Equal(t, 2, sum.Programs)
	require.Equal(t, 1, sum.Scheduled)

	var users []*user.User
	require.NoError(t, db.Order("email").Find(&users).Error)
	require.Len(t, users, 3)
	require.Equal(t, "admin@example.com", users[0].Email)
	require.NotEqual(t, "admin123", users[0].Password)

	var scheduled []*content.Lesson
	require.NoError(t, db.Where("status = ?", content.LessonScheduled).Find(&scheduled).Error)
	require.Len(t, scheduled, 1)
	require.NotNil(t, scheduled[0].PublishAt)
	require.True(t, scheduled[0].PublishAt.After(now))
	require.Nil(t, scheduled[0].PublishedAt)

	var published int64
	require.NoError(t, db.Model(&content.Lesson{}).Where("status = ? AND published_at IS NOT NULL", content.LessonPublished).Count(&published).Error)
	require.Equal(t, int64(sum.Lessons-sum.Scheduled), published)

	var programs []*content.Program
	require.NoError(t, db.Preload("Topics").Preload("Assets").Order("title").Find(&programs).Error)
	require.Len(t, programs, 2)
	require.NotEmpty(t, programs[0].Topics)
	require.NotEmpty(t, programs[0].Assets)
}

func TestLoadIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := testutil.SQLite(t)
	f, err := Default()
	require.NoError(t, err)
	s := NewSeeder(db, testutil.Logger(t))

	_, err = s.Load(ctx, f)
	require.NoError(t, err)
	sum, err := s.Load(ctx, f)
	require.NoError(t, err)
	require.Equal(t, 0, sum.Programs)
	require.Equal(t, 2, sum.SkippedPrograms)

	var n int64
	require.NoError(t, db.Model(&content.Program{}).Count(&n).Error)
	require.Equal(t, int64(2), n)
	require.NoError(t, db.Model(&user.User{}).Count(&n).Error)
	require.Equal(t, int64(3), n)
	require.NoError(t, db.Model(&content.Topic{}).Count(&n).Error)
	require.Equal(t, int64(3), n)
}
