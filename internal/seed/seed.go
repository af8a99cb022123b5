// Package seed loads the embedded demo catalog into the content store.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/VAshish07243/Chai-Shots/internal/data/repos"
	"github.com/VAshish07243/Chai-Shots/internal/domain/content"
	"github.com/VAshish07243/Chai-Shots/internal/domain/user"
	"github.com/VAshish07243/Chai-Shots/internal/pkg/dbctx"
	"github.com/VAshish07243/Chai-Shots/internal/pkg/logger"
	"github.com/VAshish07243/Chai-Shots/internal/publication"
	"github.com/VAshish07243/Chai-Shots/internal/services"
)

//go:embed seed.yaml
var defaultCatalog []byte

type File struct {
	Users    []User    `yaml:"users"`
	Topics   []string  `yaml:"topics"`
	Programs []Program `yaml:"programs"`
}

type User struct {
	Email    string    `yaml:"email"`
	Password string    `yaml:"password"`
	Role     user.Role `yaml:"role"`
}

type Asset struct {
	Language string               `yaml:"language"`
	Variant  content.AssetVariant `yaml:"variant"`
	URL      string               `yaml:"url"`
}

type Program struct {
	Title              string                `yaml:"title"`
	Description        string                `yaml:"description"`
	LanguagePrimary    string                `yaml:"languagePrimary"`
	LanguagesAvailable []string              `yaml:"languagesAvailable"`
	Status             content.ProgramStatus `yaml:"status"`
	Topics             []string              `yaml:"topics"`
	Posters            []Asset               `yaml:"posters"`
	Terms              []Term                `yaml:"terms"`
}

type Term struct {
	TermNumber int      `yaml:"termNumber"`
	Title      string   `yaml:"title"`
	Lessons    []Lesson `yaml:"lessons"`
}

type Lesson struct {
	LessonNumber              int                  `yaml:"lessonNumber"`
	Title                     string               `yaml:"title"`
	ContentType               content.ContentType  `yaml:"contentType"`
	DurationMs                *int64               `yaml:"durationMs"`
	IsPaid                    bool                 `yaml:"isPaid"`
	ContentLanguagePrimary    string               `yaml:"contentLanguagePrimary"`
	ContentLanguagesAvailable []string             `yaml:"contentLanguagesAvailable"`
	ContentURLsByLanguage     map[string]string    `yaml:"contentUrlsByLanguage"`
	SubtitleLanguages         []string             `yaml:"subtitleLanguages"`
	SubtitleURLsByLanguage    map[string]string    `yaml:"subtitleUrlsByLanguage"`
	Status                    content.LessonStatus `yaml:"status"`
	// PublishIn is the delay from seeding time for scheduled lessons, e.g. "2m".
	PublishIn  string  `yaml:"publishIn"`
	Thumbnails []Asset `yaml:"thumbnails"`
}

type Summary struct {
	Users           int
	Topics          int
	Programs        int
	SkippedPrograms int
	Terms           int
	Lessons         int
	Scheduled       int
}

// Default returns the embedded demo catalog.
func Default() (*File, error) {
	return Parse(defaultCatalog)
}

// Parse decodes and validates a seed file.
func Parse(raw []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *File) validate() error {
	for _, u := range f.Users {
		if u.Email == "" || u.Password == "" {
			return fmt.Errorf("seed user %q: email and password are required", u.Email)
		}
		if !u.Role.Valid() {
			return fmt.Errorf("seed user %q: invalid role %q", u.Email, u.Role)
		}
	}
	for _, p := range f.Programs {
		if !contains(p.LanguagesAvailable, p.LanguagePrimary) {
			return fmt.Errorf("program %q: primary language %q not in available languages", p.Title, p.LanguagePrimary)
		}
		if !p.Status.Valid() {
			return fmt.Errorf("program %q: invalid status %q", p.Title, p.Status)
		}
		for _, t := range p.Terms {
			for _, l := range t.Lessons {
				if err := l.validate(); err != nil {
					return fmt.Errorf("program %q term %d lesson %d: %w", p.Title, t.TermNumber, l.LessonNumber, err)
				}
			}
		}
	}
	return nil
}

func (l Lesson) validate() error {
	if !l.ContentType.Valid() {
		return fmt.Errorf("invalid content type %q", l.ContentType)
	}
	if !contains(l.ContentLanguagesAvailable, l.ContentLanguagePrimary) {
		return fmt.Errorf("primary content language %q not in available languages", l.ContentLanguagePrimary)
	}
	if !l.Status.Valid() {
		return fmt.Errorf("invalid status %q", l.Status)
	}
	if l.Status == content.LessonScheduled {
		if _, err := time.ParseDuration(l.PublishIn); err != nil {
			return fmt.Errorf("scheduled lesson needs a publishIn duration: %w", err)
		}
	}
	// Published and scheduled lessons must satisfy the same rules an editor would hit.
	if l.Status == content.LessonPublished || l.Status == content.LessonScheduled {
		now := time.Now()
		var publishAt *time.Time
		if l.Status == content.LessonScheduled {
			d, _ := time.ParseDuration(l.PublishIn)
			at := now.Add(d)
			publishAt = &at
		}
		snap := publication.LessonSnapshot{Status: content.LessonDraft, ContentLanguagePrimary: l.ContentLanguagePrimary}
		for _, a := range l.Thumbnails {
			snap.Assets = append(snap.Assets, publication.AssetRef{Language: a.Language, Variant: a.Variant, AssetType: content.AssetThumbnail})
		}
		if d := publication.Evaluate(snap, publication.Request{Target: l.Status, PublishAt: publishAt, Now: now}); !d.Allowed {
			return fmt.Errorf("lesson cannot be %s: %s %v", l.Status, d.Reason, d.Missing)
		}
	}
	return nil
}

type Seeder struct {
	log   *logger.Logger
	db    *gorm.DB
	repos repos.Set
	now   func() time.Time
}

func NewSeeder(db *gorm.DB, baseLog *logger.Logger) *Seeder {
	return &Seeder{
		log:   baseLog.With("component", "Seeder"),
		db:    db,
		repos: repos.NewSet(db, baseLog),
		now:   time.Now,
	}
}

// Load writes f in a single transaction.
func (s *Seeder) Load(ctx context.Context, f *File) (Summary, error) {
	var sum Summary
	now := s.now().UTC()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}

		for _, u := range f.Users {
			hash, err := services.HashPassword(u.Password)
			if err != nil {
				return err
			}
			if _, err := s.repos.User.UpsertByEmail(ctx, tx, &user.User{
				Email:    services.NormalizeEmail(u.Email),
				Password: hash,
				Role:     u.Role,
			}); err != nil {
				return fmt.Errorf("seed user %s: %w", u.Email, err)
			}
			sum.Users++
		}

		topicIDs := map[string]*content.Topic{}
		for _, name := range f.Topics {
			t, err := s.repos.Topic.Ensure(dbc, name)
			if err != nil {
				return fmt.Errorf("seed topic %s: %w", name, err)
			}
			topicIDs[name] = t
			sum.Topics++
		}

		for _, p := range f.Programs {
			var existing int64
			if err := tx.Model(&content.Program{}).Where("title = ?", p.Title).Count(&existing).Error; err != nil {
				return err
			}
			if existing > 0 {
				s.log.Info("program already seeded, skipping", "title", p.Title)
				sum.SkippedPrograms++
				continue
			}
			if err := s.loadProgram(dbc, p, topicIDs, now, &sum); err != nil {
				return fmt.Errorf("seed program %q: %w", p.Title, err)
			}
			sum.Programs++
		}
		return nil
	})
	if err != nil {
		return Summary{}, err
	}
	s.log.Info("seed complete",
		"users", sum.Users,
		"topics", sum.Topics,
		"programs", sum.Programs,
		"skipped_programs", sum.SkippedPrograms,
		"terms", sum.Terms,
		"lessons", sum.Lessons,
		"scheduled", sum.Scheduled,
	)
	return sum, nil
}

func (s *Seeder) loadProgram(dbc dbctx.Context, p Program, topics map[string]*content.Topic, now time.Time, sum *Summary) error {
	row := &content.Program{
		Title:              p.Title,
		Description:        p.Description,
		LanguagePrimary:    p.LanguagePrimary,
		LanguagesAvailable: datatypes.JSONSlice[string](p.LanguagesAvailable),
		Status:             p.Status,
	}
	if p.Status == content.ProgramPublished {
		row.PublishedAt = &now
	}
	if err := s.repos.Program.Create(dbc, row); err != nil {
		return err
	}

	var ids []uuid.UUID
	for _, name := range p.Topics {
		t, ok := topics[name]
		if !ok {
			var err error
			if t, err = s.repos.Topic.Ensure(dbc, name); err != nil {
				return err
			}
			topics[name] = t
		}
		ids = append(ids, t.ID)
	}
	if err := s.repos.Program.ReplaceTopics(dbc, row.ID, ids); err != nil {
		return err
	}
	for _, a := range p.Posters {
		if err := s.repos.Asset.CreateProgramAsset(dbc, &content.ProgramAsset{
			ProgramID: row.ID, Language: a.Language, Variant: a.Variant, AssetType: content.AssetPoster, URL: a.URL,
		}); err != nil {
			return err
		}
	}

	for _, t := range p.Terms {
		term := &content.Term{ProgramID: row.ID, TermNumber: t.TermNumber, Title: t.Title}
		if err := s.repos.Term.Create(dbc, term); err != nil {
			return err
		}
		sum.Terms++
		for _, l := range t.Lessons {
			if err := s.loadLesson(dbc, term.ID, l, now); err != nil {
				return fmt.Errorf("lesson %d: %w", l.LessonNumber, err)
			}
			sum.Lessons++
			if l.Status == content.LessonScheduled {
				sum.Scheduled++
			}
		}
	}
	return nil
}

func (s *Seeder) loadLesson(dbc dbctx.Context, termID uuid.UUID, l Lesson, now time.Time) error {
	row := &content.Lesson{
		TermID:                    termID,
		LessonNumber:              l.LessonNumber,
		Title:                     l.Title,
		ContentType:               l.ContentType,
		DurationMs:                l.DurationMs,
		IsPaid:                    l.IsPaid,
		ContentLanguagePrimary:    l.ContentLanguagePrimary,
		ContentLanguagesAvailable: orEmpty(l.ContentLanguagesAvailable),
		ContentURLsByLanguage:     toJSONMap(l.ContentURLsByLanguage),
		SubtitleLanguages:         orEmpty(l.SubtitleLanguages),
		SubtitleURLsByLanguage:    toJSONMap(l.SubtitleURLsByLanguage),
		Status:                    l.Status,
	}
	switch l.Status {
	case content.LessonPublished:
		row.PublishedAt = &now
	case content.LessonScheduled:
		d, err := time.ParseDuration(l.PublishIn)
		if err != nil {
			return err
		}
		at := now.Add(d)
		row.PublishAt = &at
	}
	if err := s.repos.Lesson.Create(dbc, row); err != nil {
		return err
	}
	for _, a := range l.Thumbnails {
		if err := s.repos.Asset.CreateLessonAsset(dbc, &content.LessonAsset{
			LessonID: row.ID, Language: a.Language, Variant: a.Variant, AssetType: content.AssetThumbnail, URL: a.URL,
		}); err != nil {
			return err
		}
	}
	return nil
}

func toJSONMap(m map[string]string) datatypes.JSONMap {
	out := datatypes.JSONMap{}
	for k, v := range m {
		out[k] = v
	}
	return out
}

func orEmpty(s []string) datatypes.JSONSlice[string] {
	if s == nil {
		return datatypes.JSONSlice[string]{}
	}
	return datatypes.JSONSlice[string](s)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
