package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/VAshish07243/Chai-Shots/internal/data/cache"
	contentrepo "github.com/VAshish07243/Chai-Shots/internal/data/repos/content"
	"github.com/VAshish07243/Chai-Shots/internal/domain/content"
	"github.com/VAshish07243/Chai-Shots/internal/pkg/apierr"
	"github.com/VAshish07243/Chai-Shots/internal/pkg/dbctx"
	"github.com/VAshish07243/Chai-Shots/internal/pkg/logger"
	"github.com/VAshish07243/Chai-Shots/internal/realtime"
)

const (
	DefaultCatalogLimit = 20
	MaxCatalogLimit     = 100
)

// LocalizedURLs maps language -> variant -> url.
type LocalizedURLs map[string]map[string]string

type CatalogProgramAssets struct {
	Posters LocalizedURLs `json:"posters"`
}

type CatalogLessonAssets struct {
	Thumbnails LocalizedURLs `json:"thumbnails"`
}

type CatalogProgram struct {
	ID                 uuid.UUID                   `json:"id"`
	Title              string                      `json:"title"`
	Description        string                      `json:"description"`
	LanguagePrimary    string                      `json:"languagePrimary"`
	LanguagesAvailable datatypes.JSONSlice[string] `json:"languagesAvailable"`
	Status             content.ProgramStatus       `json:"status"`
	PublishedAt        *time.Time                  `json:"publishedAt"`
	Topics             []*content.Topic            `json:"topics"`
	Assets             CatalogProgramAssets        `json:"assets"`
	Terms              []CatalogTerm               `json:"terms"`
	CreatedAt          time.Time                   `json:"createdAt"`
	UpdatedAt          time.Time                   `json:"updatedAt"`
}

type CatalogTerm struct {
	ID         uuid.UUID       `json:"id"`
	ProgramID  uuid.UUID       `json:"programId"`
	TermNumber int             `json:"termNumber"`
	Title      string          `json:"title"`
	Lessons    []CatalogLesson `json:"lessons"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

type CatalogLesson struct {
	ID                        uuid.UUID                   `json:"id"`
	TermID                    uuid.UUID                   `json:"termId"`
	LessonNumber              int                         `json:"lessonNumber"`
	Title                     string                      `json:"title"`
	ContentType               content.ContentType         `json:"contentType"`
	DurationMs                *int64                      `json:"durationMs"`
	IsPaid                    bool                        `json:"isPaid"`
	ContentLanguagePrimary    string                      `json:"contentLanguagePrimary"`
	ContentLanguagesAvailable datatypes.JSONSlice[string] `json:"contentLanguagesAvailable"`
	ContentURLsByLanguage     datatypes.JSONMap           `json:"contentUrlsByLanguage"`
	SubtitleLanguages         datatypes.JSONSlice[string] `json:"subtitleLanguages"`
	SubtitleURLsByLanguage    datatypes.JSONMap           `json:"subtitleUrlsByLanguage"`
	Status                    content.LessonStatus        `json:"status"`
	PublishAt                 *time.Time                  `json:"publishAt"`
	PublishedAt               *time.Time                  `json:"publishedAt"`
	Assets                    CatalogLessonAssets         `json:"assets"`
	// Term is only filled on the single-lesson endpoint.
	Term *content.Term `json:"term,omitempty"`
}

type CatalogPage struct {
	Programs   []CatalogProgram `json:"programs"`
	NextCursor *uuid.UUID       `json:"nextCursor"`
}

type CatalogQuery struct {
	Language string
	Topic    string
	Cursor   *uuid.UUID
	Limit    int
}

type CatalogService interface {
	ListPrograms(ctx context.Context, q CatalogQuery) (*CatalogPage, error)
	GetProgram(ctx context.Context, id uuid.UUID) (*CatalogProgram, error)
	GetLesson(ctx context.Context, id uuid.UUID) (*CatalogLesson, error)
	// HandleEvent drops cached responses when ev changes what the catalog shows.
	HandleEvent(ctx context.Context, ev realtime.Event)
}

type catalogService struct {
	log      *logger.Logger
	programs contentrepo.ProgramRepo
	lessons  contentrepo.LessonRepo
	cache    cache.CatalogCache
}

func NewCatalogService(log *logger.Logger, programs contentrepo.ProgramRepo, lessons contentrepo.LessonRepo, c cache.CatalogCache) CatalogService {
	if c == nil {
		c = cache.NewNop()
	}
	return &catalogService{
		log:      log.With("service", "CatalogService"),
		programs: programs,
		lessons:  lessons,
		cache:    c,
	}
}

func ClampCatalogLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultCatalogLimit
	case limit > MaxCatalogLimit:
		return MaxCatalogLimit
	default:
		return limit
	}
}

func (cs *catalogService) ListPrograms(ctx context.Context, q CatalogQuery) (*CatalogPage, error) {
	q.Limit = ClampCatalogLimit(q.Limit)
	cursor := ""
	if q.Cursor != nil {
		cursor = q.Cursor.String()
	}
	key := fmt.Sprintf("programs:lang=%s:topic=%s:after=%s:limit=%d", q.Language, q.Topic, cursor, q.Limit)

	var page CatalogPage
	if cs.cacheGet(ctx, key, &page) {
		return &page, nil
	}

	rows, err := cs.programs.ListCatalog(dbctx.Context{Ctx: ctx}, contentrepo.CatalogPage{
		Language: q.Language,
		Topic:    q.Topic,
		After:    q.Cursor,
		Limit:    q.Limit,
	})
	if errors.Is(err, contentrepo.ErrUnknownCursor) {
		return nil, apierr.Validation("invalid cursor")
	}
	if err != nil {
		return nil, err
	}
	page.Programs = make([]CatalogProgram, 0, len(rows))
	for _, p := range rows {
		page.Programs = append(page.Programs, ShapeProgram(p))
	}
	if len(rows) == q.Limit && len(rows) > 0 {
		last := rows[len(rows)-1].ID
		page.NextCursor = &last
	}
	cs.cacheSet(ctx, key, page)
	return &page, nil
}

func (cs *catalogService) GetProgram(ctx context.Context, id uuid.UUID) (*CatalogProgram, error) {
	key := "program:" + id.String()
	var out CatalogProgram
	if cs.cacheGet(ctx, key, &out) {
		return &out, nil
	}
	p, err := cs.programs.GetCatalog(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apierr.NotFound("program")
	}
	out = ShapeProgram(p)
	cs.cacheSet(ctx, key, out)
	return &out, nil
}

func (cs *catalogService) GetLesson(ctx context.Context, id uuid.UUID) (*CatalogLesson, error) {
	key := "lesson:" + id.String()
	var out CatalogLesson
	if cs.cacheGet(ctx, key, &out) {
		return &out, nil
	}
	l, err := cs.lessons.GetPublished(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, apierr.NotFound("lesson")
	}
	out = ShapeLesson(l)
	out.Term = l.Term
	cs.cacheSet(ctx, key, out)
	return &out, nil
}

func (cs *catalogService) HandleEvent(ctx context.Context, ev realtime.Event) {
	if !ev.AffectsCatalog() {
		return
	}
	if err := cs.cache.Invalidate(ctx); err != nil {
		cs.log.Warn("catalog cache invalidation failed", "event", ev.Type, "error", err)
		return
	}
	cs.log.Debug("catalog cache invalidated", "event", ev.Type)
}

// Cache failures only cost a database read.
func (cs *catalogService) cacheGet(ctx context.Context, key string, dst any) bool {
	hit, err := cs.cache.Get(ctx, key, dst)
	if err != nil {
		cs.log.Warn("catalog cache read failed", "key", key, "error", err)
		return false
	}
	return hit
}

func (cs *catalogService) cacheSet(ctx context.Context, key string, v any) {
	if err := cs.cache.Set(ctx, key, v); err != nil {
		cs.log.Warn("catalog cache write failed", "key", key, "error", err)
	}
}

func ShapeProgram(p *content.Program) CatalogProgram {
	out := CatalogProgram{
		ID:                 p.ID,
		Title:              p.Title,
		Description:        p.Description,
		LanguagePrimary:    p.LanguagePrimary,
		LanguagesAvailable: p.LanguagesAvailable,
		Status:             p.Status,
		PublishedAt:        p.PublishedAt,
		Topics:             p.Topics,
		Assets:             CatalogProgramAssets{Posters: LocalizedURLs{}},
		Terms:              make([]CatalogTerm, 0, len(p.Terms)),
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
	if out.Topics == nil {
		out.Topics = []*content.Topic{}
	}
	for _, a := range p.Assets {
		out.Assets.Posters.set(a.Language, string(a.Variant), a.URL)
	}
	for _, t := range p.Terms {
		ct := CatalogTerm{
			ID:         t.ID,
			ProgramID:  t.ProgramID,
			TermNumber: t.TermNumber,
			Title:      t.Title,
			Lessons:    make([]CatalogLesson, 0, len(t.Lessons)),
			CreatedAt:  t.CreatedAt,
			UpdatedAt:  t.UpdatedAt,
		}
		for _, l := range t.Lessons {
			ct.Lessons = append(ct.Lessons, ShapeLesson(l))
		}
		out.Terms = append(out.Terms, ct)
	}
	return out
}

func ShapeLesson(l *content.Lesson) CatalogLesson {
	out := CatalogLesson{
		ID:                        l.ID,
		TermID:                    l.TermID,
		LessonNumber:              l.LessonNumber,
		Title:                     l.Title,
		ContentType:               l.ContentType,
		DurationMs:                l.DurationMs,
		IsPaid:                    l.IsPaid,
		ContentLanguagePrimary:    l.ContentLanguagePrimary,
		ContentLanguagesAvailable: l.ContentLanguagesAvailable,
		ContentURLsByLanguage:     l.ContentURLsByLanguage,
		SubtitleLanguages:         l.SubtitleLanguages,
		SubtitleURLsByLanguage:    l.SubtitleURLsByLanguage,
		Status:                    l.Status,
		PublishAt:                 l.PublishAt,
		PublishedAt:               l.PublishedAt,
		Assets:                    CatalogLessonAssets{Thumbnails: LocalizedURLs{}},
	}
	for _, a := range l.Assets {
		out.Assets.Thumbnails.set(a.Language, string(a.Variant), a.URL)
	}
	return out
}

// set keeps the last url per language and variant.
func (m LocalizedURLs) set(lang, variant, url string) {
	byVariant, ok := m[lang]
	if !ok {
		byVariant = map[string]string{}
		m[lang] = byVariant
	}
	byVariant[variant] = url
}
