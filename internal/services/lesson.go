package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/VAshish07243/Chai-Shots/internal/data/aggregates"
	contentrepo "github.com/VAshish07243/Chai-Shots/internal/data/repos/content"
	"github.com/VAshish07243/Chai-Shots/internal/domain/content"
	"github.com/VAshish07243/Chai-Shots/internal/pkg/apierr"
	"github.com/VAshish07243/Chai-Shots/internal/pkg/dbctx"
	"github.com/VAshish07243/Chai-Shots/internal/pkg/logger"
	"github.com/VAshish07243/Chai-Shots/internal/publication"
	"github.com/VAshish07243/Chai-Shots/internal/realtime"
)

type CreateLessonInput struct {
	LessonNumber              int                 `json:"lessonNumber" binding:"required,min=1"`
	Title                     string              `json:"title" binding:"required"`
	ContentType               content.ContentType `json:"contentType" binding:"required"`
	DurationMs                *int64              `json:"durationMs"`
	IsPaid                    bool                `json:"isPaid"`
	ContentLanguagePrimary    string              `json:"contentLanguagePrimary" binding:"required"`
	ContentLanguagesAvailable []string            `json:"contentLanguagesAvailable" binding:"required"`
	ContentURLsByLanguage     map[string]any      `json:"contentUrlsByLanguage"`
	SubtitleLanguages         []string            `json:"subtitleLanguages"`
	SubtitleURLsByLanguage    map[string]any      `json:"subtitleUrlsByLanguage"`
}

// UpdateLessonInput changes only the fields that are set. A status, or a
// publishAt on a scheduled lesson, goes through the publication rules in the
// same transaction as the content edits.
type UpdateLessonInput struct {
	Title                     *string               `json:"title"`
	ContentType               *content.ContentType  `json:"contentType"`
	DurationMs                *int64                `json:"durationMs"`
	IsPaid                    *bool                 `json:"isPaid"`
	ContentLanguagePrimary    *string               `json:"contentLanguagePrimary"`
	ContentLanguagesAvailable []string              `json:"contentLanguagesAvailable"`
	ContentURLsByLanguage     map[string]any        `json:"contentUrlsByLanguage"`
	SubtitleLanguages         []string              `json:"subtitleLanguages"`
	SubtitleURLsByLanguage    map[string]any        `json:"subtitleUrlsByLanguage"`
	Status                    *content.LessonStatus `json:"status"`
	PublishAt                 *time.Time            `json:"publishAt"`
}

type LessonService interface {
	Get(ctx context.Context, id uuid.UUID) (*content.Lesson, error)
	Create(ctx context.Context, termID uuid.UUID, in CreateLessonInput) (*content.Lesson, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateLessonInput) (*content.Lesson, error)
	Publish(ctx context.Context, id uuid.UUID) (*content.Lesson, error)
	Schedule(ctx context.Context, id uuid.UUID, publishAt *time.Time) (*content.Lesson, error)
	Archive(ctx context.Context, id uuid.UUID) (*content.Lesson, error)
	AddAsset(ctx context.Context, lessonID uuid.UUID, in AssetInput) (*content.LessonAsset, error)
	DeleteAsset(ctx context.Context, lessonID, assetID uuid.UUID) error
}

type lessonService struct {
	log         *logger.Logger
	runner      aggregates.TxRunner
	lessons     contentrepo.LessonRepo
	terms       contentrepo.TermRepo
	assets      contentrepo.AssetRepo
	publication aggregates.LessonPublicationAggregate
	events      EventPublisher
	now         func() time.Time
}

func NewLessonService(
	log *logger.Logger,
	runner aggregates.TxRunner,
	lessons contentrepo.LessonRepo,
	terms contentrepo.TermRepo,
	assets contentrepo.AssetRepo,
	publication aggregates.LessonPublicationAggregate,
	events EventPublisher,
) LessonService {
	return &lessonService{
		log:         log.With("service", "LessonService"),
		runner:      runner,
		lessons:     lessons,
		terms:       terms,
		assets:      assets,
		publication: publication,
		events:      eventsOrNop(events),
		now:         time.Now,
	}
}

func (ls *lessonService) Get(ctx context.Context, id uuid.UUID) (*content.Lesson, error) {
	l, err := ls.lessons.GetWithRelations(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, apierr.NotFound("lesson")
	}
	return l, nil
}

func (ls *lessonService) Create(ctx context.Context, termID uuid.UUID, in CreateLessonInput) (*content.Lesson, error) {
	if err := validateLanguages(in.ContentLanguagePrimary, in.ContentLanguagesAvailable, "Primary content language must be in available languages"); err != nil {
		return nil, err
	}
	if !in.ContentType.Valid() {
		return nil, apierr.Validation("unknown contentType %q", in.ContentType)
	}
	dbc := dbctx.Context{Ctx: ctx}
	term, err := ls.terms.GetByID(dbc, termID)
	if err != nil {
		return nil, err
	}
	if term == nil {
		return nil, apierr.NotFound("term")
	}
	row := &content.Lesson{
		TermID:                    termID,
		LessonNumber:              in.LessonNumber,
		Title:                     in.Title,
		ContentType:               in.ContentType,
		DurationMs:                in.DurationMs,
		IsPaid:                    in.IsPaid,
		ContentLanguagePrimary:    in.ContentLanguagePrimary,
		ContentLanguagesAvailable: in.ContentLanguagesAvailable,
		ContentURLsByLanguage:     orEmptyMap(in.ContentURLsByLanguage),
		SubtitleLanguages:         orEmptySlice(in.SubtitleLanguages),
		SubtitleURLsByLanguage:    orEmptyMap(in.SubtitleURLsByLanguage),
		Status:                    content.LessonDraft,
	}
	if err := ls.lessons.Create(dbc, row); err != nil {
		return nil, storeError(err)
	}
	return row, nil
}

func (ls *lessonService) Update(ctx context.Context, id uuid.UUID, in UpdateLessonInput) (*content.Lesson, error) {
	if in.ContentType != nil && !in.ContentType.Valid() {
		return nil, apierr.Validation("unknown contentType %q", *in.ContentType)
	}
	if in.Status != nil && !in.Status.Valid() {
		return nil, apierr.Validation("unknown lesson status %q", *in.Status)
	}
	if in.Status != nil && *in.Status == content.LessonScheduled && in.PublishAt == nil {
		return nil, apierr.Validation("publishAt is required for scheduled status")
	}

	target := in.Status
	if target == nil && in.PublishAt != nil {
		current, err := ls.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if current.Status != content.LessonScheduled {
			return nil, apierr.Validation("publishAt can only be set together with status %q", content.LessonScheduled)
		}
		scheduled := content.LessonScheduled
		target = &scheduled
	}

	edit := func(dbc dbctx.Context, locked *content.Lesson) error {
		updates, err := lessonUpdates(locked, in)
		if err != nil {
			return err
		}
		if len(updates) == 0 {
			return nil
		}
		return ls.lessons.UpdateFields(dbc, locked.ID, updates)
	}

	if target == nil {
		var out *content.Lesson
		err := ls.withLock(ctx, id, func(dbc dbctx.Context, locked *content.Lesson) error {
			if err := edit(dbc, locked); err != nil {
				return err
			}
			var err error
			out, err = ls.lessons.GetWithRelations(dbc, id)
			return err
		})
		if err != nil {
			return nil, storeError(err)
		}
		ls.notifyEdited(ctx, out)
		return out, nil
	}
	return ls.transition(ctx, aggregates.TransitionLessonInput{
		LessonID:  id,
		Target:    *target,
		PublishAt: in.PublishAt,
		Edit:      edit,
	})
}

// withLock runs a plain content edit under the lesson row lock.
func (ls *lessonService) withLock(ctx context.Context, id uuid.UUID, fn func(dbc dbctx.Context, locked *content.Lesson) error) error {
	return ls.runner.InTx(ctx, func(dbc dbctx.Context) error {
		locked, err := ls.lessons.LockByID(dbc, id)
		if err != nil {
			return err
		}
		if locked == nil {
			return apierr.NotFound("lesson")
		}
		return fn(dbc, locked)
	})
}

func (ls *lessonService) Publish(ctx context.Context, id uuid.UUID) (*content.Lesson, error) {
	return ls.transition(ctx, aggregates.TransitionLessonInput{LessonID: id, Target: content.LessonPublished})
}

func (ls *lessonService) Schedule(ctx context.Context, id uuid.UUID, publishAt *time.Time) (*content.Lesson, error) {
	if publishAt == nil || publishAt.IsZero() {
		return nil, apierr.Validation("publishAt is required")
	}
	return ls.transition(ctx, aggregates.TransitionLessonInput{LessonID: id, Target: content.LessonScheduled, PublishAt: publishAt})
}

func (ls *lessonService) Archive(ctx context.Context, id uuid.UUID) (*content.Lesson, error) {
	return ls.transition(ctx, aggregates.TransitionLessonInput{LessonID: id, Target: content.LessonArchived})
}

func (ls *lessonService) transition(ctx context.Context, in aggregates.TransitionLessonInput) (*content.Lesson, error) {
	if in.Now.IsZero() {
		in.Now = ls.now()
	}
	res, err := ls.publication.Transition(ctx, in)
	if err != nil {
		return nil, storeError(err)
	}
	if err := decisionError(res); err != nil {
		return nil, err
	}
	if res.Outcome == aggregates.OutcomeApplied {
		ls.notifyTransition(ctx, res)
	} else {
		ls.notifyEdited(ctx, res.Lesson)
	}
	return res.Lesson, nil
}

// decisionError turns a refused or lost transition into the API error the
// caller sees.
func decisionError(res aggregates.TransitionResult) error {
	switch res.Outcome {
	case aggregates.OutcomeDenied:
		return denialError(res.Decision)
	case aggregates.OutcomeConflict:
		return apierr.New(http.StatusConflict, apierr.CodeConflict, errors.New("lesson changed concurrently; retry"))
	}
	return nil
}

func denialError(d publication.Decision) *apierr.Error {
	var msg string
	switch d.Reason {
	case publication.ReasonMissingRequiredAssets:
		msg = "Published lessons must have portrait and landscape thumbnails for primary language"
		if len(d.Missing) > 0 {
			msg = fmt.Sprintf("%s (missing: %v)", msg, d.Missing)
		}
	case publication.ReasonInvalidScheduleInstant:
		msg = "publishAt must be now or in the future"
	default:
		msg = "status transition not allowed"
	}
	return apierr.New(http.StatusBadRequest, string(d.Reason), errors.New(msg))
}

func (ls *lessonService) notifyTransition(ctx context.Context, res aggregates.TransitionResult) {
	var t realtime.EventType
	switch res.To {
	case content.LessonPublished:
		t = realtime.EventLessonPublished
	case content.LessonScheduled:
		t = realtime.EventLessonScheduled
	case content.LessonArchived:
		t = realtime.EventLessonArchived
	default:
		t = realtime.EventProgramUpdated
	}
	ls.log.Info("lesson status changed", "lesson_id", res.LessonID, "from", res.From, "to", res.To)
	emit(ctx, ls.log, ls.events, realtime.LessonEvent(t, res.LessonID, res.ProgramID, res.At))
	if res.ProgramPublished {
		ls.log.Info("program published by first lesson", "program_id", res.ProgramID, "lesson_id", res.LessonID)
		emit(ctx, ls.log, ls.events, realtime.ProgramEvent(realtime.EventProgramPublished, res.ProgramID, res.At))
	}
}

func (ls *lessonService) notifyEdited(ctx context.Context, l *content.Lesson) {
	if l == nil || l.Status != content.LessonPublished || l.Term == nil {
		return
	}
	emit(ctx, ls.log, ls.events, realtime.ProgramEvent(realtime.EventProgramUpdated, l.Term.ProgramID, ls.now()))
}

func (ls *lessonService) AddAsset(ctx context.Context, lessonID uuid.UUID, in AssetInput) (*content.LessonAsset, error) {
	if err := validateAsset(&in, content.AssetThumbnail); err != nil {
		return nil, err
	}
	l, err := ls.Get(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	row := &content.LessonAsset{
		LessonID:  lessonID,
		Language:  in.Language,
		Variant:   in.Variant,
		AssetType: in.AssetType,
		URL:       in.URL,
	}
	if err := ls.assets.CreateLessonAsset(dbctx.Context{Ctx: ctx}, row); err != nil {
		return nil, storeError(err)
	}
	ls.notifyEdited(ctx, l)
	return row, nil
}

func (ls *lessonService) DeleteAsset(ctx context.Context, lessonID, assetID uuid.UUID) error {
	ok, err := ls.assets.DeleteLessonAsset(dbctx.Context{Ctx: ctx}, lessonID, assetID)
	if err != nil {
		return err
	}
	if !ok {
		return apierr.NotFound("asset")
	}
	if l, err := ls.lessons.GetWithRelations(dbctx.Context{Ctx: ctx}, lessonID); err == nil {
		ls.notifyEdited(ctx, l)
	}
	return nil
}

func lessonUpdates(current *content.Lesson, in UpdateLessonInput) (map[string]interface{}, error) {
	updates := map[string]interface{}{}
	primary := current.ContentLanguagePrimary
	if in.ContentLanguagePrimary != nil {
		primary = *in.ContentLanguagePrimary
		updates["content_language_primary"] = primary
	}
	available := []string(current.ContentLanguagesAvailable)
	if in.ContentLanguagesAvailable != nil {
		available = in.ContentLanguagesAvailable
		updates["content_languages_available"] = datatypes.JSONSlice[string](available)
	}
	if in.ContentLanguagePrimary != nil || in.ContentLanguagesAvailable != nil {
		if err := validateLanguages(primary, available, "Primary content language must be in available languages"); err != nil {
			return nil, err
		}
	}
	if in.Title != nil {
		updates["title"] = *in.Title
	}
	if in.ContentType != nil {
		updates["content_type"] = *in.ContentType
	}
	if in.DurationMs != nil {
		updates["duration_ms"] = *in.DurationMs
	}
	if in.IsPaid != nil {
		updates["is_paid"] = *in.IsPaid
	}
	if in.ContentURLsByLanguage != nil {
		updates["content_urls_by_language"] = datatypes.JSONMap(in.ContentURLsByLanguage)
	}
	if in.SubtitleLanguages != nil {
		updates["subtitle_languages"] = datatypes.JSONSlice[string](in.SubtitleLanguages)
	}
	if in.SubtitleURLsByLanguage != nil {
		updates["subtitle_urls_by_language"] = datatypes.JSONMap(in.SubtitleURLsByLanguage)
	}
	return updates, nil
}

func orEmptyMap(m map[string]any) datatypes.JSONMap {
	if m == nil {
		return datatypes.JSONMap{}
	}
	return datatypes.JSONMap(m)
}

func orEmptySlice(s []string) datatypes.JSONSlice[string] {
	if s == nil {
		return datatypes.JSONSlice[string]{}
	}
	return datatypes.JSONSlice[string](s)
}
