package aggregates_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/VAshish07243/Chai-Shots/internal/data/aggregates"
	aggtest "github.com/VAshish07243/Chai-Shots/internal/data/aggregates/testutil"
	contentrepo "github.com/VAshish07243/Chai-Shots/internal/data/repos/content"
	"github.com/VAshish07243/Chai-Shots/internal/data/repos/testutil"
	"github.com/VAshish07243/Chai-Shots/internal/domain/content"
	"github.com/VAshish07243/Chai-Shots/internal/pkg/dbctx"
	"github.com/VAshish07243/Chai-Shots/internal/publication"
)

type fixture struct {
	db       *gorm.DB
	lessons  contentrepo.LessonRepo
	programs contentrepo.ProgramRepo
	hooks    *aggtest.HooksRecorder
	agg      aggregates.LessonPublicationAggregate
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.SQLite(t)
	log := testutil.Logger(t)
	f := &fixture{
		db:       db,
		lessons:  contentrepo.NewLessonRepo(db, log),
		programs: contentrepo.NewProgramRepo(db, log),
		hooks:    &aggtest.HooksRecorder{},
	}
	f.agg = f.build(nil, f.lessons)
	return f
}

func (f *fixture) build(runner aggregates.TxRunner, lessons contentrepo.LessonRepo) aggregates.LessonPublicationAggregate {
	return aggregates.NewLessonPublicationAggregate(aggregates.LessonPublicationDeps{
		Base:     aggregates.BaseDeps{DB: f.db, Runner: runner, Hooks: f.hooks},
		Lessons:  lessons,
		Programs: f.programs,
	})
}

var cycleStart = time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

func at(d time.Duration) *time.Time {
	v := cycleStart.Add(d)
	return &v
}

func TestPublishNextDueTeluguScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := testutil.SeedProgram(t, ctx, f.db, content.ProgramDraft)
	term := testutil.SeedTerm(t, ctx, f.db, p.ID, 1)
	l := testutil.SeedLesson(t, ctx, f.db, term.ID, 1, content.LessonScheduled, at(-time.Minute))
	testutil.SeedPublishableThumbnails(t, ctx, f.db, l.ID)

	res, err := f.agg.PublishNextDue(ctx, aggregates.PublishNextDueInput{Now: cycleStart})
	require.NoError(t, err)
	require.Equal(t, aggregates.OutcomeApplied, res.Outcome)
	require.Equal(t, l.ID, res.LessonID)
	require.Equal(t, p.ID, res.ProgramID)
	require.True(t, res.ProgramPublished)

	gotLesson := testutil.ReloadLesson(t, ctx, f.db, l.ID)
	require.Equal(t, content.LessonPublished, gotLesson.Status)
	require.NotNil(t, gotLesson.PublishedAt)
	require.True(t, gotLesson.PublishedAt.Equal(cycleStart))

	gotProgram := testutil.ReloadProgram(t, ctx, f.db, p.ID)
	require.Equal(t, content.ProgramPublished, gotProgram.Status)
	require.NotNil(t, gotProgram.PublishedAt)
	require.True(t, gotProgram.PublishedAt.Equal(cycleStart))
}

func TestPublishNextDueIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := testutil.SeedProgram(t, ctx, f.db, content.ProgramDraft)
	term := testutil.SeedTerm(t, ctx, f.db, p.ID, 1)
	first := testutil.SeedLesson(t, ctx, f.db, term.ID, 1, content.LessonScheduled, at(-time.Hour))
	testutil.SeedPublishableThumbnails(t, ctx, f.db, first.ID)

	res, err := f.agg.PublishNextDue(ctx, aggregates.PublishNextDueInput{Now: cycleStart})
	require.NoError(t, err)
	require.Equal(t, aggregates.OutcomeApplied, res.Outcome)

	again, err := f.agg.PublishNextDue(ctx, aggregates.PublishNextDueInput{Now: cycleStart.Add(time.Minute)})
	require.NoError(t, err)
	require.Equal(t, aggregates.OutcomeIdle, again.Outcome)
	require.True(t, testutil.ReloadLesson(t, ctx, f.db, first.ID).PublishedAt.Equal(cycleStart))

	// A later lesson publishing does not touch the program's publishedAt.
	second := testutil.SeedLesson(t, ctx, f.db, term.ID, 2, content.LessonScheduled, at(0))
	testutil.SeedPublishableThumbnails(t, ctx, f.db, second.ID)
	later := cycleStart.Add(time.Hour)
	res, err = f.agg.PublishNextDue(ctx, aggregates.PublishNextDueInput{Now: later})
	require.NoError(t, err)
	require.Equal(t, second.ID, res.LessonID)
	require.Equal(t, aggregates.OutcomeApplied, res.Outcome)
	require.False(t, res.ProgramPublished)
	require.True(t, testutil.ReloadProgram(t, ctx, f.db, p.ID).PublishedAt.Equal(cycleStart))
}

func TestPublishNextDueDefersUntilAssetsExist(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := testutil.SeedProgram(t, ctx, f.db, content.ProgramDraft)
	term := testutil.SeedTerm(t, ctx, f.db, p.ID, 1)
	l := testutil.SeedLesson(t, ctx, f.db, term.ID, 1, content.LessonScheduled, at(-time.Minute))
	testutil.SeedThumbnail(t, ctx, f.db, l.ID, "Telugu", content.VariantPortrait)

	res, err := f.agg.PublishNextDue(ctx, aggregates.PublishNextDueInput{Now: cycleStart})
	require.NoError(t, err)
	require.Equal(t, aggregates.OutcomeDenied, res.Outcome)
	require.Equal(t, publication.ReasonMissingRequiredAssets, res.Decision.Reason)
	require.Equal(t, []content.AssetVariant{content.VariantLandscape}, res.Decision.Missing)
	require.Equal(t, content.LessonScheduled, testutil.ReloadLesson(t, ctx, f.db, l.ID).Status)
	require.Equal(t, content.ProgramDraft, testutil.ReloadProgram(t, ctx, f.db, p.ID).Status)

	testutil.SeedThumbnail(t, ctx, f.db, l.ID, "Telugu", content.VariantLandscape)
	res, err = f.agg.PublishNextDue(ctx, aggregates.PublishNextDueInput{Now: cycleStart.Add(time.Minute)})
	require.NoError(t, err)
	require.Equal(t, aggregates.OutcomeApplied, res.Outcome)
	require.Equal(t, content.LessonPublished, testutil.ReloadLesson(t, ctx, f.db, l.ID).Status)
}

func TestPublishNextDueIncludesExactInstant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := testutil.SeedProgram(t, ctx, f.db, content.ProgramPublished)
	term := testutil.SeedTerm(t, ctx, f.db, p.ID, 1)
	l := testutil.SeedLesson(t, ctx, f.db, term.ID, 1, content.LessonScheduled, at(0))
	testutil.SeedPublishableThumbnails(t, ctx, f.db, l.ID)

	res, err := f.agg.PublishNextDue(ctx, aggregates.PublishNextDueInput{Now: cycleStart})
	require.NoError(t, err)
	require.Equal(t, l.ID, res.LessonID)
	require.Equal(t, aggregates.OutcomeApplied, res.Outcome)
	require.False(t, res.ProgramPublished, "program was already published")
}

// racingLessons changes the row inside the claimant's transaction right before
// the guarded write, as a concurrent editor committing in between would.
type racingLessons struct {
	contentrepo.LessonRepo
}

func (r racingLessons) UpdateStatusIf(dbc dbctx.Context, id uuid.UUID, expected content.LessonStatus, updates map[string]interface{}) (bool, error) {
	if err := dbc.Tx.Model(&content.Lesson{}).Where("id = ?", id).Update("status", content.LessonArchived).Error; err != nil {
		return false, err
	}
	return r.LessonRepo.UpdateStatusIf(dbc, id, expected, updates)
}

func TestPublishNextDueConditionalWriteConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := testutil.SeedProgram(t, ctx, f.db, content.ProgramDraft)
	term := testutil.SeedTerm(t, ctx, f.db, p.ID, 1)
	l := testutil.SeedLesson(t, ctx, f.db, term.ID, 1, content.LessonScheduled, at(-time.Minute))
	testutil.SeedPublishableThumbnails(t, ctx, f.db, l.ID)

	agg := f.build(nil, racingLessons{LessonRepo: f.lessons})
	res, err := agg.PublishNextDue(ctx, aggregates.PublishNextDueInput{Now: cycleStart})
	require.NoError(t, err)
	require.Equal(t, aggregates.OutcomeConflict, res.Outcome)
	require.False(t, res.ProgramPublished)
	require.Equal(t, content.ProgramDraft, testutil.ReloadProgram(t, ctx, f.db, p.ID).Status, "no cascade on conflict")
}

// staleClaim hands out the claimed row after another actor already moved it on.
type staleClaim struct {
	contentrepo.LessonRepo
}

func (r staleClaim) ClaimNextDue(dbc dbctx.Context, now time.Time, exclude []uuid.UUID) (*content.Lesson, error) {
	row, err := r.LessonRepo.ClaimNextDue(dbc, now, exclude)
	if err != nil || row == nil {
		return row, err
	}
	if err := dbc.Tx.Model(&content.Lesson{}).Where("id = ?", row.ID).Update("status", content.LessonDraft).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func TestPublishNextDueRechecksStatusAfterClaim(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := testutil.SeedProgram(t, ctx, f.db, content.ProgramDraft)
	term := testutil.SeedTerm(t, ctx, f.db, p.ID, 1)
	l := testutil.SeedLesson(t, ctx, f.db, term.ID, 1, content.LessonScheduled, at(-time.Minute))
	testutil.SeedPublishableThumbnails(t, ctx, f.db, l.ID)

	res, err := f.build(nil, staleClaim{LessonRepo: f.lessons}).PublishNextDue(ctx, aggregates.PublishNextDueInput{Now: cycleStart})
	require.NoError(t, err)
	require.Equal(t, l.ID, res.LessonID)
	require.Equal(t, aggregates.OutcomeNotScheduled, res.Outcome)
}

func TestPublishNextDueCommitFailureLeavesNoPartialEffect(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := testutil.SeedProgram(t, ctx, f.db, content.ProgramDraft)
	term := testutil.SeedTerm(t, ctx, f.db, p.ID, 1)
	l := testutil.SeedLesson(t, ctx, f.db, term.ID, 1, content.LessonScheduled, at(-time.Minute))
	testutil.SeedPublishableThumbnails(t, ctx, f.db, l.ID)

	runner := &aggtest.InjectedTxRunner{DB: f.db, FailCommit: errors.New("commit lost")}
	res, err := f.build(runner, f.lessons).PublishNextDue(ctx, aggregates.PublishNextDueInput{Now: cycleStart})
	require.Error(t, err)
	require.Equal(t, l.ID, res.LessonID)
	require.Equal(t, 1, runner.RollbackCalls)

	require.Equal(t, content.LessonScheduled, testutil.ReloadLesson(t, ctx, f.db, l.ID).Status)
	gotProgram := testutil.ReloadProgram(t, ctx, f.db, p.ID)
	require.Equal(t, content.ProgramDraft, gotProgram.Status)
	require.Nil(t, gotProgram.PublishedAt)
}

func TestPublishNextDueOrphanLesson(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	orphan := testutil.SeedLesson(t, ctx, f.db, uuid.New(), 1, content.LessonScheduled, at(-time.Hour))
	testutil.SeedPublishableThumbnails(t, ctx, f.db, orphan.ID)

	res, err := f.agg.PublishNextDue(ctx, aggregates.PublishNextDueInput{Now: cycleStart})
	require.Error(t, err)
	require.True(t, aggregates.IsCode(err, aggregates.CodeInvariantViolation))
	require.Equal(t, orphan.ID, res.LessonID)

	// Skipping the orphan lets the rest of the batch proceed.
	p := testutil.SeedProgram(t, ctx, f.db, content.ProgramDraft)
	term := testutil.SeedTerm(t, ctx, f.db, p.ID, 1)
	l := testutil.SeedLesson(t, ctx, f.db, term.ID, 1, content.LessonScheduled, at(-time.Minute))
	testutil.SeedPublishableThumbnails(t, ctx, f.db, l.ID)

	res, err = f.agg.PublishNextDue(ctx, aggregates.PublishNextDueInput{Now: cycleStart, Exclude: []uuid.UUID{orphan.ID}})
	require.NoError(t, err)
	require.Equal(t, l.ID, res.LessonID)
	require.Equal(t, aggregates.OutcomeApplied, res.Outcome)
}

func TestPublishNextDueConcurrentClaimants(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := testutil.SeedProgram(t, ctx, f.db, content.ProgramDraft)
	term := testutil.SeedTerm(t, ctx, f.db, p.ID, 1)
	l := testutil.SeedLesson(t, ctx, f.db, term.ID, 1, content.LessonScheduled, at(-time.Minute))
	testutil.SeedPublishableThumbnails(t, ctx, f.db, l.ID)

	start := make(chan struct{})
	results := make(chan aggregates.TransitionResult, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			res, err := f.agg.PublishNextDue(ctx, aggregates.PublishNextDueInput{Now: cycleStart})
			if err != nil {
				t.Errorf("PublishNextDue: %v", err)
			}
			results <- res
		}()
	}
	close(start)
	wg.Wait()
	close(results)

	applied, cascades := 0, 0
	for res := range results {
		if res.Outcome == aggregates.OutcomeApplied {
			applied++
		}
		if res.ProgramPublished {
			cascades++
		}
	}
	require.Equal(t, 1, applied)
	require.Equal(t, 1, cascades)
}

func TestTransitionManualPublish(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := testutil.SeedProgram(t, ctx, f.db, content.ProgramDraft)
	term := testutil.SeedTerm(t, ctx, f.db, p.ID, 1)
	l := testutil.SeedLesson(t, ctx, f.db, term.ID, 1, content.LessonDraft, nil)
	testutil.SeedThumbnail(t, ctx, f.db, l.ID, "Telugu", content.VariantPortrait)

	edit := func(dbc dbctx.Context, locked *content.Lesson) error {
		return f.lessons.UpdateFields(dbc, locked.ID, map[string]interface{}{"title": "Renamed"})
	}
	res, err := f.agg.Transition(ctx, aggregates.TransitionLessonInput{LessonID: l.ID, Target: content.LessonPublished, Now: cycleStart, Edit: edit})
	require.NoError(t, err)
	require.Equal(t, aggregates.OutcomeDenied, res.Outcome)
	require.Equal(t, publication.ReasonMissingRequiredAssets, res.Decision.Reason)
	require.Nil(t, res.Lesson)
	got := testutil.ReloadLesson(t, ctx, f.db, l.ID)
	require.Equal(t, "Introduction to Telugu", got.Title, "denied transition rolls back staged edits")
	require.Equal(t, content.LessonDraft, got.Status)

	testutil.SeedThumbnail(t, ctx, f.db, l.ID, "Telugu", content.VariantLandscape)
	res, err = f.agg.Transition(ctx, aggregates.TransitionLessonInput{LessonID: l.ID, Target: content.LessonPublished, Now: cycleStart, Edit: edit})
	require.NoError(t, err)
	require.Equal(t, aggregates.OutcomeApplied, res.Outcome)
	require.True(t, res.ProgramPublished)
	require.NotNil(t, res.Lesson)
	require.Equal(t, "Renamed", res.Lesson.Title)
	require.Equal(t, content.LessonPublished, res.Lesson.Status)

	res, err = f.agg.Transition(ctx, aggregates.TransitionLessonInput{LessonID: l.ID, Target: content.LessonPublished, Now: cycleStart.Add(time.Hour)})
	require.NoError(t, err)
	require.Equal(t, aggregates.OutcomeUnchanged, res.Outcome)
	require.True(t, res.Lesson.PublishedAt.Equal(cycleStart))
}

func TestTransitionScheduleAndArchive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := testutil.SeedProgram(t, ctx, f.db, content.ProgramDraft)
	term := testutil.SeedTerm(t, ctx, f.db, p.ID, 1)
	l := testutil.SeedLesson(t, ctx, f.db, term.ID, 1, content.LessonDraft, nil)

	res, err := f.agg.Transition(ctx, aggregates.TransitionLessonInput{LessonID: l.ID, Target: content.LessonScheduled, PublishAt: at(-time.Second), Now: cycleStart})
	require.NoError(t, err)
	require.Equal(t, aggregates.OutcomeDenied, res.Outcome)
	require.Equal(t, publication.ReasonInvalidScheduleInstant, res.Decision.Reason)

	res, err = f.agg.Transition(ctx, aggregates.TransitionLessonInput{LessonID: l.ID, Target: content.LessonScheduled, PublishAt: at(time.Hour), Now: cycleStart})
	require.NoError(t, err)
	require.Equal(t, aggregates.OutcomeApplied, res.Outcome)
	require.Equal(t, content.LessonScheduled, res.Lesson.Status)
	require.True(t, res.Lesson.PublishAt.Equal(*at(time.Hour)))
	require.False(t, res.ProgramPublished, "scheduling never cascades")

	res, err = f.agg.Transition(ctx, aggregates.TransitionLessonInput{LessonID: l.ID, Target: content.LessonArchived, Now: cycleStart})
	require.NoError(t, err)
	require.Equal(t, aggregates.OutcomeApplied, res.Outcome)
	require.Equal(t, content.LessonArchived, res.Lesson.Status)
	require.Equal(t, content.ProgramDraft, testutil.ReloadProgram(t, ctx, f.db, p.ID).Status)
}

func TestTransitionUnknownLesson(t *testing.T) {
	f := newFixture(t)
	_, err := f.agg.Transition(context.Background(), aggregates.TransitionLessonInput{LessonID: uuid.New(), Target: content.LessonArchived})
	require.True(t, aggregates.IsCode(err, aggregates.CodeNotFound))

	_, err = f.agg.Transition(context.Background(), aggregates.TransitionLessonInput{Target: content.LessonArchived})
	require.True(t, aggregates.IsCode(err, aggregates.CodeValidation))
}

func TestPublishNextDueRepublishesArchivedProgramKeepingFirstInstant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := testutil.SeedProgram(t, ctx, f.db, content.ProgramDraft)
	term := testutil.SeedTerm(t, ctx, f.db, p.ID, 1)
	first := testutil.SeedLesson(t, ctx, f.db, term.ID, 1, content.LessonScheduled, at(-time.Minute))
	testutil.SeedPublishableThumbnails(t, ctx, f.db, first.ID)

	res, err := f.agg.PublishNextDue(ctx, aggregates.PublishNextDueInput{Now: cycleStart})
	require.NoError(t, err)
	require.True(t, res.ProgramPublished)

	require.NoError(t, f.programs.UpdateFields(dbctx.Context{Ctx: ctx}, p.ID, map[string]interface{}{"status": content.ProgramArchived}))

	later := cycleStart.Add(2 * time.Hour)
	second := testutil.SeedLesson(t, ctx, f.db, term.ID, 2, content.LessonScheduled, at(time.Hour))
	testutil.SeedPublishableThumbnails(t, ctx, f.db, second.ID)

	res, err = f.agg.PublishNextDue(ctx, aggregates.PublishNextDueInput{Now: later})
	require.NoError(t, err)
	require.Equal(t, aggregates.OutcomeApplied, res.Outcome)
	require.Equal(t, second.ID, res.LessonID)
	require.True(t, res.ProgramPublished, "archived program is published again by its next lesson")

	got := testutil.ReloadProgram(t, ctx, f.db, p.ID)
	require.Equal(t, content.ProgramPublished, got.Status)
	require.NotNil(t, got.PublishedAt)
	require.True(t, got.PublishedAt.Equal(cycleStart), "publishedAt keeps the first publish instant")
}
