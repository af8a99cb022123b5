package content

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/VAshish07243/Chai-Shots/internal/data/repos/testutil"
	types "github.com/VAshish07243/Chai-Shots/internal/domain/content"
	"github.com/VAshish07243/Chai-Shots/internal/pkg/dbctx"
)

func TestLessonRepoClaimNextDue(t *testing.T) {
	db := testutil.SQLite(t)
	ctx := context.Background()
	repo := NewLessonRepo(db, testutil.Logger(t))

	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	p := testutil.SeedProgram(t, ctx, db, types.ProgramDraft)
	term := testutil.SeedTerm(t, ctx, db, p.ID, 1)

	older := now.Add(-time.Hour)
	exact := now
	future := now.Add(time.Minute)
	a := testutil.SeedLesson(t, ctx, db, term.ID, 1, types.LessonScheduled, &older)
	b := testutil.SeedLesson(t, ctx, db, term.ID, 2, types.LessonScheduled, &exact)
	testutil.SeedLesson(t, ctx, db, term.ID, 3, types.LessonScheduled, &future)
	testutil.SeedLesson(t, ctx, db, term.ID, 4, types.LessonDraft, &older)

	dbc := dbctx.Context{Ctx: ctx}
	got, err := repo.ClaimNextDue(dbc, now, nil)
	if err != nil {
		t.Fatalf("ClaimNextDue: %v", err)
	}
	if got == nil || got.ID != a.ID {
		t.Fatalf("expected oldest due lesson %s, got %+v", a.ID, got)
	}

	got, err = repo.ClaimNextDue(dbc, now, []uuid.UUID{a.ID})
	if err != nil {
		t.Fatalf("ClaimNextDue exclude: %v", err)
	}
	if got == nil || got.ID != b.ID {
		t.Fatalf("publish_at == now must be due, got %+v", got)
	}

	got, err = repo.ClaimNextDue(dbc, now, []uuid.UUID{a.ID, b.ID})
	if err != nil {
		t.Fatalf("ClaimNextDue exhausted: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nothing due, got %s", got.ID)
	}
}

func TestLessonRepoUpdateStatusIf(t *testing.T) {
	db := testutil.SQLite(t)
	ctx := context.Background()
	repo := NewLessonRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx}

	p := testutil.SeedProgram(t, ctx, db, types.ProgramDraft)
	term := testutil.SeedTerm(t, ctx, db, p.ID, 1)
	at := time.Now().UTC().Add(-time.Minute)
	l := testutil.SeedLesson(t, ctx, db, term.ID, 1, types.LessonScheduled, &at)

	ok, err := repo.UpdateStatusIf(dbc, l.ID, types.LessonDraft, map[string]interface{}{"status": types.LessonPublished})
	if err != nil {
		t.Fatalf("UpdateStatusIf wrong expected: %v", err)
	}
	if ok {
		t.Fatalf("conditional write must not apply when status differs")
	}

	ok, err = repo.UpdateStatusIf(dbc, l.ID, types.LessonScheduled, map[string]interface{}{"status": types.LessonPublished})
	if err != nil || !ok {
		t.Fatalf("UpdateStatusIf: ok=%v err=%v", ok, err)
	}
	if got := testutil.ReloadLesson(t, ctx, db, l.ID); got.Status != types.LessonPublished {
		t.Fatalf("status: want published got %s", got.Status)
	}

	ok, err = repo.UpdateStatusIf(dbc, l.ID, types.LessonScheduled, map[string]interface{}{"status": types.LessonPublished})
	if err != nil || ok {
		t.Fatalf("second conditional write must be a no-op: ok=%v err=%v", ok, err)
	}
}

func TestLessonRepoGetWithRelations(t *testing.T) {
	db := testutil.SQLite(t)
	ctx := context.Background()
	repo := NewLessonRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx}

	p := testutil.SeedProgram(t, ctx, db, types.ProgramDraft)
	term := testutil.SeedTerm(t, ctx, db, p.ID, 1)
	l := testutil.SeedLesson(t, ctx, db, term.ID, 1, types.LessonDraft, nil)
	testutil.SeedPublishableThumbnails(t, ctx, db, l.ID)

	got, err := repo.GetWithRelations(dbc, l.ID)
	if err != nil {
		t.Fatalf("GetWithRelations: %v", err)
	}
	if got == nil || got.Term == nil || got.Term.Program == nil || got.Term.Program.ID != p.ID {
		t.Fatalf("expected term and program preloaded, got %+v", got)
	}
	if len(got.Assets) != 2 {
		t.Fatalf("assets: want 2 got %d", len(got.Assets))
	}

	missing, err := repo.GetWithRelations(dbc, uuid.New())
	if err != nil || missing != nil {
		t.Fatalf("missing lesson: got=%v err=%v", missing, err)
	}
}

// Two transactions claiming at once must never receive the same row.
func TestLessonRepoClaimSkipsLockedRowsPostgres(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewLessonRepo(db, testutil.Logger(t))

	p := testutil.SeedProgram(t, ctx, db, types.ProgramDraft)
	term := testutil.SeedTerm(t, ctx, db, p.ID, 1)
	at := time.Now().UTC().Add(-time.Minute)
	l := testutil.SeedLesson(t, ctx, db, term.ID, 1, types.LessonScheduled, &at)
	t.Cleanup(func() {
		db.Where("id = ?", l.ID).Delete(&types.Lesson{})
		db.Where("id = ?", term.ID).Delete(&types.Term{})
		db.Where("id = ?", p.ID).Delete(&types.Program{})
	})

	first := testutil.Tx(t, db)
	claimed, err := repo.ClaimNextDue(dbctx.Context{Ctx: ctx, Tx: first}, time.Now().UTC(), nil)
	if err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if claimed == nil {
		t.Fatalf("first claimant should get a due lesson")
	}

	second := testutil.Tx(t, db)
	other, err := repo.ClaimNextDue(dbctx.Context{Ctx: ctx, Tx: second}, time.Now().UTC(), nil)
	if err != nil {
		t.Fatalf("second claim: %v", err)
	}
	if other != nil && other.ID == claimed.ID {
		t.Fatalf("second claimant received locked lesson %s", other.ID)
	}
}
