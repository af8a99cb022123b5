package aggregates

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	contentrepo "github.com/VAshish07243/Chai-Shots/internal/data/repos/content"
	"github.com/VAshish07243/Chai-Shots/internal/domain/content"
	"github.com/VAshish07243/Chai-Shots/internal/pkg/dbctx"
	"github.com/VAshish07243/Chai-Shots/internal/publication"
)

// Outcome is what a single lesson transition attempt ended as.
type Outcome string

const (
	// OutcomeIdle means no due lesson was available to claim.
	OutcomeIdle Outcome = "idle"
	// OutcomeApplied means the lesson status was written.
	OutcomeApplied Outcome = "applied"
	// OutcomeUnchanged means the lesson already was in the target state.
	OutcomeUnchanged Outcome = "unchanged"
	// OutcomeNotScheduled means the claimed lesson left scheduled before it was re-read.
	OutcomeNotScheduled Outcome = "not_scheduled"
	// OutcomeDenied means the rule engine refused the transition.
	OutcomeDenied Outcome = "denied"
	// OutcomeConflict means the conditional write matched no row.
	OutcomeConflict Outcome = "conflict"
)

type TransitionResult struct {
	LessonID  uuid.UUID
	ProgramID uuid.UUID
	Outcome   Outcome
	Decision  publication.Decision

	From content.LessonStatus
	To   content.LessonStatus
	At   time.Time
	// PublishAt is the lesson's schedule as seen when the decision was made.
	PublishAt *time.Time

	ProgramPublished bool
	// Lesson is the row after commit for manual transitions that wrote or kept it.
	Lesson *content.Lesson
}

type PublishNextDueInput struct {
	Now     time.Time
	Exclude []uuid.UUID
}

type TransitionLessonInput struct {
	LessonID  uuid.UUID
	Target    content.LessonStatus
	PublishAt *time.Time
	Now       time.Time
	// Edit runs under the row lock before the rules are evaluated, so content
	// edits and the status change commit or roll back together.
	Edit func(dbc dbctx.Context, locked *content.Lesson) error
}

// LessonPublicationAggregate is the single write path for lesson status. The
// scheduler and the authoring API both go through it.
type LessonPublicationAggregate interface {
	// PublishNextDue claims one due scheduled lesson, skipping rows held by other
	// claimants, and tries to publish it in its own transaction. The result
	// carries the claimed lesson id even when err is non-nil.
	PublishNextDue(ctx context.Context, in PublishNextDueInput) (TransitionResult, error)
	// Transition applies a manual status change under a blocking row lock.
	Transition(ctx context.Context, in TransitionLessonInput) (TransitionResult, error)
}

type LessonPublicationDeps struct {
	Base BaseDeps

	Lessons  contentrepo.LessonRepo
	Programs contentrepo.ProgramRepo
}

type lessonPublication struct {
	deps LessonPublicationDeps
}

func NewLessonPublicationAggregate(deps LessonPublicationDeps) LessonPublicationAggregate {
	deps.Base = deps.Base.withDefaults()
	return &lessonPublication{deps: deps}
}

func (a *lessonPublication) PublishNextDue(ctx context.Context, in PublishNextDueInput) (TransitionResult, error) {
	const op = "Content.LessonPublication.PublishNextDue"
	now := in.Now.UTC()
	if in.Now.IsZero() {
		now = time.Now().UTC()
	}
	out := TransitionResult{Outcome: OutcomeIdle, To: content.LessonPublished, At: now}
	if a.deps.Lessons == nil || a.deps.Programs == nil {
		return out, NewError(CodeInternal, op, "lesson publication repos not configured", nil)
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		claimed, err := a.deps.Lessons.ClaimNextDue(dbc, now, in.Exclude)
		if err != nil {
			return err
		}
		if claimed == nil {
			return nil
		}
		out.LessonID = claimed.ID
		out.PublishAt = claimed.PublishAt

		current, err := a.deps.Lessons.GetWithRelations(dbc, claimed.ID)
		if err != nil {
			return err
		}
		if current == nil || current.Status != content.LessonScheduled {
			out.Outcome = OutcomeNotScheduled
			return nil
		}
		out.From = current.Status
		out.PublishAt = current.PublishAt

		res, err := a.apply(dbc, current, publication.Request{Target: content.LessonPublished, Now: now}, content.LessonScheduled)
		if err != nil {
			return err
		}
		res.PublishAt = out.PublishAt
		out = res
		return nil
	})
	return out, err
}

func (a *lessonPublication) Transition(ctx context.Context, in TransitionLessonInput) (TransitionResult, error) {
	const op = "Content.LessonPublication.Transition"
	now := in.Now.UTC()
	if in.Now.IsZero() {
		now = time.Now().UTC()
	}
	out := TransitionResult{LessonID: in.LessonID, To: in.Target, At: now}
	if in.LessonID == uuid.Nil {
		return out, NewError(CodeValidation, op, "missing lesson_id", nil)
	}
	if a.deps.Lessons == nil || a.deps.Programs == nil {
		return out, NewError(CodeInternal, op, "lesson publication repos not configured", nil)
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		locked, err := a.deps.Lessons.LockByID(dbc, in.LessonID)
		if err != nil {
			return err
		}
		if locked == nil {
			return NewError(CodeNotFound, op, fmt.Sprintf("lesson not found: %s", in.LessonID), nil)
		}
		if in.Edit != nil {
			if err := in.Edit(dbc, locked); err != nil {
				return err
			}
		}

		current, err := a.deps.Lessons.GetWithRelations(dbc, in.LessonID)
		if err != nil {
			return err
		}
		if current == nil {
			return NewError(CodeNotFound, op, fmt.Sprintf("lesson not found: %s", in.LessonID), nil)
		}

		res, err := a.apply(dbc, current, publication.Request{Target: in.Target, PublishAt: in.PublishAt, Now: now}, current.Status)
		if err != nil {
			return err
		}
		out = res
		switch res.Outcome {
		case OutcomeDenied, OutcomeConflict:
			return errRollback
		}
		out.Lesson, err = a.deps.Lessons.GetWithRelations(dbc, in.LessonID)
		return err
	})
	if errors.Is(err, errRollback) {
		out.Lesson = nil
		return out, nil
	}
	return out, err
}

// apply runs the shared decision, the guarded lesson write and the program
// cascade inside the caller's transaction.
func (a *lessonPublication) apply(dbc dbctx.Context, l *content.Lesson, req publication.Request, expected content.LessonStatus) (TransitionResult, error) {
	out := TransitionResult{LessonID: l.ID, From: l.Status, To: req.Target, At: req.Now, PublishAt: l.PublishAt}
	if l.Term == nil || l.Term.Program == nil {
		return out, InvariantError(fmt.Sprintf("lesson %s has no owning term/program", l.ID))
	}
	out.ProgramID = l.Term.Program.ID

	d := publication.Evaluate(publication.SnapshotOf(l), req)
	out.Decision = d
	switch {
	case !d.Allowed:
		out.Outcome = OutcomeDenied
		return out, nil
	case d.Unchanged:
		out.Outcome = OutcomeUnchanged
		return out, nil
	}

	updates := map[string]interface{}{
		"status":     req.Target,
		"updated_at": req.Now,
	}
	switch req.Target {
	case content.LessonPublished:
		updates["published_at"] = publishedAtOnce(req.Now)
	case content.LessonScheduled:
		updates["publish_at"] = req.PublishAt.UTC()
		out.PublishAt = req.PublishAt
	}
	ok, err := a.deps.Lessons.UpdateStatusIf(dbc, l.ID, expected, updates)
	if err != nil {
		return out, err
	}
	if !ok {
		out.Outcome = OutcomeConflict
		return out, nil
	}
	out.Outcome = OutcomeApplied

	if publication.ProgramNeedsPublish(req.Target, l.Term.Program.Status) {
		published, err := a.deps.Programs.PublishIfNotPublished(dbc, out.ProgramID, req.Now)
		if err != nil {
			return out, err
		}
		out.ProgramPublished = published
	}
	return out, nil
}

// publishedAtOnce keeps the first publish instant if the lesson was published before.
func publishedAtOnce(at time.Time) interface{} {
	return gorm.Expr("COALESCE(published_at, ?)", at)
}
