package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/VAshish07243/Chai-Shots/internal/data/aggregates"
	"github.com/VAshish07243/Chai-Shots/internal/observability"
	"github.com/VAshish07243/Chai-Shots/internal/pkg/logger"
	"github.com/VAshish07243/Chai-Shots/internal/realtime"
)

const (
	DefaultInterval   = 60 * time.Second
	DefaultBatchSize  = 100
	DefaultStaleAfter = 24 * time.Hour
)

// Skip reasons reported per cycle.
const (
	SkipNotScheduled          = "not_scheduled"
	SkipMissingRequiredAssets = "missing_required_assets"
	SkipConflict              = "conflict"
	SkipError                 = "error"
)

type Config struct {
	Interval  time.Duration
	BatchSize int
	// StaleAfter is how long past its publish instant a lesson may sit blocked
	// on missing assets before it is reported as stale. Zero disables it.
	StaleAfter time.Duration
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.StaleAfter < 0 {
		c.StaleAfter = 0
	}
	return c
}

// Publisher publishes one due lesson per call.
type Publisher interface {
	PublishNextDue(ctx context.Context, in aggregates.PublishNextDueInput) (aggregates.TransitionResult, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, ev realtime.Event) error
}

type Option func(*Scheduler)

// WithClock replaces time.Now as the cycle clock.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// WithCycleHook registers fn to receive every cycle report.
func WithCycleHook(fn func(Report)) Option {
	return func(s *Scheduler) {
		if fn != nil {
			s.hooks = append(s.hooks, fn)
		}
	}
}

type Scheduler struct {
	cfg    Config
	hooks  []func(Report)
	log    *logger.Logger
	pub    Publisher
	events EventPublisher
	now    func() time.Time
	tracer trace.Tracer

	// cycleMu keeps cycles of one process from overlapping; separate processes
	// rely on row claims instead.
	cycleMu sync.Mutex
}

func New(baseLog *logger.Logger, pub Publisher, events EventPublisher, cfg Config, opts ...Option) *Scheduler {
	if baseLog == nil {
		baseLog = logger.NewNop()
	}
	s := &Scheduler{
		cfg:    cfg.withDefaults(),
		log:    baseLog.With("component", "Scheduler"),
		pub:    pub,
		events: events,
		now:    time.Now,
		tracer: observability.Tracer(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scheduler) Config() Config { return s.cfg }

// Report summarizes one cycle.
type Report struct {
	StartedAt         time.Time
	Found             int
	Published         int
	ProgramsPublished int
	Skipped           map[string]int
	Stale             []uuid.UUID
	// Err is set when the cycle was cut short by a store failure.
	Err      error
	Duration time.Duration
}

func (r Report) SkippedTotal() int {
	n := 0
	for _, v := range r.Skipped {
		n += v
	}
	return n
}

// Run executes a cycle immediately and then once per interval until ctx is
// done. A cycle that is running when ctx ends completes before Run returns.
func (s *Scheduler) Run(ctx context.Context) error {
	s.log.Info("scheduler started", "interval", s.cfg.Interval.String(), "batch_size", s.cfg.BatchSize)
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		s.RunCycle(context.WithoutCancel(ctx))
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// RunCycle publishes every lesson that is due at the cycle's start instant, up
// to the batch size. Per-lesson failures are counted and skipped; only a
// failure to claim ends the cycle early.
func (s *Scheduler) RunCycle(ctx context.Context) Report {
	s.cycleMu.Lock()
	defer s.cycleMu.Unlock()

	start := s.now().UTC()
	rep := Report{StartedAt: start, Skipped: map[string]int{}}
	ctx, span := s.tracer.Start(ctx, "scheduler.cycle", trace.WithAttributes(
		attribute.String("scheduler.now", start.Format(time.RFC3339Nano)),
		attribute.Int("scheduler.batch_size", s.cfg.BatchSize),
	))
	defer span.End()

	var exclude []uuid.UUID
	limited := true
	for i := 0; i < s.cfg.BatchSize; i++ {
		if !s.runItem(ctx, &rep, start, &exclude) {
			limited = false
			break
		}
	}
	rep.Duration = s.now().Sub(start)

	span.SetAttributes(
		attribute.Int("scheduler.found", rep.Found),
		attribute.Int("scheduler.published", rep.Published),
		attribute.Int("scheduler.skipped", rep.SkippedTotal()),
	)
	if rep.Err != nil {
		span.RecordError(rep.Err)
		span.SetStatus(codes.Error, "claim failed")
		s.log.Warn("scheduler cycle aborted; retrying next cycle", "error", rep.Err, "found", rep.Found, "published", rep.Published)
	}
	if limited && rep.Found > 0 {
		s.log.Info("scheduler batch limit reached; remaining due lessons wait for next cycle", "batch_size", s.cfg.BatchSize)
	}
	s.log.Info("scheduler cycle",
		"found", rep.Found,
		"published", rep.Published,
		"programs_published", rep.ProgramsPublished,
		"skipped", rep.SkippedTotal(),
		"skipped_not_scheduled", rep.Skipped[SkipNotScheduled],
		"skipped_missing_required_assets", rep.Skipped[SkipMissingRequiredAssets],
		"skipped_conflict", rep.Skipped[SkipConflict],
		"skipped_error", rep.Skipped[SkipError],
		"stale", len(rep.Stale),
		"duration_ms", rep.Duration.Milliseconds(),
	)
	for _, fn := range s.hooks {
		fn(rep)
	}
	return rep
}

// runItem claims and handles one lesson. It reports false when the cycle
// should stop: nothing is due, the claim failed, or an item panicked before
// its lesson was known.
func (s *Scheduler) runItem(ctx context.Context, rep *Report, start time.Time, exclude *[]uuid.UUID) (more bool) {
	var res aggregates.TransitionResult
	counted := false
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("scheduler item panic",
				"lesson_id", res.LessonID,
				"program_id", res.ProgramID,
				"panic", r,
			)
			rep.Skipped[SkipError]++
			if !counted {
				// The claim itself panicked; claiming again would hit the same row.
				rep.Found++
				rep.Err = fmt.Errorf("scheduler claim panic: %v", r)
				more = false
				return
			}
			more = true
		}
	}()

	var err error
	res, err = s.pub.PublishNextDue(ctx, aggregates.PublishNextDueInput{Now: start, Exclude: *exclude})
	if err != nil && res.LessonID == uuid.Nil {
		rep.Err = err
		return false
	}
	if res.Outcome == aggregates.OutcomeIdle && err == nil {
		return false
	}
	*exclude = append(*exclude, res.LessonID)
	rep.Found++
	counted = true
	if err != nil {
		rep.Skipped[SkipError]++
		s.logItemError(res, err)
		return true
	}
	s.record(ctx, rep, res)
	return true
}

func (s *Scheduler) record(ctx context.Context, rep *Report, res aggregates.TransitionResult) {
	switch res.Outcome {
	case aggregates.OutcomeApplied:
		rep.Published++
		s.log.Debug("lesson published", "lesson_id", res.LessonID, "program_id", res.ProgramID)
		s.emit(ctx, realtime.LessonEvent(realtime.EventLessonPublished, res.LessonID, res.ProgramID, res.At))
		if res.ProgramPublished {
			rep.ProgramsPublished++
			s.log.Info("program published by first lesson", "program_id", res.ProgramID, "lesson_id", res.LessonID)
			s.emit(ctx, realtime.ProgramEvent(realtime.EventProgramPublished, res.ProgramID, res.At))
		}
	case aggregates.OutcomeDenied:
		reason := strings.ToLower(string(res.Decision.Reason))
		rep.Skipped[reason]++
		s.log.Info("lesson skipped", "lesson_id", res.LessonID, "reason", reason, "missing", res.Decision.Missing)
		if s.isStale(rep.StartedAt, res) {
			rep.Stale = append(rep.Stale, res.LessonID)
			s.log.Warn("stale_schedule",
				"lesson_id", res.LessonID,
				"program_id", res.ProgramID,
				"publish_at", res.PublishAt,
				"overdue", rep.StartedAt.Sub(*res.PublishAt).String(),
				"missing", res.Decision.Missing,
			)
			ev := realtime.LessonEvent(realtime.EventLessonScheduleStale, res.LessonID, res.ProgramID, rep.StartedAt)
			ev.Data = map[string]any{"publishAt": res.PublishAt, "missing": res.Decision.Missing}
			s.emit(ctx, ev)
		}
	case aggregates.OutcomeConflict:
		rep.Skipped[SkipConflict]++
		s.log.Debug("lesson changed before write; treated as handled", "lesson_id", res.LessonID)
	default:
		rep.Skipped[SkipNotScheduled]++
		s.log.Debug("lesson no longer scheduled", "lesson_id", res.LessonID, "outcome", res.Outcome)
	}
}

func (s *Scheduler) isStale(now time.Time, res aggregates.TransitionResult) bool {
	if s.cfg.StaleAfter <= 0 || res.PublishAt == nil {
		return false
	}
	return now.Sub(*res.PublishAt) > s.cfg.StaleAfter
}

func (s *Scheduler) logItemError(res aggregates.TransitionResult, err error) {
	if aggregates.IsCode(err, aggregates.CodeInvariantViolation) {
		s.log.Error("lesson data anomaly; skipped", "lesson_id", res.LessonID, "error", err)
		return
	}
	s.log.Warn("lesson publish failed; retrying next cycle", "lesson_id", res.LessonID, "error", err)
}

func (s *Scheduler) emit(ctx context.Context, ev realtime.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.Warn("publication event not delivered", "type", ev.Type, "error", err)
	}
}
