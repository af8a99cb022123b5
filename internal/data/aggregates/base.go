package aggregates

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/VAshish07243/Chai-Shots/internal/pkg/dbctx"
	"github.com/VAshish07243/Chai-Shots/internal/pkg/logger"
)

type BaseDeps struct {
	DB     *gorm.DB
	Log    *logger.Logger
	Runner TxRunner
	Hooks  Hooks
}

func (d BaseDeps) withDefaults() BaseDeps {
	if d.Runner == nil {
		d.Runner = NewGormTxRunner(d.DB)
	}
	if d.Hooks == nil {
		d.Hooks = noopHooks{}
	}
	if d.Log == nil {
		d.Log = logger.NewNop()
	}
	return d
}

// errRollback aborts a transaction whose body reached a non-error outcome that
// must not persist, e.g. a denied manual transition after edits were staged.
var errRollback = errors.New("aggregate rollback")

func executeWrite(ctx context.Context, deps BaseDeps, op string, fn func(dbc dbctx.Context) error) error {
	start := time.Now()
	deps = deps.withDefaults()
	op = strings.TrimSpace(op)
	if op == "" {
		op = "aggregate.write"
	}
	err := deps.Runner.InTx(ctx, fn)
	if errors.Is(err, errRollback) {
		deps.Hooks.ObserveOperation(op, "rolled_back", time.Since(start))
		return errRollback
	}
	mapped := MapError(op, err)

	status := "success"
	if mapped != nil {
		status = aggregateErrorStatus(mapped)
		if IsCode(mapped, CodeConflict) {
			deps.Hooks.IncConflict(op)
		}
		if IsCode(mapped, CodeRetryable) {
			deps.Hooks.IncRetry(op)
		}
	}
	deps.Hooks.ObserveOperation(op, status, time.Since(start))
	return mapped
}

func aggregateErrorStatus(err error) string {
	if err == nil {
		return "success"
	}
	code := strings.TrimSpace(string(CodeOf(err)))
	if code == "" {
		code = strings.TrimSpace(string(CodeOf(MapError("aggregate.status", err))))
	}
	if code == "" {
		return "failure"
	}
	return code
}
