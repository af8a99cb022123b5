package aggregates

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"invariant", InvariantError("orphan"), CodeInvariantViolation},
		{"conflict", ConflictError("stale"), CodeConflict},
		{"not found", gorm.ErrRecordNotFound, CodeNotFound},
		{"unique", &pgconn.PgError{Code: "23505"}, CodeConflict},
		{"connection", &pgconn.PgError{Code: "08006"}, CodeRetryable},
		{"other", errors.New("boom"), CodeInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CodeOf(MapError("op", tc.err)); got != tc.want {
				t.Fatalf("code: want=%s got=%s", tc.want, got)
			}
		})
	}
	if MapError("op", nil) != nil {
		t.Fatalf("nil must map to nil")
	}
}

func TestMapErrorPassthroughAggregateError(t *testing.T) {
	in := NewError(CodeRetryable, "op", "retry", errors.New("boom"))
	if out := MapError("other", in); out != in {
		t.Fatalf("expected passthrough aggregate error")
	}
}
