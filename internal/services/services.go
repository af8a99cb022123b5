package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/VAshish07243/Chai-Shots/internal/data/aggregates"
	"github.com/VAshish07243/Chai-Shots/internal/data/db"
	"github.com/VAshish07243/Chai-Shots/internal/pkg/apierr"
	"github.com/VAshish07243/Chai-Shots/internal/pkg/logger"
	"github.com/VAshish07243/Chai-Shots/internal/realtime"
)

// EventPublisher receives after-commit content events.
type EventPublisher interface {
	Publish(ctx context.Context, ev realtime.Event) error
}

type nopEvents struct{}

func (nopEvents) Publish(context.Context, realtime.Event) error { return nil }

func eventsOrNop(ev EventPublisher) EventPublisher {
	if ev == nil {
		return nopEvents{}
	}
	return ev
}

func emit(ctx context.Context, log *logger.Logger, events EventPublisher, ev realtime.Event) {
	if err := events.Publish(ctx, ev); err != nil {
		log.Warn("content event not delivered", "type", ev.Type, "error", err)
	}
}

// storeError maps repository and aggregate errors onto API errors.
func storeError(err error) error {
	if err == nil {
		return nil
	}
	var ae *apierr.Error
	if errors.As(err, &ae) {
		return ae
	}
	switch aggregates.CodeOf(err) {
	case aggregates.CodeNotFound:
		return apierr.New(http.StatusNotFound, apierr.CodeNotFound, err)
	case aggregates.CodeValidation:
		return apierr.New(http.StatusBadRequest, apierr.CodeValidation, err)
	case aggregates.CodeConflict:
		return apierr.New(http.StatusConflict, apierr.CodeConflict, err)
	}
	if db.IsUniqueViolation(err) {
		return apierr.New(http.StatusConflict, apierr.CodeConflict, fmt.Errorf("already exists: %w", err))
	}
	return apierr.From(err)
}
