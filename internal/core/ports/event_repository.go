package ports

import (
	"context"

	"github.com/yogastudio/booking/internal/core/domain"
)

// EventRepository persists roster audit events.
type EventRepository interface {
	InsertEvent(ctx context.Context, event *domain.RosterEvent) error
}

// EventRecorder accepts audit events for asynchronous persistence.
// Record must not block the caller.
type EventRecorder interface {
	Record(event domain.RosterEvent)
}
