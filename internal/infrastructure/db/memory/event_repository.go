package memory

import (
	"context"
	"sync"

	"github.com/yogastudio/booking/internal/core/domain"
)

// EventRepository keeps audit events in insertion order.
type EventRepository struct {
	mu     sync.Mutex
	events []domain.RosterEvent
}

func NewEventRepository() *EventRepository {
	return &EventRepository{}
}

func (r *EventRepository) InsertEvent(_ context.Context, e *domain.RosterEvent) error {
	r.mu.Lock()
	r.events = append(r.events, *e)
	r.mu.Unlock()
	return nil
}

// Events returns a snapshot of the stored events.
func (r *EventRepository) Events() []domain.RosterEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.RosterEvent(nil), r.events...)
}
