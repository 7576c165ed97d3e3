package memory

import (
	"context"
	"testing"

	"github.com/yogastudio/booking/internal/core/domain"
)

func TestEventRepository_SnapshotIsIndependent(t *testing.T) {
	r := NewEventRepository()
	_ = r.InsertEvent(context.Background(), &domain.RosterEvent{SessionID: 1, Kind: domain.EventSessionCreated})
	_ = r.InsertEvent(context.Background(), &domain.RosterEvent{SessionID: 1, UserID: 2, Kind: domain.EventParticipantAdded})

	snap := r.Events()
	if len(snap) != 2 || snap[1].Kind != domain.EventParticipantAdded {
		t.Fatalf("unexpected events: %+v", snap)
	}

	snap[0].Kind = domain.EventSessionDeleted
	if r.Events()[0].Kind != domain.EventSessionCreated {
		t.Fatal("snapshot shares storage with the repository")
	}
}
