package domain

import "time"

// RosterEventKind names a recorded session mutation.
type RosterEventKind string

const (
	EventSessionCreated     RosterEventKind = "session_created"
	EventSessionUpdated     RosterEventKind = "session_updated"
	EventSessionDeleted     RosterEventKind = "session_deleted"
	EventParticipantAdded   RosterEventKind = "participant_added"
	EventParticipantRemoved RosterEventKind = "participant_removed"
)

// RosterEvent is an audit record of a successful session mutation.
type RosterEvent struct {
	SessionID  int64
	UserID     int64 // zero for record-level events
	Kind       RosterEventKind
	ActorID    int64
	OccurredAt time.Time
}
