package domain

import (
	"slices"
	"time"
)

// Roster is the set of user ids participating in a session.
// The zero value is an empty roster ready to use.
type Roster struct {
	ids map[int64]struct{}
}

// NewRoster builds a roster from ids, collapsing duplicates.
func NewRoster(ids ...int64) Roster {
	r := Roster{ids: make(map[int64]struct{}, len(ids))}
	for _, id := range ids {
		r.ids[id] = struct{}{}
	}
	return r
}

// Add inserts userID. It returns ErrAlreadyParticipating when the id is
// already present and leaves the roster unchanged.
func (r *Roster) Add(userID int64) error {
	if r.Contains(userID) {
		return ErrAlreadyParticipating
	}
	if r.ids == nil {
		r.ids = make(map[int64]struct{})
	}
	r.ids[userID] = struct{}{}
	return nil
}

// Remove deletes userID. It returns ErrNotParticipating when the id is absent.
func (r *Roster) Remove(userID int64) error {
	if !r.Contains(userID) {
		return ErrNotParticipating
	}
	delete(r.ids, userID)
	return nil
}

func (r Roster) Contains(userID int64) bool {
	_, ok := r.ids[userID]
	return ok
}

func (r Roster) Len() int {
	return len(r.ids)
}

// IDs returns the members in ascending order.
func (r Roster) IDs() []int64 {
	out := make([]int64, 0, len(r.ids))
	for id := range r.ids {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Clone returns an independent copy.
func (r Roster) Clone() Roster {
	return NewRoster(r.IDs()...)
}

// Session is a scheduled group class led by a teacher.
type Session struct {
	ID          int64
	Name        string
	Description string
	Date        time.Time // UTC midnight of the calendar day
	TeacherID   int64
	Users       Roster
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Clone returns a deep copy so callers never share a roster.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.Users = s.Users.Clone()
	return &c
}

// CalendarDate returns midnight UTC of t's calendar day, read in t's own
// location.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
