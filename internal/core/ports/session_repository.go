package ports

import (
	"context"

	"github.com/yogastudio/booking/internal/core/domain"
)

// SessionRepository persists sessions. Implementations hand out copies: a
// returned *domain.Session is never shared with the store.
type SessionRepository interface {
	// Create assigns the next id from the store's sequence and persists s.
	Create(ctx context.Context, s *domain.Session) (*domain.Session, error)
	FindByID(ctx context.Context, id int64) (*domain.Session, error)
	// List returns every session ordered by ascending id.
	List(ctx context.Context) ([]*domain.Session, error)
	// ListByParticipant returns the sessions whose roster holds userID,
	// ordered by ascending id.
	ListByParticipant(ctx context.Context, userID int64) ([]*domain.Session, error)
	// Replace atomically overwrites the stored record with s.
	Replace(ctx context.Context, s *domain.Session) error
	Delete(ctx context.Context, id int64) error
}

// SessionLocker provides mutual exclusion scoped to a single session id.
type SessionLocker interface {
	// Lock blocks until the lock for sessionID is held or ctx is done. The
	// returned unlock func must be called exactly once.
	Lock(ctx context.Context, sessionID int64) (unlock func(), err error)
}

// UserLocker provides mutual exclusion scoped to a single user id. Holders
// take it before any session lock, never after.
type UserLocker interface {
	Lock(ctx context.Context, userID int64) (unlock func(), err error)
}
