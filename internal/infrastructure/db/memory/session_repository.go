// Package memory provides process-local repositories. They back the service
// when STORAGE=memory and keep the same copy-on-read contract as the MongoDB
// implementations.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/yogastudio/booking/internal/core/domain"
)

// SessionRepository stores sessions in a map guarded by a RWMutex. Every
// read and write goes through Session.Clone.
type SessionRepository struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]*domain.Session
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{byID: make(map[int64]*domain.Session)}
}

func (r *SessionRepository) Create(ctx context.Context, s *domain.Session) (*domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	stored := s.Clone()
	stored.ID = r.nextID
	r.byID[stored.ID] = stored
	return stored.Clone(), nil
}

func (r *SessionRepository) FindByID(ctx context.Context, id int64) (*domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s.Clone(), nil
}

func (r *SessionRepository) List(ctx context.Context) ([]*domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]*domain.Session, 0, len(r.byID))
	for _, s := range r.byID {
		out = append(out, s.Clone())
	}
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b *domain.Session) int { return compareID(a.ID, b.ID) })
	return out, nil
}

func (r *SessionRepository) ListByParticipant(ctx context.Context, userID int64) ([]*domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	var out []*domain.Session
	for _, s := range r.byID {
		if s.Users.Contains(userID) {
			out = append(out, s.Clone())
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b *domain.Session) int { return compareID(a.ID, b.ID) })
	return out, nil
}

func (r *SessionRepository) Replace(ctx context.Context, s *domain.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[s.ID]; !ok {
		return domain.ErrSessionNotFound
	}
	r.byID[s.ID] = s.Clone()
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return domain.ErrSessionNotFound
	}
	delete(r.byID, id)
	return nil
}

func compareID(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
