package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/yogastudio/booking/internal/core/domain"
)

// TeacherRepository is a fixed set of teachers loaded at construction.
type TeacherRepository struct {
	byID map[int64]domain.Teacher
}

func NewTeacherRepository(teachers ...domain.Teacher) *TeacherRepository {
	r := &TeacherRepository{byID: make(map[int64]domain.Teacher, len(teachers))}
	for _, t := range teachers {
		r.byID[t.ID] = t
	}
	return r
}

func (r *TeacherRepository) FindByID(_ context.Context, id int64) (*domain.Teacher, error) {
	t, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrTeacherNotFound
	}
	return &t, nil
}

func (r *TeacherRepository) List(_ context.Context) ([]*domain.Teacher, error) {
	out := make([]*domain.Teacher, 0, len(r.byID))
	for _, t := range r.byID {
		out = append(out, &t)
	}
	slices.SortFunc(out, func(a, b *domain.Teacher) int { return compareID(a.ID, b.ID) })
	return out, nil
}

// UserRepository is a member directory filled by Put.
type UserRepository struct {
	mu   sync.RWMutex
	byID map[int64]domain.User
}

func NewUserRepository(users ...domain.User) *UserRepository {
	r := &UserRepository{byID: make(map[int64]domain.User, len(users))}
	for _, u := range users {
		r.byID[u.ID] = u
	}
	return r
}

// Put inserts or replaces a user record.
func (r *UserRepository) Put(u domain.User) {
	r.mu.Lock()
	r.byID[u.ID] = u
	r.mu.Unlock()
}

func (r *UserRepository) FindByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.byID, id)
	return nil
}
