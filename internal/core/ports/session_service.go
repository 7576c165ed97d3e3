package ports

import (
	"context"

	"github.com/yogastudio/booking/internal/core/domain"
)

// SessionFields carries the caller-editable part of a session.
type SessionFields struct {
	Name        string
	Description string
	// Date accepts "2006-01-02" or an RFC3339 timestamp.
	Date      string
	TeacherID int64
	// Users is accepted for wire compatibility and always ignored: the
	// roster only changes through ParticipationService.
	Users []int64
}

// SessionService is the session store: record-level CRUD gated on the admin role.
type SessionService interface {
	Create(ctx context.Context, principal domain.Principal, fields SessionFields) (*domain.Session, error)
	List(ctx context.Context) ([]*domain.Session, error)
	Get(ctx context.Context, id int64) (*domain.Session, error)
	Update(ctx context.Context, principal domain.Principal, id int64, fields SessionFields) (*domain.Session, error)
	Delete(ctx context.Context, principal domain.Principal, id int64) error
}

// ParticipationService owns roster transitions.
type ParticipationService interface {
	Participate(ctx context.Context, principal domain.Principal, sessionID, userID int64) (*domain.Session, error)
	UnParticipate(ctx context.Context, principal domain.Principal, sessionID, userID int64) (*domain.Session, error)
}

// TeacherService is the read-only teacher directory.
type TeacherService interface {
	Get(ctx context.Context, id int64) (*domain.Teacher, error)
	List(ctx context.Context) ([]*domain.Teacher, error)
}

// UserService is the member directory. Members may delete their own account.
type UserService interface {
	Get(ctx context.Context, id int64) (*domain.User, error)
	Delete(ctx context.Context, principal domain.Principal, id int64) error
}
