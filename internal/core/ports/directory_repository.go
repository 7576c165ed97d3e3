package ports

import (
	"context"

	"github.com/yogastudio/booking/internal/core/domain"
)

// TeacherRepository is the read side of the teacher records.
type TeacherRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Teacher, error)
	List(ctx context.Context) ([]*domain.Teacher, error)
}

// UserRepository stores the member records.
type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
}
