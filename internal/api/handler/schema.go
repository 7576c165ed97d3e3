package handler

import (
	"time"

	"github.com/yogastudio/booking/internal/core/domain"
	"github.com/yogastudio/booking/internal/core/ports"
)

const dateLayout = "2006-01-02"

// sessionRequest is the body of POST and PUT /api/session. users is accepted
// so clients can post back a session they fetched; it is never applied.
type sessionRequest struct {
	Name        string  `json:"name" validate:"max=50"`
	Description string  `json:"description" validate:"max=2500"`
	Date        string  `json:"date"`
	TeacherID   int64   `json:"teacher_id" validate:"gte=0"`
	Users       []int64 `json:"users"`
}

func (r sessionRequest) toFields() ports.SessionFields {
	return ports.SessionFields{
		Name:        r.Name,
		Description: r.Description,
		Date:        r.Date,
		TeacherID:   r.TeacherID,
		Users:       r.Users,
	}
}

type sessionResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	TeacherID   int64     `json:"teacher_id"`
	Users       []int64   `json:"users"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toSessionResponse(s *domain.Session) sessionResponse {
	return sessionResponse{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		Date:        s.Date.UTC().Format(dateLayout),
		TeacherID:   s.TeacherID,
		Users:       s.Users.IDs(),
		CreatedAt:   s.CreatedAt.UTC(),
		UpdatedAt:   s.UpdatedAt.UTC(),
	}
}

func toSessionResponses(sessions []*domain.Session) []sessionResponse {
	out := make([]sessionResponse, len(sessions))
	for i, s := range sessions {
		out[i] = toSessionResponse(s)
	}
	return out
}

type teacherResponse struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toTeacherResponse(t *domain.Teacher) teacherResponse {
	return teacherResponse{
		ID:        t.ID,
		FirstName: t.FirstName,
		LastName:  t.LastName,
		CreatedAt: t.CreatedAt.UTC(),
		UpdatedAt: t.UpdatedAt.UTC(),
	}
}

type userResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Admin     bool      `json:"admin"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Admin:     u.Admin,
		CreatedAt: u.CreatedAt.UTC(),
		UpdatedAt: u.UpdatedAt.UTC(),
	}
}
