package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/yogastudio/booking/internal/core/domain"
	"github.com/yogastudio/booking/internal/core/policy"
	"github.com/yogastudio/booking/internal/core/ports"
	"github.com/yogastudio/booking/internal/pkg/metrics"
)

// TeacherService is the read-only teacher directory.
type TeacherService struct {
	repo ports.TeacherRepository
}

func NewTeacherService(repo ports.TeacherRepository) *TeacherService {
	return &TeacherService{repo: repo}
}

func (s *TeacherService) Get(ctx context.Context, id int64) (*domain.Teacher, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get teacher: %w", err)
	}
	return t, nil
}

// List returns every teacher in ascending id order.
func (s *TeacherService) List(ctx context.Context) ([]*domain.Teacher, error) {
	teachers, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	return teachers, nil
}

// UserService is the member directory. Deleting an account first takes the
// user off every roster, each under its session lock, so no roster ever
// references a deleted user.
type UserService struct {
	repo      ports.UserRepository
	sessions  ports.SessionRepository
	locker    ports.SessionLocker
	userLocks ports.UserLocker
	events    ports.EventRecorder
	logger    zerolog.Logger
	now       func() time.Time
}

// NewUserService wires the directory. events may be nil.
func NewUserService(
	repo ports.UserRepository,
	sessions ports.SessionRepository,
	locker ports.SessionLocker,
	userLocks ports.UserLocker,
	events ports.EventRecorder,
	logger zerolog.Logger,
) *UserService {
	if events == nil {
		events = nopRecorder{}
	}
	return &UserService{
		repo:      repo,
		sessions:  sessions,
		locker:    locker,
		userLocks: userLocks,
		events:    events,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *UserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// Delete removes the principal's own account. A missing id is reported before
// the self-only check.
func (s *UserService) Delete(ctx context.Context, principal domain.Principal, id int64) (err error) {
	left := 0
	defer func() { s.observe(principal, id, left, err) }()

	if _, err = s.repo.FindByID(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if err = authorize(principal, policy.ActionUserDelete, policy.Target{UserID: id}); err != nil {
		return err
	}

	// Holding the user lock keeps new joins out until the record is gone.
	unlockUser, err := lockUser(ctx, s.userLocks, id)
	if err != nil {
		return err
	}
	defer unlockUser()

	joined, err := s.sessions.ListByParticipant(ctx, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	for _, session := range joined {
		removed, lerr := s.leave(ctx, principal, session.ID, id)
		if lerr != nil {
			return lerr
		}
		if removed {
			left++
		}
	}

	if err = s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// leave takes userID off one roster. A session deleted or left in the
// meantime is not an error.
func (s *UserService) leave(ctx context.Context, principal domain.Principal, sessionID, userID int64) (bool, error) {
	unlock, err := lockSession(ctx, s.locker, sessionID)
	if err != nil {
		return false, err
	}
	defer unlock()

	current, err := s.sessions.FindByID(ctx, sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}

	next := current.Clone()
	if next.Users.Remove(userID) != nil {
		return false, nil
	}
	next.UpdatedAt = s.now().UTC()
	if err := s.sessions.Replace(ctx, next); err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}

	s.events.Record(domain.RosterEvent{
		SessionID:  sessionID,
		UserID:     userID,
		Kind:       domain.EventParticipantRemoved,
		ActorID:    principal.ID,
		OccurredAt: next.UpdatedAt,
	})
	return true, nil
}

func (s *UserService) observe(principal domain.Principal, id int64, left int, err error) {
	kind := ErrorKind(err)
	metrics.UserDeletionsTotal.WithLabelValues(kind).Inc()

	ev := s.logger.Info()
	msg := "user deleted"
	if err != nil {
		ev = s.logger.Warn().Err(err).Str("error_kind", kind)
		if kind == "unexpected" {
			ev = s.logger.Error().Err(err).Str("error_kind", kind)
		}
		msg = "user deletion rejected"
	}
	ev.Int64("principal_id", principal.ID).
		Int64("user_id", id).
		Int("sessions_left", left).
		Msg(msg)
}
