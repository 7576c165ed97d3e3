package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/yogastudio/booking/internal/core/domain"
	"github.com/yogastudio/booking/internal/core/policy"
	"github.com/yogastudio/booking/internal/core/ports"
	"github.com/yogastudio/booking/internal/pkg/metrics"
)

// ParticipationService adds and removes users from session rosters. Both
// transitions are deliberately non-idempotent: a repeated call fails with a
// conflict instead of succeeding silently.
type ParticipationService struct {
	sessions  ports.SessionRepository
	users     ports.UserRepository
	locker    ports.SessionLocker
	userLocks ports.UserLocker
	events    ports.EventRecorder
	logger    zerolog.Logger
	now       func() time.Time
}

// NewParticipationService wires the engine. events may be nil.
func NewParticipationService(
	sessions ports.SessionRepository,
	users ports.UserRepository,
	locker ports.SessionLocker,
	userLocks ports.UserLocker,
	events ports.EventRecorder,
	logger zerolog.Logger,
) *ParticipationService {
	if events == nil {
		events = nopRecorder{}
	}
	return &ParticipationService{
		sessions:  sessions,
		users:     users,
		locker:    locker,
		userLocks: userLocks,
		events:    events,
		logger:    logger,
		now:       time.Now,
	}
}

// Participate registers userID on the session roster.
func (s *ParticipationService) Participate(ctx context.Context, principal domain.Principal, sessionID, userID int64) (*domain.Session, error) {
	return s.toggle(ctx, principal, policy.ActionSessionParticipate, sessionID, userID)
}

// UnParticipate removes userID from the session roster.
func (s *ParticipationService) UnParticipate(ctx context.Context, principal domain.Principal, sessionID, userID int64) (*domain.Session, error) {
	return s.toggle(ctx, principal, policy.ActionSessionUnParticipate, sessionID, userID)
}

func (s *ParticipationService) toggle(
	ctx context.Context,
	principal domain.Principal,
	action policy.Action,
	sessionID, userID int64,
) (next *domain.Session, err error) {
	op, kind := "participate", domain.EventParticipantAdded
	if action == policy.ActionSessionUnParticipate {
		op, kind = "unparticipate", domain.EventParticipantRemoved
	}
	defer func() { s.observe(op, principal, sessionID, userID, err) }()

	if err = authorize(principal, action, policy.Target{SessionID: sessionID, UserID: userID}); err != nil {
		return nil, err
	}

	// Joining holds the user lock too, so an account deletion cannot scrub
	// the rosters between the user check and the write.
	if action == policy.ActionSessionParticipate {
		unlockUser, lerr := lockUser(ctx, s.userLocks, userID)
		if lerr != nil {
			return nil, lerr
		}
		defer unlockUser()
	}

	unlock, err := lockSession(ctx, s.locker, sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	current, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	next = current.Clone()
	if action == policy.ActionSessionParticipate {
		if _, err = s.users.FindByID(ctx, userID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		err = next.Users.Add(userID)
	} else {
		err = next.Users.Remove(userID)
	}
	if err != nil {
		return nil, err
	}
	next.UpdatedAt = s.now().UTC()

	if err = s.sessions.Replace(ctx, next); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.events.Record(domain.RosterEvent{
		SessionID:  sessionID,
		UserID:     userID,
		Kind:       kind,
		ActorID:    principal.ID,
		OccurredAt: next.UpdatedAt,
	})
	return next, nil
}

func (s *ParticipationService) observe(op string, principal domain.Principal, sessionID, userID int64, err error) {
	kind := ErrorKind(err)
	metrics.ParticipationChangesTotal.WithLabelValues(op, kind).Inc()

	ev := s.logger.Info()
	msg := "roster changed"
	if err != nil {
		ev = s.logger.Warn().Err(err).Str("error_kind", kind)
		if kind == "unexpected" {
			ev = s.logger.Error().Err(err).Str("error_kind", kind)
		}
		msg = "roster change rejected"
	}
	ev.Str("operation", op).
		Int64("principal_id", principal.ID).
		Int64("session_id", sessionID).
		Int64("user_id", userID).
		Msg(msg)
}
