package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/yogastudio/booking/internal/core/domain"
	"github.com/yogastudio/booking/internal/core/policy"
	"github.com/yogastudio/booking/internal/core/ports"
	"github.com/yogastudio/booking/internal/pkg/metrics"
)

var dateLayouts = []string{"2006-01-02", time.RFC3339, time.RFC3339Nano}

// SessionService is the session store. Mutations require an admin principal;
// none of them ever write the roster from caller-supplied fields.
type SessionService struct {
	sessions ports.SessionRepository
	teachers ports.TeacherRepository
	locker   ports.SessionLocker
	events   ports.EventRecorder
	logger   zerolog.Logger
	now      func() time.Time
}

// NewSessionService wires the store. events may be nil.
func NewSessionService(
	sessions ports.SessionRepository,
	teachers ports.TeacherRepository,
	locker ports.SessionLocker,
	events ports.EventRecorder,
	logger zerolog.Logger,
) *SessionService {
	if events == nil {
		events = nopRecorder{}
	}
	return &SessionService{
		sessions: sessions,
		teachers: teachers,
		locker:   locker,
		events:   events,
		logger:   logger,
		now:      time.Now,
	}
}

// Create validates fields and stores a new session with an empty roster.
func (s *SessionService) Create(ctx context.Context, principal domain.Principal, fields ports.SessionFields) (created *domain.Session, err error) {
	defer func() { s.observe("create", principal, idOf(created), err) }()

	if err = authorize(principal, policy.ActionSessionCreate, policy.Target{}); err != nil {
		return nil, err
	}

	date, err := s.validate(ctx, fields)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	created, err = s.sessions.Create(ctx, &domain.Session{
		Name:        strings.TrimSpace(fields.Name),
		Description: fields.Description,
		Date:        date,
		TeacherID:   fields.TeacherID,
		Users:       domain.NewRoster(),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.record(domain.EventSessionCreated, created.ID, principal.ID)
	return created, nil
}

// List returns every session in ascending id order.
func (s *SessionService) List(ctx context.Context) ([]*domain.Session, error) {
	sessions, err := s.sessions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// Get returns the session with the given id.
func (s *SessionService) Get(ctx context.Context, id int64) (*domain.Session, error) {
	sess, err := s.sessions.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return sess, nil
}

// Update replaces name, description, date and teacher of an existing session.
// The roster and createdAt are carried over from the stored record.
func (s *SessionService) Update(ctx context.Context, principal domain.Principal, id int64, fields ports.SessionFields) (updated *domain.Session, err error) {
	defer func() { s.observe("update", principal, id, err) }()

	if err = authorize(principal, policy.ActionSessionUpdate, policy.Target{SessionID: id}); err != nil {
		return nil, err
	}

	unlock, err := lockSession(ctx, s.locker, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	existing, err := s.sessions.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}

	date, err := s.validate(ctx, fields)
	if err != nil {
		return nil, err
	}

	updated = existing.Clone()
	updated.Name = strings.TrimSpace(fields.Name)
	updated.Description = fields.Description
	updated.Date = date
	updated.TeacherID = fields.TeacherID
	updated.UpdatedAt = s.now().UTC()

	if err = s.sessions.Replace(ctx, updated); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}

	s.record(domain.EventSessionUpdated, id, principal.ID)
	return updated, nil
}

// Delete removes a session permanently.
func (s *SessionService) Delete(ctx context.Context, principal domain.Principal, id int64) (err error) {
	defer func() { s.observe("delete", principal, id, err) }()

	if err = authorize(principal, policy.ActionSessionDelete, policy.Target{SessionID: id}); err != nil {
		return err
	}

	unlock, err := lockSession(ctx, s.locker, id)
	if err != nil {
		return err
	}
	defer unlock()

	if err = s.sessions.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	s.record(domain.EventSessionDeleted, id, principal.ID)
	return nil
}

// validate checks the editable fields and resolves the teacher. It returns
// the parsed calendar date.
func (s *SessionService) validate(ctx context.Context, fields ports.SessionFields) (time.Time, error) {
	if strings.TrimSpace(fields.Name) == "" {
		return time.Time{}, domain.NewValidationError("name", "is required")
	}

	date, ok := parseDate(fields.Date)
	if !ok {
		return time.Time{}, domain.NewValidationError("date", "must be a date (YYYY-MM-DD) or an RFC3339 timestamp")
	}

	if fields.TeacherID <= 0 {
		return time.Time{}, domain.NewValidationError("teacher_id", "is required")
	}
	if _, err := s.teachers.FindByID(ctx, fields.TeacherID); err != nil {
		if errors.Is(err, domain.ErrTeacherNotFound) {
			return time.Time{}, domain.ErrTeacherNotFound
		}
		return time.Time{}, fmt.Errorf("resolve teacher: %w", err)
	}

	return date, nil
}

func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return domain.CalendarDate(t), true
		}
	}
	return time.Time{}, false
}

func (s *SessionService) record(kind domain.RosterEventKind, sessionID, actorID int64) {
	s.events.Record(domain.RosterEvent{
		SessionID:  sessionID,
		Kind:       kind,
		ActorID:    actorID,
		OccurredAt: s.now().UTC(),
	})
}

func (s *SessionService) observe(op string, principal domain.Principal, sessionID int64, err error) {
	kind := ErrorKind(err)
	metrics.SessionMutationsTotal.WithLabelValues(op, kind).Inc()

	if err != nil {
		ev := s.logger.Warn()
		if kind == "unexpected" {
			ev = s.logger.Error()
		}
		ev.Err(err).
			Str("operation", op).
			Int64("principal_id", principal.ID).
			Int64("session_id", sessionID).
			Str("error_kind", kind).
			Msg("session mutation failed")
		return
	}

	s.logger.Info().
		Str("operation", op).
		Int64("principal_id", principal.ID).
		Int64("session_id", sessionID).
		Msg("session mutated")
}

func idOf(s *domain.Session) int64 {
	if s == nil {
		return 0
	}
	return s.ID
}
