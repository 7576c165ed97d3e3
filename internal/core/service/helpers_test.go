package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/yogastudio/booking/internal/core/domain"
	"github.com/yogastudio/booking/internal/core/ports"
	"github.com/yogastudio/booking/internal/infrastructure/db/memory"
	"github.com/yogastudio/booking/internal/infrastructure/lock"
)

var (
	admin  = domain.Principal{ID: 1, Admin: true}
	member = domain.Principal{ID: 7}
	fixed  = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
)

type stubRecorder struct {
	mu     sync.Mutex
	events []domain.RosterEvent
}

func (r *stubRecorder) Record(e domain.RosterEvent) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *stubRecorder) kinds() []domain.RosterEventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.RosterEventKind, len(r.events))
	for i, e := range r.events {
		out[i] = e.Kind
	}
	return out
}

// failingSessionRepo wraps a working repository and fails the named calls.
type failingSessionRepo struct {
	ports.SessionRepository
	replaceErr error
	createErr  error
}

func (r *failingSessionRepo) Replace(ctx context.Context, s *domain.Session) error {
	if r.replaceErr != nil {
		return r.replaceErr
	}
	return r.SessionRepository.Replace(ctx, s)
}

func (r *failingSessionRepo) Create(ctx context.Context, s *domain.Session) (*domain.Session, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	return r.SessionRepository.Create(ctx, s)
}

type fixture struct {
	sessions *memory.SessionRepository
	users    *memory.UserRepository
	events   *stubRecorder
	store    *SessionService
	engine   *ParticipationService
	members  *UserService
	clock    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, nil)
}

// newFixtureWith builds the services over in-memory repositories. wrap, when
// set, decorates the session repository seen by the services.
func newFixtureWith(t *testing.T, wrap func(ports.SessionRepository) ports.SessionRepository) *fixture {
	t.Helper()

	f := &fixture{
		sessions: memory.NewSessionRepository(),
		users:    memory.NewUserRepository(memory.SeedUsers(fixed)...),
		events:   &stubRecorder{},
		clock:    fixed,
	}
	f.users.Put(domain.User{ID: member.ID, Email: "member@studio.com", FirstName: "Mia", LastName: "ROSE"})

	var sessions ports.SessionRepository = f.sessions
	if wrap != nil {
		sessions = wrap(sessions)
	}

	teachers := memory.NewTeacherRepository(memory.SeedTeachers(fixed)...)
	locker := lock.NewKeyedMutex(time.Second)
	userLocks := lock.NewKeyedMutex(time.Second)
	now := func() time.Time { return f.clock }

	f.store = NewSessionService(sessions, teachers, locker, f.events, zerolog.Nop())
	f.store.now = now
	f.engine = NewParticipationService(sessions, f.users, locker, userLocks, f.events, zerolog.Nop())
	f.engine.now = now
	f.members = NewUserService(f.users, sessions, locker, userLocks, f.events, zerolog.Nop())
	f.members.now = now
	return f
}

func (f *fixture) tick(d time.Duration) {
	f.clock = f.clock.Add(d)
}

func (f *fixture) createSession(t *testing.T) *domain.Session {
	t.Helper()
	s, err := f.store.Create(context.Background(), admin, ports.SessionFields{
		Name:      "Zen Meditation",
		Date:      "2024-05-21",
		TeacherID: 1,
	})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return s
}

func (f *fixture) stored(t *testing.T, id int64) *domain.Session {
	t.Helper()
	s, err := f.sessions.FindByID(context.Background(), id)
	if err != nil {
		t.Fatalf("find session %d: %v", id, err)
	}
	return s
}

func assertIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("expected %v, got %v", target, err)
	}
}

func assertUsers(t *testing.T, s *domain.Session, want ...int64) {
	t.Helper()
	got := s.Users.IDs()
	if len(got) != len(want) {
		t.Fatalf("expected users %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected users %v, got %v", want, got)
		}
	}
}
