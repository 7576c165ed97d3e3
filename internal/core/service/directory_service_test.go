package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/yogastudio/booking/internal/core/domain"
	"github.com/yogastudio/booking/internal/infrastructure/db/memory"
)

func TestTeacherService(t *testing.T) {
	svc := NewTeacherService(memory.NewTeacherRepository(memory.SeedTeachers(time.Now())...))

	teachers, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(teachers) != 2 || teachers[0].ID != 1 || teachers[1].ID != 2 {
		t.Fatalf("unexpected teachers: %+v", teachers)
	}

	got, err := svc.Get(context.Background(), 2)
	if err != nil || got.LastName != "THIERCELIN" {
		t.Fatalf("get: %+v, %v", got, err)
	}

	_, err = svc.Get(context.Background(), 9)
	assertIs(t, err, domain.ErrTeacherNotFound)
}

func TestUserService_Get(t *testing.T) {
	f := newFixture(t)

	got, err := f.members.Get(context.Background(), 1)
	if err != nil || !got.Admin {
		t.Fatalf("get: %+v, %v", got, err)
	}

	_, err = f.members.Get(context.Background(), 9)
	assertIs(t, err, domain.ErrUserNotFound)
}

func TestUserService_DeleteSelfLeavesEveryRoster(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	joined, other := f.createSession(t), f.createSession(t)
	alsoJoined := f.createSession(t)

	for _, id := range []int64{joined.ID, alsoJoined.ID} {
		if _, err := f.engine.Participate(ctx, member, id, member.ID); err != nil {
			t.Fatalf("participate %d: %v", id, err)
		}
	}
	bruce := domain.Principal{ID: 2}
	if _, err := f.engine.Participate(ctx, bruce, joined.ID, bruce.ID); err != nil {
		t.Fatalf("participate bruce: %v", err)
	}

	f.tick(time.Minute)
	if err := f.members.Delete(ctx, member, member.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	_, err := f.users.FindByID(ctx, member.ID)
	assertIs(t, err, domain.ErrUserNotFound)

	assertUsers(t, f.stored(t, joined.ID), bruce.ID)
	assertUsers(t, f.stored(t, alsoJoined.ID))
	assertUsers(t, f.stored(t, other.ID))
	if got := f.stored(t, joined.ID).UpdatedAt; !got.Equal(f.clock) {
		t.Fatalf("expected updatedAt %v, got %v", f.clock, got)
	}
	if got := f.stored(t, other.ID).UpdatedAt; got.Equal(f.clock) {
		t.Fatal("untouched session must keep its updatedAt")
	}

	removed := 0
	for _, k := range f.events.kinds() {
		if k == domain.EventParticipantRemoved {
			removed++
		}
	}
	if removed != 2 {
		t.Fatalf("expected 2 participant_removed events, got %v", f.events.kinds())
	}

	// A deleted account can no longer join.
	_, err = f.engine.Participate(ctx, member, other.ID, member.ID)
	assertIs(t, err, domain.ErrUserNotFound)
}

func TestUserService_DeleteRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.createSession(t)
	if _, err := f.engine.Participate(ctx, member, s.ID, member.ID); err != nil {
		t.Fatalf("participate: %v", err)
	}

	// Another member, even an admin, cannot delete someone else.
	assertIs(t, f.members.Delete(ctx, domain.Principal{ID: 2}, member.ID), domain.ErrForbidden)
	assertIs(t, f.members.Delete(ctx, admin, member.ID), domain.ErrForbidden)
	if _, err := f.users.FindByID(ctx, member.ID); err != nil {
		t.Fatalf("rejected delete removed the user: %v", err)
	}
	assertUsers(t, f.stored(t, s.ID), member.ID)

	// A missing id is reported as not found before the self check.
	assertIs(t, f.members.Delete(ctx, member, 99), domain.ErrUserNotFound)
	assertIs(t, f.members.Delete(ctx, domain.Principal{ID: 99}, 99), domain.ErrUserNotFound)
}

func TestUserService_DeleteRacesWithParticipate(t *testing.T) {
	for round := 0; round < 20; round++ {
		f := newFixture(t)
		ctx := context.Background()
		sessions := []*domain.Session{f.createSession(t), f.createSession(t), f.createSession(t)}

		var wg sync.WaitGroup
		for _, s := range sessions {
			wg.Add(1)
			go func(id int64) {
				defer wg.Done()
				_, _ = f.engine.Participate(ctx, member, id, member.ID)
			}(s.ID)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := f.members.Delete(ctx, member, member.ID); err != nil {
				t.Errorf("delete: %v", err)
			}
		}()
		wg.Wait()

		for _, s := range sessions {
			if f.stored(t, s.ID).Users.Contains(member.ID) {
				t.Fatalf("round %d: session %d still lists deleted user", round, s.ID)
			}
		}
	}
}

func TestErrorKind(t *testing.T) {
	busy := fmt.Errorf("lock session 1: %w", domain.ErrSessionBusy)
	tests := map[error]string{
		nil:                            "ok",
		domain.ErrForbidden:            "forbidden",
		domain.ErrSessionNotFound:      "not_found",
		domain.ErrUserNotFound:         "not_found",
		domain.ErrAlreadyParticipating: "already_participating",
		domain.ErrNotParticipating:     "not_participating",
		domain.NewValidationError("name", "is required"): "validation",
		domain.ErrSessionBusy:                            "busy",
		busy:                                             "busy",
		context.DeadlineExceeded:                         "cancelled",
	}
	for err, want := range tests {
		if got := ErrorKind(err); got != want {
			t.Errorf("ErrorKind(%v) = %s, want %s", err, got, want)
		}
	}
}
