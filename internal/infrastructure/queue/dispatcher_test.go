package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/yogastudio/booking/internal/core/domain"
)

type stubEventRepo struct {
	mu       sync.Mutex
	events   []domain.RosterEvent
	failures int
}

func (s *stubEventRepo) InsertEvent(_ context.Context, e *domain.RosterEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures > 0 {
		s.failures--
		return errors.New("mongo down")
	}
	s.events = append(s.events, *e)
	return nil
}

func (s *stubEventRepo) snapshot() []domain.RosterEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.RosterEvent(nil), s.events...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestDispatcher_PreservesPerSessionOrder(t *testing.T) {
	repo := &stubEventRepo{}
	d := NewDispatcher(3, repo, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	for uid := int64(1); uid <= 20; uid++ {
		d.Record(domain.RosterEvent{SessionID: 7, UserID: uid, Kind: domain.EventParticipantAdded})
	}

	waitFor(t, func() bool { return len(repo.snapshot()) == 20 })

	for i, e := range repo.snapshot() {
		if e.UserID != int64(i+1) {
			t.Fatalf("event %d: expected user %d, got %d", i, i+1, e.UserID)
		}
	}
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	repo := &stubEventRepo{}
	d := NewDispatcher(1, repo, zerolog.Nop())

	// workers are not started, so the buffer fills up
	for i := 0; i < channelBuffer+10; i++ {
		d.Record(domain.RosterEvent{SessionID: 1, Kind: domain.EventSessionUpdated})
	}

	if got := len(d.workers[0]); got != channelBuffer {
		t.Fatalf("expected buffer length %d, got %d", channelBuffer, got)
	}
}

func TestDispatcher_FailedInsertDoesNotStopWorker(t *testing.T) {
	repo := &stubEventRepo{failures: 1}
	d := NewDispatcher(1, repo, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	d.Record(domain.RosterEvent{SessionID: 1, Kind: domain.EventSessionCreated})
	d.Record(domain.RosterEvent{SessionID: 1, Kind: domain.EventSessionDeleted})
	waitFor(t, func() bool { return len(repo.snapshot()) == 1 })

	got := repo.snapshot()
	if got[0].Kind != domain.EventSessionDeleted {
		t.Fatalf("expected second event to be stored, got %s", got[0].Kind)
	}
}

func TestShardIndex_Deterministic(t *testing.T) {
	d := NewDispatcher(8, &stubEventRepo{}, zerolog.Nop())
	for id := int64(1); id < 100; id++ {
		if d.shardIndex(id) != d.shardIndex(id) {
			t.Fatalf("shard for %d not stable", id)
		}
		if idx := d.shardIndex(id); idx < 0 || idx >= 8 {
			t.Fatalf("shard %d out of range", idx)
		}
	}
}
