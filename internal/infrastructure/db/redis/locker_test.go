package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/yogastudio/booking/internal/core/domain"
)

func newTestLocker(t *testing.T, ttl, wait time.Duration) (*Locker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewLocker(client, ScopeSession, ttl, wait, zerolog.Nop()), mr
}

func TestLocker_Defaults(t *testing.T) {
	l := NewLocker(nil, "", 0, -time.Second, zerolog.Nop())

	if l.ttl != defaultLockTTL {
		t.Errorf("expected default ttl %v, got %v", defaultLockTTL, l.ttl)
	}
	if l.wait != defaultLockWait {
		t.Errorf("expected default wait %v, got %v", defaultLockWait, l.wait)
	}
	if l.scope != ScopeSession {
		t.Errorf("expected default scope %q, got %q", ScopeSession, l.scope)
	}
}

func TestLocker_KeyFormat(t *testing.T) {
	sessions := NewLocker(nil, ScopeSession, time.Second, time.Second, zerolog.Nop())
	users := NewLocker(nil, ScopeUser, time.Second, time.Second, zerolog.Nop())

	if got := sessions.key(42); got != "lock:session:42" {
		t.Errorf("unexpected key: %s", got)
	}
	if got := users.key(42); got != "lock:user:42" {
		t.Errorf("unexpected key: %s", got)
	}
}

func TestLocker_UnreachableServer(t *testing.T) {
	client := goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 100 * time.Millisecond,
	})
	defer client.Close()

	l := NewLocker(client, ScopeSession, time.Second, 200*time.Millisecond, zerolog.Nop())

	unlock, err := l.Lock(context.Background(), 7)
	if err == nil {
		unlock()
		t.Fatal("expected error from unreachable redis")
	}
}

func TestLocker_AcquireSetsTokenWithTTL(t *testing.T) {
	l, mr := newTestLocker(t, 5*time.Second, time.Second)

	unlock, err := l.Lock(context.Background(), 3)
	if err != nil {
		t.Fatalf("lock: %v", err)
	}

	token, err := mr.Get("lock:session:3")
	if err != nil || token == "" {
		t.Fatalf("expected the lock key to hold a token, got %q, %v", token, err)
	}
	if ttl := mr.TTL("lock:session:3"); ttl <= 0 || ttl > 5*time.Second {
		t.Fatalf("expected a ttl of at most 5s, got %v", ttl)
	}

	unlock()
	if mr.Exists("lock:session:3") {
		t.Fatal("expected unlock to delete the key")
	}
	unlock() // second call is a no-op
}

func TestLocker_MutualExclusion(t *testing.T) {
	l, _ := newTestLocker(t, 5*time.Second, 2*time.Second)

	unlockA, err := l.Lock(context.Background(), 1)
	if err != nil {
		t.Fatalf("lock A: %v", err)
	}

	acquired := make(chan time.Time, 1)
	errs := make(chan error, 1)
	go func() {
		unlockB, err := l.Lock(context.Background(), 1)
		if err != nil {
			errs <- err
			return
		}
		acquired <- time.Now()
		unlockB()
	}()

	time.Sleep(100 * time.Millisecond)
	select {
	case <-acquired:
		t.Fatal("second caller acquired session 1 while the first still holds it")
	case err := <-errs:
		t.Fatalf("lock B: %v", err)
	default:
	}

	released := time.Now()
	unlockA()

	select {
	case at := <-acquired:
		if at.Before(released) {
			t.Fatal("second caller acquired before the first released")
		}
	case err := <-errs:
		t.Fatalf("lock B: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("second caller never acquired after release")
	}
}

func TestLocker_IndependentIDsAndScopes(t *testing.T) {
	l, mr := newTestLocker(t, 5*time.Second, 100*time.Millisecond)
	users := NewLocker(l.client, ScopeUser, 5*time.Second, 100*time.Millisecond, zerolog.Nop())

	unlock1, err := l.Lock(context.Background(), 1)
	if err != nil {
		t.Fatalf("lock session 1: %v", err)
	}
	defer unlock1()

	unlock2, err := l.Lock(context.Background(), 2)
	if err != nil {
		t.Fatalf("a held session 1 must not block session 2: %v", err)
	}
	defer unlock2()

	unlockUser, err := users.Lock(context.Background(), 1)
	if err != nil {
		t.Fatalf("a held session 1 must not block user 1: %v", err)
	}
	defer unlockUser()

	if !mr.Exists("lock:user:1") {
		t.Fatal("expected the user lock key to exist")
	}
}

func TestLocker_GivesUpAfterWaitBudget(t *testing.T) {
	l, _ := newTestLocker(t, 5*time.Second, 80*time.Millisecond)

	unlock, err := l.Lock(context.Background(), 1)
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	defer unlock()

	start := time.Now()
	_, err = l.Lock(context.Background(), 1)
	if !errors.Is(err, domain.ErrSessionBusy) {
		t.Fatalf("expected ErrSessionBusy, got %v", err)
	}
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond || elapsed > time.Second {
		t.Fatalf("expected to give up after about 80ms, took %v", elapsed)
	}
}

func TestLocker_CallerDeadlineIsNotBusy(t *testing.T) {
	l, _ := newTestLocker(t, 5*time.Second, 2*time.Second)

	unlock, err := l.Lock(context.Background(), 1)
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, 1)
	if errors.Is(err, domain.ErrSessionBusy) {
		t.Fatalf("a caller deadline must not be reported as busy: %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}
}

func TestLocker_RenewsWhileHeld(t *testing.T) {
	l, mr := newTestLocker(t, 300*time.Millisecond, 50*time.Millisecond)
	const key = "lock:session:1"

	unlock, err := l.Lock(context.Background(), 1)
	if err != nil {
		t.Fatalf("lock: %v", err)
	}

	// Age the key past most of its ttl, then wait for the holder to renew it.
	mr.FastForward(250 * time.Millisecond)
	deadline := time.Now().Add(2 * time.Second)
	for mr.TTL(key) <= 100*time.Millisecond {
		if time.Now().After(deadline) {
			t.Fatalf("lock was never renewed, ttl %v", mr.TTL(key))
		}
		time.Sleep(10 * time.Millisecond)
	}

	// Without renewal the original ttl is spent by now.
	mr.FastForward(250 * time.Millisecond)
	if !mr.Exists(key) {
		t.Fatal("held lock expired despite renewal")
	}
	if _, err := l.Lock(context.Background(), 1); !errors.Is(err, domain.ErrSessionBusy) {
		t.Fatalf("second holder must not acquire a renewed lock, got %v", err)
	}

	unlock()
	if mr.Exists(key) {
		t.Fatal("expected unlock to delete the key")
	}
	unlockB, err := l.Lock(context.Background(), 1)
	if err != nil {
		t.Fatalf("lock after release: %v", err)
	}
	unlockB()
}

func TestLocker_ReleaseKeepsAnotherHoldersKey(t *testing.T) {
	l, mr := newTestLocker(t, 5*time.Second, time.Second)
	const key = "lock:session:1"

	unlockA, err := l.Lock(context.Background(), 1)
	if err != nil {
		t.Fatalf("lock A: %v", err)
	}

	// A crashed-looking holder: its key expires and someone else takes over.
	mr.FastForward(6 * time.Second)
	unlockB, err := l.Lock(context.Background(), 1)
	if err != nil {
		t.Fatalf("lock B after expiry: %v", err)
	}
	tokenB, _ := mr.Get(key)

	unlockA()
	got, err := mr.Get(key)
	if err != nil || got != tokenB {
		t.Fatalf("stale unlock removed or replaced the new holder's key: %q, %v", got, err)
	}

	unlockB()
	if mr.Exists(key) {
		t.Fatal("expected the owner's unlock to delete the key")
	}
}
