// Package lock provides in-process mutual exclusion keyed by session or user id.
package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/yogastudio/booking/internal/core/domain"
)

type entry struct {
	sem  chan struct{}
	refs int
}

// KeyedMutex hands out one mutex per id. Entries are reference counted and
// dropped once no goroutine holds or waits on them, so the map only grows
// with the number of ids under contention.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[int64]*entry
	wait  time.Duration
}

// NewKeyedMutex creates a KeyedMutex. A positive wait caps how long Lock
// blocks before failing with domain.ErrSessionBusy; otherwise only the caller's
// context bounds it.
func NewKeyedMutex(wait time.Duration) *KeyedMutex {
	return &KeyedMutex{locks: make(map[int64]*entry), wait: wait}
}

// Lock waits for the mutex of id, until ctx is done or the wait budget runs out.
func (k *KeyedMutex) Lock(ctx context.Context, id int64) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var budget <-chan time.Time
	if k.wait > 0 {
		timer := time.NewTimer(k.wait)
		defer timer.Stop()
		budget = timer.C
	}

	e := k.acquire(id)
	select {
	case e.sem <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-e.sem
				k.release(id, e)
			})
		}, nil
	case <-ctx.Done():
		k.release(id, e)
		return nil, ctx.Err()
	case <-budget:
		k.release(id, e)
		return nil, fmt.Errorf("waited %s: %w", k.wait, domain.ErrSessionBusy)
	}
}

func (k *KeyedMutex) acquire(id int64) *entry {
	k.mu.Lock()
	defer k.mu.Unlock()

	e, ok := k.locks[id]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		k.locks[id] = e
	}
	e.refs++
	return e
}

func (k *KeyedMutex) release(id int64, e *entry) {
	k.mu.Lock()
	defer k.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(k.locks, id)
	}
}

// size reports the number of live entries.
func (k *KeyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
