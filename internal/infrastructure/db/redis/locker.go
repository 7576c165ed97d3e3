package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/yogastudio/booking/internal/core/domain"
)

const (
	defaultLockTTL  = 10 * time.Second
	defaultLockWait = 3 * time.Second
	retryInterval   = 25 * time.Millisecond
)

// Lock scopes. Each scope is its own key space.
const (
	ScopeSession = "session"
	ScopeUser    = "user"
)

// releaseScript deletes the key only if it still holds the caller's token,
// so an expired holder can never release a lock taken over by someone else.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// renewScript pushes the expiry forward only while the caller still owns the key.
var renewScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("pexpire", KEYS[1], ARGV[2])
end
return 0
`)

// Locker implements per-id mutual exclusion across service instances.
// Key format: lock:<scope>:<id>
//
// A held key is renewed every ttl/3 until unlock, so the ttl only bounds how
// long a crashed holder keeps the id locked and never cuts a live holder short.
type Locker struct {
	client *redis.Client
	scope  string
	ttl    time.Duration
	wait   time.Duration
	log    zerolog.Logger
}

// NewLocker creates a Locker for scope. ttl bounds how long a crashed holder
// can keep an id locked; wait bounds how long Lock polls before giving up.
func NewLocker(client *redis.Client, scope string, ttl, wait time.Duration, log zerolog.Logger) *Locker {
	if scope == "" {
		scope = ScopeSession
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	if wait <= 0 {
		wait = defaultLockWait
	}
	return &Locker{client: client, scope: scope, ttl: ttl, wait: wait, log: log}
}

// Lock polls SET NX until the key is acquired, ctx is done or the wait budget
// runs out. A spent wait budget is reported as domain.ErrSessionBusy.
func (l *Locker) Lock(ctx context.Context, id int64) (func(), error) {
	waitCtx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	key := l.key(id)
	token := uuid.NewString()

	ticker := time.NewTicker(retryInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(waitCtx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire %s: %w", key, l.waitErr(ctx, waitCtx, err))
		}
		if ok {
			return l.hold(key, token), nil
		}

		select {
		case <-waitCtx.Done():
			return nil, fmt.Errorf("acquire %s: %w", key, l.waitErr(ctx, waitCtx, waitCtx.Err()))
		case <-ticker.C:
		}
	}
}

// waitErr tells a spent wait budget apart from the caller's own context.
func (l *Locker) waitErr(parent, waitCtx context.Context, err error) error {
	if parent.Err() == nil && waitCtx.Err() != nil && errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("waited %s: %w", l.wait, domain.ErrSessionBusy)
	}
	return err
}

// hold starts the renewal loop and returns the unlock func.
func (l *Locker) hold(key, token string) func() {
	stop := make(chan struct{})
	done := make(chan struct{})
	go l.keepAlive(key, token, stop, done)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done
			l.release(key, token)
		})
	}
}

func (l *Locker) keepAlive(key, token string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	interval := l.ttl / 3
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		ctx, cancel := context.WithTimeout(context.Background(), interval)
		renewed, err := renewScript.Run(ctx, l.client, []string{key}, token, l.ttl.Milliseconds()).Int64()
		cancel()
		switch {
		case err != nil:
			l.log.Warn().Err(err).Str("key", key).Msg("failed to renew lock")
		case renewed == 0:
			l.log.Error().Str("key", key).Msg("lock lost before unlock")
			return
		}
	}
}

// release runs on its own context: the request context may already be done
// when the deferred unlock fires.
func (l *Locker) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
		l.log.Warn().Err(err).Str("key", key).Msg("failed to release lock")
	}
}

func (l *Locker) key(id int64) string {
	return fmt.Sprintf("lock:%s:%d", l.scope, id)
}
