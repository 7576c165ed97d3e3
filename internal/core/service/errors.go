package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yogastudio/booking/internal/core/domain"
	"github.com/yogastudio/booking/internal/core/policy"
	"github.com/yogastudio/booking/internal/core/ports"
	"github.com/yogastudio/booking/internal/pkg/metrics"
)

// ErrorKind maps domain errors to a stable label for logs and metrics.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrAlreadyParticipating):
		return "already_participating"
	case errors.Is(err, domain.ErrNotParticipating):
		return "not_participating"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrSessionBusy):
		return "busy"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	}
	return "unexpected"
}

func authorize(p domain.Principal, a policy.Action, t policy.Target) error {
	if err := policy.Authorize(p, a, t); err != nil {
		metrics.GuardDenialsTotal.WithLabelValues(string(a)).Inc()
		return err
	}
	return nil
}

// lockSession acquires the per-session lock and records the wait time.
func lockSession(ctx context.Context, locker ports.SessionLocker, id int64) (func(), error) {
	return acquire(ctx, locker.Lock, "session", id)
}

// lockUser acquires the per-user lock. It is always taken before any session
// lock.
func lockUser(ctx context.Context, locker ports.UserLocker, id int64) (func(), error) {
	return acquire(ctx, locker.Lock, "user", id)
}

func acquire(ctx context.Context, lock func(context.Context, int64) (func(), error), scope string, id int64) (func(), error) {
	start := time.Now()
	unlock, err := lock(ctx, id)
	metrics.LockWaitSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("lock %s %d: %w", scope, id, err)
	}
	return unlock, nil
}

type nopRecorder struct{}

func (nopRecorder) Record(domain.RosterEvent) {}
