package booking

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

var ErrLockNotAcquired = errors.New("booking lock not acquired")

// Locker guards the validate-then-insert critical section per provider and
// date, so two concurrent bookings cannot both pass the conflict checks.
type Locker interface {
	WithBookingLock(ctx context.Context, providerID uuid.UUID, date string, fn func(ctx context.Context) error) error
}

// LocalLocker serializes bookings per (provider, date) within one process.
// Deployments with several API instances use the Redis locker instead.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *LocalLocker) WithBookingLock(ctx context.Context, providerID uuid.UUID, date string, fn func(ctx context.Context) error) error {
	key := providerID.String() + ":" + date

	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	defer m.Unlock()

	return fn(ctx)
}
