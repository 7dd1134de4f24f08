package services

import (
	"context"
	"sync"
)

// Locker guards bulk maintenance so two cleanups or imports never overlap.
// TryLock does not wait: it fails with ErrMaintenanceInProgress when the lock
// is held, otherwise it returns the function that releases it.
type Locker interface {
	TryLock(ctx context.Context) (release func(), err error)
}

// LocalLocker serializes maintenance within one process.
type LocalLocker struct {
	mu sync.Mutex
}

func (l *LocalLocker) TryLock(ctx context.Context) (func(), error) {
	if !l.mu.TryLock() {
		return nil, ErrMaintenanceInProgress
	}
	var once sync.Once
	return func() { once.Do(l.mu.Unlock) }, nil
}
