package repository

import (
	"context"
	"errors"
	"sync"
	"time"
)

// LocalPackageLocker serialises package mutations within one process
type LocalPackageLocker struct {
	mu      sync.Mutex
	locks   map[string]*localLock
	timeout time.Duration
}

type localLock struct {
	ch   chan struct{}
	refs int
}

// NewLocalPackageLocker creates a LocalPackageLocker that waits at most 5s
func NewLocalPackageLocker() *LocalPackageLocker {
	return NewLocalPackageLockerWithTimeout(0)
}

// NewLocalPackageLockerWithTimeout bounds how long Lock waits; non-positive means 5s
func NewLocalPackageLockerWithTimeout(timeout time.Duration) *LocalPackageLocker {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &LocalPackageLocker{locks: make(map[string]*localLock), timeout: timeout}
}

// Lock waits for the package's lock until the timeout or ctx ends
func (l *LocalPackageLocker) Lock(ctx context.Context, packageID string) (func(), error) {
	parent := ctx
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	l.mu.Lock()
	lk, ok := l.locks[packageID]
	if !ok {
		lk = &localLock{ch: make(chan struct{}, 1)}
		l.locks[packageID] = lk
	}
	lk.refs++
	l.mu.Unlock()

	select {
	case lk.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(packageID, lk)
		if errors.Is(parent.Err(), context.Canceled) {
			return nil, parent.Err()
		}
		return nil, ErrLockTimeout
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-lk.ch
			l.release(packageID, lk)
		})
	}, nil
}

func (l *LocalPackageLocker) release(packageID string, lk *localLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	lk.refs--
	if lk.refs == 0 {
		delete(l.locks, packageID)
	}
}
