package cache

import (
	"context"
	"sync"
	"time"

	"github.com/profitpath/backend/internal/domain/shared"
)

// InMemoryLocker is a process local keyed mutex
type InMemoryLocker struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	sem  chan struct{}
	refs int
}

// NewInMemoryLocker creates a new InMemoryLocker
func NewInMemoryLocker() *InMemoryLocker {
	return &InMemoryLocker{locks: make(map[string]*keyLock)}
}

// Acquire waits for key. A non-positive ttl waits until ctx is done.
func (l *InMemoryLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	l.mu.Lock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyLock{sem: make(chan struct{}, 1)}
		l.locks[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	var timeout <-chan time.Time
	if ttl > 0 {
		timer := time.NewTimer(ttl)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case kl.sem <- struct{}{}:
	case <-ctx.Done():
		l.drop(key, kl)
		return nil, ctx.Err()
	case <-timeout:
		l.drop(key, kl)
		return nil, lockTimeout(key)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-kl.sem
			l.drop(key, kl)
		})
	}, nil
}

func (l *InMemoryLocker) drop(key string, kl *keyLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, key)
	}
}

func lockTimeout(key string) error {
	return shared.NewDomainError(shared.CodeConcurrencyConflict, "another request is updating "+key+", try again")
}

var _ shared.Locker = (*InMemoryLocker)(nil)
