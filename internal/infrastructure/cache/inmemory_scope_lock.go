package cache

import (
	"context"
	"sync"
	"time"

	"github.com/cms/backend/internal/domain/ordering"
	"github.com/google/uuid"
)

type lockEntry struct {
	token     string
	expiresAt time.Time
}

// InMemoryScopeLocker implements ordering.ScopeLocker with a process-local map.
// Suitable for single-instance deployments and tests.
type InMemoryScopeLocker struct {
	mu        sync.Mutex
	entries   map[string]lockEntry
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryScopeLocker creates the locker and starts its cleanup goroutine.
func NewInMemoryScopeLocker() *InMemoryScopeLocker {
	l := &InMemoryScopeLocker{
		entries:  make(map[string]lockEntry),
		stopChan: make(chan struct{}),
	}

	l.wg.Add(1)
	go l.cleanupLoop()

	return l
}

// TryLock holds key for ttl unless an unexpired hold exists.
func (l *InMemoryScopeLocker) TryLock(_ context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if e, exists := l.entries[key]; exists && now.Before(e.expiresAt) {
		return nil, false, nil
	}

	token := uuid.NewString()
	l.entries[key] = lockEntry{token: token, expiresAt: now.Add(ttl)}

	release := func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		// an expired hold may already belong to someone else
		if e, exists := l.entries[key]; exists && e.token == token {
			delete(l.entries, key)
		}
		return nil
	}
	return release, true, nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (l *InMemoryScopeLocker) Close() error {
	l.closeOnce.Do(func() {
		close(l.stopChan)
		l.wg.Wait()
	})
	return nil
}

func (l *InMemoryScopeLocker) cleanupLoop() {
	defer l.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopChan:
			return
		case <-ticker.C:
			l.cleanup()
		}
	}
}

func (l *InMemoryScopeLocker) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for key, e := range l.entries {
		if now.After(e.expiresAt) {
			delete(l.entries, key)
		}
	}
}

// Size returns the number of held scopes (for testing/monitoring)
func (l *InMemoryScopeLocker) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

var _ ordering.ScopeLocker = (*InMemoryScopeLocker)(nil)
