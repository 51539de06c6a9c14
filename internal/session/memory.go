package session

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// MemoryStore keeps sessions in process memory. Expired entries are removed
// opportunistically on writes and by the optional janitor started with Start.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
	timeout time.Duration
	now     func() time.Time
	onEvict EvictionObserver
}

// MemoryOption configures a MemoryStore
type MemoryOption func(*MemoryStore)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) { s.now = now }
}

// WithEvictionObserver registers a callback invoked after each sweep that removed entries.
func WithEvictionObserver(fn EvictionObserver) MemoryOption {
	return func(s *MemoryStore) { s.onEvict = fn }
}

// NewMemoryStore creates an in-memory store. A non-positive timeout uses DefaultTimeout.
func NewMemoryStore(timeout time.Duration, opts ...MemoryOption) *MemoryStore {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	s := &MemoryStore{
		entries: make(map[string]Entry),
		timeout: timeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Put stores entry, replacing any previous entry for the same user.
func (s *MemoryStore) Put(_ context.Context, entry Entry) error {
	now := s.now()
	entry.LastAccess = now

	s.mu.Lock()
	evicted := s.sweepLocked(now)
	s.entries[entry.UserID] = entry
	s.mu.Unlock()

	s.notify(evicted)
	return nil
}

// Get returns the user's entry and marks it as accessed. An entry older than
// the timeout is treated as missing and removed.
func (s *MemoryStore) Get(_ context.Context, userID string) (Entry, bool, error) {
	now := s.now()

	s.mu.Lock()
	entry, ok := s.entries[userID]
	if ok && now.Sub(entry.LastAccess) > s.timeout {
		delete(s.entries, userID)
		s.mu.Unlock()
		s.notify(1)
		return Entry{}, false, nil
	}
	if ok {
		entry.LastAccess = now
		s.entries[userID] = entry
	}
	s.mu.Unlock()

	return entry, ok, nil
}

// Delete removes the user's entry if present.
func (s *MemoryStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	delete(s.entries, userID)
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, including ones not yet swept.
func (s *MemoryStore) Len(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

// Sweep removes every entry idle for longer than the timeout and returns how
// many were removed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	evicted := s.sweepLocked(s.now())
	s.mu.Unlock()

	s.notify(evicted)
	return evicted
}

func (s *MemoryStore) sweepLocked(now time.Time) int {
	evicted := 0
	for userID, entry := range s.entries {
		if now.Sub(entry.LastAccess) > s.timeout {
			delete(s.entries, userID)
			evicted++
		}
	}
	return evicted
}

func (s *MemoryStore) notify(evicted int) {
	if evicted > 0 && s.onEvict != nil {
		s.onEvict(evicted)
	}
}

// Start runs a janitor that sweeps every interval until ctx is cancelled.
func (s *MemoryStore) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.Sweep(); n > 0 {
					log.WithField("evicted", n).Debug("session janitor swept idle entries")
				}
			}
		}
	}()
}
