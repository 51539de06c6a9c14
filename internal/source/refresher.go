package source

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/gcbaptista/promo-search-engine/services"
)

// DefaultTTL is how long loaded data is considered fresh
const DefaultTTL = time.Hour

// Refresher reloads the collection from a source under a freshness policy.
// Concurrent refreshes share one fetch. A failed refresh leaves the
// collection as it was.
type Refresher struct {
	source Source
	loader services.CollectionLoader
	ttl    time.Duration
	now    func() time.Time

	group       singleflight.Group
	mu          sync.RWMutex
	lastRefresh time.Time
	lastErr     error
}

var _ services.Refresher = (*Refresher)(nil)

// NewRefresher creates a refresher. A non-positive ttl uses DefaultTTL.
func NewRefresher(src Source, loader services.CollectionLoader, ttl time.Duration) (*Refresher, error) {
	if src == nil {
		return nil, fmt.Errorf("source cannot be nil")
	}
	if loader == nil {
		return nil, fmt.Errorf("loader cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Refresher{source: src, loader: loader, ttl: ttl, now: time.Now}, nil
}

// Refresh fetches from the source and loads the result, returning the number
// of records fetched.
func (r *Refresher) Refresh(ctx context.Context) (int, error) {
	v, err, shared := r.group.Do("refresh", func() (interface{}, error) {
		return r.refresh(ctx)
	})
	if shared {
		log.Debug("refresh shared with a concurrent caller")
	}
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}

func (r *Refresher) refresh(ctx context.Context) (int, error) {
	entry := log.WithField("source", r.source.Name())

	records, err := r.source.Fetch(ctx)
	if err == nil {
		err = r.loader.Load(records)
	}

	r.mu.Lock()
	r.lastErr = err
	if err == nil {
		r.lastRefresh = r.now()
	}
	r.mu.Unlock()

	if err != nil {
		entry.WithError(err).Warn("refresh failed, serving previous data")
		return 0, err
	}
	entry.WithField("records", len(records)).Info("refresh completed")
	return len(records), nil
}

// Stale reports whether the last successful refresh is older than the TTL
func (r *Refresher) Stale() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastRefresh.IsZero() || r.now().Sub(r.lastRefresh) >= r.ttl
}

// EnsureFresh refreshes only when the data is stale
func (r *Refresher) EnsureFresh(ctx context.Context) error {
	if !r.Stale() {
		return nil
	}
	_, err := r.Refresh(ctx)
	return err
}

// LastRefresh returns the time of the last successful refresh and the error
// of the most recent attempt
func (r *Refresher) LastRefresh() (time.Time, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastRefresh, r.lastErr
}

// Start checks freshness every interval until ctx is cancelled.
func (r *Refresher) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = r.ttl
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_ = r.EnsureFresh(ctx)
			}
		}
	}()
}
