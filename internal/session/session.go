// Package session caches each user's most recent ranked result set so later
// "page N" requests can be answered without scoring again.
package session

import (
	"context"
	"time"

	"github.com/gcbaptista/promo-search-engine/model"
)

// DefaultTimeout is how long an untouched entry survives
const DefaultTimeout = 30 * time.Minute

// Entry is one user's cached search. A store holds at most one per user.
type Entry struct {
	UserID     string               `json:"user_id"`
	Query      string               `json:"query"`
	QueryID    string               `json:"query_id"`
	Results    []model.ScoredRecord `json:"results"`
	LastAccess time.Time            `json:"last_access"`
}

// Store persists session entries keyed by user.
//
// Get refreshes the entry's last access time. Implementations must be safe for
// concurrent use; concurrent writes for one user resolve last-write-wins.
type Store interface {
	Put(ctx context.Context, entry Entry) error
	Get(ctx context.Context, userID string) (Entry, bool, error)
	Delete(ctx context.Context, userID string) error
	Len(ctx context.Context) (int, error)
}

// EvictionObserver is notified with the number of entries a sweep removed
type EvictionObserver func(evicted int)
