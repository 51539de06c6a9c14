package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces session keys in a shared redis
const DefaultKeyPrefix = "promo:session:"

// RedisStore keeps sessions in redis so several service instances share them.
// Entries expire through key TTLs, refreshed on every read and write.
type RedisStore struct {
	client  redis.UniversalClient
	prefix  string
	timeout time.Duration
}

// NewRedisClient opens a client for the given address.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client redis.UniversalClient, prefix string, timeout time.Duration) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client cannot be nil")
	}
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &RedisStore{client: client, prefix: prefix, timeout: timeout}, nil
}

func (s *RedisStore) key(userID string) string {
	return s.prefix + userID
}

// Ping checks connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Put stores entry with a fresh TTL.
func (s *RedisStore) Put(ctx context.Context, entry Entry) error {
	entry.LastAccess = time.Now()
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode session for user %s: %w", entry.UserID, err)
	}
	if err := s.client.Set(ctx, s.key(entry.UserID), data, s.timeout).Err(); err != nil {
		return fmt.Errorf("failed to store session for user %s: %w", entry.UserID, err)
	}
	return nil
}

// Get loads the user's entry and extends its TTL.
func (s *RedisStore) Get(ctx context.Context, userID string) (Entry, bool, error) {
	data, err := s.client.GetEx(ctx, s.key(userID), s.timeout).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("failed to load session for user %s: %w", userID, err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return Entry{}, false, fmt.Errorf("failed to decode session for user %s: %w", userID, err)
	}
	entry.LastAccess = time.Now()
	return entry, true, nil
}

// Delete removes the user's entry.
func (s *RedisStore) Delete(ctx context.Context, userID string) error {
	return s.client.Del(ctx, s.key(userID)).Err()
}

// Len counts live session keys with SCAN.
func (s *RedisStore) Len(ctx context.Context) (int, error) {
	count := 0
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return count, nil
}

// Close releases the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
