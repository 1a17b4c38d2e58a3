package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultSnapshotTTL is how long Redis keeps a catalog snapshot (24 hours)
	DefaultSnapshotTTL = 24 * time.Hour
	// DefaultPreferenceTTL is how long an unused language preference survives
	DefaultPreferenceTTL = 90 * 24 * time.Hour
)

// Store handles Redis operations for the catalog snapshot and preferences
type Store struct {
	client        redis.UniversalClient
	snapshotTTL   time.Duration
	preferenceTTL time.Duration
}

// NewStore creates a new Redis store. A zero snapshotTTL uses the default.
func NewStore(client redis.UniversalClient, snapshotTTL time.Duration) *Store {
	if snapshotTTL <= 0 {
		snapshotTTL = DefaultSnapshotTTL
	}
	return &Store{
		client:        client,
		snapshotTTL:   snapshotTTL,
		preferenceTTL: DefaultPreferenceTTL,
	}
}

// Ping checks that Redis answers
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}
