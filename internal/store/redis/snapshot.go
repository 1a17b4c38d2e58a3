package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoadSnapshot returns the cached catalog and the time it was saved.
// ok is false when either key is missing. An unreadable timestamp yields
// a zero savedAt, which callers treat as expired.
func (s *Store) LoadSnapshot(ctx context.Context) ([]byte, time.Time, bool, error) {
	vals, err := s.client.MGet(ctx, KeyCatalogSnapshot, KeyCatalogTimestamp).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, time.Time{}, false, nil
		}
		return nil, time.Time{}, false, fmt.Errorf("failed to get catalog snapshot: %w", err)
	}

	data, ok := vals[0].(string)
	if !ok {
		return nil, time.Time{}, false, nil
	}
	ts, ok := vals[1].(string)
	if !ok {
		return nil, time.Time{}, false, nil
	}

	return []byte(data), parseTimestamp(ts), true, nil
}

// SaveSnapshot stores the catalog and its timestamp together
func (s *Store) SaveSnapshot(ctx context.Context, data []byte, savedAt time.Time) error {
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, KeyCatalogSnapshot, data, s.snapshotTTL)
	pipe.Set(ctx, KeyCatalogTimestamp, formatTimestamp(savedAt), s.snapshotTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save catalog snapshot: %w", err)
	}
	return nil
}

// ClearSnapshot removes both snapshot keys
func (s *Store) ClearSnapshot(ctx context.Context) error {
	if err := s.client.Del(ctx, KeyCatalogSnapshot, KeyCatalogTimestamp).Err(); err != nil {
		return fmt.Errorf("failed to clear catalog snapshot: %w", err)
	}
	return nil
}

func formatTimestamp(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

func parseTimestamp(s string) time.Time {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
