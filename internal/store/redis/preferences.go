package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/eoltracker/internal/i18n"
)

// SaveLanguage stores the language picked by a session
func (s *Store) SaveLanguage(ctx context.Context, session string, lang i18n.Lang) error {
	if err := s.client.Set(ctx, LanguageKey(session), string(lang), s.preferenceTTL).Err(); err != nil {
		return fmt.Errorf("failed to save language preference: %w", err)
	}
	return nil
}

// LoadLanguage returns the stored language of a session. Unknown values
// are reported as missing.
func (s *Store) LoadLanguage(ctx context.Context, session string) (i18n.Lang, bool, error) {
	raw, err := s.client.Get(ctx, LanguageKey(session)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get language preference: %w", err)
	}

	lang, ok := i18n.Parse(raw)
	return lang, ok, nil
}

// CountPreferences returns how many sessions have a stored language
func (s *Store) CountPreferences(ctx context.Context) (int, error) {
	n := 0
	iter := s.client.Scan(ctx, 0, KeyPrefixPreference+"*", 0).Iterator()
	for iter.Next(ctx) {
		if _, ok := ExtractSession(iter.Val()); ok {
			n++
		}
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("failed to scan preferences: %w", err)
	}
	return n, nil
}
