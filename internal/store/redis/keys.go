package redis

import "strings"

const (
	// KeyCatalogSnapshot holds the last classified catalog as JSON
	KeyCatalogSnapshot = "eol:cache:catalog"
	// KeyCatalogTimestamp holds the snapshot save time in Unix milliseconds
	KeyCatalogTimestamp = "eol:cache:catalog:timestamp"
	// KeyPrefixPreference is the prefix for per-session preference keys
	KeyPrefixPreference = "eol:pref:"
)

// LanguageKey returns the Redis key for the language of a session
func LanguageKey(session string) string {
	return KeyPrefixPreference + session + ":language"
}

// ExtractSession extracts the session id from a preference key
func ExtractSession(key string) (string, bool) {
	rest, ok := strings.CutPrefix(key, KeyPrefixPreference)
	if !ok {
		return "", false
	}
	i := strings.LastIndexByte(rest, ':')
	if i <= 0 {
		return "", false
	}
	return rest[:i], true
}
