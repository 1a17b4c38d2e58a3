package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/MrSnakeDoc/eoltracker/internal/domain"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request deadline (default: 10s)

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Catalog source & loader
	CatalogSource   string         // URL (http/https) or file path (.json, .yaml, .yml)
	FetchTimeout    time.Duration  // per-attempt timeout for HTTP sources
	FetchAttempts   int            // total attempts, including the first (default: 3)
	RetryDelay      time.Duration  // wait before the 2nd attempt (default: 1s)
	RetryMultiplier int            // backoff multiplier applied per retry (default: 2)
	CacheTTL        time.Duration  // snapshot expiry (default: 24h)
	CacheDir        string         // file cache directory used by the CLI
	OfflineCheck    bool           // false => never report offline
	Location        *time.Location // zone used to decide what "today" is
	ReloadInterval  time.Duration  // periodic catalog reload (default: 1h)
	WatchSource     bool           // reload when a file source changes on disk

	// Classification thresholds, in days
	Thresholds domain.Thresholds

	// View
	SearchDebounce   time.Duration // quiet window before a search applies (default: 300ms)
	DefaultLanguage  string        // "en" | "ja"
	Collation        language.Tag  // locale used for name sorting
	SessionIdleTTL   time.Duration // idle sessions older than this are collected
	SessionGCPeriod  time.Duration // how often idle sessions are collected
	ExportBurst      int           // CSV export rate limit burst per IP
	ExportRefillMins int           // CSV export tokens refilled per IP per minute

	// Redis
	RedisAddr           string        // ex: "localhost:6379"
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisDT             time.Duration // Redis dial timeout (ex: 5s)
	RedisRT             time.Duration // Redis read timeout (ex: 3s)
	RedisWT             time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait        time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout    time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize       int           // Redis connection pool size
	RedisConnectTimeout time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval  time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold  int           // warn after this many attempts

	AllowedHosts []string // optional, restrict access to specific Host headers
	AllowedCIDRS []string // optional, restrict access to admin endpoints (e.g. "1.2.3.4, 10.0.0.0/8")
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
	CORSOrigins  []string // optional, origins allowed to call /api from a browser
	SecureCookie bool     // mark the session cookie Secure (behind HTTPS)
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("EOL_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("EOL_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("EOL_REQUEST_TIMEOUT", 10*time.Second),

		// Logging
		LogLevel:  getenv("EOL_LOG_LEVEL", "info"),
		PrettyLog: mustBool("EOL_PRETTY_LOG", true),

		// Catalog
		CatalogSource:   getenv("EOL_CATALOG_SOURCE", "data/eol-data.json"),
		FetchTimeout:    mustDuration("EOL_FETCH_TIMEOUT", 10*time.Second),
		FetchAttempts:   getenvInt("EOL_FETCH_ATTEMPTS", 3),
		RetryDelay:      mustDuration("EOL_RETRY_DELAY", time.Second),
		RetryMultiplier: getenvInt("EOL_RETRY_BACKOFF_MULTIPLIER", 2),
		CacheTTL:        mustDuration("EOL_CACHE_TTL", 24*time.Hour),
		CacheDir:        getenv("EOL_CACHE_DIR", defaultCacheDir()),
		OfflineCheck:    mustBool("EOL_OFFLINE_CHECK", true),
		Location:        mustLocation("EOL_TIMEZONE", time.Local),
		ReloadInterval:  mustDuration("EOL_RELOAD_INTERVAL", time.Hour),
		WatchSource:     mustBool("EOL_WATCH_SOURCE", true),

		Thresholds: domain.Thresholds{
			DeprecatedDays:    getenvInt("EOL_DEPRECATED_DAYS", domain.DefaultDeprecatedDays),
			HighUrgencyDays:   getenvInt("EOL_HIGH_URGENCY_DAYS", domain.DefaultHighUrgencyDays),
			MediumUrgencyDays: getenvInt("EOL_MEDIUM_URGENCY_DAYS", domain.DefaultMediumUrgencyDays),
		},

		// View
		SearchDebounce:   mustDuration("EOL_SEARCH_DEBOUNCE", 300*time.Millisecond),
		DefaultLanguage:  getenv("EOL_DEFAULT_LANGUAGE", "en"),
		Collation:        mustLanguage("EOL_COLLATION", language.English),
		SessionIdleTTL:   mustDuration("EOL_SESSION_IDLE_TTL", 24*time.Hour),
		SessionGCPeriod:  mustDuration("EOL_SESSION_GC_INTERVAL", time.Hour),
		ExportBurst:      getenvInt("EOL_EXPORT_BURST", 10),
		ExportRefillMins: getenvInt("EOL_EXPORT_REFILL_PER_MIN", 30),

		// Redis settings
		RedisAddr:           getenv("EOL_REDIS_ADDR", "localhost:6379"),
		RedisUser:           getenv("EOL_REDIS_USERNAME", ""),
		RedisPassword:       getenv("EOL_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("EOL_REDIS_DB", 0),
		RedisDT:             mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:        mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:       getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:  getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("EOL_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("EOL_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("EOL_TRUST_PROXY", false),
		CORSOrigins:  splitAndTrim(getenv("EOL_CORS_ORIGINS", "")),
		SecureCookie: mustBool("EOL_SECURE_COOKIE", false),
	}

	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("❌ FATAL: %v", err))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		if cfgCopy.RedisPassword != "" {
			cfgCopy.RedisPassword = "***REDACTED***"
		}
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// Validate rejects settings the loader and classifier cannot work with.
func (c *Config) Validate() error {
	if c.CatalogSource == "" {
		return fmt.Errorf("EOL_CATALOG_SOURCE must not be empty")
	}
	if c.FetchAttempts < 1 {
		return fmt.Errorf("EOL_FETCH_ATTEMPTS must be >= 1, got %d", c.FetchAttempts)
	}
	if c.RetryMultiplier < 1 {
		return fmt.Errorf("EOL_RETRY_BACKOFF_MULTIPLIER must be >= 1, got %d", c.RetryMultiplier)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("EOL_CACHE_TTL must be > 0, got %v", c.CacheTTL)
	}
	th := c.Thresholds
	if th.HighUrgencyDays < 0 || th.HighUrgencyDays > th.MediumUrgencyDays {
		return fmt.Errorf("urgency thresholds must satisfy 0 <= high (%d) <= medium (%d)",
			th.HighUrgencyDays, th.MediumUrgencyDays)
	}
	if th.DeprecatedDays < 0 {
		return fmt.Errorf("EOL_DEPRECATED_DAYS must be >= 0, got %d", th.DeprecatedDays)
	}
	if c.DefaultLanguage != "en" && c.DefaultLanguage != "ja" {
		return fmt.Errorf("EOL_DEFAULT_LANGUAGE must be en or ja, got %q", c.DefaultLanguage)
	}
	return nil
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func mustLocation(key string, def *time.Location) *time.Location {
	if v := os.Getenv(key); v != "" {
		loc, err := time.LoadLocation(v)
		if err != nil {
			panic(fmt.Sprintf("❌ FATAL: Invalid time zone for %s: %s", key, v))
		}
		return loc
	}
	return def
}

func mustLanguage(key string, def language.Tag) language.Tag {
	if v := os.Getenv(key); v != "" {
		tag, err := language.Parse(v)
		if err != nil {
			panic(fmt.Sprintf("❌ FATAL: Invalid language tag for %s: %s", key, v))
		}
		return tag
	}
	return def
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ".eoltracker-cache"
	}
	return dir + string(os.PathSeparator) + "eoltracker"
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
