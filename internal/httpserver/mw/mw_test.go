package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MrSnakeDoc/eoltracker/internal/logger"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestMatchHost(t *testing.T) {
	tests := []struct {
		host, pattern string
		want          bool
	}{
		{"eol.example.com", "eol.example.com", true},
		{"eol.example.com", "*.example.com", true},
		{"example.com", "*.example.com", false},
		{"evil-example.com", "*.example.com", false},
		{"eol.example.org", "*.example.com", false},
	}
	for _, tt := range tests {
		if got := matchHost(tt.host, tt.pattern); got != tt.want {
			t.Errorf("matchHost(%q, %q) = %v, want %v", tt.host, tt.pattern, got, tt.want)
		}
	}
}

func TestEnforceHost(t *testing.T) {
	h := EnforceHost([]string{"*.example.com"}, logger.Nop())(okHandler)

	r := httptest.NewRequest("GET", "/", nil)
	r.Host = "eol.example.com:8080"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Errorf("allowed host got %d", w.Code)
	}

	r.Host = "other.test"
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusForbidden {
		t.Errorf("foreign host got %d", w.Code)
	}
}

func TestAllowOnlyCIDRS(t *testing.T) {
	h := AllowOnlyCIDRS([]string{"10.0.0.0/8"}, false, logger.Nop())(okHandler)

	r := httptest.NewRequest("GET", "/infra", nil)
	r.RemoteAddr = "10.1.2.3:1234"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Errorf("inside CIDR got %d", w.Code)
	}

	r.RemoteAddr = "203.0.113.1:1234"
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusForbidden {
		t.Errorf("outside CIDR got %d", w.Code)
	}

	// Empty list is a passthrough.
	w = httptest.NewRecorder()
	AllowOnlyCIDRS(nil, false, logger.Nop())(okHandler).ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Errorf("passthrough got %d", w.Code)
	}
}

func TestLimiterRefill(t *testing.T) {
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	l := newLimiter(RateLimitConfig{Burst: 2, RefillPerIPPerMin: 6}, now)

	for i := 0; i < 2; i++ {
		if ok, _, _ := l.allow("1.2.3.4", now); !ok {
			t.Fatalf("request %d should pass", i+1)
		}
	}

	ok, remaining, retry := l.allow("1.2.3.4", now)
	if ok || remaining != 0 || retry != 10 {
		t.Fatalf("third request: ok=%v remaining=%d retry=%d, want false 0 10", ok, remaining, retry)
	}

	if ok, _, _ := l.allow("5.6.7.8", now); !ok {
		t.Error("buckets must be per IP")
	}

	if ok, _, _ := l.allow("1.2.3.4", now.Add(10*time.Second)); !ok {
		t.Error("a token should be back after 10s")
	}
}

func TestLimiterSweep(t *testing.T) {
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	l := newLimiter(RateLimitConfig{Burst: 1, IdleTTL: time.Minute, SweepInterval: time.Minute}, now)

	l.allow("1.2.3.4", now)
	l.allow("5.6.7.8", now.Add(2*time.Minute))

	if _, ok := l.visitors["1.2.3.4"]; ok {
		t.Error("idle visitor should have been swept")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	h := RateLimit(RateLimitConfig{Burst: 1, RefillPerIPPerMin: 1})(okHandler)

	r := httptest.NewRequest("GET", "/api/services/export.csv", nil)
	r.RemoteAddr = "198.51.100.4:999"

	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("first request got %d", w.Code)
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request got %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"https://dash.example.com"})(okHandler)

	r := httptest.NewRequest(http.MethodOptions, "/api/view/search", nil)
	r.Header.Set("Origin", "https://dash.example.com")
	r.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusNoContent {
		t.Errorf("preflight got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://dash.example.com" {
		t.Errorf("allow-origin = %q", got)
	}

	r = httptest.NewRequest(http.MethodGet, "/api/services", nil)
	r.Header.Set("Origin", "https://evil.test")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("unknown origin must not be allowed")
	}
}

func TestLogMiddlewareKeepsStatus(t *testing.T) {
	h := Log(logger.Nop(), false)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	if w.Code != http.StatusTeapot {
		t.Errorf("got %d", w.Code)
	}
}
