package catalog

import (
	"context"
	"net"
	"net/url"
	"time"
)

// ConnectivityProbe answers "are we online?" before any cache read or fetch.
type ConnectivityProbe interface {
	Online(ctx context.Context) bool
}

// ProbeFunc adapts a plain function to ConnectivityProbe.
type ProbeFunc func(ctx context.Context) bool

func (f ProbeFunc) Online(ctx context.Context) bool { return f(ctx) }

// AlwaysOnline never reports offline. Used for file sources and when the
// check is disabled.
var AlwaysOnline ProbeFunc = func(context.Context) bool { return true }

// DialProbe reports online when a TCP connection to Addr succeeds.
type DialProbe struct {
	Addr    string
	Timeout time.Duration
}

func (p DialProbe) Online(ctx context.Context) bool {
	d := net.Dialer{Timeout: p.Timeout}
	conn, err := d.DialContext(ctx, "tcp", p.Addr)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// NewProbe returns the probe matching a catalog source. Remote sources
// are probed by dialing their host; local files are always reachable.
func NewProbe(source string, enabled bool, timeout time.Duration) ConnectivityProbe {
	if !enabled || !IsURL(source) {
		return AlwaysOnline
	}

	u, err := url.Parse(source)
	if err != nil || u.Host == "" {
		return AlwaysOnline
	}

	port := u.Port()
	if port == "" {
		port = "80"
		if u.Scheme == "https" {
			port = "443"
		}
	}
	return DialProbe{Addr: net.JoinHostPort(u.Hostname(), port), Timeout: timeout}
}
