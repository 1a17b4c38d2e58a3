package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MrSnakeDoc/eoltracker/internal/utils"
)

// maxPayloadSize caps how much of a catalog response is read.
const maxPayloadSize = 16 << 20

// Fetcher retrieves one raw catalog payload. Implementations report
// failures as *LoadError so the loader can tell retryable kinds apart.
type Fetcher interface {
	Fetch(ctx context.Context) (*Payload, error)
}

// NewFetcher picks a fetcher for source: http(s) URLs are fetched over
// HTTP, everything else is read from disk.
func NewFetcher(source string, timeout time.Duration) Fetcher {
	if IsURL(source) {
		return &HTTPFetcher{
			URL:    source,
			Client: &http.Client{Timeout: timeout},
		}
	}
	return &FileFetcher{Path: source}
}

// IsURL reports whether source is fetched over HTTP.
func IsURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// ─────────────────────────────────────────────────────────────────
// HTTP
// ─────────────────────────────────────────────────────────────────

type HTTPFetcher struct {
	URL    string
	Client *http.Client
}

func (f *HTTPFetcher) Fetch(ctx context.Context) (*Payload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return nil, &LoadError{Kind: KindClientError, Err: fmt.Errorf("invalid catalog url: %w", err)}
	}
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &LoadError{Kind: KindUnknown, Err: err}
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		kind := KindClientError
		if resp.StatusCode >= 500 {
			kind = KindServerError
		}
		return nil, &LoadError{Kind: kind, Status: resp.StatusCode, Err: fmt.Errorf("GET %s: %s", f.URL, resp.Status)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadSize))
	if err != nil {
		return nil, &LoadError{Kind: KindUnknown, Err: fmt.Errorf("failed to read catalog response: %w", err)}
	}

	return &Payload{Data: data, Format: formatOf(f.URL, resp.Header.Get("Content-Type"))}, nil
}

// ─────────────────────────────────────────────────────────────────
// File
// ─────────────────────────────────────────────────────────────────

type FileFetcher struct {
	Path string
}

func (f *FileFetcher) Fetch(_ context.Context) (*Payload, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		kind := KindUnknown
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			kind = KindClientError
		}
		return nil, &LoadError{Kind: kind, Err: fmt.Errorf("failed to read catalog file: %w", err)}
	}
	return &Payload{Data: data, Format: formatOf(f.Path, "")}, nil
}

// formatOf guesses the payload format from a content type, then from the
// file extension. JSON is the default.
func formatOf(name, contentType string) Format {
	if strings.Contains(contentType, "yaml") {
		return FormatYAML
	}
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}
