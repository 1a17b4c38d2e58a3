package deps

import (
	"context"
	"time"

	"golang.org/x/text/language"

	"github.com/MrSnakeDoc/eoltracker/internal/i18n"
	"github.com/MrSnakeDoc/eoltracker/internal/index"
	"github.com/MrSnakeDoc/eoltracker/internal/logger"
	"github.com/MrSnakeDoc/eoltracker/internal/sources/catalog"
	"github.com/MrSnakeDoc/eoltracker/internal/view"
)

// LoaderStatus exposes the catalog loader state for /infra.
type LoaderStatus interface {
	State() (catalog.State, error)
	LastSuccess() time.Time
}

// Pinger checks a backing service.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Logger          logger.Logger
	StartTime       time.Time
	Version         string
	Commit          string
	BuildDate       string
	GoVersion       string
	TimeNow         func() time.Time // for testing, defaults to time.Now
	AllowedHosts    []string         // Host headers allowed to access the server
	AllowedCIDRS    []string         // IPs allowed to access admin endpoints
	TrustProxy      bool             // true if running behind a trusted reverse proxy (e.g., cloudflared)
	CORSOrigins     []string         // browser origins allowed to call /api
	CatalogSource   string           // URL or path of the catalog document
	Location        *time.Location   // zone used to decide what "today" is
	DefaultLanguage i18n.Lang        // used when neither lang nor Accept-Language decide
	Collation       language.Tag     // locale used for name sorting
	ExportBurst     int              // CSV exports allowed in a burst per IP
	ExportRefill    int              // CSV export tokens refilled per IP per minute
	SecureCookies   bool             // set the Secure flag on the session cookie
	RequestTimeout  time.Duration    // per-request deadline, 0 => 10s

	MemoryIndex   *index.MemoryIndex // published catalog
	Loader        LoaderStatus       // nil => not reported
	Redis         Pinger             // nil => running without Redis
	Sessions      *view.Sessions     // per-session view controllers
	ReloadTrigger chan struct{}      // manual reload channel
}

// Now returns TimeNow() or time.Now().
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
