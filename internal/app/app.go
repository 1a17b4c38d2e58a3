package app

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/eoltracker/internal/config"
	"github.com/MrSnakeDoc/eoltracker/internal/httpserver"
	"github.com/MrSnakeDoc/eoltracker/internal/httpserver/deps"
	"github.com/MrSnakeDoc/eoltracker/internal/i18n"
	"github.com/MrSnakeDoc/eoltracker/internal/index"
	"github.com/MrSnakeDoc/eoltracker/internal/logger"
	"github.com/MrSnakeDoc/eoltracker/internal/redis"
	"github.com/MrSnakeDoc/eoltracker/internal/scheduler"
	"github.com/MrSnakeDoc/eoltracker/internal/sources/catalog"
	redisstore "github.com/MrSnakeDoc/eoltracker/internal/store/redis"
	"github.com/MrSnakeDoc/eoltracker/internal/utils"
	"github.com/MrSnakeDoc/eoltracker/internal/version"
	"github.com/MrSnakeDoc/eoltracker/internal/view"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	memIndex    *index.MemoryIndex
	reloader    *scheduler.CatalogReloader
	collector   *scheduler.SessionCollector
	watcher     *scheduler.SourceWatcher // nil for URL sources or when disabled
}

// New wires the server. Redis is optional: without it the catalog is not
// cached between restarts and language preferences live only in memory.
func New(ctx context.Context, cfg *config.Config, loggerClient logger.Logger) *App {
	var (
		redisClient *goredis.Client
		store       *redisstore.Store
		cache       catalog.SnapshotCache
		prefs       view.PreferenceStore
		pinger      deps.Pinger
	)

	if cfg.RedisAddr != "" {
		client, err := redis.New(ctx, redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			RedisDB:        cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, loggerClient)
		if err != nil {
			loggerClient.Warn("continuing without redis", logger.Error(err))
		} else {
			redisClient = client
			store = redisstore.NewStore(client, cfg.CacheTTL)
			cache, prefs, pinger = store, store, store
		}
	} else {
		loggerClient.Info("redis not configured, catalog cache and preferences disabled")
	}

	memIndex := index.NewMemoryIndex()
	loader := NewLoader(cfg, cache, loggerClient)

	sessions := view.NewSessions(memIndex, prefs, loggerClient, view.Options{
		Debounce:  cfg.SearchDebounce,
		Collation: cfg.Collation,
	})

	reloadTrigger := make(chan struct{}, 1)
	reloader := scheduler.NewCatalogReloader(loader, memIndex, loggerClient, cfg.ReloadInterval, reloadTrigger, nil)
	reloader.OnReload(sessions.ReloadAll)

	collector := scheduler.NewSessionCollector(sessions, loggerClient, cfg.SessionGCPeriod, cfg.SessionIdleTTL, nil)

	var watcher *scheduler.SourceWatcher
	if cfg.WatchSource && !catalog.IsURL(cfg.CatalogSource) {
		w, err := scheduler.NewSourceWatcher(cfg.CatalogSource, reloadTrigger, loggerClient, 0, nil)
		if err != nil {
			loggerClient.Warn("catalog file will not be watched", logger.Error(err))
		} else {
			watcher = w
		}
	}

	defaultLang, _ := i18n.Parse(cfg.DefaultLanguage)

	d := deps.Deps{
		Logger:          loggerClient,
		StartTime:       time.Now(),
		Version:         version.Version,
		Commit:          version.Commit,
		BuildDate:       version.BuildDate,
		GoVersion:       version.GoVersion,
		TimeNow:         time.Now,
		AllowedHosts:    cfg.AllowedHosts,
		AllowedCIDRS:    cfg.AllowedCIDRS,
		TrustProxy:      cfg.TrustProxy,
		CORSOrigins:     cfg.CORSOrigins,
		CatalogSource:   cfg.CatalogSource,
		Location:        cfg.Location,
		DefaultLanguage: defaultLang,
		Collation:       cfg.Collation,
		ExportBurst:     cfg.ExportBurst,
		ExportRefill:    cfg.ExportRefillMins,
		SecureCookies:   cfg.SecureCookie,
		RequestTimeout:  cfg.RequestTimeout,
		MemoryIndex:     memIndex,
		Loader:          loader,
		Redis:           pinger,
		Sessions:        sessions,
		ReloadTrigger:   reloadTrigger,
	}

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      httpserver.New(cfg, loggerClient, d),
		redisClient: redisClient,
		memIndex:    memIndex,
		reloader:    reloader,
		collector:   collector,
		watcher:     watcher,
	}
}

// Run serves until ctx is canceled or the HTTP server fails.
func (a *App) Run(ctx context.Context) error {
	a.logger.Infof("🚀 Starting EOL tracker %s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Info("build info",
		logger.String("version", version.Version),
		logger.String("commit", version.Commit),
		logger.String("built", version.BuildDate),
		logger.String("go", version.GoVersion))

	// A failed first load is served as an error until the next reload.
	if err := a.reloader.Start(ctx); err != nil {
		a.logger.Warn("initial catalog load failed", logger.Error(err))
	}
	a.logger.Info("catalog reloader started",
		logger.Int("services", a.memIndex.Count()),
		logger.Duration("interval", a.cfg.ReloadInterval),
		logger.String("source", a.cfg.CatalogSource))

	a.collector.Start(ctx)
	a.logger.Info("session collector started",
		logger.Duration("interval", a.cfg.SessionGCPeriod),
		logger.Duration("idle_ttl", a.cfg.SessionIdleTTL))

	if a.watcher != nil {
		a.watcher.Start(ctx)
		a.logger.Info("watching catalog file", logger.String("path", a.cfg.CatalogSource))
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case runErr = <-errCh:
	}

	if a.watcher != nil {
		a.watcher.Stop()
	}
	a.reloader.Stop()
	a.collector.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		utils.MustClose(a.redisClient, a.logger, "redis")
	}

	if runErr != nil {
		return runErr
	}
	a.logger.Info("✅ EOL tracker stopped cleanly")
	return nil
}
