package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/park285/cheese-board/internal/config"
	"github.com/park285/cheese-board/internal/httpapi"
	"github.com/park285/cheese-board/internal/live"
	"github.com/park285/cheese-board/internal/msgcat"
	"github.com/park285/cheese-board/internal/obslog"
	"github.com/park285/cheese-board/internal/render"
	"github.com/park285/cheese-board/internal/session"
	"go.uber.org/zap"
)

// App holds the wired server components.
type App struct {
	Config  *config.AppConfig
	Catalog *msgcat.Catalog
	Store   session.Store
	Repo    *session.Repository // nil without DATABASE_URL
	Manager *session.Manager
	HTTP    *httpapi.Server
	Live    *live.Handler
	WS      *live.Server
}

// New builds every component from cfg. Postgres archiving is enabled only
// when DATABASE_URL is set.
func New(ctx context.Context, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}

	cat, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}

	a := &App{Config: cfg, Catalog: cat}
	switch cfg.SessionStore {
	case config.StoreRedis:
		rdb, err := session.DialRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("init redis: %w", err)
		}
		a.Store = session.NewRedisStore(rdb, cfg.SessionTTL())
	default:
		a.Store = session.NewMemoryStore(session.WithTTL(cfg.SessionTTL()))
	}

	opts := []session.Option{session.WithMaxSessions(cfg.MaxSessions)}
	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		repo, err := session.NewRepository(cfg.DatabaseURL)
		if err != nil {
			_ = a.Store.Close()
			return nil, fmt.Errorf("init postgres: %w", err)
		}
		a.Repo = repo
		opts = append(opts, session.WithArchive(repo))
	}

	a.Manager = session.NewManager(a.Store, opts...)
	a.HTTP = httpapi.New(a.Manager, render.New(0), cat)
	a.Live = live.NewHandler(a.Manager, cat, cfg.AllowedOrigins)
	a.WS = live.NewServer(cfg.WSAddr, a.Live)

	obslog.L().Info("app_ready",
		zap.String("store", cfg.SessionStore),
		zap.Bool("archive", a.Repo != nil),
		zap.Int("max_sessions", cfg.MaxSessions),
	)
	return a, nil
}

// Run serves HTTP and websocket traffic until ctx is done or a listener fails.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 2)
	go func() { errCh <- a.HTTP.ListenAndServe(a.Config.HTTPAddr) }()
	go func() { errCh <- a.WS.ListenAndServe() }()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
		obslog.L().Error("listener_failed", zap.Error(runErr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.HTTP.Shutdown(shutdownCtx); err != nil {
		obslog.L().Warn("http_shutdown_error", zap.Error(err))
	}
	if err := a.WS.Shutdown(shutdownCtx); err != nil {
		obslog.L().Warn("ws_shutdown_error", zap.Error(err))
	}
	return runErr
}

// Close releases storage connections.
func (a *App) Close() error {
	var firstErr error
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			firstErr = err
		}
	}
	if a.Repo != nil {
		if err := a.Repo.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
