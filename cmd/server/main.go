package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"gorm.io/gorm"

	"themeswitch/internal/config"
	"themeswitch/internal/db"
	"themeswitch/internal/db/mock"
	"themeswitch/internal/handlers"
	applog "themeswitch/internal/log"
	"themeswitch/internal/server"
	"themeswitch/internal/views/switcher"
)

type serverLifecycle interface {
	Start() error
	Stop() error
}

var (
	loadConfigFunc      = config.Load
	setLogLevelFunc     = applog.SetLevel
	newMockDatabaseFunc = mock.New
	configureDatabase   = db.Configure
	newServerFunc       = func(cfg server.Config) (serverLifecycle, error) {
		return server.New(cfg)
	}
	subscribeShutdownSig = func() (<-chan os.Signal, func()) {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGTERM, syscall.SIGINT)
		return ch, func() { signal.Stop(ch) }
	}
)

func main() {
	os.Exit(run(context.Background()))
}

func run(ctx context.Context) int {
	cfg, err := loadConfigFunc()
	if err != nil {
		applog.Error(ctx, "failed to load configuration", "error", err)
		return 1
	}
	if err := setLogLevelFunc(cfg.Logging.Level); err != nil {
		applog.Error(ctx, "invalid log level", "level", cfg.Logging.Level, "error", err)
		return 1
	}

	database, err := openDatabase(ctx, cfg.Database)
	if err != nil {
		applog.Error(ctx, "failed to configure session database", "error", err)
		return 1
	}

	theme, err := themeSettings(cfg.Theme)
	if err != nil {
		applog.Error(ctx, "invalid theme configuration", "error", err)
		return 1
	}

	srv, err := newServerFunc(server.Config{
		Addr: cfg.Server.Addr,
		Session: server.SessionConfig{
			Lifetime:        cfg.Session.Lifetime,
			CookieName:      cfg.Session.CookieName,
			CookieDomain:    cfg.Session.CookieDomain,
			CookieSecure:    cfg.Session.CookieSecure,
			CleanupInterval: cfg.Session.CleanupInterval,
		},
		Theme:    theme,
		Database: database,
	})
	if err != nil {
		applog.Error(ctx, "failed to build server", "error", err)
		return 1
	}

	shutdown, unsubscribe := subscribeShutdownSig()
	defer unsubscribe()

	errCh := make(chan error, 1)
	go func() {
		applog.Info(ctx, "starting http server", "addr", cfg.Server.Addr)
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			applog.Error(ctx, "server encountered an error", "error", err)
			return 1
		}
		return 0
	case sig := <-shutdown:
		applog.Info(ctx, "shutting down http server", "signal", sig.String())
	}

	if err := srv.Stop(); err != nil {
		applog.Error(ctx, "graceful shutdown failed", "error", err)
		return 1
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		applog.Error(ctx, "server exited with error", "error", err)
		return 1
	}
	return 0
}

// openDatabase returns nil when sessions should stay in memory.
func openDatabase(ctx context.Context, cfg config.DatabaseConfig) (*gorm.DB, error) {
	switch {
	case cfg.UseMock:
		applog.Info(ctx, "using in-memory sqlite session database")
		return newMockDatabaseFunc(ctx)
	case cfg.URL != "":
		return configureDatabase(cfg)
	default:
		applog.Info(ctx, "no database configured; sessions kept in process memory")
		return nil, nil
	}
}

func themeSettings(cfg config.ThemeConfig) (handlers.Settings, error) {
	variant, err := switcher.ParseVariant(cfg.View)
	if err != nil {
		return handlers.Settings{}, err
	}
	settings := handlers.DefaultSettings()
	settings.Stylesheets = []handlers.Stylesheet{{ID: cfg.StylesheetID, Href: cfg.StylesheetHref}}
	settings.StylesheetID = cfg.StylesheetID
	settings.Variant = variant
	settings.Presentation = switcher.Presentation{
		LightAccent: cfg.LightAccent,
		DarkAccent:  cfg.DarkAccent,
	}
	return settings, nil
}
