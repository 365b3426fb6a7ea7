package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/alexedwards/scs/v2"
	"gorm.io/gorm"

	"themeswitch/internal/handlers"
	applog "themeswitch/internal/log"
	"themeswitch/internal/sessionstore"
	"themeswitch/internal/views/switcher"
)

const defaultAssetsDir = "web/static"

// Config captures the runtime configuration for the HTTP server.
type Config struct {
	Addr      string
	AssetsDir string
	Session   SessionConfig
	Theme     handlers.Settings
	// Database persists session data when set; otherwise sessions live in memory.
	Database *gorm.DB
}

// SessionConfig controls session behavior for the HTTP server.
type SessionConfig struct {
	Lifetime        time.Duration
	CookieName      string
	CookieDomain    string
	CookieSecure    bool
	CleanupInterval time.Duration
}

// Server wraps an http.Server and the session cleanup loop.
type Server struct {
	config     Config
	httpServer *http.Server
	store      *sessionstore.Store

	mu          sync.Mutex
	stopCleanup context.CancelFunc
	cleanupDone <-chan struct{}
}

// New builds a new Server using the provided configuration.
func New(cfg Config) (*Server, error) {
	applog.Debug(context.Background(), "initializing server",
		"addr", cfg.Addr,
		"sessionLifetime", cfg.Session.Lifetime.String(),
		"sessionCookie", cfg.Session.CookieName,
	)

	sessionCfg := cfg.Session
	if sessionCfg.Lifetime <= 0 {
		applog.Debug(context.Background(), "session lifetime not provided, using default")
		sessionCfg.Lifetime = 12 * time.Hour
	}
	if strings.TrimSpace(sessionCfg.CookieName) == "" {
		applog.Debug(context.Background(), "session cookie name not provided, using default")
		sessionCfg.CookieName = "themeswitch_session"
	}
	if strings.TrimSpace(cfg.AssetsDir) == "" {
		cfg.AssetsDir = defaultAssetsDir
	}
	if cfg.Theme.StylesheetID == "" && len(cfg.Theme.Stylesheets) == 0 {
		cfg.Theme = handlers.DefaultSettings()
	}
	if _, err := switcher.ParseVariant(string(cfg.Theme.Variant)); err != nil {
		return nil, fmt.Errorf("theme view: %w", err)
	}

	sessionManager := scs.New()
	sessionManager.Lifetime = sessionCfg.Lifetime
	sessionManager.Cookie.Name = sessionCfg.CookieName
	sessionManager.Cookie.Domain = sessionCfg.CookieDomain
	sessionManager.Cookie.HttpOnly = true
	// non-persistent cookie: the token is dropped when the browser closes
	sessionManager.Cookie.Persist = false
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode
	sessionManager.Cookie.Secure = sessionCfg.CookieSecure

	srv := &Server{config: cfg}
	if cfg.Database != nil {
		store, err := sessionstore.New(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("session store: %w", err)
		}
		sessionManager.Store = store
		srv.store = store
		applog.Debug(context.Background(), "session data stored in database")
	}

	applog.Debug(context.Background(), "session manager configured",
		"cookieName", sessionCfg.CookieName,
		"cookieDomain", sessionCfg.CookieDomain,
		"cookieSecure", sessionCfg.CookieSecure,
	)

	handlers.Configure(sessionManager, cfg.Theme)
	srv.config.Session = sessionCfg

	applog.Debug(context.Background(), "handler dependencies configured",
		"stylesheet", cfg.Theme.StylesheetID,
		"variant", cfg.Theme.Variant,
	)

	srv.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           sessionManager.LoadAndSave(newRouter(cfg.AssetsDir)),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv, nil
}

// Start begins serving HTTP traffic using the underlying http.Server.
func (s *Server) Start() error {
	if s.store != nil && s.config.Session.CleanupInterval > 0 {
		ctx, cancel := context.WithCancel(context.Background())
		s.mu.Lock()
		s.stopCleanup = cancel
		s.cleanupDone = s.store.StartCleanup(ctx, s.config.Session.CleanupInterval)
		s.mu.Unlock()
	}
	applog.Debug(context.Background(), "server starting listener", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop gracefully shuts down the HTTP server with a timeout.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	applog.Debug(ctx, "server initiating graceful shutdown")
	s.mu.Lock()
	stop, done := s.stopCleanup, s.cleanupDone
	s.stopCleanup = nil
	s.mu.Unlock()
	if stop != nil {
		stop()
		<-done
	}
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the configured HTTP handler, enabling integration tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
