package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures the runtime configuration for the application.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logging  LoggingConfig
	Session  SessionConfig
	Theme    ThemeConfig
}

// ServerConfig configures the HTTP server runtime behavior.
type ServerConfig struct {
	Addr string
}

// DatabaseConfig contains the session database connection settings. An empty
// URL with UseMock disabled keeps sessions in memory.
type DatabaseConfig struct {
	URL             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	UseMock         bool
}

// LoggingConfig controls the global logger.
type LoggingConfig struct {
	Level string
}

// SessionConfig controls the session cookie and server-side cleanup.
type SessionConfig struct {
	Lifetime        time.Duration
	CookieName      string
	CookieDomain    string
	CookieSecure    bool
	CleanupInterval time.Duration
}

// ThemeConfig describes the mounted theme switch.
type ThemeConfig struct {
	StylesheetID   string
	StylesheetHref string
	View           string
	LightAccent    string
	DarkAccent     string
}

// Load inspects the environment and builds a Config value.
func Load() (Config, error) {
	cfg := Config{}

	cfg.Server = ServerConfig{
		Addr: firstNonEmpty(
			os.Getenv("SERVER_ADDR"),
			os.Getenv("ADDR"),
			":8080",
		),
	}

	cfg.Database = DatabaseConfig{
		URL: firstNonEmpty(
			os.Getenv("DATABASE_URL"),
			os.Getenv("DB_URL"),
		),
		MaxIdleConns:    parseIntWithDefault(os.Getenv("DATABASE_MAX_IDLE_CONNS"), 2),
		MaxOpenConns:    parseIntWithDefault(os.Getenv("DATABASE_MAX_OPEN_CONNS"), 10),
		ConnMaxLifetime: parseDurationWithDefault(os.Getenv("DATABASE_CONN_MAX_LIFETIME"), time.Hour),
		ConnMaxIdleTime: parseDurationWithDefault(os.Getenv("DATABASE_CONN_MAX_IDLE_TIME"), 15*time.Minute),
		UseMock:         parseBoolWithDefault(os.Getenv("DATABASE_USE_MOCK"), false),
	}

	cfg.Logging = LoggingConfig{
		Level: firstNonEmpty(os.Getenv("LOG_LEVEL"), "info"),
	}

	cfg.Session = SessionConfig{
		Lifetime:        parseDurationWithDefault(os.Getenv("SESSION_LIFETIME"), 12*time.Hour),
		CookieName:      firstNonEmpty(os.Getenv("SESSION_COOKIE_NAME"), "themeswitch_session"),
		CookieDomain:    strings.TrimSpace(os.Getenv("SESSION_COOKIE_DOMAIN")),
		CookieSecure:    parseBoolWithDefault(os.Getenv("SESSION_COOKIE_SECURE"), true),
		CleanupInterval: parseDurationWithDefault(os.Getenv("SESSION_CLEANUP_INTERVAL"), 5*time.Minute),
	}

	cfg.Theme = ThemeConfig{
		StylesheetID:   firstNonEmpty(os.Getenv("THEME_STYLESHEET_ID"), "dark-theme"),
		StylesheetHref: firstNonEmpty(os.Getenv("THEME_STYLESHEET_HREF"), "/assets/dark.css"),
		View:           firstNonEmpty(os.Getenv("THEME_VIEW"), "buttons"),
		LightAccent:    strings.TrimSpace(os.Getenv("THEME_LIGHT_ACCENT")),
		DarkAccent:     strings.TrimSpace(os.Getenv("THEME_DARK_ACCENT")),
	}

	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return Config{}, fmt.Errorf("server address must not be empty")
	}

	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

func parseIntWithDefault(value string, def int) int {
	if strings.TrimSpace(value) == "" {
		return def
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return def
	}
	return parsed
}

func parseDurationWithDefault(value string, def time.Duration) time.Duration {
	if strings.TrimSpace(value) == "" {
		return def
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return def
	}
	return parsed
}

func parseBoolWithDefault(value string, def bool) bool {
	if strings.TrimSpace(value) == "" {
		return def
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return def
	}
	return parsed
}
