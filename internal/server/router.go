package server

import (
	"context"
	"net/http"

	"themeswitch/internal/handlers"
	applog "themeswitch/internal/log"
	"themeswitch/internal/platform"
)

func newRouter(assetsDir string) http.Handler {
	mux := http.NewServeMux()
	applog.Debug(context.Background(), "registering http routes")
	mux.HandleFunc("/healthz", handlers.Health)
	applog.Debug(context.Background(), "route registered", "path", "/healthz")
	mux.Handle("/theme", withClientHints(http.HandlerFunc(handlers.Theme)))
	applog.Debug(context.Background(), "route registered", "path", "/theme")
	mux.Handle("/", withClientHints(http.HandlerFunc(handlers.Page)))
	applog.Debug(context.Background(), "route registered", "path", "/")
	mux.Handle("/assets/", http.StripPrefix("/assets/", http.FileServer(http.Dir(assetsDir))))
	applog.Debug(context.Background(), "route registered", "path", "/assets/", "static", true, "dir", assetsDir)
	return mux
}

// withClientHints requests the color-scheme client hint on every themed response.
func withClientHints(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		platform.ClientHintHeaders(w)
		next.ServeHTTP(w, r)
	})
}
