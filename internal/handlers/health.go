package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	applog "themeswitch/internal/log"
)

type healthResponse struct {
	Status   string    `json:"status"`
	Sessions bool      `json:"sessions"`
	Time     time.Time `json:"time"`
}

// Health is a readiness handler suitable for infrastructure probes. It
// reports degraded when no session storage is configured.
func Health(w http.ResponseWriter, r *http.Request) {
	applog.Debug(r.Context(), "health check requested", "method", r.Method)
	resp := healthResponse{
		Status:   "ok",
		Sessions: sessionManager != nil,
		Time:     time.Now().UTC(),
	}
	if !resp.Sessions {
		resp.Status = "degraded"
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		applog.Error(r.Context(), "failed to encode health response", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
