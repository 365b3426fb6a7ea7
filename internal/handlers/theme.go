package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/a-h/templ"

	"themeswitch/internal/control"
	applog "themeswitch/internal/log"
	"themeswitch/internal/theme"
	"themeswitch/internal/views/layout"
	"themeswitch/internal/views/switcher"
)

// Page renders the document carrying the theme stylesheet and the switch. A
// misconfigured switch is left out and the page still renders.
func Page(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	m, err := mountSwitch(r)
	defer m.close()

	var header templ.Component
	switch {
	case err == nil:
		header = m.view.Component()
	case errors.Is(err, errSessionUnavailable):
		applog.Error(r.Context(), "theme switch unavailable", "error", err)
		http.Error(w, "session storage not available", http.StatusServiceUnavailable)
		return
	default:
		applog.Error(r.Context(), "rendering page without theme switch", "error", err)
	}

	head := make([]templ.Component, 0, len(m.sheets))
	for _, sheet := range m.sheets {
		head = append(head, sheet.Component())
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	page := layout.Page(settings.Title, head, header, layout.Text("Pick light, dark, or follow your system."))
	if err := page.Render(r.Context(), w); err != nil {
		applog.Error(r.Context(), "failed to render page", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

type themeResponse struct {
	control.State
	Options []string `json:"options"`
}

// Theme serves the current state on GET and applies a selection on POST.
func Theme(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		themeState(w, r)
	case http.MethodPost:
		updateTheme(w, r)
	default:
		applog.Debug(r.Context(), "theme request with unsupported method", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func mountOrFail(w http.ResponseWriter, r *http.Request) (*mounted, bool) {
	m, err := mountSwitch(r)
	if err == nil {
		return m, true
	}
	m.close()
	if errors.Is(err, errSessionUnavailable) {
		applog.Error(r.Context(), "theme switch unavailable", "error", err)
		http.Error(w, "session storage not available", http.StatusServiceUnavailable)
		return nil, false
	}
	applog.Error(r.Context(), "theme switch not configured", "error", err)
	http.Error(w, "theme switch not configured", http.StatusInternalServerError)
	return nil, false
}

func themeState(w http.ResponseWriter, r *http.Request) {
	m, ok := mountOrFail(w, r)
	if !ok {
		return
	}
	defer m.close()
	writeState(w, r, m.controller.State())
}

func writeState(w http.ResponseWriter, r *http.Request, state control.State) {
	resp := themeResponse{State: state, Options: optionValues(state)}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		applog.Error(r.Context(), "failed to encode theme response", "error", err)
	}
}

func optionValues(state control.State) []string {
	opts := theme.Options(state.Capability)
	values := make([]string, 0, len(opts))
	for _, opt := range opts {
		values = append(values, opt.Value)
	}
	return values
}

func updateTheme(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		applog.Error(r.Context(), "failed to parse theme form", "error", err)
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}

	m, ok := mountOrFail(w, r)
	if !ok {
		return
	}
	defer m.close()

	value := r.FormValue(switcher.FieldName)
	if !m.view.Submit(value) {
		applog.Debug(r.Context(), "received invalid theme selection", "value", value)
		http.Error(w, "invalid theme selection", http.StatusBadRequest)
		return
	}

	state := m.controller.State()
	applog.Debug(r.Context(), "theme selection applied", "value", value, "mode", state.Mode, "effective", state.Effective)

	switch {
	case isHTMX(r):
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		parts := []templ.Component{m.view.Component()}
		if m.sheet != nil {
			parts = append(parts, m.sheet.OutOfBand())
		}
		if err := layout.Fragment(parts...).Render(r.Context(), w); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	case wantsJSON(r):
		writeState(w, r, state)
	default:
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}
