package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"

	"themeswitch/internal/control"
	"themeswitch/internal/platform"
	"themeswitch/internal/preference"
	"themeswitch/internal/views/switcher"
)

// Stylesheet is a theme stylesheet declared on the page.
type Stylesheet struct {
	ID   string
	Href string
}

// Settings describes the page and the switch mounted on it.
type Settings struct {
	Title        string
	Stylesheets  []Stylesheet
	StylesheetID string
	Variant      switcher.Variant
	Presentation switcher.Presentation
}

// DefaultSettings declares a single dark stylesheet driven by a button switch.
func DefaultSettings() Settings {
	return Settings{
		Title:        "Theme switch",
		Stylesheets:  []Stylesheet{{ID: "dark-theme", Href: "/assets/dark.css"}},
		StylesheetID: "dark-theme",
		Variant:      switcher.VariantButtons,
	}
}

var (
	sessionManager *scs.SessionManager
	settings       = DefaultSettings()
)

var errSessionUnavailable = errors.New("session storage not configured")

// Configure installs the shared dependencies used by the HTTP handlers.
func Configure(sm *scs.SessionManager, s Settings) {
	sessionManager = sm
	if strings.TrimSpace(s.Title) == "" {
		s.Title = DefaultSettings().Title
	}
	settings = s
}

// mounted is one switch instance living for the duration of a request.
type mounted struct {
	controller *control.Controller
	sheets     switcher.Sheets
	sheet      *switcher.Stylesheet
	view       *switcher.Switch
}

func (m *mounted) close() {
	if m != nil && m.controller != nil {
		m.controller.Dispose()
	}
}

func declaredSheets() switcher.Sheets {
	sheets := make(switcher.Sheets, 0, len(settings.Stylesheets))
	for _, s := range settings.Stylesheets {
		sheets = append(sheets, switcher.NewStylesheet(s.ID, s.Href))
	}
	return sheets
}

// mountSwitch mounts a controller backed by the request's session. On a
// configuration error the declared stylesheets are still returned so the page
// can render without the switch.
func mountSwitch(r *http.Request) (*mounted, error) {
	m := &mounted{sheets: declaredSheets()}
	if sessionManager == nil {
		return m, errSessionUnavailable
	}

	view, err := switcher.New(settings.Variant, settings.Presentation)
	if err != nil {
		return m, &control.ConfigurationError{Parameter: "variant", Value: string(settings.Variant), Err: control.ErrInvalidParameter}
	}

	controller, err := control.Mount(control.MountConfig{
		StylesheetID: settings.StylesheetID,
		Targets:      m.sheets,
		Store:        preference.Session(sessionManager, r.Context()),
		Signal:       platform.FromRequest(r),
	})
	if err != nil {
		return m, err
	}

	target, _ := m.sheets.Lookup(strings.TrimSpace(settings.StylesheetID))
	m.sheet, _ = target.(*switcher.Stylesheet)
	m.controller = controller
	m.view = view
	controller.Bind(view)
	return m, nil
}
