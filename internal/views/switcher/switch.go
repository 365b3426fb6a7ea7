package switcher

import (
	"fmt"
	"strings"
	"sync"

	"github.com/a-h/templ"

	"themeswitch/internal/control"
	"themeswitch/internal/theme"
)

// Variant selects how the options are presented.
type Variant string

const (
	VariantButtons Variant = "buttons"
	VariantRadio   Variant = "radio"
)

const (
	// DefaultEndpoint receives submitted selections.
	DefaultEndpoint = "/theme"
	// FieldName is the form field carrying the selected option.
	FieldName = "theme"
	// ElementID identifies the rendered switch for partial swaps.
	ElementID = "theme-switch"

	defaultLightAccent = "black"
)

// ParseVariant accepts "buttons" or "radio"; empty selects buttons.
func ParseVariant(value string) (Variant, error) {
	switch Variant(strings.ToLower(strings.TrimSpace(value))) {
	case "", VariantButtons:
		return VariantButtons, nil
	case VariantRadio:
		return VariantRadio, nil
	}
	return "", fmt.Errorf("unknown switch variant: %s", value)
}

// Presentation carries the optional styling parameters of a switch.
type Presentation struct {
	LightAccent string
	DarkAccent  string
	Endpoint    string
}

func (p Presentation) withDefaults() Presentation {
	if strings.TrimSpace(p.LightAccent) == "" {
		p.LightAccent = defaultLightAccent
	}
	if strings.TrimSpace(p.DarkAccent) == "" {
		p.DarkAccent = p.LightAccent
	}
	if strings.TrimSpace(p.Endpoint) == "" {
		p.Endpoint = DefaultEndpoint
	}
	return p
}

// Accent returns the accent color for the effective theme.
func (p Presentation) Accent(t theme.Theme) string {
	p = p.withDefaults()
	if t == theme.Dark {
		return p.DarkAccent
	}
	return p.LightAccent
}

// Switch renders the latest controller state and turns submissions into intents.
type Switch struct {
	variant      Variant
	presentation Presentation

	mu       sync.Mutex
	state    control.State
	rendered bool
	intent   func(control.Intent)
}

var _ control.Interactive = (*Switch)(nil)

// New builds a switch with the given presentation.
func New(variant Variant, presentation Presentation) (*Switch, error) {
	parsed, err := ParseVariant(string(variant))
	if err != nil {
		return nil, err
	}
	return &Switch{variant: parsed, presentation: presentation.withDefaults()}, nil
}

func (s *Switch) Render(state control.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.rendered = true
}

func (s *Switch) OnIntent(fn func(control.Intent)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.intent = fn
}

// Submit handles a submitted option value. It reports false when the value is
// not a known option or no controller is bound.
func (s *Switch) Submit(value string) bool {
	intent, ok := control.ParseIntent(value)
	if !ok {
		return false
	}
	s.mu.Lock()
	fn := s.intent
	s.mu.Unlock()
	if fn == nil {
		return false
	}
	fn(intent)
	return true
}

// State returns the last delivered state and whether one was delivered.
func (s *Switch) State() (control.State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.rendered
}

// Component renders the switch for its last state. Nothing is written before
// the first state arrives.
func (s *Switch) Component() templ.Component {
	state, ok := s.State()
	if !ok {
		return templ.NopComponent
	}
	return switchForm(s.form(state))
}

// form is the data switchForm renders.
type form struct {
	Variant  Variant
	Dark     bool
	Endpoint string
	Mode     string
	Attrs    templ.Attributes
	Options  []option
}

type option struct {
	Value    string
	Label    string
	Selected bool
}

func (s *Switch) form(state control.State) form {
	f := form{
		Variant:  s.variant,
		Dark:     state.Effective == theme.Dark,
		Endpoint: s.presentation.Endpoint,
		Mode:     string(state.Mode),
		Attrs: templ.Attributes{
			"style": "--theme-accent: " + s.presentation.Accent(state.Effective),
		},
	}
	for _, opt := range theme.Options(state.Capability) {
		f.Options = append(f.Options, option{
			Value:    opt.Value,
			Label:    opt.Label,
			Selected: opt.Value == state.Selected(),
		})
	}
	return f
}
