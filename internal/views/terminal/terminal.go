// Package terminal renders the theme switch as a line of text.
package terminal

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"themeswitch/internal/control"
	"themeswitch/internal/theme"
)

// Palette holds optional accent colors. An empty dark accent reuses the light one.
type Palette struct {
	LightAccent string
	DarkAccent  string
}

func (p Palette) accent(t theme.Theme) string {
	if t == theme.Dark && p.DarkAccent != "" {
		return p.DarkAccent
	}
	return p.LightAccent
}

// Switch writes one line per state to its writer.
type Switch struct {
	w        io.Writer
	renderer *lipgloss.Renderer
	palette  Palette

	mu     sync.Mutex
	intent func(control.Intent)
	err    error
}

var _ control.Interactive = (*Switch)(nil)

func New(w io.Writer, palette Palette) *Switch {
	return &Switch{w: w, renderer: lipgloss.NewRenderer(w), palette: palette}
}

func (s *Switch) Render(state control.State) {
	line := s.Line(state)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprintln(s.w, line); err != nil && s.err == nil {
		s.err = err
	}
}

// Err returns the first write error.
func (s *Switch) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Line formats state: each option, the selected one bracketed and highlighted.
func (s *Switch) Line(state control.State) string {
	base := s.renderer.NewStyle().Padding(0, 1)
	selected := base.Bold(true).Reverse(true)
	if accent := s.palette.accent(state.Effective); accent != "" {
		selected = selected.Foreground(lipgloss.Color(accent))
	}

	parts := make([]string, 0, 3)
	for _, opt := range theme.Options(state.Capability) {
		if opt.Value == state.Selected() {
			parts = append(parts, selected.Render("["+opt.Label+"]"))
			continue
		}
		parts = append(parts, base.Render(opt.Label))
	}
	return fmt.Sprintf("%s effective=%s mode=%s",
		lipgloss.JoinHorizontal(lipgloss.Top, parts...), state.Effective, state.Mode)
}

func (s *Switch) OnIntent(fn func(control.Intent)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.intent = fn
}

// Submit turns a typed option name into an intent.
func (s *Switch) Submit(input string) bool {
	intent, ok := control.ParseIntent(strings.TrimSpace(input))
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
