package switcher

import (
	"sync"

	"github.com/a-h/templ"

	"themeswitch/internal/control"
	"themeswitch/internal/theme"
)

// Stylesheet is a <link> whose media attribute is driven by the controller.
type Stylesheet struct {
	ID   string
	Href string

	mu    sync.Mutex
	media theme.Directive
}

var _ control.Target = (*Stylesheet)(nil)

// NewStylesheet returns a link that stays inactive until a directive arrives.
func NewStylesheet(id, href string) *Stylesheet {
	return &Stylesheet{ID: id, Href: href, media: theme.DirectiveOutsideScreen}
}

func (s *Stylesheet) Apply(d theme.Directive) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.media = d
}

// Media returns the current directive.
func (s *Stylesheet) Media() theme.Directive {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.media
}

// Component renders the link element.
func (s *Stylesheet) Component() templ.Component {
	return s.component(false)
}

// OutOfBand renders the link for an htmx out-of-band swap.
func (s *Stylesheet) OutOfBand() templ.Component {
	return s.component(true)
}

func (s *Stylesheet) component(oob bool) templ.Component {
	return stylesheetLink(s.ID, s.Href, string(s.Media()), oob)
}

// Sheets resolves stylesheet targets by ID.
type Sheets []*Stylesheet

func (s Sheets) Lookup(id string) (control.Target, bool) {
	for _, sheet := range s {
		if sheet != nil && sheet.ID == id {
			return sheet, true
		}
	}
	return nil, false
}
