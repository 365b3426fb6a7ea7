// Package platform reports the host's color-scheme preference and pushes
// changes to subscribers.
package platform

import (
	"net/http"
	"strings"
	"sync"

	"themeswitch/internal/theme"
)

// ClientHintHeader carries the browser's color-scheme preference.
const ClientHintHeader = "Sec-CH-Prefers-Color-Scheme"

// Signal is a platform color-scheme preference source.
type Signal interface {
	// Supported reports whether the platform can express a preference at all.
	Supported() bool
	// Current returns the latest preference. Meaningless when unsupported.
	Current() theme.Theme
	// Subscribe registers fn for preference changes. The returned cancel
	// function is safe to call more than once.
	Subscribe(fn func(theme.Theme)) (cancel func())
}

// Static is a Signal whose preference never changes.
type Static struct {
	Capable    bool
	Preference theme.Theme
}

func (s Static) Supported() bool      { return s.Capable }
func (s Static) Current() theme.Theme { return s.Preference }

func (s Static) Subscribe(func(theme.Theme)) func() {
	return func() {}
}

// FromRequest reads the Sec-CH-Prefers-Color-Scheme client hint. A request
// without a usable hint comes from a client that cannot report a preference.
func FromRequest(r *http.Request) Static {
	raw := strings.Trim(strings.TrimSpace(r.Header.Get(ClientHintHeader)), `"`)
	pref, ok := theme.Parse(raw)
	if !ok {
		return Static{}
	}
	return Static{Capable: true, Preference: pref}
}

// ClientHintHeaders asks the browser to send the color-scheme hint on
// subsequent requests and marks responses as varying on it.
func ClientHintHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Accept-CH", ClientHintHeader)
	h.Set("Critical-CH", ClientHintHeader)
	h.Add("Vary", ClientHintHeader)
}

// Manual is a Signal driven by Set. Subscribers run synchronously on the
// goroutine calling Set, in registration order.
type Manual struct {
	mu      sync.Mutex
	capable bool
	current theme.Theme
	nextID  int
	subs    []manualSub
}

type manualSub struct {
	id int
	fn func(theme.Theme)
}

// NewManual returns a Manual signal with the given capability and preference.
func NewManual(capable bool, initial theme.Theme) *Manual {
	return &Manual{capable: capable, current: initial}
}

func (m *Manual) Supported() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.capable
}

func (m *Manual) Current() theme.Theme {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *Manual) Subscribe(fn func(theme.Theme)) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs = append(m.subs, manualSub{id: id, fn: fn})
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			for i, sub := range m.subs {
				if sub.id == id {
					m.subs = append(m.subs[:i], m.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Subscribers returns the number of active subscriptions.
func (m *Manual) Subscribers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs)
}

// Set records a new preference and notifies subscribers.
func (m *Manual) Set(pref theme.Theme) {
	m.mu.Lock()
	m.current = pref
	subs := make([]manualSub, len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	for _, sub := range subs {
		sub.fn(pref)
	}
}
