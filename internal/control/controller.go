// Package control keeps the stylesheet directive, the switch views and the
// stored override in step with each other.
package control

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	applog "themeswitch/internal/log"
	"themeswitch/internal/platform"
	"themeswitch/internal/preference"
	"themeswitch/internal/theme"
)

// State is the snapshot handed to views.
type State struct {
	Effective  theme.Theme     `json:"effective"`
	Mode       theme.Mode      `json:"mode"`
	Stored     theme.Theme     `json:"stored,omitempty"`
	Capability bool            `json:"capability"`
	Directive  theme.Directive `json:"directive"`
}

// Selected reports the option value the state marks selected.
func (s State) Selected() string {
	return s.Mode.Option()
}

// View receives every State the controller computes.
type View interface {
	Render(State)
}

// ViewFunc adapts a function to View.
type ViewFunc func(State)

func (f ViewFunc) Render(s State) { f(s) }

// Interactive is a View that also produces user intents.
type Interactive interface {
	View
	OnIntent(func(Intent))
}

// Intent is a user selection.
type Intent int

const (
	IntentLight Intent = iota + 1
	IntentDark
	IntentAuto
)

// ParseIntent maps a submitted option value to an Intent. "default" is
// accepted as a synonym for auto.
func ParseIntent(value string) (Intent, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case theme.OptionLight:
		return IntentLight, true
	case theme.OptionDark:
		return IntentDark, true
	case theme.OptionAuto, "default":
		return IntentAuto, true
	}
	return 0, false
}

func (i Intent) String() string {
	switch i {
	case IntentLight:
		return theme.OptionLight
	case IntentDark:
		return theme.OptionDark
	case IntentAuto:
		return theme.OptionAuto
	}
	return "unknown"
}

// Subscription is returned by Subscribe and detaches its view.
type Subscription struct {
	view   View
	owner  *Controller
	active atomic.Bool
}

// Unsubscribe stops deliveries to the view. Safe to call more than once, also
// from within the view's own Render.
func (s *Subscription) Unsubscribe() {
	if s == nil || !s.active.Swap(false) {
		return
	}
	if s.owner != nil {
		s.owner.detach(s)
	}
}

// round is one notification pass: a snapshot and the views that receive it.
type round struct {
	state   State
	targets []*Subscription
}

func (r round) deliver() {
	for _, sub := range r.targets {
		if sub.active.Load() {
			sub.view.Render(r.state)
		}
	}
}

// transition mutates controller state with c.mu held. It returns false when
// nothing needs to be broadcast.
type transition func(c *Controller) (round, bool)

// Controller is the single source of truth for one mounted switch.
type Controller struct {
	store      preference.Store
	capability bool

	mu       sync.Mutex
	system   theme.Theme
	state    State
	views    []*Subscription
	queue    []transition
	draining bool
	disposed bool

	cancelSignal func()
	disposeOnce  sync.Once
}

// New probes the signal once, subscribes to preference changes before reading
// the current one, and normalizes the stored override. A nil store or signal falls back to an in-memory
// store and an unsupported platform.
func New(store preference.Store, signal platform.Signal) *Controller {
	if store == nil {
		store = preference.NewMemory()
	}
	if signal == nil {
		signal = platform.Static{}
	}

	c := &Controller{
		store:      store,
		capability: signal.Supported(),
	}
	var cancel func()
	if c.capability {
		cancel = signal.Subscribe(c.OnSystemPreferenceChange)
	}

	c.mu.Lock()
	c.cancelSignal = cancel
	if c.capability {
		c.system = signal.Current()
	}
	c.recompute()
	c.mu.Unlock()

	applog.Debug(context.Background(), "theme controller ready",
		"capability", c.capability,
		"mode", c.state.Mode,
		"effective", c.state.Effective,
	)
	return c
}

// State returns the latest snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Capability reports the frozen result of the platform probe.
func (c *Controller) Capability() bool {
	return c.capability
}

// SelectLight stores a light override, or clears the override when the
// platform cannot report a preference since light is already the default.
func (c *Controller) SelectLight() {
	c.dispatch(func(c *Controller) (round, bool) {
		if c.capability {
			c.store.Set(string(theme.Light))
		} else {
			c.store.Remove()
		}
		return c.broadcast(), true
	})
}

// SelectDark stores a dark override.
func (c *Controller) SelectDark() {
	c.dispatch(func(c *Controller) (round, bool) {
		c.store.Set(string(theme.Dark))
		return c.broadcast(), true
	})
}

// SelectAuto clears the override. Without platform support there is no auto
// state and the call does nothing.
func (c *Controller) SelectAuto() {
	c.dispatch(func(c *Controller) (round, bool) {
		if !c.capability {
			applog.Debug(context.Background(), "ignoring auto selection without platform support")
			return round{}, false
		}
		c.store.Remove()
		return c.broadcast(), true
	})
}

// Apply routes an intent to the matching selection.
func (c *Controller) Apply(intent Intent) {
	switch intent {
	case IntentLight:
		c.SelectLight()
	case IntentDark:
		c.SelectDark()
	case IntentAuto:
		c.SelectAuto()
	default:
		applog.Debug(context.Background(), "ignoring unknown intent", "intent", int(intent))
	}
}

// OnSystemPreferenceChange records a new platform preference. The stored
// override is left untouched.
func (c *Controller) OnSystemPreferenceChange(pref theme.Theme) {
	c.dispatch(func(c *Controller) (round, bool) {
		if !pref.Valid() {
			return round{}, false
		}
		c.system = pref
		return c.broadcast(), true
	})
}

// Refresh re-reads storage and notifies views. Use it after the store was
// changed by something other than this controller.
func (c *Controller) Refresh() {
	c.dispatch(func(c *Controller) (round, bool) {
		return c.broadcast(), true
	})
}

// Subscribe registers v and delivers a freshly computed state to it before any
// later transition is broadcast. When storage changed behind the controller's
// back the other views receive that state too. On a disposed controller the
// returned subscription is inactive and v is never rendered.
func (c *Controller) Subscribe(v View) *Subscription {
	sub := &Subscription{view: v, owner: c}
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return sub
	}
	sub.active.Store(true)
	c.mu.Unlock()

	c.dispatch(func(c *Controller) (round, bool) {
		if !sub.active.Load() {
			return round{}, false
		}
		previous := c.state
		c.views = append(c.views, sub)
		r := c.broadcast()
		if r.state == previous {
			return round{state: r.state, targets: []*Subscription{sub}}, true
		}
		return r, true
	})
	return sub
}

// Active reports whether the subscription still receives states.
func (s *Subscription) Active() bool {
	return s != nil && s.active.Load()
}

// Bind subscribes v and routes its intents to Apply.
func (c *Controller) Bind(v Interactive) *Subscription {
	v.OnIntent(c.Apply)
	return c.Subscribe(v)
}

// Dispose releases the platform subscription and detaches every view. Later
// transitions are ignored.
func (c *Controller) Dispose() {
	c.disposeOnce.Do(func() {
		c.mu.Lock()
		c.disposed = true
		c.queue = nil
		views := c.views
		c.views = nil
		cancel := c.cancelSignal
		c.cancelSignal = nil
		c.mu.Unlock()

		for _, sub := range views {
			sub.active.Store(false)
		}
		if cancel != nil {
			cancel()
		}
		applog.Debug(context.Background(), "theme controller disposed")
	})
}

func (c *Controller) detach(sub *Subscription) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, candidate := range c.views {
		if candidate == sub {
			c.views = append(c.views[:i:i], c.views[i+1:]...)
			return
		}
	}
}

// dispatch queues t and, unless a pass is already running, drains the queue
// on the calling goroutine. Transitions queued while views are being notified
// run once the current pass completes.
func (c *Controller) dispatch(t transition) {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.queue = append(c.queue, t)
	if c.draining {
		c.mu.Unlock()
		return
	}
	c.draining = true
	for len(c.queue) > 0 && !c.disposed {
		next := c.queue[0]
		c.queue = c.queue[1:]
		r, notify := next(c)
		c.mu.Unlock()
		if notify {
			r.deliver()
		}
		c.mu.Lock()
	}
	c.draining = false
	c.mu.Unlock()
}

// broadcast recomputes the state and targets every registered view.
func (c *Controller) broadcast() round {
	c.recompute()
	targets := make([]*Subscription, len(c.views))
	copy(targets, c.views)
	return round{state: c.state, targets: targets}
}

func (c *Controller) recompute() {
	stored := c.load()
	res := theme.Resolve(c.capability, c.system, stored)
	c.state = State{
		Effective:  res.Effective,
		Mode:       res.Mode,
		Stored:     stored,
		Capability: c.capability,
		Directive:  theme.DirectiveFor(c.capability, res),
	}
}

// load reads the override, dropping values outside the vocabulary and a light
// override on platforms without preference support.
func (c *Controller) load() theme.Theme {
	raw, ok := c.store.Get()
	if !ok {
		return theme.None
	}
	stored := theme.Theme(raw)
	if !stored.Valid() {
		applog.Debug(context.Background(), "clearing unrecognised stored theme", "value", raw)
		c.store.Remove()
		return theme.None
	}
	if !c.capability && stored == theme.Light {
		applog.Debug(context.Background(), "clearing redundant light override")
		c.store.Remove()
		return theme.None
	}
	return stored
}
