package control

import (
	"sync"
	"testing"

	"themeswitch/internal/platform"
	"themeswitch/internal/preference"
	"themeswitch/internal/theme"
)

type recorder struct {
	mu     sync.Mutex
	states []State
}

func (r *recorder) Render(s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *recorder) last(t *testing.T) State {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.states) == 0 {
		t.Fatal("expected at least one rendered state")
	}
	return r.states[len(r.states)-1]
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.states)
}

func storedValue(store *preference.Memory) (string, bool) {
	return store.Get()
}

func TestMountFollowsSystemDarkPreference(t *testing.T) {
	store := preference.NewMemory()
	c := New(store, platform.Static{Capable: true, Preference: theme.Dark})
	defer c.Dispose()

	got := c.State()
	want := State{Effective: theme.Dark, Mode: theme.ModeAuto, Capability: true, Directive: theme.DirectiveSystemDark}
	if got != want {
		t.Fatalf("State() = %+v, want %+v", got, want)
	}
}

func TestSelectLightWithCapabilityStoresOverride(t *testing.T) {
	store := preference.NewMemory()
	c := New(store, platform.Static{Capable: true, Preference: theme.Dark})
	defer c.Dispose()

	c.SelectLight()

	if v, ok := storedValue(store); !ok || v != "light" {
		t.Fatalf("stored = (%q, %t), want (light, true)", v, ok)
	}
	got := c.State()
	if got.Effective != theme.Light || got.Mode != theme.ModeExplicitLight || got.Directive != theme.DirectiveOutsideScreen {
		t.Fatalf("unexpected state after SelectLight: %+v", got)
	}
}

func TestNoCapabilityNormalizesStoredLight(t *testing.T) {
	store := preference.NewMemory()
	store.Set("light")

	c := New(store, platform.Static{})
	defer c.Dispose()

	if _, ok := storedValue(store); ok {
		t.Fatal("expected stored light to be cleared without capability")
	}
	got := c.State()
	if got.Effective != theme.Light || got.Mode != theme.ModeExplicitLight || got.Stored != theme.None {
		t.Fatalf("unexpected state: %+v", got)
	}
}

func TestNoCapabilitySelections(t *testing.T) {
	store := preference.NewMemory()
	c := New(store, platform.Static{})
	defer c.Dispose()

	c.SelectDark()
	if got := c.State(); got.Effective != theme.Dark || got.Directive != theme.DirectiveScreen {
		t.Fatalf("expected dark after SelectDark, got %+v", got)
	}

	c.SelectLight()
	if _, ok := storedValue(store); ok {
		t.Fatal("expected SelectLight to clear the override without capability")
	}
	if got := c.State(); got.Effective != theme.Light || got.Mode != theme.ModeExplicitLight {
		t.Fatalf("expected light after SelectLight, got %+v", got)
	}

	view := &recorder{}
	c.Subscribe(view)
	before := view.count()
	c.SelectAuto()
	if view.count() != before {
		t.Fatal("expected SelectAuto without capability to be a no-op")
	}
	if got := c.State(); got.Effective != theme.Light || got.Stored != theme.None {
		t.Fatalf("unexpected state after SelectAuto: %+v", got)
	}
}

func TestOverrideSurvivesSystemChanges(t *testing.T) {
	store := preference.NewMemory()
	store.Set("dark")
	signal := platform.NewManual(true, theme.Light)
	c := New(store, signal)
	defer c.Dispose()

	view := &recorder{}
	c.Subscribe(view)

	for _, pref := range []theme.Theme{theme.Light, theme.Dark, theme.Light} {
		signal.Set(pref)
		got := view.last(t)
		if got.Effective != theme.Dark || got.Mode != theme.ModeExplicitDark {
			t.Fatalf("system change to %q altered override: %+v", pref, got)
		}
	}
	if v, _ := storedValue(store); v != "dark" {
		t.Fatalf("system change touched storage: %q", v)
	}
}

func TestAutoTracksSystem(t *testing.T) {
	signal := platform.NewManual(true, theme.Dark)
	c := New(preference.NewMemory(), signal)
	defer c.Dispose()

	view := &recorder{}
	c.Subscribe(view)

	c.OnSystemPreferenceChange(theme.Light)
	if got := view.last(t); got.Effective != theme.Light || got.Mode != theme.ModeAuto {
		t.Fatalf("expected auto light, got %+v", got)
	}
	c.OnSystemPreferenceChange(theme.Dark)
	if got := view.last(t); got.Effective != theme.Dark || got.Mode != theme.ModeAuto {
		t.Fatalf("expected auto dark, got %+v", got)
	}
}

func TestSelectAutoIsIdempotent(t *testing.T) {
	store := preference.NewMemory()
	store.Set("light")
	c := New(store, platform.Static{Capable: true, Preference: theme.Dark})
	defer c.Dispose()

	c.SelectAuto()
	once := c.State()
	c.SelectAuto()
	if twice := c.State(); twice != once {
		t.Fatalf("second SelectAuto changed state: %+v then %+v", once, twice)
	}
	if once.Mode != theme.ModeAuto || once.Effective != theme.Dark {
		t.Fatalf("unexpected state after SelectAuto: %+v", once)
	}
}

func TestViewsObserveIdenticalSnapshots(t *testing.T) {
	signal := platform.NewManual(true, theme.Light)
	c := New(preference.NewMemory(), signal)
	defer c.Dispose()

	a, b := &recorder{}, &recorder{}
	c.Subscribe(a)
	c.Subscribe(b)

	c.SelectDark()
	signal.Set(theme.Dark)
	c.SelectAuto()
	c.SelectLight()

	if a.count() != b.count() {
		t.Fatalf("views saw %d and %d states", a.count(), b.count())
	}
	for i := range a.states {
		if a.states[i] != b.states[i] {
			t.Fatalf("snapshot %d differs: %+v vs %+v", i, a.states[i], b.states[i])
		}
	}
}

func TestSubscribeDeliversImmediatelyAndOncePerEvent(t *testing.T) {
	c := New(preference.NewMemory(), platform.Static{Capable: true, Preference: theme.Light})
	defer c.Dispose()

	view := &recorder{}
	sub := c.Subscribe(view)
	if view.count() != 1 {
		t.Fatalf("expected initial delivery, got %d states", view.count())
	}

	c.SelectDark()
	c.SelectDark()
	if view.count() != 3 {
		t.Fatalf("expected one round per intent, got %d states", view.count())
	}

	sub.Unsubscribe()
	sub.Unsubscribe()
	c.SelectLight()
	if view.count() != 3 {
		t.Fatal("expected no delivery after Unsubscribe")
	}
}

func TestNotificationOrderFollowsRegistration(t *testing.T) {
	c := New(preference.NewMemory(), platform.Static{Capable: true, Preference: theme.Light})
	defer c.Dispose()

	var order []string
	c.Subscribe(ViewFunc(func(State) { order = append(order, "first") }))
	c.Subscribe(ViewFunc(func(State) { order = append(order, "second") }))
	order = nil

	c.SelectDark()
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("order = %v", order)
	}
}

func TestReentrantIntentRunsAfterCurrentPass(t *testing.T) {
	c := New(preference.NewMemory(), platform.Static{Capable: true, Preference: theme.Light})
	defer c.Dispose()

	var first, second []State
	triggered := false
	c.Subscribe(ViewFunc(func(s State) {
		first = append(first, s)
		if s.Mode == theme.ModeExplicitDark && !triggered {
			triggered = true
			c.SelectAuto()
		}
	}))
	c.Subscribe(ViewFunc(func(s State) {
		second = append(second, s)
	}))

	c.SelectDark()

	if len(first) != 3 || len(second) != 3 {
		t.Fatalf("expected three rounds for both views, got %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("round %d inconsistent: %+v vs %+v", i, first[i], second[i])
		}
	}
	if second[1].Mode != theme.ModeExplicitDark {
		t.Fatalf("second view must see the dark round before the reentrant one, got %+v", second[1])
	}
	if second[2].Mode != theme.ModeAuto {
		t.Fatalf("expected reentrant auto round last, got %+v", second[2])
	}
}

func TestRefreshRereadsStorage(t *testing.T) {
	store := preference.NewMemory()
	c := New(store, platform.Static{Capable: true, Preference: theme.Light})
	defer c.Dispose()

	c.SelectDark()
	store.Remove()
	if got := c.State(); got.Mode != theme.ModeExplicitDark {
		t.Fatalf("state should not change before refresh: %+v", got)
	}
	c.Refresh()
	if got := c.State(); got.Mode != theme.ModeAuto || got.Effective != theme.Light {
		t.Fatalf("expected refresh to pick up the external clear, got %+v", got)
	}
}

func TestSystemChangeRereadsStorage(t *testing.T) {
	store := preference.NewMemory()
	signal := platform.NewManual(true, theme.Light)
	first := New(store, signal)
	second := New(store, signal)
	defer first.Dispose()
	defer second.Dispose()

	first.SelectDark()
	signal.Set(theme.Light)
	if got := second.State(); got.Mode != theme.ModeExplicitDark {
		t.Fatalf("expected second instance to see shared override on refresh, got %+v", got)
	}
}

func TestInvalidStoredValueIsTreatedAsAbsent(t *testing.T) {
	store := preference.NewMemory()
	store.Set("sepia")
	c := New(store, platform.Static{Capable: true, Preference: theme.Dark})
	defer c.Dispose()

	if got := c.State(); got.Mode != theme.ModeAuto || got.Stored != theme.None {
		t.Fatalf("unexpected state for tampered storage: %+v", got)
	}
	if _, ok := store.Get(); ok {
		t.Fatal("expected tampered value to be cleared")
	}
}

func TestDisposeUnsubscribesSignalOnce(t *testing.T) {
	signal := platform.NewManual(true, theme.Light)
	c := New(preference.NewMemory(), signal)
	if signal.Subscribers() != 1 {
		t.Fatalf("expected controller to subscribe, got %d", signal.Subscribers())
	}

	view := &recorder{}
	c.Subscribe(view)
	c.Dispose()
	c.Dispose()

	if signal.Subscribers() != 0 {
		t.Fatalf("expected signal subscription released, got %d", signal.Subscribers())
	}
	before := view.count()
	signal.Set(theme.Dark)
	c.SelectDark()
	if view.count() != before {
		t.Fatal("expected no delivery after Dispose")
	}
}

func TestNoSignalSubscriptionWithoutCapability(t *testing.T) {
	signal := platform.NewManual(false, theme.Dark)
	c := New(preference.NewMemory(), signal)
	defer c.Dispose()

	if signal.Subscribers() != 0 || c.Capability() {
		t.Fatal("expected no platform subscription without capability")
	}
	if got := c.State(); got.Effective != theme.Light {
		t.Fatalf("expected light default without capability, got %+v", got)
	}
}

func TestConcurrentTransitionsStayConsistent(t *testing.T) {
	signal := platform.NewManual(true, theme.Light)
	c := New(preference.NewMemory(), signal)
	defer c.Dispose()

	a, b := &recorder{}, &recorder{}
	c.Subscribe(a)
	c.Subscribe(b)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				c.SelectDark()
			} else {
				c.SelectAuto()
			}
		}(i)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				signal.Set(theme.Dark)
			} else {
				signal.Set(theme.Light)
			}
		}(i)
	}
	wg.Wait()
	c.Refresh()

	if a.count() != b.count() {
		t.Fatalf("views saw %d and %d states", a.count(), b.count())
	}
	if a.count() != 1+100+1 {
		t.Fatalf("expected one round per event, got %d", a.count())
	}
	for i := range a.states {
		if a.states[i] != b.states[i] {
			t.Fatalf("snapshot %d differs", i)
		}
	}
}

func TestSubscribeRereadsStorageChangedElsewhere(t *testing.T) {
	store := preference.NewMemory()
	signal := platform.Static{Capable: true, Preference: theme.Light}
	a := New(store, signal)
	defer a.Dispose()
	b := New(store, signal)
	defer b.Dispose()

	existing := &recorder{}
	b.Subscribe(existing)
	a.SelectDark()

	late := &recorder{}
	b.Subscribe(late)

	want := State{Effective: theme.Dark, Mode: theme.ModeExplicitDark, Stored: theme.Dark, Capability: true, Directive: theme.DirectiveScreen}
	if got := late.last(t); got != want {
		t.Fatalf("initial delivery = %+v, want %+v", got, want)
	}
	if got := existing.last(t); got != want {
		t.Fatalf("existing view = %+v, want %+v", got, want)
	}
	if existing.count() != 2 || late.count() != 1 {
		t.Fatalf("deliveries = %d and %d, want 2 and 1", existing.count(), late.count())
	}
}

// lateSignal changes its preference while the subscriber is being registered,
// without notifying anyone.
type lateSignal struct {
	mu      sync.Mutex
	current theme.Theme
}

func (s *lateSignal) Supported() bool { return true }

func (s *lateSignal) Current() theme.Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *lateSignal) Subscribe(func(theme.Theme)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = theme.Dark
	return func() {}
}

func TestNewReadsPreferenceAfterSubscribing(t *testing.T) {
	c := New(preference.NewMemory(), &lateSignal{current: theme.Light})
	defer c.Dispose()

	if got := c.State(); got.Effective != theme.Dark || got.Mode != theme.ModeAuto {
		t.Fatalf("State() = %+v, want effective dark in auto mode", got)
	}
}

func TestSubscribeAfterDisposeIsInactive(t *testing.T) {
	c := New(preference.NewMemory(), platform.Static{Capable: true, Preference: theme.Dark})
	c.Dispose()

	view := &recorder{}
	sub := c.Subscribe(view)
	if sub.Active() {
		t.Fatal("expected inactive subscription on a disposed controller")
	}
	if view.count() != 0 {
		t.Fatalf("expected no delivery, got %d", view.count())
	}
	sub.Unsubscribe()
}

func TestParseIntent(t *testing.T) {
	t.Parallel()

	cases := map[string]Intent{"light": IntentLight, "DARK": IntentDark, "auto": IntentAuto, "default": IntentAuto}
	for value, want := range cases {
		got, ok := ParseIntent(value)
		if !ok || got != want {
			t.Fatalf("ParseIntent(%q) = (%v, %t), want %v", value, got, ok, want)
		}
	}
	if _, ok := ParseIntent("sepia"); ok {
		t.Fatal("expected unknown intent to be rejected")
	}
}
