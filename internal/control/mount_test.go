package control

import (
	"errors"
	"testing"

	"themeswitch/internal/platform"
	"themeswitch/internal/preference"
	"themeswitch/internal/theme"
)

type fakeTarget struct {
	directives []theme.Directive
}

func (f *fakeTarget) Apply(d theme.Directive) {
	f.directives = append(f.directives, d)
}

type targetMap map[string]Target

func (m targetMap) Lookup(id string) (Target, bool) {
	t, ok := m[id]
	return t, ok
}

func TestMountRequiresStylesheetID(t *testing.T) {
	_, err := Mount(MountConfig{Targets: targetMap{}})
	if !errors.Is(err, ErrMissingParameter) {
		t.Fatalf("expected ErrMissingParameter, got %v", err)
	}
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) || cfgErr.Parameter != "stylesheet-id" {
		t.Fatalf("expected ConfigurationError for stylesheet-id, got %v", err)
	}
}

func TestMountRejectsUnknownTarget(t *testing.T) {
	signal := platform.NewManual(true, theme.Dark)
	c, err := Mount(MountConfig{
		StylesheetID: "dark-theme",
		Targets:      targetMap{"other": &fakeTarget{}},
		Signal:       signal,
	})
	if !errors.Is(err, ErrTargetNotFound) {
		t.Fatalf("expected ErrTargetNotFound, got %v", err)
	}
	if c != nil {
		t.Fatal("expected no controller on configuration error")
	}
	if signal.Subscribers() != 0 {
		t.Fatal("expected failed mount to attach no listeners")
	}
}

func TestMountDrivesTarget(t *testing.T) {
	target := &fakeTarget{}
	signal := platform.NewManual(true, theme.Dark)
	c, err := Mount(MountConfig{
		StylesheetID: "dark-theme",
		Targets:      targetMap{"dark-theme": target},
		Store:        preference.NewMemory(),
		Signal:       signal,
	})
	if err != nil {
		t.Fatalf("Mount error = %v", err)
	}
	defer c.Dispose()

	c.SelectLight()
	c.SelectDark()
	c.SelectAuto()

	want := []theme.Directive{
		theme.DirectiveSystemDark,
		theme.DirectiveOutsideScreen,
		theme.DirectiveScreen,
		theme.DirectiveSystemDark,
	}
	if len(target.directives) != len(want) {
		t.Fatalf("directives = %v, want %v", target.directives, want)
	}
	for i := range want {
		if target.directives[i] != want[i] {
			t.Fatalf("directives = %v, want %v", target.directives, want)
		}
	}
}

func TestConfigurationErrorMessage(t *testing.T) {
	err := &ConfigurationError{Parameter: "stylesheet-id", Value: "missing", Err: ErrTargetNotFound}
	if got := err.Error(); got != `referenced stylesheet target not found: stylesheet-id="missing"` {
		t.Fatalf("Error() = %q", got)
	}
}
