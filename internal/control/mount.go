package control

import (
	"context"
	"errors"
	"fmt"
	"strings"

	applog "themeswitch/internal/log"
	"themeswitch/internal/platform"
	"themeswitch/internal/preference"
	"themeswitch/internal/theme"
)

var (
	ErrMissingParameter = errors.New("missing required mount parameter")
	ErrTargetNotFound   = errors.New("referenced stylesheet target not found")
	ErrInvalidParameter = errors.New("invalid mount parameter")
)

// ConfigurationError reports a mount that could not attach any behavior.
type ConfigurationError struct {
	Parameter string
	Value     string
	Err       error
}

func (e *ConfigurationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %s", e.Err, e.Parameter)
	}
	return fmt.Sprintf("%s: %s=%q", e.Err, e.Parameter, e.Value)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Target is the stylesheet whose media condition follows the effective theme.
type Target interface {
	Apply(theme.Directive)
}

// TargetLookup resolves stylesheet targets by identifier.
type TargetLookup interface {
	Lookup(id string) (Target, bool)
}

// MountConfig describes one switch instance.
type MountConfig struct {
	StylesheetID string
	Targets      TargetLookup
	Store        preference.Store
	Signal       platform.Signal
}

// Mount validates cfg and returns a controller already driving the
// stylesheet target. On a *ConfigurationError nothing is subscribed.
func Mount(cfg MountConfig) (*Controller, error) {
	id := strings.TrimSpace(cfg.StylesheetID)
	if id == "" {
		err := &ConfigurationError{Parameter: "stylesheet-id", Err: ErrMissingParameter}
		applog.Error(context.Background(), "theme switch not mounted", "error", err)
		return nil, err
	}

	var (
		target Target
		ok     bool
	)
	if cfg.Targets != nil {
		target, ok = cfg.Targets.Lookup(id)
	}
	if !ok || target == nil {
		err := &ConfigurationError{Parameter: "stylesheet-id", Value: id, Err: ErrTargetNotFound}
		applog.Error(context.Background(), "theme switch not mounted", "error", err)
		return nil, err
	}

	c := New(cfg.Store, cfg.Signal)
	c.Subscribe(ViewFunc(func(s State) {
		target.Apply(s.Directive)
	}))
	return c, nil
}
