package theme

import "strings"

// Theme identifies one of the two supported visual themes. The zero value
// means no theme was chosen.
type Theme string

const (
	None  Theme = ""
	Light Theme = "light"
	Dark  Theme = "dark"
)

// Mode reports whether a resolved theme comes from an explicit override or
// follows the platform preference.
type Mode string

const (
	ModeExplicitLight Mode = "explicit-light"
	ModeExplicitDark  Mode = "explicit-dark"
	ModeAuto          Mode = "auto"
)

// Directive is the media condition applied to the dark stylesheet.
type Directive string

const (
	DirectiveOutsideScreen Directive = "not screen"
	DirectiveScreen        Directive = "screen"
	DirectiveSystemDark    Directive = "(prefers-color-scheme: dark)"
)

// Option values rendered by the switch views.
const (
	OptionAuto  = "auto"
	OptionLight = "light"
	OptionDark  = "dark"
)

// Option represents a selectable theme exposed to the UI.
type Option struct {
	Value string
	Label string
}

// Resolution is the outcome of Resolve.
type Resolution struct {
	Effective Theme
	Mode      Mode
}

var (
	autoOption  = Option{Value: OptionAuto, Label: "Default"}
	lightOption = Option{Value: OptionLight, Label: "Light"}
	darkOption  = Option{Value: OptionDark, Label: "Dark"}
)

// Parse normalizes a stored or submitted value. Anything other than light or
// dark is reported as absent.
func Parse(value string) (Theme, bool) {
	switch Theme(strings.ToLower(strings.TrimSpace(value))) {
	case Light:
		return Light, true
	case Dark:
		return Dark, true
	}
	return None, false
}

// Valid reports whether t is light or dark.
func (t Theme) Valid() bool {
	return t == Light || t == Dark
}

// Resolve derives the effective theme from platform capability, the platform
// preference and the stored override. It has no side effects.
func Resolve(capability bool, system, stored Theme) Resolution {
	switch stored {
	case Light:
		return Resolution{Effective: Light, Mode: ModeExplicitLight}
	case Dark:
		return Resolution{Effective: Dark, Mode: ModeExplicitDark}
	}
	if !capability {
		return Resolution{Effective: Light, Mode: ModeExplicitLight}
	}
	if system == Dark {
		return Resolution{Effective: Dark, Mode: ModeAuto}
	}
	return Resolution{Effective: Light, Mode: ModeAuto}
}

// DirectiveFor returns the stylesheet media directive for a resolution.
func DirectiveFor(capability bool, r Resolution) Directive {
	if capability && r.Mode == ModeAuto {
		return DirectiveSystemDark
	}
	if r.Effective == Dark {
		return DirectiveScreen
	}
	return DirectiveOutsideScreen
}

// Option returns the option value marked selected for the mode.
func (m Mode) Option() string {
	switch m {
	case ModeAuto:
		return OptionAuto
	case ModeExplicitDark:
		return OptionDark
	default:
		return OptionLight
	}
}

// Options exposes the selections a switch renders. The default option only
// exists when the platform reports a preference.
func Options(capability bool) []Option {
	if capability {
		return []Option{autoOption, lightOption, darkOption}
	}
	return []Option{lightOption, darkOption}
}
