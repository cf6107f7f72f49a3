// Package theme defines the color palette used when rendering JSON and the
// YAML-friendly configuration that produces it.
package theme

import (
	"fmt"
	"image/color"
	"sort"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"gopkg.in/yaml.v3"
)

// Role is the syntactic role a token plays in rendered output.
type Role int

const (
	RoleNull Role = iota
	RoleBool
	RoleNumber
	RoleString
	RoleKey
	roleCount
)

func (r Role) String() string {
	switch r {
	case RoleNull:
		return "null"
	case RoleBool:
		return "bool"
	case RoleNumber:
		return "number"
	case RoleString:
		return "string"
	case RoleKey:
		return "key"
	default:
		return "role(" + strconv.Itoa(int(r)) + ")"
	}
}

// Palette maps each Role to the SGR sequence that opens it. A Plain palette
// emits no escape sequences at all.
type Palette struct {
	open  [roleCount]string
	plain bool

	// FooterFG and FooterBG color the pager status line.
	FooterFG color.Color
	FooterBG color.Color
}

// Plain returns a palette that writes text without any styling.
func Plain() Palette {
	return Palette{plain: true}
}

// IsPlain reports whether the palette emits no escape sequences.
func (p Palette) IsPlain() bool { return p.plain }

// Open returns the sequence that starts styling for r, or "" for plain output.
func (p Palette) Open(r Role) string {
	if p.plain || r < 0 || r >= roleCount {
		return ""
	}
	return p.open[r]
}

// Close returns the sequence that ends styling for r, or "" for plain output.
func (p Palette) Close(r Role) string {
	if p.Open(r) == "" {
		return ""
	}
	return ansi.ResetStyle
}

// Paint wraps text in the styling for r.
func (p Palette) Paint(r Role, text string) string {
	return p.Open(r) + text + p.Close(r)
}

// Theme is a resolved set of colors. Nil colors mean "terminal default".
type Theme struct {
	Name        string
	NullColor   color.Color
	NullBold    bool
	BoolColor   color.Color
	NumberColor color.Color
	StringColor color.Color
	KeyColor    color.Color
	FooterFG    color.Color
	FooterBG    color.Color
}

// Palette builds the render palette for the theme.
func (t Theme) Palette() Palette {
	p := Palette{FooterFG: t.FooterFG, FooterBG: t.FooterBG}
	p.open[RoleNull] = sgr(t.NullColor, t.NullBold)
	p.open[RoleBool] = sgr(t.BoolColor, false)
	p.open[RoleNumber] = sgr(t.NumberColor, false)
	p.open[RoleString] = sgr(t.StringColor, false)
	p.open[RoleKey] = sgr(t.KeyColor, false)
	return p
}

func sgr(c color.Color, bold bool) string {
	var s ansi.Style
	if bold {
		s = s.Bold()
	}
	if c != nil {
		s = s.ForegroundColor(c)
	}
	if len(s) == 0 {
		return ""
	}
	return s.String()
}

// Default returns the built-in palette: bold null, magenta booleans,
// yellow numbers, green strings and red keys.
func Default() Theme {
	return Theme{
		Name:        "default",
		NullBold:    true,
		BoolColor:   lipgloss.Color("5"),
		NumberColor: lipgloss.Color("3"),
		StringColor: lipgloss.Color("2"),
		KeyColor:    lipgloss.Color("1"),
		FooterFG:    lipgloss.Color("252"),
		FooterBG:    lipgloss.Color("236"),
	}
}

// ColorValue stores a color token (ANSI number, hex or name) and marshals
// numerics as YAML ints. The token "none" selects the terminal default.
type ColorValue string

// NoColor clears a role's color instead of inheriting it.
const NoColor ColorValue = "none"

func (c ColorValue) MarshalYAML() (interface{}, error) {
	if c == "" {
		return "", nil
	}
	s := string(c)
	if _, err := strconv.Atoi(s); err == nil {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: s}, nil
	}
	return s, nil
}

func (c *ColorValue) UnmarshalYAML(value *yaml.Node) error {
	if value == nil {
		*c = ""
		return nil
	}
	*c = ColorValue(strings.TrimSpace(value.Value))
	return nil
}

// Color converts the token to a color, nil when empty or "none".
func (c ColorValue) Color() color.Color {
	if c == "" || strings.EqualFold(string(c), string(NoColor)) {
		return nil
	}
	return lipgloss.Color(string(c))
}

// Config is the YAML form of a theme. Empty fields inherit from the base theme.
type Config struct {
	NullColor   ColorValue `yaml:"null_color,omitempty"`
	NullBold    *bool      `yaml:"null_bold,omitempty"`
	BoolColor   ColorValue `yaml:"bool_color,omitempty"`
	NumberColor ColorValue `yaml:"number_color,omitempty"`
	StringColor ColorValue `yaml:"string_color,omitempty"`
	KeyColor    ColorValue `yaml:"key_color,omitempty"`
	FooterFG    ColorValue `yaml:"footer_fg,omitempty"`
	FooterBG    ColorValue `yaml:"footer_bg,omitempty"`
}

// FromConfig overlays cfg on base. Empty fields keep the base color and
// "none" removes it.
func FromConfig(name string, cfg Config, base Theme) Theme {
	th := base
	th.Name = name
	set := func(val ColorValue, dst *color.Color) {
		if val != "" {
			*dst = val.Color()
		}
	}
	set(cfg.NullColor, &th.NullColor)
	set(cfg.BoolColor, &th.BoolColor)
	set(cfg.NumberColor, &th.NumberColor)
	set(cfg.StringColor, &th.StringColor)
	set(cfg.KeyColor, &th.KeyColor)
	set(cfg.FooterFG, &th.FooterFG)
	set(cfg.FooterBG, &th.FooterBG)
	if cfg.NullBold != nil {
		th.NullBold = *cfg.NullBold
	}
	return th
}

// Registry holds named themes.
type Registry struct {
	themes map[string]Theme
}

// NewRegistry builds themes from configs, each layered over Default().
func NewRegistry(configs map[string]Config) *Registry {
	r := &Registry{themes: make(map[string]Theme, len(configs)+1)}
	r.themes["default"] = Default()
	for name, cfg := range configs {
		r.themes[name] = FromConfig(name, cfg, Default())
	}
	return r
}

// Get returns the named theme.
func (r *Registry) Get(name string) (Theme, error) {
	if th, ok := r.themes[name]; ok {
		return th, nil
	}
	return Theme{}, fmt.Errorf("unknown theme %q (available: %s)", name, strings.Join(r.Names(), ", "))
}

// Names returns the sorted theme names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.themes))
	for name := range r.themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
