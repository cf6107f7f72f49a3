package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/jview/internal/keymap"
	"github.com/oakwood-commons/jview/internal/theme"
)

// AppName is used for the config directory.
const AppName = "jview"

// Display modes accepted in ui.render.mode.
var Modes = []string{"pager", "scrollback", "plain"}

//go:embed default_config.yaml
var embeddedDefaultConfig []byte

var (
	embeddedOnce sync.Once
	embedded     File
	embeddedErr  error
)

// DefaultYAML returns a copy of the embedded default configuration.
func DefaultYAML() []byte {
	return append([]byte(nil), embeddedDefaultConfig...)
}

// Default returns the parsed embedded configuration.
func Default() (File, error) {
	embeddedOnce.Do(func() {
		if len(embeddedDefaultConfig) == 0 {
			embeddedErr = fmt.Errorf("embedded default config is empty")
			return
		}
		if err := yaml.Unmarshal(embeddedDefaultConfig, &embedded); err != nil {
			embeddedErr = fmt.Errorf("decode embedded default config: %w", err)
		}
	})
	return clone(embedded), embeddedErr
}

// Load returns the defaults merged with the user file at path. An empty
// path returns the defaults alone.
func Load(path string) (File, error) {
	cfg, err := Default()
	if err != nil {
		return cfg, err
	}
	if path == "" {
		return cfg, cfg.Validate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	var user File
	if err := yaml.Unmarshal(data, &user); err != nil {
		return cfg, fmt.Errorf("decode config %s: %w", path, err)
	}
	cfg = Merge(cfg, user)
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Merge overlays the set fields of over on base. Themes and key bindings
// merge per entry.
func Merge(base, over File) File {
	out := clone(base)
	a, o := &out.App.About, over.App.About
	setString(&a.Name, o.Name)
	setString(&a.Description, o.Description)
	setString(&a.License, o.License)
	setString(&a.RepositoryURL, o.RepositoryURL)
	if len(o.Details) > 0 {
		a.Details = append([]string(nil), o.Details...)
	}

	setString(&out.UI.Theme.Default, over.UI.Theme.Default)
	for name, th := range over.UI.Themes {
		if out.UI.Themes == nil {
			out.UI.Themes = map[string]theme.Config{}
		}
		out.UI.Themes[name] = th
	}
	for action, chords := range over.UI.Keys {
		if out.UI.Keys == nil {
			out.UI.Keys = map[string][]string{}
		}
		out.UI.Keys[action] = append([]string(nil), chords...)
	}
	if over.UI.Render.MaxDepth != nil {
		d := *over.UI.Render.MaxDepth
		out.UI.Render.MaxDepth = &d
	}
	setString(&out.UI.Render.Mode, over.UI.Render.Mode)
	return out
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func clone(f File) File {
	out := f
	out.App.About.Details = append([]string(nil), f.App.About.Details...)
	if f.UI.Themes != nil {
		out.UI.Themes = make(map[string]theme.Config, len(f.UI.Themes))
		for k, v := range f.UI.Themes {
			out.UI.Themes[k] = v
		}
	}
	if f.UI.Keys != nil {
		out.UI.Keys = make(map[string][]string, len(f.UI.Keys))
		for k, v := range f.UI.Keys {
			out.UI.Keys[k] = append([]string(nil), v...)
		}
	}
	if f.UI.Render.MaxDepth != nil {
		d := *f.UI.Render.MaxDepth
		out.UI.Render.MaxDepth = &d
	}
	return out
}

// Validate checks cross-field constraints: the default theme exists, key
// bindings parse, the mode is known and max_depth is not negative.
func (f File) Validate() error {
	if _, err := f.Theme(""); err != nil {
		return fmt.Errorf("ui.theme.default: %w", err)
	}
	if _, err := f.Keymap(); err != nil {
		return fmt.Errorf("ui.keys: %w", err)
	}
	if m := f.UI.Render.Mode; m != "" && !ValidMode(m) {
		return fmt.Errorf("ui.render.mode: unknown mode %q (want %s)", m, strings.Join(Modes, "|"))
	}
	if d := f.UI.Render.MaxDepth; d != nil && *d < 0 {
		return fmt.Errorf("ui.render.max_depth: must not be negative, got %d", *d)
	}
	return nil
}

// ValidMode reports whether m names a display mode.
func ValidMode(m string) bool {
	for _, known := range Modes {
		if m == known {
			return true
		}
	}
	return false
}

// Themes builds the registry of configured themes.
func (f File) Themes() *theme.Registry {
	return theme.NewRegistry(f.UI.Themes)
}

// Theme resolves name, or ui.theme.default when name is empty.
func (f File) Theme(name string) (theme.Theme, error) {
	if name == "" {
		name = f.UI.Theme.Default
	}
	if name == "" {
		name = "default"
	}
	return f.Themes().Get(name)
}

// Keymap builds the key table from ui.keys.
func (f File) Keymap() (keymap.Keymap, error) {
	return keymap.FromConfig(f.UI.Keys)
}

// MaxDepth returns ui.render.max_depth, or fallback when unset.
func (f File) MaxDepth(fallback int) int {
	if f.UI.Render.MaxDepth == nil {
		return fallback
	}
	return *f.UI.Render.MaxDepth
}

// ThemeNames returns the configured theme names, sorted.
func (f File) ThemeNames() []string {
	return f.Themes().Names()
}

// RenderDetails expands the about.details templates.
func (a AboutConfig) RenderDetails() ([]string, error) {
	out := make([]string, 0, len(a.Details))
	for i, d := range a.Details {
		tmpl, err := template.New(fmt.Sprintf("details[%d]", i)).Option("missingkey=error").Parse(d)
		if err != nil {
			return nil, fmt.Errorf("app.about.details[%d]: %w", i, err)
		}
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, a); err != nil {
			return nil, fmt.Errorf("app.about.details[%d]: %w", i, err)
		}
		out = append(out, buf.String())
	}
	return out, nil
}

// Marshal encodes f as YAML with two-space indentation.
func Marshal(f File) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ResolvePath returns explicit when set, otherwise the first existing file
// among $XDG_CONFIG_HOME/jview/config.yaml and ~/.config/jview/config.yaml.
// It returns "" when none exists.
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	candidate := ""
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		candidate = filepath.Join(xdg, AppName, "config.yaml")
	} else if home, err := os.UserHomeDir(); err == nil {
		candidate = filepath.Join(home, ".config", AppName, "config.yaml")
	}
	if candidate != "" {
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate
		}
	}
	return ""
}
