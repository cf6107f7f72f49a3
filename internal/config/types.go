// Package config holds the jview configuration file schema, the embedded
// defaults and the merge of a user file over them.
package config

import (
	"github.com/oakwood-commons/jview/internal/theme"
)

// File is the full configuration document.
type File struct {
	App AppConfig `yaml:"app,omitempty"`
	UI  UIConfig  `yaml:"ui,omitempty"`
}

// AppConfig holds application metadata.
type AppConfig struct {
	About AboutConfig `yaml:"about,omitempty"`
}

// AboutConfig describes the application. Version, GoVersion and GitCommit
// are filled from build information at runtime; Details entries are
// text/template strings over this struct.
type AboutConfig struct {
	Name          string   `yaml:"name,omitempty"`
	Description   string   `yaml:"description,omitempty"`
	Version       string   `yaml:"version,omitempty"`
	GoVersion     string   `yaml:"go_version,omitempty"`
	GitCommit     string   `yaml:"git_commit,omitempty"`
	License       string   `yaml:"license,omitempty"`
	RepositoryURL string   `yaml:"repository_url,omitempty"`
	Details       []string `yaml:"details,omitempty"`
}

// UIConfig groups the viewer settings.
type UIConfig struct {
	Theme  ThemeSelection          `yaml:"theme,omitempty"`
	Themes map[string]theme.Config `yaml:"themes,omitempty"`
	// Keys maps an action name (quit, scroll_down, scroll_up, page_down,
	// page_up) to the chords that trigger it.
	Keys   map[string][]string `yaml:"keys,omitempty"`
	Render RenderConfig        `yaml:"render,omitempty"`
}

// ThemeSelection picks the active theme.
type ThemeSelection struct {
	Default string `yaml:"default,omitempty"`
}

// RenderConfig controls rendering and the display mode.
type RenderConfig struct {
	// MaxDepth caps nesting; 0 means unlimited.
	MaxDepth *int   `yaml:"max_depth,omitempty"`
	Mode     string `yaml:"mode,omitempty"`
}
