package ui

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/oakwood-commons/jview/internal/keymap"
	"github.com/oakwood-commons/jview/internal/theme"
	"github.com/oakwood-commons/jview/pkg/logger"
)

// RunConfig is everything the pager needs to display one document.
type RunConfig struct {
	// Source names the document in the footer.
	Source string
	// Label is shown after Source, typically the active expression.
	Label string
	// Content is the rendered document with LF line endings.
	Content string
	Keys    keymap.Keymap
	Palette theme.Palette
}

// Run starts the pager and blocks until the user quits or ctx is done. Extra
// options (e.g. custom IO) are passed through to tea.NewProgram.
func Run(ctx context.Context, cfg RunConfig, opts ...tea.ProgramOption) error {
	m := NewModel(cfg.Content, cfg.Keys, cfg.Palette)
	m.Source = cfg.Source
	m.Label = cfg.Label

	lgr := logger.FromContext(ctx)
	lgr.V(1).Info("starting pager", "source", cfg.Source, "lines", m.Lines())

	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	if _, err := tea.NewProgram(m, opts...).Run(); err != nil {
		return fmt.Errorf("pager: %w", err)
	}
	return nil
}
