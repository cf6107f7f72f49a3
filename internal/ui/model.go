// Package ui is the interactive pager: a bubbletea program that holds the
// rendered document in a scrollable viewport with a one-line footer.
package ui

import (
	"strings"

	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"

	"github.com/oakwood-commons/jview/internal/input"
	"github.com/oakwood-commons/jview/internal/keymap"
	"github.com/oakwood-commons/jview/internal/theme"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	footerLines   = 1
)

// Model is the pager state. It satisfies input.Viewport so key handling goes
// through the same dispatch as scrollback mode.
type Model struct {
	Source string
	// Label describes how the displayed value was derived, e.g. the
	// expression that selected it. Empty for the whole document.
	Label string

	keys     keymap.Keymap
	palette  theme.Palette
	vp       viewport.Model
	lines    int
	top      int
	width    int
	height   int
	quitting bool
}

// NewModel returns a pager showing content, which must already be rendered
// with LF line endings. Empty content shows an empty view.
func NewModel(content string, km keymap.Keymap, palette theme.Palette) *Model {
	m := &Model{
		keys:    km,
		palette: palette,
		vp:      viewport.New(viewport.WithWidth(defaultWidth), viewport.WithHeight(defaultHeight-footerLines)),
		width:   defaultWidth,
		height:  defaultHeight,
	}
	m.vp.SetContent(content)
	if content != "" {
		m.lines = strings.Count(content, "\n") + 1
	}
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case tea.KeyPressMsg:
		if m.quitting {
			return m, nil
		}
		action, stop := input.Dispatch(m.keys, chordFromKey(msg))
		if stop {
			m.quitting = true
			return m, tea.Quit
		}
		// Scrolling the in-memory viewport cannot fail.
		_ = input.Apply(m, action)
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() tea.View {
	if m.quitting {
		return tea.NewView("")
	}
	v := tea.NewView(m.vp.View() + "\n" + m.footer())
	v.AltScreen = true
	return v
}

// ScrollDown moves the view n lines toward the end of the document.
func (m *Model) ScrollDown(n int) error {
	m.setTop(m.top + n)
	return nil
}

// ScrollUp moves the view n lines toward the start of the document.
func (m *Model) ScrollUp(n int) error {
	m.setTop(m.top - n)
	return nil
}

// Height returns the number of document lines visible at once.
func (m *Model) Height() int {
	if h := m.height - footerLines; h > 0 {
		return h
	}
	return 1
}

// Top returns the zero-based index of the first visible line.
func (m *Model) Top() int { return m.top }

// Lines returns the number of lines in the document.
func (m *Model) Lines() int { return m.lines }

// Quitting reports whether a quit chord has been received.
func (m *Model) Quitting() bool { return m.quitting }

func (m *Model) maxTop() int {
	if d := m.lines - m.Height(); d > 0 {
		return d
	}
	return 0
}

func (m *Model) setTop(top int) {
	if top > m.maxTop() {
		top = m.maxTop()
	}
	if top < 0 {
		top = 0
	}
	m.top = top
	m.vp.SetYOffset(top)
}

func (m *Model) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	m.width, m.height = width, height
	m.vp.SetWidth(width)
	m.vp.SetHeight(m.Height())
	m.setTop(m.top)
}
