package ui

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"
)

// footer renders "<source> <label> ... L<top>/<total> <pct>%" across the full
// width. The left part is truncated first when space runs out.
func (m *Model) footer() string {
	right := fmt.Sprintf("L%d/%d %3d%%", m.firstLine(), m.lines, m.percent())

	left := m.Source
	if left == "" {
		left = "-"
	}
	if m.Label != "" {
		left += " " + m.Label
	}

	avail := m.width - runewidth.StringWidth(right) - 1
	if avail < 0 {
		avail = 0
	}
	left = runewidth.Truncate(left, avail, "…")
	gap := m.width - runewidth.StringWidth(left) - runewidth.StringWidth(right)
	if gap < 1 {
		gap = 1
	}
	line := runewidth.Truncate(left+strings.Repeat(" ", gap)+right, m.width, "")

	if m.palette.IsPlain() {
		return line
	}
	style := lipgloss.NewStyle()
	if m.palette.FooterFG != nil {
		style = style.Foreground(m.palette.FooterFG)
	}
	if m.palette.FooterBG != nil {
		style = style.Background(m.palette.FooterBG)
	}
	return style.Render(line)
}

// firstLine is the one-based number of the top visible line, 0 when empty.
func (m *Model) firstLine() int {
	if m.lines == 0 {
		return 0
	}
	return m.top + 1
}

func (m *Model) percent() int {
	limit := m.maxTop()
	if limit == 0 {
		return 100
	}
	return m.top * 100 / limit
}
