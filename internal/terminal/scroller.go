package terminal

import (
	"io"
	"sync/atomic"

	"github.com/charmbracelet/x/ansi"
)

// Scroller moves the terminal's own viewport with scroll sequences. j maps to
// SD (CSI n T) and k to SU (CSI n S), so the document appears to move with
// the key rather than the window.
//
// The page height may be updated from a resize watcher while the key loop is
// scrolling.
type Scroller struct {
	w      io.Writer
	height atomic.Int64
}

// NewScroller returns a Scroller writing to w with the given page height.
func NewScroller(w io.Writer, height int) *Scroller {
	s := &Scroller{w: w}
	s.height.Store(int64(height))
	return s
}

// ScrollDown writes CSI n T.
func (s *Scroller) ScrollDown(n int) error {
	if n <= 0 {
		return nil
	}
	_, err := io.WriteString(s.w, ansi.ScrollDown(n))
	return err
}

// ScrollUp writes CSI n S.
func (s *Scroller) ScrollUp(n int) error {
	if n <= 0 {
		return nil
	}
	_, err := io.WriteString(s.w, ansi.ScrollUp(n))
	return err
}

// Height returns the page height.
func (s *Scroller) Height() int { return int(s.height.Load()) }

// SetHeight updates the page height. Non-positive heights are ignored.
func (s *Scroller) SetHeight(h int) {
	if h > 0 {
		s.height.Store(int64(h))
	}
}
