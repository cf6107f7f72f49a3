// Package terminal owns the raw-mode terminal used by scrollback mode: the
// scoped session, a key decoder over the raw input stream and an ANSI
// scroller that moves the terminal's own viewport.
package terminal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/x/ansi"
	"golang.org/x/term"
)

// Hooks for tests; a real terminal is not available under go test.
var (
	makeRaw = term.MakeRaw
	restore = term.Restore
	getSize = term.GetSize
)

// Session is an acquired terminal: input in raw mode, output switched to the
// alternate screen. Close restores both exactly once.
type Session struct {
	in    *os.File
	out   *os.File
	state *term.State

	once     sync.Once
	closeErr error
}

// Open puts in into raw mode and switches out to the alternate screen.
func Open(in, out *os.File) (*Session, error) {
	state, err := makeRaw(int(in.Fd()))
	if err != nil {
		return nil, fmt.Errorf("terminal: enter raw mode: %w", err)
	}
	s := &Session{in: in, out: out, state: state}
	if _, err := io.WriteString(out, ansi.SetModeAltScreenSaveCursor); err != nil {
		return nil, errors.Join(
			fmt.Errorf("terminal: enter alternate screen: %w", err),
			s.restoreMode(),
		)
	}
	return s, nil
}

// In returns the raw input stream.
func (s *Session) In() io.Reader { return s.in }

// Out returns the terminal output stream.
func (s *Session) Out() io.Writer { return s.out }

// Size reports the terminal's columns and rows, falling back to 80x24 when
// the output is not a terminal.
func (s *Session) Size() (width, height int) {
	w, h, err := getSize(int(s.out.Fd()))
	if err != nil || w <= 0 || h <= 0 {
		return 80, 24
	}
	return w, h
}

// Close leaves the alternate screen and restores the saved terminal mode.
// Calls after the first return the first call's result.
func (s *Session) Close() error {
	s.once.Do(func() {
		var errs []error
		if _, err := io.WriteString(s.out, ansi.ResetModeAltScreenSaveCursor); err != nil {
			errs = append(errs, fmt.Errorf("terminal: leave alternate screen: %w", err))
		}
		errs = append(errs, s.restoreMode())
		s.closeErr = errors.Join(errs...)
	})
	return s.closeErr
}

func (s *Session) restoreMode() error {
	if err := restore(int(s.in.Fd()), s.state); err != nil {
		return fmt.Errorf("terminal: restore mode: %w", err)
	}
	return nil
}

// WithSession opens a session, runs fn and closes the session on every exit
// path. A panic in fn is re-raised after the terminal is restored. A close
// failure is joined with fn's error.
func WithSession(in, out *os.File, fn func(*Session) error) (err error) {
	s, err := Open(in, out)
	if err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			_ = s.Close()
			panic(r)
		}
		err = errors.Join(err, s.Close())
	}()
	return fn(s)
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
