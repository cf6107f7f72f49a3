// Package input runs the interactive key loop: it blocks for one chord at a
// time, looks it up in a keymap and applies the result to a viewport.
package input

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/oakwood-commons/jview/internal/keymap"
	"github.com/oakwood-commons/jview/pkg/logger"
)

// EventSource yields key chords. ReadChord blocks until a chord arrives, the
// context is done, or the source fails. io.EOF means no more input.
type EventSource interface {
	ReadChord(ctx context.Context) (keymap.Chord, error)
}

// Viewport is what the loop scrolls.
type Viewport interface {
	ScrollDown(n int) error
	ScrollUp(n int) error
	// Height is the page size used by page actions.
	Height() int
}

// ReadError reports a failure of the event source.
type ReadError struct {
	Err error
}

func (e *ReadError) Error() string { return "input: read event: " + e.Err.Error() }

func (e *ReadError) Unwrap() error { return e.Err }

// Dispatch resolves one chord. stop is true for the terminating transition,
// in which case no viewport action is to be taken.
func Dispatch(km keymap.Keymap, c keymap.Chord) (action keymap.Action, stop bool) {
	action = km.Lookup(c)
	return action, action == keymap.Quit
}

// Apply performs a non-terminal action on vp.
func Apply(vp Viewport, action keymap.Action) error {
	switch action {
	case keymap.ScrollDown:
		return vp.ScrollDown(1)
	case keymap.ScrollUp:
		return vp.ScrollUp(1)
	case keymap.PageDown:
		return vp.ScrollDown(pageSize(vp))
	case keymap.PageUp:
		return vp.ScrollUp(pageSize(vp))
	}
	return nil
}

func pageSize(vp Viewport) int {
	if h := vp.Height(); h > 1 {
		return h - 1
	}
	return 1
}

// Loop reads chords from src until a quit chord, end of input, or an error.
// Each chord produces at most one viewport action before the next read.
func Loop(ctx context.Context, src EventSource, vp Viewport, km keymap.Keymap) error {
	lgr := logger.FromContext(ctx)
	for {
		c, err := src.ReadChord(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				lgr.V(1).Info("input closed")
				return nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
				return ctxErr
			}
			return &ReadError{Err: err}
		}
		action, stop := Dispatch(km, c)
		if stop {
			lgr.V(1).Info("quit", "chord", c.String())
			return nil
		}
		if action == keymap.None {
			continue
		}
		if err := Apply(vp, action); err != nil {
			return fmt.Errorf("input: %s: %w", action, err)
		}
	}
}
