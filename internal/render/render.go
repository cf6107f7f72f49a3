// Package render turns a jsonvalue.Value into indented, colorized text.
//
// Output follows a fixed layout: containers open on the current line, each
// element sits on its own line indented two columns deeper than its parent,
// and empty containers stay inline as [] or {}. String contents are written
// verbatim between quotes. Embedded quotes and control characters are NOT
// re-escaped, so such strings do not round-trip through a JSON parser; this
// is a known limitation of the viewer, not something callers should rely on
// being fixed.
package render

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/oakwood-commons/jview/internal/theme"
	"github.com/oakwood-commons/jview/pkg/jsonvalue"
)

// IndentStep is the number of columns added per nesting level.
const IndentStep = 2

// ErrMaxDepth is returned when a document nests deeper than Options.MaxDepth.
var ErrMaxDepth = errors.New("maximum nesting depth exceeded")

// LineEnding selects the line terminator written after each line.
type LineEnding int

const (
	// LF terminates lines with "\n". Use for pipes, files and in-process buffers.
	LF LineEnding = iota
	// CRLF terminates lines with "\r\n". Raw-mode terminals need the explicit
	// carriage return or output staircases.
	CRLF
)

func (e LineEnding) String() string {
	if e == CRLF {
		return "crlf"
	}
	return "lf"
}

func (e LineEnding) terminator() string {
	if e == CRLF {
		return "\r\n"
	}
	return "\n"
}

// Options configures a Renderer.
type Options struct {
	LineEnding LineEnding
	// MaxDepth caps container nesting; 0 means unlimited.
	MaxDepth int
	// BaseIndent is the starting cursor position for Render.
	BaseIndent int
}

// WriteError reports that the output sink rejected a write. Whatever was
// written before the failure is left in the sink.
type WriteError struct {
	Err error
}

func (e *WriteError) Error() string { return "render: write: " + e.Err.Error() }

func (e *WriteError) Unwrap() error { return e.Err }

// Cursor is the indentation depth, in columns, of an in-flight render.
// It is owned by a single render call.
type Cursor struct {
	col int
}

// NewCursor returns a cursor at column col; negative values clamp to 0.
func NewCursor(col int) *Cursor {
	if col < 0 {
		col = 0
	}
	return &Cursor{col: col}
}

// Column returns the current indentation.
func (c *Cursor) Column() int { return c.col }

func (c *Cursor) push() { c.col += IndentStep }

func (c *Cursor) pop() {
	c.col -= IndentStep
	if c.col < 0 {
		c.col = 0
	}
}

// Renderer writes values using a fixed palette and options.
// A Renderer is stateless between calls and safe to reuse.
type Renderer struct {
	palette theme.Palette
	opts    Options
}

// New returns a Renderer.
func New(palette theme.Palette, opts Options) *Renderer {
	return &Renderer{palette: palette, opts: opts}
}

// Render writes v to w starting at Options.BaseIndent. No terminator follows
// the final line.
func (r *Renderer) Render(w io.Writer, v *jsonvalue.Value) error {
	return r.RenderAt(w, v, NewCursor(r.opts.BaseIndent))
}

// RenderAt writes v to w using cur for indentation. cur holds the same column
// when RenderAt returns, on success or failure.
func (r *Renderer) RenderAt(w io.Writer, v *jsonvalue.Value, cur *Cursor) error {
	s := &sink{w: w, eol: r.opts.LineEnding.terminator()}
	return r.value(s, cur, v, 0)
}

// String renders v into a string. Rendering into memory cannot fail on
// write, so the only possible error is ErrMaxDepth.
func String(v *jsonvalue.Value, palette theme.Palette, opts Options) (string, error) {
	var b strings.Builder
	err := New(palette, opts).Render(&b, v)
	return b.String(), err
}

func (r *Renderer) value(s *sink, cur *Cursor, v *jsonvalue.Value, depth int) error {
	switch v.Kind() {
	case jsonvalue.Null:
		return s.styled(r.palette, theme.RoleNull, "null")
	case jsonvalue.Bool:
		if v.Bool() {
			return s.styled(r.palette, theme.RoleBool, "true")
		}
		return s.styled(r.palette, theme.RoleBool, "false")
	case jsonvalue.Number:
		return s.styled(r.palette, theme.RoleNumber, v.Number())
	case jsonvalue.String:
		return s.quoted(r.palette, theme.RoleString, v.Str())
	case jsonvalue.Array:
		if err := r.checkDepth(depth + 1); err != nil {
			return err
		}
		items := v.Items()
		if len(items) == 0 {
			return s.raw("[]")
		}
		return r.container(s, cur, "[", "]", len(items), func(i int) error {
			return r.value(s, cur, items[i], depth+1)
		})
	case jsonvalue.Object:
		if err := r.checkDepth(depth + 1); err != nil {
			return err
		}
		members := v.Members()
		if len(members) == 0 {
			return s.raw("{}")
		}
		return r.container(s, cur, "{", "}", len(members), func(i int) error {
			if err := s.quoted(r.palette, theme.RoleKey, members[i].Key); err != nil {
				return err
			}
			if err := s.raw(": "); err != nil {
				return err
			}
			return r.value(s, cur, members[i].Value, depth+1)
		})
	}
	return fmt.Errorf("render: unsupported kind %s", v.Kind())
}

// container writes a non-empty array or object body. The cursor is pushed
// for the elements and popped on every return path.
func (r *Renderer) container(s *sink, cur *Cursor, openTok, closeTok string, n int, elem func(i int) error) error {
	if err := s.raw(openTok); err != nil {
		return err
	}
	if err := s.newline(); err != nil {
		return err
	}
	if err := r.elements(s, cur, n, elem); err != nil {
		return err
	}
	if err := s.indent(cur.Column()); err != nil {
		return err
	}
	return s.raw(closeTok)
}

func (r *Renderer) elements(s *sink, cur *Cursor, n int, elem func(i int) error) error {
	cur.push()
	defer cur.pop()
	for i := 0; i < n; i++ {
		if err := s.indent(cur.Column()); err != nil {
			return err
		}
		if err := elem(i); err != nil {
			return err
		}
		if i < n-1 {
			if err := s.raw(","); err != nil {
				return err
			}
		}
		if err := s.newline(); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) checkDepth(depth int) error {
	if r.opts.MaxDepth > 0 && depth > r.opts.MaxDepth {
		return fmt.Errorf("render: %w (limit %d)", ErrMaxDepth, r.opts.MaxDepth)
	}
	return nil
}
