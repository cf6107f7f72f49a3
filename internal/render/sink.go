package render

import (
	"io"
	"strings"

	"github.com/oakwood-commons/jview/internal/theme"
)

const spaces = "                                                                "

// sink applies the line terminator policy and wraps write failures.
type sink struct {
	w   io.Writer
	eol string
}

func (s *sink) raw(text string) error {
	if text == "" {
		return nil
	}
	if _, err := io.WriteString(s.w, text); err != nil {
		return &WriteError{Err: err}
	}
	return nil
}

func (s *sink) newline() error { return s.raw(s.eol) }

func (s *sink) indent(n int) error {
	for n > 0 {
		chunk := n
		if chunk > len(spaces) {
			chunk = len(spaces)
		}
		if err := s.raw(spaces[:chunk]); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}

func (s *sink) styled(p theme.Palette, role theme.Role, text string) error {
	if err := s.raw(p.Open(role)); err != nil {
		return err
	}
	if err := s.raw(text); err != nil {
		return err
	}
	return s.raw(p.Close(role))
}

func (s *sink) quoted(p theme.Palette, role theme.Role, text string) error {
	var b strings.Builder
	b.Grow(len(text) + 2)
	b.WriteByte('"')
	b.WriteString(text)
	b.WriteByte('"')
	return s.styled(p, role, b.String())
}
