package jsonvalue

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// ErrEmpty is returned when the input holds no JSON value at all.
var ErrEmpty = errors.New("empty document")

// SyntaxError describes malformed input with a 1-based line and column.
type SyntaxError struct {
	Line   int
	Column int
	Msg    string
}

func (e *SyntaxError) Error() string {
	if e.Line == 0 {
		return e.Msg
	}
	return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Msg)
}

// Parse parses a complete JSON document. Parsing is all-or-nothing: a
// malformed document yields a *SyntaxError and no value.
func Parse(data []byte) (*Value, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmpty
	}
	if !gjson.ValidBytes(data) {
		return nil, describeSyntaxError(data)
	}
	return fromResult(gjson.ParseBytes(data)), nil
}

// MustParse is Parse for literals in tests and examples; it panics on error.
func MustParse(s string) *Value {
	v, err := Parse([]byte(s))
	if err != nil {
		panic(fmt.Sprintf("jsonvalue: MustParse(%q): %v", s, err))
	}
	return v
}

func fromResult(r gjson.Result) *Value {
	switch r.Type {
	case gjson.Null:
		return NewNull()
	case gjson.False:
		return NewBool(false)
	case gjson.True:
		return NewBool(true)
	case gjson.Number:
		return NewNumber(r.Raw)
	case gjson.String:
		return NewString(r.Str)
	case gjson.JSON:
		if r.IsArray() {
			items := []*Value{}
			r.ForEach(func(_, el gjson.Result) bool {
				items = append(items, fromResult(el))
				return true
			})
			return NewArray(items...)
		}
		members := []Member{}
		r.ForEach(func(key, el gjson.Result) bool {
			members = append(members, Member{Key: key.Str, Value: fromResult(el)})
			return true
		})
		return NewObject(members...)
	}
	return NewNull()
}

// describeSyntaxError locates the first syntax problem. gjson only reports
// validity, so the offset comes from encoding/json.
func describeSyntaxError(data []byte) error {
	var raw json.RawMessage
	err := json.Unmarshal(data, &raw)
	var se *json.SyntaxError
	if errors.As(err, &se) {
		line, col := position(data, se.Offset)
		return &SyntaxError{Line: line, Column: col, Msg: se.Error()}
	}
	if err != nil {
		return &SyntaxError{Msg: err.Error()}
	}
	return &SyntaxError{Msg: "invalid JSON"}
}

// position returns the 1-based line and column of the byte that
// json.SyntaxError.Offset blames. Offset points just past that byte.
func position(data []byte, offset int64) (line, col int) {
	idx := offset - 1
	if idx > int64(len(data)) {
		idx = int64(len(data))
	}
	if idx < 0 {
		idx = 0
	}
	line, col = 1, 1
	for _, b := range data[:idx] {
		if b == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}
