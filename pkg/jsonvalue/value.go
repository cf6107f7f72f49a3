// Package jsonvalue holds the parsed form of a JSON document: a small tagged
// union that keeps object members in source order and numbers in their
// original textual form.
package jsonvalue

import "fmt"

// Kind identifies which arm of the Value union is populated.
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Member is a single key/value entry of an Object.
type Member struct {
	Key   string
	Value *Value
}

// Value is a JSON value. The zero Value is null.
// Values are treated as immutable once built.
type Value struct {
	kind    Kind
	boolean bool
	text    string // number literal or string contents
	items   []*Value
	members []Member
}

// NewNull returns a null value.
func NewNull() *Value { return &Value{kind: Null} }

// NewBool returns a boolean value.
func NewBool(b bool) *Value { return &Value{kind: Bool, boolean: b} }

// NewNumber returns a number value using lit verbatim as its textual form.
func NewNumber(lit string) *Value { return &Value{kind: Number, text: lit} }

// NewString returns a string value holding s unescaped.
func NewString(s string) *Value { return &Value{kind: String, text: s} }

// NewArray returns an array value holding items in order.
func NewArray(items ...*Value) *Value {
	if items == nil {
		items = []*Value{}
	}
	return &Value{kind: Array, items: items}
}

// NewObject returns an object with members in the given order. A repeated key
// keeps the position of its first occurrence and the value of its last.
func NewObject(members ...Member) *Value {
	out := make([]Member, 0, len(members))
	index := make(map[string]int, len(members))
	for _, m := range members {
		if i, ok := index[m.Key]; ok {
			out[i].Value = m.Value
			continue
		}
		index[m.Key] = len(out)
		out = append(out, m)
	}
	return &Value{kind: Object, members: out}
}

// Kind reports the value's kind. A nil *Value reports Null.
func (v *Value) Kind() Kind {
	if v == nil {
		return Null
	}
	return v.kind
}

// Bool returns the boolean payload; false for non-booleans.
func (v *Value) Bool() bool { return v != nil && v.kind == Bool && v.boolean }

// Number returns the number literal exactly as it appeared in the source.
func (v *Value) Number() string {
	if v == nil || v.kind != Number {
		return ""
	}
	return v.text
}

// Str returns the string payload.
func (v *Value) Str() string {
	if v == nil || v.kind != String {
		return ""
	}
	return v.text
}

// Items returns the elements of an array. The slice must not be modified.
func (v *Value) Items() []*Value {
	if v == nil || v.kind != Array {
		return nil
	}
	return v.items
}

// Members returns the entries of an object in insertion order.
// The slice must not be modified.
func (v *Value) Members() []Member {
	if v == nil || v.kind != Object {
		return nil
	}
	return v.members
}

// Len returns the number of elements or members of a container, 0 otherwise.
func (v *Value) Len() int {
	switch v.Kind() {
	case Array:
		return len(v.items)
	case Object:
		return len(v.members)
	default:
		return 0
	}
}

// Get returns the member value for key and whether it exists.
func (v *Value) Get(key string) (*Value, bool) {
	for _, m := range v.Members() {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}

// Depth returns the container nesting depth. Scalars are 0, a container is
// one more than its deepest child.
func (v *Value) Depth() int {
	best := 0
	switch v.Kind() {
	case Array:
		for _, it := range v.items {
			if d := it.Depth(); d > best {
				best = d
			}
		}
		return best + 1
	case Object:
		for _, m := range v.members {
			if d := m.Value.Depth(); d > best {
				best = d
			}
		}
		return best + 1
	default:
		return 0
	}
}

// Equal reports structural equality. Numbers compare by literal text,
// object members compare in order.
func Equal(a, b *Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch a.Kind() {
	case Null:
		return true
	case Bool:
		return a.Bool() == b.Bool()
	case Number:
		return a.Number() == b.Number()
	case String:
		return a.Str() == b.Str()
	case Array:
		if len(a.items) != len(b.items) {
			return false
		}
		for i := range a.items {
			if !Equal(a.items[i], b.items[i]) {
				return false
			}
		}
		return true
	case Object:
		if len(a.members) != len(b.members) {
			return false
		}
		for i := range a.members {
			if a.members[i].Key != b.members[i].Key || !Equal(a.members[i].Value, b.members[i].Value) {
				return false
			}
		}
		return true
	}
	return false
}
