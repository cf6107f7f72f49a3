// Package keymap maps key chords to viewer actions.
package keymap

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Modifier is a set of modifier keys held during a chord.
type Modifier uint8

const ModNone Modifier = 0

const (
	ModCtrl Modifier = 1 << iota
	ModAlt
	ModShift
)

// Codes for keys that have no printable rune. They sit above unicode.MaxRune
// so they never collide with text input.
const (
	KeyUp rune = unicode.MaxRune + 1 + iota
	KeyDown
	KeyLeft
	KeyRight
	KeyPgUp
	KeyPgDown
	KeyHome
	KeyEnd
)

// Keys that do map onto control characters.
const (
	KeyTab       rune = '\t'
	KeyEnter     rune = '\r'
	KeyEscape    rune = 0x1b
	KeySpace     rune = ' '
	KeyBackspace rune = 0x7f
)

var keyNames = map[rune]string{
	KeyUp:        "up",
	KeyDown:      "down",
	KeyLeft:      "left",
	KeyRight:     "right",
	KeyPgUp:      "pgup",
	KeyPgDown:    "pgdown",
	KeyHome:      "home",
	KeyEnd:       "end",
	KeyTab:       "tab",
	KeyEnter:     "enter",
	KeyEscape:    "esc",
	KeySpace:     "space",
	KeyBackspace: "backspace",
}

var keyAliases = map[string]rune{
	"escape":   KeyEscape,
	"return":   KeyEnter,
	"pageup":   KeyPgUp,
	"pagedown": KeyPgDown,
}

// Chord is one key event: a key code plus the modifiers held with it.
type Chord struct {
	Code rune
	Mod  Modifier
}

// Ctrl returns the chord for ctrl+r.
func Ctrl(r rune) Chord { return Chord{Code: r, Mod: ModCtrl} }

// Key returns the chord for r with no modifiers.
func Key(r rune) Chord { return Chord{Code: r} }

// String formats the chord the way ParseChord reads it, e.g. "ctrl+c".
func (c Chord) String() string {
	var b strings.Builder
	if c.Mod&ModCtrl != 0 {
		b.WriteString("ctrl+")
	}
	if c.Mod&ModAlt != 0 {
		b.WriteString("alt+")
	}
	if c.Mod&ModShift != 0 {
		b.WriteString("shift+")
	}
	if name, ok := keyNames[c.Code]; ok {
		b.WriteString(name)
	} else {
		b.WriteRune(c.Code)
	}
	return b.String()
}

// ParseChord reads chords such as "q", "ctrl+c", "alt+j", "pgdown" or "space".
func ParseChord(s string) (Chord, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Chord{}, fmt.Errorf("empty key chord")
	}
	var c Chord
	rest := s
	for {
		i := strings.Index(rest, "+")
		// A trailing "+" is the plus key itself.
		if i <= 0 || i == len(rest)-1 {
			break
		}
		switch strings.ToLower(rest[:i]) {
		case "ctrl":
			c.Mod |= ModCtrl
		case "alt":
			c.Mod |= ModAlt
		case "shift":
			c.Mod |= ModShift
		default:
			return Chord{}, fmt.Errorf("unknown modifier %q in %q", rest[:i], s)
		}
		rest = rest[i+1:]
	}
	if utf8.RuneCountInString(rest) == 1 {
		r, _ := utf8.DecodeRuneInString(rest)
		c.Code = r
		return c, nil
	}
	name := strings.ToLower(rest)
	for code, n := range keyNames {
		if n == name {
			c.Code = code
			return c, nil
		}
	}
	if code, ok := keyAliases[name]; ok {
		c.Code = code
		return c, nil
	}
	return Chord{}, fmt.Errorf("unknown key %q in %q", rest, s)
}

// Action is what the viewer does in response to a chord.
type Action int

const (
	None Action = iota
	ScrollDown
	ScrollUp
	PageDown
	PageUp
	Quit
)

var actionNames = []string{"none", "scroll_down", "scroll_up", "page_down", "page_up", "quit"}

func (a Action) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return fmt.Sprintf("action(%d)", int(a))
	}
	return actionNames[a]
}

// ParseAction reads an action name as used in configuration files.
func ParseAction(s string) (Action, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	name = strings.ReplaceAll(name, "-", "_")
	for i, n := range actionNames {
		if n == name && i != int(None) {
			return Action(i), nil
		}
	}
	return None, fmt.Errorf("unknown action %q", s)
}

// interrupt always quits and cannot be rebound.
var interrupt = Ctrl('c')

// Keymap is a lookup table from chord to action.
type Keymap struct {
	bindings map[Chord]Action
}

// Default returns the standard table: ctrl+c and q quit, j scrolls down one
// line, k scrolls up one line. Every other chord is ignored.
func Default() Keymap {
	return Keymap{bindings: map[Chord]Action{
		interrupt: Quit,
		Key('q'):  Quit,
		Key('j'):  ScrollDown,
		Key('k'):  ScrollUp,
	}}
}

// Lookup returns the action bound to c, or None.
func (k Keymap) Lookup(c Chord) Action {
	if c == interrupt {
		return Quit
	}
	return k.bindings[c]
}

// Bind maps c to a, replacing any previous binding of c.
func (k Keymap) Bind(c Chord, a Action) error {
	if c == interrupt && a != Quit {
		return fmt.Errorf("%s is reserved for quit", interrupt)
	}
	if k.bindings == nil {
		return fmt.Errorf("keymap: Bind on zero Keymap")
	}
	if a == None {
		delete(k.bindings, c)
		return nil
	}
	k.bindings[c] = a
	return nil
}

// Clone returns an independent copy.
func (k Keymap) Clone() Keymap {
	out := Keymap{bindings: make(map[Chord]Action, len(k.bindings))}
	for c, a := range k.bindings {
		out.bindings[c] = a
	}
	return out
}

// FromConfig starts from Default and, for each configured action, replaces
// its default chords with the listed ones. ctrl+c keeps quitting regardless.
func FromConfig(bindings map[string][]string) (Keymap, error) {
	km := Default()
	names := make([]string, 0, len(bindings))
	for name := range bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		action, err := ParseAction(name)
		if err != nil {
			return Keymap{}, err
		}
		for c, bound := range km.bindings {
			if bound == action && c != interrupt {
				delete(km.bindings, c)
			}
		}
		for _, spec := range bindings[name] {
			c, err := ParseChord(spec)
			if err != nil {
				return Keymap{}, fmt.Errorf("keys.%s: %w", name, err)
			}
			if err := km.Bind(c, action); err != nil {
				return Keymap{}, fmt.Errorf("keys.%s: %w", name, err)
			}
		}
	}
	return km, nil
}
