package ui

import (
	"unicode"
	"unicode/utf8"

	tea "charm.land/bubbletea/v2"

	"github.com/oakwood-commons/jview/internal/keymap"
)

var specialKeys = map[rune]rune{
	tea.KeyUp:        keymap.KeyUp,
	tea.KeyDown:      keymap.KeyDown,
	tea.KeyLeft:      keymap.KeyLeft,
	tea.KeyRight:     keymap.KeyRight,
	tea.KeyPgUp:      keymap.KeyPgUp,
	tea.KeyPgDown:    keymap.KeyPgDown,
	tea.KeyHome:      keymap.KeyHome,
	tea.KeyEnd:       keymap.KeyEnd,
	tea.KeyTab:       keymap.KeyTab,
	tea.KeyEnter:     keymap.KeyEnter,
	tea.KeyEscape:    keymap.KeyEscape,
	tea.KeySpace:     keymap.KeySpace,
	tea.KeyBackspace: keymap.KeyBackspace,
}

// chordFromKey converts a bubbletea key press into a keymap chord. Printable
// text wins over the key code so shifted letters arrive as "G", not
// "shift+g".
func chordFromKey(msg tea.KeyPressMsg) keymap.Chord {
	var mod keymap.Modifier
	if msg.Mod&tea.ModCtrl != 0 {
		mod |= keymap.ModCtrl
	}
	if msg.Mod&tea.ModAlt != 0 {
		mod |= keymap.ModAlt
	}

	if code, ok := specialKeys[msg.Code]; ok {
		if msg.Mod&tea.ModShift != 0 {
			mod |= keymap.ModShift
		}
		return keymap.Chord{Code: code, Mod: mod}
	}

	if mod&(keymap.ModCtrl|keymap.ModAlt) == 0 && msg.Text != "" {
		if r, size := utf8.DecodeRuneInString(msg.Text); size == len(msg.Text) && unicode.IsPrint(r) {
			if r == ' ' {
				return keymap.Key(keymap.KeySpace)
			}
			return keymap.Key(r)
		}
	}

	code := msg.Code
	if code == 0 && msg.Text != "" {
		code, _ = utf8.DecodeRuneInString(msg.Text)
	}
	if msg.Mod&tea.ModShift != 0 {
		if mod == keymap.ModNone {
			code = unicode.ToUpper(code)
		} else {
			mod |= keymap.ModShift
		}
	}
	return keymap.Chord{Code: code, Mod: mod}
}
