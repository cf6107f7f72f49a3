package terminal

import (
	"context"
	"fmt"
	"io"
	"sync"
	"unicode"
	"unicode/utf8"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/muesli/cancelreader"

	"github.com/oakwood-commons/jview/internal/keymap"
)

var specialKeys = map[rune]rune{
	uv.KeyUp:        keymap.KeyUp,
	uv.KeyDown:      keymap.KeyDown,
	uv.KeyLeft:      keymap.KeyLeft,
	uv.KeyRight:     keymap.KeyRight,
	uv.KeyPgUp:      keymap.KeyPgUp,
	uv.KeyPgDown:    keymap.KeyPgDown,
	uv.KeyHome:      keymap.KeyHome,
	uv.KeyEnd:       keymap.KeyEnd,
	uv.KeyTab:       keymap.KeyTab,
	uv.KeyEnter:     keymap.KeyEnter,
	uv.KeyEscape:    keymap.KeyEscape,
	uv.KeySpace:     keymap.KeySpace,
	uv.KeyBackspace: keymap.KeyBackspace,
}

// KeyReader decodes a raw-mode input stream into key chords. Decoding,
// escape-sequence timeouts and split reads are handled by ultraviolet's
// terminal reader; reads go through a cancel reader so Close can interrupt a
// blocked read on a real terminal.
type KeyReader struct {
	cr     cancelreader.CancelReader
	tr     *uv.TerminalReader
	events chan uv.Event

	ctx    context.Context
	cancel context.CancelFunc
	start  sync.Once
	done   chan struct{}
	err    error
}

// NewKeyReader returns a KeyReader over r. termType is the $TERM value used
// for the key sequence table.
func NewKeyReader(r io.Reader, termType string) (*KeyReader, error) {
	cr, err := cancelreader.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("terminal: input reader: %w", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &KeyReader{
		cr:     cr,
		tr:     uv.NewTerminalReader(cr, termType),
		events: make(chan uv.Event),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}, nil
}

func (k *KeyReader) stream() {
	k.err = k.tr.StreamEvents(k.ctx, k.events)
	close(k.done)
}

// ReadChord blocks until a key press arrives, the context is done, or the
// stream ends. End of input and Close both report io.EOF. Events that are not
// key presses are skipped.
func (k *KeyReader) ReadChord(ctx context.Context) (keymap.Chord, error) {
	if err := ctx.Err(); err != nil {
		return keymap.Chord{}, err
	}
	k.start.Do(func() { go k.stream() })
	for {
		select {
		case <-ctx.Done():
			return keymap.Chord{}, ctx.Err()
		case ev := <-k.events:
			if c, ok := chordFromEvent(ev); ok {
				return c, nil
			}
		case <-k.done:
			if k.err != nil {
				return keymap.Chord{}, k.err
			}
			return keymap.Chord{}, io.EOF
		}
	}
}

// Close stops decoding and interrupts a pending read where the platform
// allows it.
func (k *KeyReader) Close() error {
	k.cancel()
	k.cr.Cancel()
	k.start.Do(func() { close(k.done) })
	for {
		select {
		case <-k.events:
		case <-k.done:
			return k.cr.Close()
		}
	}
}

// chordFromEvent converts a decoded key press into a keymap chord. Printable
// text wins over the key code so shifted letters arrive as "G".
func chordFromEvent(ev uv.Event) (keymap.Chord, bool) {
	key, ok := ev.(uv.KeyPressEvent)
	if !ok {
		return keymap.Chord{}, false
	}
	var mod keymap.Modifier
	if key.Mod.Contains(uv.ModCtrl) {
		mod |= keymap.ModCtrl
	}
	if key.Mod.Contains(uv.ModAlt) {
		mod |= keymap.ModAlt
	}

	if code, ok := specialKeys[key.Code]; ok {
		if key.Mod.Contains(uv.ModShift) {
			mod |= keymap.ModShift
		}
		return keymap.Chord{Code: code, Mod: mod}, true
	}

	if mod == keymap.ModNone && key.Text != "" {
		if r, size := utf8.DecodeRuneInString(key.Text); size == len(key.Text) && unicode.IsPrint(r) {
			return keymap.Key(r), true
		}
	}

	code := key.Code
	if code > unicode.MaxRune {
		// Function keys and other extended codes have no keymap binding.
		return keymap.Chord{}, false
	}
	if key.Mod.Contains(uv.ModShift) {
		if mod == keymap.ModNone {
			code = unicode.ToUpper(code)
		} else {
			mod |= keymap.ModShift
		}
	}
	return keymap.Chord{Code: code, Mod: mod}, true
}
