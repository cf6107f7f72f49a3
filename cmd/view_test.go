package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/jview/internal/config"
	"github.com/oakwood-commons/jview/internal/keymap"
	"github.com/oakwood-commons/jview/internal/render"
	"github.com/oakwood-commons/jview/internal/theme"
	"github.com/oakwood-commons/jview/internal/ui"
	"github.com/oakwood-commons/jview/pkg/loader"
	"github.com/oakwood-commons/jview/pkg/settings"
)

const sampleDoc = `{"name": "jview", "items": [{"id": 3}, {"id": 1}], "ok": true, "none": null}`

func writeDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func defaultConfig(t *testing.T) config.File {
	t.Helper()
	cfg, err := config.Default()
	require.NoError(t, err)
	return cfg
}

func stubStdoutTTY(t *testing.T, tty bool) {
	t.Helper()
	orig := stdoutIsTerminal
	stdoutIsTerminal = func(io.Writer) bool { return tty }
	t.Cleanup(func() { stdoutIsTerminal = orig })
}

func newRun(mutate func(*settings.Run)) *settings.Run {
	run := settings.NewCliParams()
	if mutate != nil {
		mutate(run)
	}
	return run
}

func withRun(run *settings.Run) context.Context {
	return settings.IntoContext(context.Background(), run)
}

func TestRunViewPlainWhenNotATerminal(t *testing.T) {
	stubStdoutTTY(t, false)
	var out bytes.Buffer
	err := runView(withRun(newRun(nil)), defaultConfig(t), writeDoc(t, sampleDoc), hostIO{Out: &out})
	require.NoError(t, err)

	want := "{\n" +
		"  \"name\": \"jview\",\n" +
		"  \"items\": [\n" +
		"    {\n" +
		"      \"id\": 3\n" +
		"    },\n" +
		"    {\n" +
		"      \"id\": 1\n" +
		"    }\n" +
		"  ],\n" +
		"  \"ok\": true,\n" +
		"  \"none\": null\n" +
		"}\n"
	assert.Equal(t, want, out.String(), "forced plain output carries no color")
}

func TestRunViewExplicitPlainKeepsColor(t *testing.T) {
	stubStdoutTTY(t, true)
	var out bytes.Buffer
	run := newRun(func(r *settings.Run) { r.Mode = modePlain })
	require.NoError(t, runView(withRun(run), defaultConfig(t), writeDoc(t, `{"a": 1}`), hostIO{Out: &out}))

	assert.Contains(t, out.String(), "\x1b[")
	assert.Equal(t, "{\n  \"a\": 1\n}\n", ansi.Strip(out.String()))

	out.Reset()
	run.NoColor = true
	require.NoError(t, runView(withRun(run), defaultConfig(t), writeDoc(t, `{"a": 1}`), hostIO{Out: &out}))
	assert.Equal(t, "{\n  \"a\": 1\n}\n", out.String())
}

func TestRunViewExpression(t *testing.T) {
	stubStdoutTTY(t, false)
	tests := []struct {
		name string
		expr string
		want string
	}{
		{"path", "_.items[1]", "{\n  \"id\": 1\n}\n"},
		{"computed", "_.items.map(x, x.id)", "[\n  3,\n  1\n]\n"},
		{"scalar", "_.name.upperAscii()", "\"JVIEW\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			run := newRun(func(r *settings.Run) { r.Expression = tt.expr })
			require.NoError(t, runView(withRun(run), defaultConfig(t), writeDoc(t, sampleDoc), hostIO{Out: &out}))
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestRunViewReadsPipedStdin(t *testing.T) {
	stubStdoutTTY(t, false)
	r, w, err := os.Pipe()
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	_, err = io.WriteString(w, `[1, "two"]`)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	var out bytes.Buffer
	require.NoError(t, runView(withRun(newRun(nil)), defaultConfig(t), "", hostIO{In: r, Out: &out}))
	assert.Equal(t, "[\n  1,\n  \"two\"\n]\n", out.String())
}

func TestRunViewErrorsBeforeDisplay(t *testing.T) {
	stubStdoutTTY(t, true)
	calledPager := false
	origPager := runPager
	runPager = func(context.Context, ui.RunConfig, ...tea.ProgramOption) error {
		calledPager = true
		return nil
	}
	t.Cleanup(func() { runPager = origPager })

	deep := strings.Repeat("[", 5) + strings.Repeat("]", 5)
	tests := []struct {
		name  string
		path  string
		run   *settings.Run
		check func(t *testing.T, err error)
	}{
		{
			name: "missing file",
			path: filepath.Join(t.TempDir(), "nope.json"),
			run:  newRun(nil),
			check: func(t *testing.T, err error) {
				var se *loader.SourceError
				require.ErrorAs(t, err, &se)
				assert.Equal(t, loader.OpRead, se.Op)
			},
		},
		{
			name: "malformed",
			path: writeDoc(t, `{"a": }`),
			run:  newRun(nil),
			check: func(t *testing.T, err error) {
				var se *loader.SourceError
				require.ErrorAs(t, err, &se)
				assert.Equal(t, loader.OpParse, se.Op)
			},
		},
		{
			name:  "bad expression",
			path:  writeDoc(t, sampleDoc),
			run:   newRun(func(r *settings.Run) { r.Expression = "_.items[" }),
			check: func(t *testing.T, err error) { require.ErrorContains(t, err, "query") },
		},
		{
			name:  "unknown theme",
			path:  writeDoc(t, sampleDoc),
			run:   newRun(func(r *settings.Run) { r.Theme = "neon" }),
			check: func(t *testing.T, err error) { require.ErrorContains(t, err, "unknown theme") },
		},
		{
			name:  "too deep",
			path:  writeDoc(t, deep),
			run:   newRun(func(r *settings.Run) { r.MaxDepth = 3 }),
			check: func(t *testing.T, err error) { require.ErrorIs(t, err, render.ErrMaxDepth) },
		},
		{
			name:  "negative depth",
			path:  writeDoc(t, sampleDoc),
			run:   newRun(func(r *settings.Run) { r.MaxDepth = -1 }),
			check: func(t *testing.T, err error) { require.ErrorContains(t, err, "--max-depth") },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calledPager = false
			err := runView(withRun(tt.run), defaultConfig(t), tt.path, hostIO{Out: io.Discard})
			require.Error(t, err)
			tt.check(t, err)
			assert.False(t, calledPager)
		})
	}
}

func TestRunViewPager(t *testing.T) {
	stubStdoutTTY(t, true)
	var got ui.RunConfig
	origPager := runPager
	runPager = func(_ context.Context, cfg ui.RunConfig, opts ...tea.ProgramOption) error {
		got = cfg
		assert.Empty(t, opts, "stdin is not piped")
		return nil
	}
	t.Cleanup(func() { runPager = origPager })

	path := writeDoc(t, sampleDoc)
	run := newRun(func(r *settings.Run) { r.Expression = "_.items[0]" })
	require.NoError(t, runView(withRun(run), defaultConfig(t), path, hostIO{Out: io.Discard}))

	assert.Equal(t, path, got.Source)
	assert.Equal(t, "_.items[0]", got.Label)
	assert.Equal(t, "{\n  \"id\": 3\n}", ansi.Strip(got.Content))
	assert.Equal(t, keymap.Quit, got.Keys.Lookup(keymap.Key('q')))
	assert.False(t, got.Palette.IsPlain())
}

func TestRunViewPagerWithoutDocument(t *testing.T) {
	stubStdoutTTY(t, true)
	var got ui.RunConfig
	origPager := runPager
	runPager = func(_ context.Context, cfg ui.RunConfig, _ ...tea.ProgramOption) error {
		got = cfg
		return nil
	}
	t.Cleanup(func() { runPager = origPager })

	require.NoError(t, runView(withRun(newRun(nil)), defaultConfig(t), "", hostIO{Out: io.Discard}))
	assert.Empty(t, got.Content)

	err := runView(withRun(newRun(func(r *settings.Run) { r.Expression = "_" })), defaultConfig(t), "", hostIO{Out: io.Discard})
	require.ErrorContains(t, err, "needs a document")
}

func TestRunViewScrollbackUsesSession(t *testing.T) {
	stubStdoutTTY(t, true)
	boom := errors.New("no tty")
	var gotOut *os.File
	origSession := withSession
	withSession = func(_, out *os.File, _ func(scrollTerminal) error) error {
		gotOut = out
		return boom
	}
	t.Cleanup(func() { withSession = origSession })

	run := newRun(func(r *settings.Run) { r.Mode = modeScrollback })
	err := runView(withRun(run), defaultConfig(t), writeDoc(t, `[]`), hostIO{Out: io.Discard})
	require.ErrorIs(t, err, boom)
	assert.Same(t, os.Stdout, gotOut)
}

// fakeTerminal is a scrollTerminal over in-memory streams.
type fakeTerminal struct {
	in     io.Reader
	out    io.Writer
	height int
}

func (f *fakeTerminal) In() io.Reader    { return f.in }
func (f *fakeTerminal) Out() io.Writer   { return f.out }
func (f *fakeTerminal) Size() (int, int) { return 80, f.height }

// stubScrollSession runs the scrollback body against term instead of a raw
// terminal.
func stubScrollSession(t *testing.T, term *fakeTerminal) {
	t.Helper()
	orig, origSize := withSession, termGetSize
	withSession = func(_, _ *os.File, fn func(scrollTerminal) error) error { return fn(term) }
	termGetSize = func(int) (int, int, error) { return 0, 0, errors.New("not a terminal") }
	t.Cleanup(func() { withSession, termGetSize = orig, origSize })
}

func TestRunViewScrollbackDrawsAndScrolls(t *testing.T) {
	stubStdoutTTY(t, true)
	var out bytes.Buffer
	stubScrollSession(t, &fakeTerminal{in: strings.NewReader("jjk q j"), out: &out, height: 10})

	run := newRun(func(r *settings.Run) {
		r.Mode = modeScrollback
		r.NoColor = true
	})
	require.NoError(t, runView(withRun(run), defaultConfig(t), writeDoc(t, `{"a": [1]}`), hostIO{Out: io.Discard}))

	want := "{\r\n  \"a\": [\r\n    1\r\n  ]\r\n}\r\n" +
		ansi.ScrollDown(1) + ansi.ScrollDown(1) + ansi.ScrollUp(1) + ansi.ScrollDown(9)
	assert.Equal(t, want, out.String(), "keys after q are not read")
}

func TestRunViewScrollbackEndOfInput(t *testing.T) {
	stubStdoutTTY(t, true)
	var out bytes.Buffer
	stubScrollSession(t, &fakeTerminal{in: strings.NewReader("k"), out: &out, height: 24})

	run := newRun(func(r *settings.Run) { r.Mode = modeScrollback })
	require.NoError(t, runView(withRun(run), defaultConfig(t), "", hostIO{Out: io.Discard}))
	assert.Equal(t, ansi.ScrollUp(1), out.String(), "no document draws nothing")
}

func TestRunViewScrollbackRenderError(t *testing.T) {
	stubStdoutTTY(t, true)
	stubScrollSession(t, &fakeTerminal{in: strings.NewReader("q"), out: failingWriter{}, height: 24})

	run := newRun(func(r *settings.Run) { r.Mode = modeScrollback })
	err := runView(withRun(run), defaultConfig(t), writeDoc(t, `[1]`), hostIO{Out: io.Discard})
	var we *render.WriteError
	require.ErrorAs(t, err, &we)
}

func TestScrollDocumentFollowsResize(t *testing.T) {
	ticker := fakeTicker{c: make(chan time.Time)}
	origTicker, origSize := newResizeTicker, termGetSize
	newResizeTicker = func(time.Duration) resizeTicker { return ticker }
	termGetSize = func(int) (int, int, error) { return 80, 40, nil }
	t.Cleanup(func() { newResizeTicker, termGetSize = origTicker, origSize })

	pr, pw := io.Pipe()
	t.Cleanup(func() { _ = pw.Close() })
	var out bytes.Buffer
	term := &fakeTerminal{in: pr, out: &out, height: 24}

	doc, err := loader.LoadReader("doc", strings.NewReader(`[]`))
	require.NoError(t, err)
	plan := &viewPlan{doc: doc, keys: keymap.Default(), palette: theme.Plain()}

	done := make(chan error, 1)
	go func() { done <- scrollDocument(context.Background(), plan, term, 0) }()

	// The second tick is only received once the first resize is applied.
	ticker.c <- time.Now()
	ticker.c <- time.Now()
	_, err = io.WriteString(pw, " q")
	require.NoError(t, err)
	require.NoError(t, <-done)

	assert.Equal(t, "[]\r\n"+ansi.ScrollDown(39), out.String())
}

func TestRunViewNeedsSettings(t *testing.T) {
	err := runView(context.Background(), defaultConfig(t), "", hostIO{Out: io.Discard})
	require.ErrorContains(t, err, "no run settings")
}

func TestApplyExpressionLabels(t *testing.T) {
	doc, err := loader.LoadReader("doc", strings.NewReader(sampleDoc))
	require.NoError(t, err)

	_, label, err := applyExpression(`_["items"][0].id`, doc.Value)
	require.NoError(t, err)
	assert.Equal(t, `_["items"][0].id`, label)

	_, label, err = applyExpression("size(_.items)", doc.Value)
	require.NoError(t, err)
	assert.Equal(t, "= size(_.items)", label)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed pipe") }

func TestWritePlainPropagatesWriteError(t *testing.T) {
	doc, err := loader.LoadReader("doc", strings.NewReader(`{"a": 1}`))
	require.NoError(t, err)
	err = writePlain(failingWriter{}, &viewPlan{doc: doc, palette: defaultPalette(t)})
	var we *render.WriteError
	require.ErrorAs(t, err, &we)
}

func defaultPalette(t *testing.T) theme.Palette {
	t.Helper()
	th, err := defaultConfig(t).Theme("")
	require.NoError(t, err)
	return th.Palette()
}
