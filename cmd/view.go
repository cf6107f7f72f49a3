package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "charm.land/bubbletea/v2"

	"github.com/oakwood-commons/jview/internal/config"
	"github.com/oakwood-commons/jview/internal/input"
	"github.com/oakwood-commons/jview/internal/keymap"
	"github.com/oakwood-commons/jview/internal/query"
	"github.com/oakwood-commons/jview/internal/render"
	"github.com/oakwood-commons/jview/internal/terminal"
	"github.com/oakwood-commons/jview/internal/theme"
	"github.com/oakwood-commons/jview/internal/ui"
	"github.com/oakwood-commons/jview/pkg/jsonvalue"
	"github.com/oakwood-commons/jview/pkg/loader"
	"github.com/oakwood-commons/jview/pkg/logger"
	"github.com/oakwood-commons/jview/pkg/settings"
)

// hostIO is the process's standard streams.
type hostIO struct {
	In  *os.File
	Out io.Writer
	Err io.Writer
}

// scrollTerminal is the part of a raw-mode session scrollback draws on.
type scrollTerminal interface {
	In() io.Reader
	Out() io.Writer
	Size() (width, height int)
}

// Hooks for tests.
var (
	stdoutIsTerminal = func(w io.Writer) bool {
		f, ok := w.(*os.File)
		return ok && terminal.IsTerminal(f)
	}
	runPager    = ui.Run
	withSession = func(in, out *os.File, fn func(scrollTerminal) error) error {
		return terminal.WithSession(in, out, func(s *terminal.Session) error { return fn(s) })
	}
)

// viewPlan is everything resolved before the terminal is touched.
type viewPlan struct {
	doc     *loader.Document
	label   string
	mode    string
	keys    keymap.Keymap
	palette theme.Palette
	opts    render.Options
}

// runView loads the document, applies the expression and displays the
// result using the run settings carried by ctx. Every source, config and
// query error is returned before raw mode is entered.
func runView(ctx context.Context, cfg config.File, path string, std hostIO) error {
	run, ok := settings.FromContext(ctx)
	if !ok {
		return errors.New("view: no run settings in context")
	}
	plan, err := prepareView(ctx, run, cfg, path, std)
	if err != nil {
		return err
	}
	switch plan.mode {
	case modePlain:
		return writePlain(std.Out, plan)
	case modeScrollback:
		return runScrollback(ctx, plan, std)
	default:
		return runPagerMode(ctx, plan, std)
	}
}

func prepareView(ctx context.Context, run *settings.Run, cfg config.File, path string, std hostIO) (*viewPlan, error) {
	lgr := logger.FromContext(ctx)

	th, err := cfg.Theme(run.Theme)
	if err != nil {
		return nil, fmt.Errorf("theme: %w", err)
	}
	km, err := cfg.Keymap()
	if err != nil {
		return nil, fmt.Errorf("keys: %w", err)
	}
	if run.MaxDepth < 0 {
		return nil, fmt.Errorf("--max-depth must not be negative, got %d", run.MaxDepth)
	}

	doc, err := loader.Load(path, std.In)
	if err != nil {
		return nil, err
	}

	label := ""
	if run.Expression != "" {
		if doc.Value == nil {
			return nil, fmt.Errorf("expression %q needs a document: pass a file or pipe JSON on stdin", run.Expression)
		}
		doc.Value, label, err = applyExpression(run.Expression, doc.Value)
		if err != nil {
			return nil, err
		}
	}

	mode, forced := effectiveMode(run.Mode, stdoutIsTerminal(std.Out))
	palette := th.Palette()
	if run.NoColor || forced {
		palette = theme.Plain()
	}
	opts := render.Options{MaxDepth: run.MaxDepth}
	if doc.Value != nil && opts.MaxDepth > 0 && doc.Value.Depth() > opts.MaxDepth {
		return nil, fmt.Errorf("render: %w (limit %d)", render.ErrMaxDepth, opts.MaxDepth)
	}

	lgr.V(1).Info("view prepared",
		logger.SourceKey, doc.Name,
		logger.ModeKey, mode,
		"forcedPlain", forced,
		"theme", th.Name,
		"expression", run.Expression,
	)
	return &viewPlan{doc: doc, label: label, mode: mode, keys: km, palette: palette, opts: opts}, nil
}

// applyExpression evaluates expr against v. The label is the expression as
// typed for navigation paths and "= expr" for computed results.
func applyExpression(expr string, v *jsonvalue.Value) (*jsonvalue.Value, string, error) {
	ev, err := query.New()
	if err != nil {
		return nil, "", err
	}
	out, err := ev.Evaluate(expr, v)
	if err != nil {
		return nil, "", err
	}
	if ev.IsPath(expr) {
		return out, expr, nil
	}
	return out, "= " + expr, nil
}

func writePlain(w io.Writer, plan *viewPlan) error {
	if plan.doc.Value == nil {
		return nil
	}
	opts := plan.opts
	opts.LineEnding = render.LF
	if err := render.New(plan.palette, opts).Render(w, plan.doc.Value); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return &render.WriteError{Err: err}
	}
	return nil
}

// runScrollback prints the document into the terminal and scrolls the
// terminal itself until the user quits.
func runScrollback(ctx context.Context, plan *viewPlan, std hostIO) error {
	in, out := std.In, os.Stdout
	if f, ok := std.Out.(*os.File); ok {
		out = f
	}
	if loader.StdinIsPiped(std.In) {
		ttyIn, ttyOut, err := openTerminalIOFn()
		if err != nil {
			return fmt.Errorf("scrollback: open terminal: %w", err)
		}
		defer closeTerminalIO(ttyIn, ttyOut)
		in = ttyIn
	}

	return withSession(in, out, func(s scrollTerminal) error {
		return scrollDocument(ctx, plan, s, int(out.Fd()))
	})
}

// scrollDocument draws the document with CRLF line endings, then runs the key
// loop. The scroller's page height follows resizes of the terminal at fd.
func scrollDocument(ctx context.Context, plan *viewPlan, s scrollTerminal, fd int) error {
	if plan.doc.Value != nil {
		opts := plan.opts
		opts.LineEnding = render.CRLF
		if err := render.New(plan.palette, opts).Render(s.Out(), plan.doc.Value); err != nil {
			return err
		}
		if _, err := io.WriteString(s.Out(), "\r\n"); err != nil {
			return &render.WriteError{Err: err}
		}
	}

	_, height := s.Size()
	scroller := terminal.NewScroller(s.Out(), height)
	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	go watchSize(watchCtx, fd, func(msg tea.WindowSizeMsg) {
		logger.FromContext(ctx).V(1).Info("terminal resized", "height", msg.Height)
		scroller.SetHeight(msg.Height)
	})

	keys, err := terminal.NewKeyReader(s.In(), os.Getenv("TERM"))
	if err != nil {
		return err
	}
	defer func() { _ = keys.Close() }()
	return input.Loop(ctx, keys, scroller, plan.keys)
}

func runPagerMode(ctx context.Context, plan *viewPlan, std hostIO) error {
	content := ""
	if plan.doc.Value != nil {
		var err error
		opts := plan.opts
		opts.LineEnding = render.LF
		if content, err = render.String(plan.doc.Value, plan.palette, opts); err != nil {
			return err
		}
	}

	progOpts, cleanup := getProgramOptions(ctx, std.In)
	defer cleanup()

	return runPager(ctx, ui.RunConfig{
		Source:  plan.doc.Name,
		Label:   plan.label,
		Content: content,
		Keys:    plan.keys,
		Palette: plan.palette,
	}, progOpts...)
}
