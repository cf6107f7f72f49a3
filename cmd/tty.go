package cmd

import (
	"context"
	"os"
	"runtime"
	"time"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"

	"github.com/oakwood-commons/jview/pkg/loader"
)

// Hooks for tests.
var (
	openTerminalIOFn = openTerminalIO
	termGetSize      = term.GetSize
	newResizeTicker  = func(d time.Duration) resizeTicker { return realResizeTicker{Ticker: time.NewTicker(d)} }
	sendWindowSize   = func(p *tea.Program, msg tea.WindowSizeMsg) { p.Send(msg) }
)

type resizeTicker interface {
	C() <-chan time.Time
	Stop()
}

type realResizeTicker struct {
	*time.Ticker
}

func (t realResizeTicker) C() <-chan time.Time { return t.Ticker.C }

// getProgramOptions points the pager at the controlling terminal when the
// document arrived on stdin. The returned func releases what was opened.
func getProgramOptions(ctx context.Context, stdin *os.File) ([]tea.ProgramOption, func()) {
	if !loader.StdinIsPiped(stdin) {
		return nil, func() {}
	}
	ttyIn, ttyOut, err := openTerminalIOFn()
	if err != nil {
		// No controlling terminal (CI); keys will not reach the pager.
		return nil, func() {}
	}

	ctx, cancel := context.WithCancel(ctx)
	opts := []tea.ProgramOption{tea.WithInput(ttyIn)}
	if ttyOut != nil {
		opts = append(opts, tea.WithOutput(ttyOut), withTTYResizeWatcher(ctx, ttyOut))
	}
	return opts, func() {
		cancel()
		closeTerminalIO(ttyIn, ttyOut)
	}
}

func closeTerminalIO(in, out *os.File) {
	if in != nil {
		_ = in.Close()
	}
	if out != nil && out != in {
		_ = out.Close()
	}
}

func openTerminalIO() (*os.File, *os.File, error) {
	in, out := terminalDeviceNames(runtime.GOOS)

	input, err := os.OpenFile(in, os.O_RDWR, 0)
	if err != nil {
		return nil, nil, err
	}
	if out == "" || out == in {
		return input, input, nil
	}
	output, err := os.OpenFile(out, os.O_RDWR, 0)
	if err != nil {
		_ = input.Close()
		return nil, nil, err
	}
	return input, output, nil
}

func terminalDeviceNames(goos string) (input string, output string) {
	if goos == "windows" {
		return "CONIN$", "CONOUT$"
	}
	return "/dev/tty", "/dev/tty"
}

// withTTYResizeWatcher polls the terminal size and forwards changes to the
// program. SIGWINCH does not reach a program whose input is a reopened tty on
// every platform. The watcher stops with ctx.
func withTTYResizeWatcher(ctx context.Context, out *os.File) tea.ProgramOption {
	return func(p *tea.Program) {
		if ctx == nil || out == nil {
			return
		}
		go watchSize(ctx, int(out.Fd()), func(msg tea.WindowSizeMsg) { sendWindowSize(p, msg) })
	}
}

func watchSize(ctx context.Context, fd int, send func(tea.WindowSizeMsg)) {
	t := newResizeTicker(250 * time.Millisecond)
	defer t.Stop()

	lastW, lastH := 0, 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C():
			w, h, err := termGetSize(fd)
			if err != nil || (w == lastW && h == lastH) {
				continue
			}
			lastW, lastH = w, h
			send(tea.WindowSizeMsg{Width: w, Height: h})
		}
	}
}
