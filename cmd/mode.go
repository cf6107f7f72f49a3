package cmd

import (
	"fmt"
	"strings"

	"github.com/oakwood-commons/jview/internal/config"
)

const (
	modePager      = "pager"
	modeScrollback = "scrollback"
	modePlain      = "plain"
)

// modeValue is a pflag.Value restricted to the known display modes.
type modeValue struct {
	dst *string
}

func newModeValue(dst *string) *modeValue { return &modeValue{dst: dst} }

func (m *modeValue) String() string {
	if m.dst == nil {
		return ""
	}
	return *m.dst
}

func (m *modeValue) Set(s string) error {
	s = strings.ToLower(strings.TrimSpace(s))
	if !config.ValidMode(s) {
		return fmt.Errorf("must be one of %s", strings.Join(config.Modes, "|"))
	}
	*m.dst = s
	return nil
}

func (m *modeValue) Type() string { return "mode" }

// effectiveMode forces plain output when stdout is not a terminal.
func effectiveMode(requested string, stdoutTTY bool) (mode string, forced bool) {
	if !stdoutTTY {
		return modePlain, requested != modePlain
	}
	if requested == "" {
		return modePager, false
	}
	return requested, false
}
