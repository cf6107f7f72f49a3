package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/jview/internal/config"
)

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	orig := *runSettings
	t.Cleanup(func() {
		*runSettings = orig
		reset := func(f *pflag.Flag) { f.Changed = false }
		rootCmd.Flags().VisitAll(reset)
		rootCmd.PersistentFlags().VisitAll(reset)
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
	})
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "jview "))
	assert.True(t, strings.HasPrefix(lines[1], "Built with go"))
}

func TestThemesCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ui:\n  theme:\n    default: ocean\n  themes:\n    ocean:\n      key_color: 33\n"), 0o600))

	out, err := execute(t, "themes", "--config-file", path)
	require.NoError(t, err)
	assert.Equal(t, "Available themes (default: ocean):\n - dark\n - default\n - mono\n - ocean\n - warm\n", out)
}

func TestConfigCommands(t *testing.T) {
	out, err := execute(t, "config")
	require.NoError(t, err)
	var cfg config.File
	require.NoError(t, yaml.Unmarshal([]byte(out), &cfg))
	assert.Equal(t, "pager", cfg.UI.Render.Mode)

	out, err = execute(t, "config", "default")
	require.NoError(t, err)
	assert.Equal(t, string(config.DefaultYAML()), out)

	out, err = execute(t, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, "(built-in defaults)\n", out)
}

func TestFunctionsCommand(t *testing.T) {
	out, err := execute(t, "functions")
	require.NoError(t, err)
	assert.Contains(t, out, "size()")
	assert.Contains(t, out, "filter() - macro")
}

func TestRootRejectsBadMode(t *testing.T) {
	_, err := execute(t, "--mode", "fancy", "doc.json")
	require.ErrorContains(t, err, "pager|scrollback|plain")
}

func TestRootPlainOutput(t *testing.T) {
	stubStdoutTTY(t, false)
	path := writeDoc(t, `{"k": [true, null]}`)
	out, err := execute(t, path)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"k\": [\n    true,\n    null\n  ]\n}\n", out)
}

func TestRootConfigSuppliesDefaults(t *testing.T) {
	stubStdoutTTY(t, false)
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("ui:\n  render:\n    max_depth: 1\n"), 0o600))

	_, err := execute(t, "--config-file", cfgPath, writeDoc(t, `[[1]]`))
	require.ErrorContains(t, err, "maximum nesting depth")

	_, err = execute(t, "--config-file", cfgPath, "--max-depth", "0", writeDoc(t, `[[1]]`))
	require.NoError(t, err, "the flag overrides the config")
}

func TestPrintVersionFallsBackWithoutDetails(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printVersion(&out, config.AboutConfig{Name: "jview", Version: "v1"}))
	assert.Equal(t, "jview v1\n", out.String())
}
