package cmd

import (
	"os"
	"path/filepath"
	rdebug "runtime/debug"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/jview/pkg/settings"
)

func stubBuildInfo(t *testing.T, info *rdebug.BuildInfo) {
	t.Helper()
	orig := readBuildInfo
	readBuildInfo = func() (*rdebug.BuildInfo, bool) { return info, info != nil }
	t.Cleanup(func() { readBuildInfo = orig })
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	stubBuildInfo(t, &rdebug.BuildInfo{GoVersion: "go1.24.2"})

	cfg, err := loadConfig("")
	require.NoError(t, err)
	require.Equal(t, "jview", cfg.App.About.Name)
	require.Equal(t, "go1.24.2", cfg.App.About.GoVersion)
	require.Equal(t, "dev", cfg.App.About.Version)
	require.Equal(t, "default", cfg.UI.Theme.Default)
}

func TestLoadConfigExplicitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jview.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ui:\n  theme:\n    default: warm\n"), 0o600))

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "warm", cfg.UI.Theme.Default)

	_, err = loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestCurrentBuildData(t *testing.T) {
	t.Run("vcs revision without module version", func(t *testing.T) {
		stubBuildInfo(t, &rdebug.BuildInfo{
			GoVersion: "go1.24.2",
			Main:      rdebug.Module{Version: "(devel)"},
			Settings:  []rdebug.BuildSetting{{Key: "vcs.revision", Value: "0123456789abcdef"}},
		})
		bd := currentBuildData()
		require.Equal(t, "0123456", bd.GitCommit)
		require.Equal(t, "0123456", bd.Version)
	})

	t.Run("module version", func(t *testing.T) {
		stubBuildInfo(t, &rdebug.BuildInfo{Main: rdebug.Module{Version: "v1.4.0"}})
		require.Equal(t, "v1.4.0", currentBuildData().Version)
	})

	t.Run("ldflags win", func(t *testing.T) {
		orig := settings.VersionInformation
		settings.VersionInformation = settings.VersionInfo{Commit: "feedbee", BuildVersion: "v2.0.0", BuildTime: "now"}
		t.Cleanup(func() { settings.VersionInformation = orig })
		stubBuildInfo(t, &rdebug.BuildInfo{Main: rdebug.Module{Version: "v1.4.0"}})

		bd := currentBuildData()
		require.Equal(t, "v2.0.0", bd.Version)
		require.Equal(t, "feedbee", bd.GitCommit)
	})

	t.Run("no build info", func(t *testing.T) {
		stubBuildInfo(t, nil)
		require.Equal(t, "dev", currentBuildData().Version)
	})
}
