package cmd

import (
	"runtime"
	rdebug "runtime/debug"

	"github.com/oakwood-commons/jview/internal/config"
	"github.com/oakwood-commons/jview/pkg/settings"
)

var readBuildInfo = rdebug.ReadBuildInfo

// buildData is the version information stamped into app.about.
type buildData struct {
	Version   string
	GoVersion string
	GitCommit string
}

// currentBuildData prefers ldflags-provided values, then module build info.
func currentBuildData() buildData {
	bd := buildData{Version: "dev", GoVersion: runtime.Version()}
	if v := settings.VersionInformation.BuildVersion; v != "" && v != "v0.0.0-nightly" {
		bd.Version = v
	}
	if c := settings.VersionInformation.Commit; c != "" && c != "unknown" {
		bd.GitCommit = c
	}

	info, ok := readBuildInfo()
	if !ok {
		return bd
	}
	if info.GoVersion != "" {
		bd.GoVersion = info.GoVersion
	}
	if bd.Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		bd.Version = info.Main.Version
	}
	if bd.GitCommit == "" {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && len(s.Value) >= 7 {
				bd.GitCommit = s.Value[:7]
				break
			}
		}
	}
	if bd.Version == "dev" && bd.GitCommit != "" {
		bd.Version = bd.GitCommit
	}
	return bd
}

func applyBuildData(about *config.AboutConfig, bd buildData) {
	about.Version = bd.Version
	about.GoVersion = bd.GoVersion
	about.GitCommit = bd.GitCommit
}

// loadConfig resolves the config path and returns the merged configuration
// with build data filled in.
func loadConfig(explicit string) (config.File, error) {
	cfg, err := config.Load(config.ResolvePath(explicit))
	if err != nil {
		return cfg, err
	}
	applyBuildData(&cfg.App.About, currentBuildData())
	return cfg, nil
}
