// Package settings holds build metadata and the per-run options shared by
// the jview command and its packages.
package settings

// CliBinaryName is the canonical binary name.
const CliBinaryName = "jview"

// DefaultMaxDepth applies when neither the flag nor the config sets a limit.
const DefaultMaxDepth = 1024

// VersionInformation is populated at build time via ldflags.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// VersionInfo holds the commit hash, version and build timestamp.
type VersionInfo struct {
	Commit       string
	BuildVersion string
	BuildTime    string
}

// Run holds the options for one invocation.
type Run struct {
	MinLogLevel int8
	LogFile     string
	ConfigFile  string

	// Mode is pager, scrollback or plain.
	Mode       string
	Theme      string
	Expression string
	MaxDepth   int
	NoColor    bool
}

// NewCliParams returns the defaults for a CLI run.
func NewCliParams() *Run {
	return &Run{
		Mode:     "pager",
		MaxDepth: DefaultMaxDepth,
	}
}
