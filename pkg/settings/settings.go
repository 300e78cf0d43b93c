// Package settings provides build metadata, runtime configuration, and
// context helpers used across the jsassist CLI and library packages.
package settings

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "jsassist"

// VersionInformation is populated at build time via ldflags and holds the
// commit hash, semantic version, and build timestamp of the running binary.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// VersionInfo holds metadata about the build, including the commit hash,
// build version, and build timestamp.
type VersionInfo struct {
	Commit       string
	BuildVersion string
	BuildTime    string
}

// ScriptSource describes where the committed script text of a run comes from.
type ScriptSource struct {
	Path      string // file path; empty when read from stdin or passed inline
	FromStdin bool
}

// Run holds configuration settings for a single execution of the application.
type Run struct {
	MinLogLevel  int8
	Script       ScriptSource
	ConfigPath   string
	OutputFormat string
	IsQuiet      bool
	NoColor      bool
	ExitOnError  bool
}

// NewCliParams returns the defaults used by the command line entry point.
func NewCliParams() *Run {
	return &Run{
		MinLogLevel:  0,
		OutputFormat: "text",
		IsQuiet:      false,
		NoColor:      false,
		ExitOnError:  true,
	}
}
