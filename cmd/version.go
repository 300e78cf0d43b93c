package cmd

import (
	"encoding/json"
	"fmt"
	"runtime"
	rdebug "runtime/debug"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/jsassist/pkg/settings"
)

var versionOutput string

// versionData describes the running binary.
type versionData struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	BuildOS   string `json:"buildOS"`
	BuildArch string `json:"buildArch"`
}

// buildVersionData merges the ldflags metadata with what the Go toolchain
// recorded in the binary.
func buildVersionData() versionData {
	vi := settings.VersionInformation
	data := versionData{
		Name:      settings.CliBinaryName,
		Version:   vi.BuildVersion,
		Commit:    vi.Commit,
		BuildTime: vi.BuildTime,
		GoVersion: runtime.Version(),
		BuildOS:   runtime.GOOS,
		BuildArch: runtime.GOARCH,
	}

	info, ok := rdebug.ReadBuildInfo()
	if !ok {
		return data
	}
	if info.GoVersion != "" {
		data.GoVersion = info.GoVersion
	}
	if v := info.Main.Version; v != "" && v != "(devel)" && data.Version == "v0.0.0-nightly" {
		data.Version = v
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if data.Commit == "unknown" && len(s.Value) >= 7 {
				data.Commit = s.Value[:7]
			}
		case "vcs.time":
			if data.BuildTime == "unknown" {
				data.BuildTime = s.Value
			}
		case "GOOS":
			data.BuildOS = s.Value
		case "GOARCH":
			data.BuildArch = s.Value
		}
	}
	return data
}

// cliVersionString builds the one-line version used by --version.
func cliVersionString() string {
	d := buildVersionData()
	return fmt.Sprintf("%s %s (%s, go %s)", d.Name, d.Version, d.Commit, d.GoVersion)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print jsassist version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		out := cmd.OutOrStdout()
		switch versionOutput {
		case "text", "":
			_, err := fmt.Fprintln(out, cliVersionString())
			return err
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(buildVersionData())
		default:
			return unsupportedOutput(versionOutput, "text", "json")
		}
	},
}

func init() { //nolint:gochecknoinits
	versionCmd.Flags().StringVarP(&versionOutput, "output", "o", "text", "output format: text|json")
}
