package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/jsassist/internal/hosttype"
	"github.com/oakwood-commons/jsassist/internal/universe"
)

var (
	typesFilter string
	typesOutput string
)

// typeInfo is one row of `jsassist types -o json`.
type typeInfo struct {
	Name          string   `json:"name"`
	Kind          string   `json:"kind"`
	Constructors  []string `json:"constructors,omitempty"`
	StaticFields  []string `json:"staticFields,omitempty"`
	StaticMethods []string `json:"staticMethods,omitempty"`
	Fields        []string `json:"fields,omitempty"`
	Methods       []string `json:"methods,omitempty"`
}

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the host types visible to scripts",
	Long: `Lists the type universe. Registered host types are shown with their
constructors and members; other names are listed with kind "unknown". --filter narrows the universe with a CEL expression
over the variables ` + universe.VarName + ", " + universe.VarPackage + ", " + universe.VarSimple + " and " + universe.VarKind + ".",
	Example: `  jsassist types
  jsassist types --filter 'pkg == "geom" && kind != "interface"'
  jsassist types -o json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := rootCtx
		cfg, err := loadConfig(ctx)
		if err != nil {
			return err
		}
		a, err := newAssistant(ctx, cfg, assistantOverrides{
			filter:    typesFilter,
			filterSet: cmd.Flags().Changed("filter"),
		})
		if err != nil {
			return err
		}
		infos := make([]typeInfo, 0, a.Universe.Len())
		for _, name := range a.Universe.Names() {
			t, err := a.Registry.Load(name)
			if err != nil {
				infos = append(infos, typeInfo{Name: name, Kind: "unknown"})
				continue
			}
			infos = append(infos, describeType(a.Registry, t))
		}
		switch typesOutput {
		case "text", "":
			return renderTypesText(cmd.OutOrStdout(), infos)
		case "json":
			return writeJSON(cmd.OutOrStdout(), infos)
		default:
			return unsupportedOutput(typesOutput, "text", "json")
		}
	},
}

func describeType(r *hosttype.Registry, t *hosttype.Type) typeInfo {
	info := typeInfo{Name: t.Name, Kind: "class"}
	if t.IsInterface() {
		info.Kind = "interface"
	}
	sigs := func(ms []hosttype.Member) []string {
		var out []string
		for _, m := range ms {
			out = append(out, m.Signature(r.TypeName))
		}
		return out
	}
	info.Constructors = sigs(t.Constructors)
	info.StaticFields = sigs(t.StaticFields)
	info.StaticMethods = sigs(t.StaticMethods)
	info.Fields = sigs(t.Fields())
	info.Methods = sigs(t.Methods())
	return info
}

func renderTypesText(w io.Writer, infos []typeInfo) error {
	for i, info := range infos {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s (%s)\n", info.Name, info.Kind)
		sections := []struct {
			title string
			items []string
		}{
			{"constructors", info.Constructors},
			{"static fields", info.StaticFields},
			{"static methods", info.StaticMethods},
			{"fields", info.Fields},
			{"methods", info.Methods},
		}
		for _, s := range sections {
			if len(s.items) == 0 {
				continue
			}
			fmt.Fprintf(w, "  %s:\n", s.title)
			for _, item := range s.items {
				if _, err := fmt.Fprintf(w, "    %s\n", item); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func init() { //nolint:gochecknoinits
	typesCmd.Flags().StringVar(&typesFilter, "filter", "", "CEL expression selecting types (overrides universe.filter)")
	typesCmd.Flags().StringVarP(&typesOutput, "output", "o", "text", "output format: text|json")
}
