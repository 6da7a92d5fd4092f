package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stacktile/pkg/buildinfo"
)

func (c *CLI) versionCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			info := buildinfo.Get()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}
			printKeyValue(out, "version", info.Version)
			printKeyValue(out, "commit", info.Commit)
			printKeyValue(out, "built", info.Date)
			printKeyValue(out, "go", info.GoVersion)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}
