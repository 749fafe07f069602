package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/grovetools/codex-wakatime/cli"
	"github.com/grovetools/codex-wakatime/version"
)

// NewVersionCmd creates the `version` command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of codex-wakatime",
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.GetInfo()
			opts := cli.GetOptions(cmd)

			if opts.JSONOutput {
				jsonData, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal version info: %w", err)
				}
				fmt.Println(string(jsonData))
				return nil
			}

			fmt.Printf("codex-wakatime %s\n", info.Version)
			fmt.Printf("  Commit:    %s\n", info.Commit)
			fmt.Printf("  Built:     %s\n", info.BuildDate)
			fmt.Printf("  Go:        %s\n", info.GoVersion)
			fmt.Printf("  Platform:  %s\n", info.Platform)
			return nil
		},
	}
}
