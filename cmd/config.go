package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/grovetools/codex-wakatime/cli"
	"github.com/grovetools/codex-wakatime/config"
	"github.com/grovetools/codex-wakatime/pkg/paths"
	"github.com/grovetools/codex-wakatime/theme"
)

// NewConfigCmd creates the `config` command group.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and validate the plugin configuration",
	}

	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigPathCmd())
	cmd.AddCommand(newConfigValidateCmd())
	cmd.AddCommand(newConfigSchemaCmd())

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long: `Prints the configuration the plugin actually runs with: the config file
merged over the built-in defaults. Without a config file this shows the
defaults.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cli.GetOptions(cmd)
			cfg, err := cli.LoadConfig(opts)
			if err != nil {
				return cli.NewErrorHandler(opts.Verbose).Handle(err)
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to render config: %w", err)
			}
			fmt.Print(string(data))
			return nil
		},
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Run: func(cmd *cobra.Command, args []string) {
			opts := cli.GetOptions(cmd)
			if opts.ConfigFile != "" {
				fmt.Println(opts.ConfigFile)
				return
			}
			fmt.Println(paths.ConfigFile())
		},
	}
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the config file against the schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cli.GetOptions(cmd)
			t := theme.DefaultTheme

			path := opts.ConfigFile
			if path == "" {
				path = paths.ConfigFile()
			}

			if _, err := os.Stat(path); err != nil {
				fmt.Printf("No config file at %s, defaults apply\n", path)
				return nil
			}

			if _, err := config.Load(path); err != nil {
				fmt.Printf("%s %s is invalid\n  %v\n", t.Error.Render("✗"), path, err)
				return err
			}

			fmt.Printf("%s %s is valid\n", t.Success.Render("✓"), path)
			return nil
		},
	}
}

func newConfigSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema for config.yml",
		RunE: func(cmd *cobra.Command, args []string) error {
			schemaJSON, err := config.GenerateSchema()
			if err != nil {
				return fmt.Errorf("failed to generate schema: %w", err)
			}
			fmt.Println(string(schemaJSON))
			return nil
		},
	}
}
