package main

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/junction/internal/config"
	"github.com/vango-dev/junction/internal/errors"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config [command]",
		Short: "Manage junction.yaml",
		Long: `Manage the junction configuration file.

Commands:
  init       Write a default junction.yaml
  show       Print the effective configuration

Examples:
  junction config init
  junction config init ./examples --force
  junction config show --config ./examples/junction.json`,
	}

	cmd.AddCommand(
		configInitCmd(),
		configShowCmd(),
	)

	return cmd
}

func configInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a default junction.yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			path := filepath.Join(dir, config.ConfigFileName)

			if _, err := os.Stat(path); err == nil && !force {
				return errors.Newf(errors.CategoryCLI, "%s already exists", path).
					WithSuggestion("Pass --force to overwrite it")
			}

			if err := config.New().SaveTo(path); err != nil {
				return err
			}
			success(cmd, "Wrote %s", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")

	return cmd
}

func configShowCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(path)
			if err != nil {
				return err
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			if cfg.Path() != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", cfg.Path())
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVarP(&path, "config", "c", "", "Path to junction.yaml or junction.json")

	return cmd
}

// loadConfig loads path, or the configuration in the working directory.
// A missing configuration in the working directory yields the defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}

	cfg, err := config.Load(".")
	if stderrors.Is(err, errors.New("J101")) {
		return config.New(), nil
	}
	return cfg, err
}
