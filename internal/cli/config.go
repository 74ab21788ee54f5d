package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/coral-mesh/clockwork-mcp/internal/config"
)

func newConfigCmd(env *environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage clockwork-mcp configuration",
		Long: `Manage clockwork-mcp configuration.

Configuration Priority:
  1. Command-line flags (highest)
  2. CLOCKWORK_* environment variables
  3. Config file (--config, $CLOCKWORK_MCP_CONFIG or ~/.clockwork-mcp/config.yaml)
  4. Built-in defaults`,
	}

	cmd.AddCommand(newConfigViewCmd(env))
	cmd.AddCommand(newConfigPathCmd(env))
	cmd.AddCommand(newConfigInitCmd(env))
	cmd.AddCommand(newConfigValidateCmd(env))

	return cmd
}

func newConfigViewCmd(env *environment) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := env.loadConfig()
			if err != nil {
				return err
			}
			if !raw {
				cfg = redact(cfg)
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Show secrets instead of redacting them")

	return cmd
}

func newConfigPathCmd(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), config.NewLoader(env.configPath).Path())
			return err
		},
	}
}

func newConfigInitCmd(env *environment) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := config.NewLoader(env.configPath)
			if _, err := os.Stat(loader.Path()); err == nil && !force {
				return fmt.Errorf("config file %s already exists (use --force to overwrite)", loader.Path())
			}
			if err := loader.Save(config.DefaultConfig()); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", loader.Path())
			return err
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	return cmd
}

func newConfigValidateCmd(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := env.loadConfig(); err != nil {
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "✓ Configuration is valid")
			return err
		},
	}
}

// redact returns a copy of cfg with credentials masked.
func redact(cfg *config.Config) *config.Config {
	out := *cfg
	if out.Storage.PostgresDSN != "" {
		out.Storage.PostgresDSN = "********"
	}
	if out.Storage.Redis.Password != "" {
		out.Storage.Redis.Password = "********"
	}
	return &out
}
