package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/S93RUM-06/ocr-pipeline/internal/api"
	"github.com/S93RUM-06/ocr-pipeline/internal/config"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage roisampler configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default config and create the home directory",
	Long: `Init creates the home directory layout (profiles, templates, schemas)
and writes a default config.yaml into it.

Examples:
  roisampler config init
  roisampler config init --home ./work --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := homePath.EnsureExists(); err != nil {
			return err
		}
		path := homePath.ConfigPath()
		if homePath.ConfigExists() && !configForce {
			return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
		}
		if err := config.WriteDefault(path); err != nil {
			return err
		}
		printMessage("Wrote %s", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if f := cfgMgr.File(); f != "" {
			logger.Debug("config file", "path", f)
		}
		return api.Output(cfgMgr.Get())
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing config")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}
