package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/S93RUM-06/ocr-pipeline/internal/api"
	"github.com/S93RUM-06/ocr-pipeline/internal/config"
	"github.com/S93RUM-06/ocr-pipeline/internal/home"
	"github.com/S93RUM-06/ocr-pipeline/internal/profile"
	"github.com/S93RUM-06/ocr-pipeline/internal/validation"
	"github.com/S93RUM-06/ocr-pipeline/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
	logLevelFlag string
)

// Set up by the root command before any subcommand runs.
var (
	logLevel slog.LevelVar
	logger   = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: &logLevel}))
	homePath *home.Dir
	cfgMgr   *config.Manager
)

var rootCmd = &cobra.Command{
	Use:   "roisampler",
	Short: "Derive and validate ROI templates from annotated document samples",
	Long: `roisampler turns hand-annotated document samples into a reusable
region-of-interest template for OCR extraction.

Each sample records the pixel rectangles of named fields on one scanned image.
roisampler normalises them to resolution-independent ratios, aggregates
them across samples (mean position plus spread), and validates the result
against the template schema and a set of business rules.

Examples:
  roisampler build scans-1.json scans-2.json --profile tw_einvoice_v1 --out einvoice.json
  roisampler validate einvoice.json
  roisampler assess einvoice.json --threshold 0.05`,
	Version:       version.GitRelease,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		format, err := api.ParseOutputFormat(outputFormat)
		if err != nil {
			return err
		}
		api.SetOutputFormat(format)

		homePath, err = home.New(homeDir)
		if err != nil {
			return err
		}

		path := cfgFile
		if path == "" && homePath.ConfigExists() {
			path = homePath.ConfigPath()
		}
		cfgMgr, err = config.NewManager(path, logger)
		if err != nil {
			return err
		}
		return applyLogLevel(cfgMgr.Get())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.roisampler/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "roisampler home directory (default: ~/.roisampler)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevelFlag, "log-level", "", "log level: debug, info, warn, error (overrides config)",
	)

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(assessCmd)
	rootCmd.AddCommand(profilesCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(schemaCmd)
}

// applyLogLevel sets the logger level from --log-level, falling back to the
// config's log_level.
func applyLogLevel(cfg *config.Config) error {
	c := *cfg
	if logLevelFlag != "" {
		c.LogLevel = logLevelFlag
	}
	level, err := c.Level()
	if err != nil {
		return err
	}
	logLevel.Set(level)
	return nil
}

// loadValidator returns the validator for schemaPath, the configured
// schema_path, or the built-in schema, in that order.
func loadValidator(ctx context.Context, schemaPath string) (*validation.Validator, error) {
	if schemaPath == "" {
		schemaPath = cfgMgr.Get().ResolvedSchemaPath()
	}
	if schemaPath == "" {
		return validation.Default()
	}
	logger.Debug("using custom schema", "path", schemaPath)
	return validation.FromFile(ctx, schemaPath)
}

// openProfiles opens the configured profile store.
func openProfiles() (*profile.Store, error) {
	dir := cfgMgr.Get().ProfilesDir
	if dir == "" {
		dir = homePath.ProfilesPath()
	}
	return profile.NewStore(config.ResolveEnvVars(dir), logger)
}

// templatesDir returns the configured directory for saved templates.
func templatesDir() string {
	if dir := cfgMgr.Get().TemplatesDir; dir != "" {
		return config.ResolveEnvVars(dir)
	}
	return homePath.TemplatesPath()
}

// printMessage writes a human-readable line to stderr so stdout stays
// parseable.
func printMessage(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}
