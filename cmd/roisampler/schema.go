package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/S93RUM-06/ocr-pipeline/internal/validation"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the built-in template schema",
	Long: `Print the built-in JSON schema used for structural validation.
Use it as a starting point for a custom schema (see schema_path in the config).

Examples:
  roisampler schema > ~/.roisampler/schemas/template.json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := os.Stdout.Write(validation.DefaultSchema())
		return err
	},
}
