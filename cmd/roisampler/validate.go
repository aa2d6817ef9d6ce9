package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/S93RUM-06/ocr-pipeline/internal/api"
	"github.com/S93RUM-06/ocr-pipeline/internal/export"
)

var validateSchema string

var validateCmd = &cobra.Command{
	Use:   "validate TEMPLATE",
	Short: "Validate a template against the schema and business rules",
	Long: `Validate checks a template document in two passes: structural
validation against the JSON schema, then business rules (coordinate ranges,
rectangle bounds, data types, sampling metadata). All errors from both
passes are reported, schema errors first.

The command fails when the template is invalid.

Examples:
  roisampler validate einvoice.json
  roisampler validate einvoice.json --schema custom-schema.json -o json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		t, err := export.ReadFile(ctx, args[0])
		if err != nil {
			return err
		}
		v, err := loadValidator(ctx, validateSchema)
		if err != nil {
			return err
		}

		result := v.Validate(*t)
		if err := api.Output(result); err != nil {
			return err
		}
		if !result.Valid() {
			return fmt.Errorf("%s: %d validation errors", args[0], len(result.Errors()))
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateSchema, "schema", "", "custom schema file (default: config schema_path or built-in)")
}
