package main

import (
	"github.com/spf13/cobra"

	"github.com/S93RUM-06/ocr-pipeline/internal/api"
	"github.com/S93RUM-06/ocr-pipeline/internal/export"
	"github.com/S93RUM-06/ocr-pipeline/internal/sampling"
)

var assessThreshold float64

// assessReport is the printed result of the assess command.
type assessReport struct {
	TemplateID string   `json:"template_id" yaml:"template_id"`
	Threshold  float64  `json:"threshold" yaml:"threshold"`
	Stable     bool     `json:"stable" yaml:"stable"`
	Warnings   []string `json:"warnings" yaml:"warnings"`
}

var assessCmd = &cobra.Command{
	Use:   "assess TEMPLATE",
	Short: "Report regions whose position varies too much across samples",
	Long: `Assess lists every region whose rect_std_dev component exceeds the
threshold. Such regions were annotated inconsistently or move between
documents and should be re-sampled.

Examples:
  roisampler assess einvoice.json
  roisampler assess einvoice.json --threshold 0.05`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := export.ReadFile(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		threshold := cfgMgr.Get().QualityThreshold
		if cmd.Flags().Changed("threshold") {
			threshold = assessThreshold
		}

		warnings := sampling.Assess(*t, threshold)
		if warnings == nil {
			warnings = []string{}
		}
		return api.Output(assessReport{
			TemplateID: t.TemplateID,
			Threshold:  threshold,
			Stable:     len(warnings) == 0,
			Warnings:   warnings,
		})
	},
}

func init() {
	assessCmd.Flags().Float64Var(&assessThreshold, "threshold", sampling.DefaultThreshold, "rect_std_dev warning threshold (default: config quality_threshold)")
}
