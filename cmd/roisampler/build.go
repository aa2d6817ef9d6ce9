package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/S93RUM-06/ocr-pipeline/internal/api"
	"github.com/S93RUM-06/ocr-pipeline/internal/config"
	"github.com/S93RUM-06/ocr-pipeline/internal/export"
	"github.com/S93RUM-06/ocr-pipeline/internal/ingest"
	"github.com/S93RUM-06/ocr-pipeline/internal/profile"
	"github.com/S93RUM-06/ocr-pipeline/internal/sampling"
	"github.com/S93RUM-06/ocr-pipeline/internal/template"
	"github.com/S93RUM-06/ocr-pipeline/internal/validation"
)

var (
	buildID          string
	buildName        string
	buildDescription string
	buildNotes       string
	buildProfile     string
	buildOut         string
	buildSave        bool
	buildThreshold   float64
	buildSchema      string
	buildNoValidate  bool
)

var buildCmd = &cobra.Command{
	Use:   "build SAMPLES...",
	Short: "Build a template from annotated sample sets",
	Long: `Build loads one or more sample-set files (JSON or YAML), aggregates the
annotated regions into a template, and validates the result.

A sample-set file is either {"samples": [...]} or a bare array of samples:

  samples:
    - id: scan-001
      pixel_width: 1200
      pixel_height: 1800
      annotations:
        invoice_number: {x: 120, y: 80, width: 300, height: 40}

Position-stability warnings are logged. An invalid template is never written.

Examples:
  roisampler build scans-*.json --out einvoice.json
  roisampler build scans.yaml --id tw_einvoice --profile tw_einvoice_v1 --save`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg := cfgMgr.Get()

		opts := buildOptions{
			Paths:       args,
			ID:          buildID,
			Name:        buildName,
			Description: buildDescription,
			Notes:       buildNotes,
			Template:    cfg.Template,
			Threshold:   cfg.QualityThreshold,
			Validate:    !buildNoValidate,
			Logger:      logger,
		}
		if cmd.Flags().Changed("threshold") {
			opts.Threshold = buildThreshold
		}
		if buildProfile != "" {
			store, err := openProfiles()
			if err != nil {
				return err
			}
			p, err := store.Get(buildProfile)
			if err != nil {
				return err
			}
			opts.Profile = p
		}
		if opts.Validate {
			v, err := loadValidator(ctx, buildSchema)
			if err != nil {
				return err
			}
			opts.Validator = v
		}

		res, err := buildTemplate(ctx, opts)
		if err != nil {
			return err
		}

		out := buildOut
		if out == "" && buildSave {
			out = filepath.Join(templatesDir(), res.Template.TemplateID+".json")
		}
		if out == "" {
			data, err := export.Marshal(*res.Template)
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(data)
			return err
		}

		if err := export.WriteFile(out, *res.Template); err != nil {
			return err
		}
		logger.Info("template written", "path", out, "regions", len(res.Template.Regions), "warnings", len(res.Warnings))
		return nil
	},
}

func init() {
	buildCmd.Flags().StringVar(&buildID, "id", "", "template id (default: derived from the first sample file)")
	buildCmd.Flags().StringVar(&buildName, "name", "", "template name (default: derived from the first sample file)")
	buildCmd.Flags().StringVar(&buildDescription, "description", "", "template description")
	buildCmd.Flags().StringVar(&buildNotes, "notes", "", "sampling notes recorded in the metadata")
	buildCmd.Flags().StringVar(&buildProfile, "profile", "", "field-set profile id whose hints are applied to the regions")
	buildCmd.Flags().StringVar(&buildOut, "out", "", "output file (default: stdout)")
	buildCmd.Flags().BoolVar(&buildSave, "save", false, "write to the templates directory as <id>.json")
	buildCmd.Flags().Float64Var(&buildThreshold, "threshold", sampling.DefaultThreshold, "rect_std_dev warning threshold (default: config quality_threshold)")
	buildCmd.Flags().StringVar(&buildSchema, "schema", "", "custom schema file (default: config schema_path or built-in)")
	buildCmd.Flags().BoolVar(&buildNoValidate, "no-validate", false, "skip validation")
}

// errInvalidTemplate marks a build whose template failed validation.
var errInvalidTemplate = errors.New("template failed validation")

// buildOptions configures one run of the build pipeline.
type buildOptions struct {
	Paths       []string
	ID          string
	Name        string
	Description string
	Notes       string
	Template    config.TemplateCfg
	Profile     *profile.Profile      // optional
	Threshold   float64               // quality warning threshold
	Validate    bool                  // requires Validator
	Validator   *validation.Validator // used when Validate is set
	Logger      *slog.Logger
}

// buildResult is the outcome of a successful pipeline run.
type buildResult struct {
	Template *template.Template
	Warnings []string
	Samples  int
}

// buildTemplate runs ingest, aggregation, profile application, quality
// assessment and validation. An invalid template is reported as an error.
func buildTemplate(ctx context.Context, opts buildOptions) (*buildResult, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	loaded, err := ingest.Load(ctx, ingest.Request{Paths: opts.Paths, Logger: log})
	if err != nil {
		return nil, err
	}

	name := opts.Name
	if name == "" {
		name = ingest.DeriveName(loaded.Files[0])
	}
	id := opts.ID
	if id == "" {
		id = ingest.DeriveID(name)
	}

	tmpl, err := sampling.Build(sampling.Request{
		TemplateID:         id,
		TemplateName:       name,
		Description:        opts.Description,
		Samples:            loaded.Samples,
		Version:            opts.Template.Version,
		ProcessingStrategy: opts.Template.ProcessingStrategy,
		SamplerVersion:     opts.Template.SamplerVersion,
		Notes:              opts.Notes,
		Logger:             log,
	})
	if err != nil {
		return nil, err
	}

	if opts.Profile != nil {
		tmpl = profile.Apply(*tmpl, *opts.Profile)
		for _, field := range profile.Missing(*tmpl, *opts.Profile) {
			log.Warn("profile field has no annotations", "profile", opts.Profile.ID, "field", field)
		}
	}

	warnings := sampling.Assess(*tmpl, opts.Threshold)
	for _, w := range warnings {
		log.Warn(w)
	}

	if opts.Validate {
		result := opts.Validator.Validate(*tmpl)
		if !result.Valid() {
			if err := api.OutputTo(os.Stderr, api.GetOutputFormat(), result); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %q has %d errors", errInvalidTemplate, tmpl.TemplateID, len(result.Errors()))
		}
		log.Debug("template validated", "template_id", tmpl.TemplateID)
	}

	return &buildResult{Template: tmpl, Warnings: warnings, Samples: len(loaded.Samples)}, nil
}
