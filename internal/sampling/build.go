package sampling

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/S93RUM-06/ocr-pipeline/internal/geometry"
	"github.com/S93RUM-06/ocr-pipeline/internal/template"
)

// ErrEmptyInput is returned when Build is called without samples.
var ErrEmptyInput = errors.New("sample list is empty")

// Request contains the parameters for building a template.
type Request struct {
	TemplateID   string
	TemplateName string
	Description  string // optional
	Samples      []template.Sample

	Version            string       // default template.DefaultVersion
	ProcessingStrategy string       // default template.DefaultProcessingStrategy
	SamplerVersion     string       // default template.DefaultSamplerVersion
	Notes              string       // optional sampling notes
	Now                time.Time    // creation time; zero means time.Now()
	Logger             *slog.Logger // optional
}

// Build aggregates the samples into a template. Regions are derived for the
// union of all annotated field names; if any field fails, no template is
// returned.
func Build(req Request) (*template.Template, error) {
	log := req.Logger
	if log == nil {
		log = slog.Default()
	}

	if len(req.Samples) == 0 {
		return nil, ErrEmptyInput
	}
	for _, s := range req.Samples {
		if s.Width <= 0 || s.Height <= 0 {
			return nil, fmt.Errorf("sample %q: %w: got %dx%d", s.ID, geometry.ErrInvalidDimension, s.Width, s.Height)
		}
	}

	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}

	meta := AggregateMetadata(req.Samples)
	meta.SamplingDate = now.Format(template.DateLayout)
	meta.SamplerVersion = orDefault(req.SamplerVersion, template.DefaultSamplerVersion)
	meta.Notes = req.Notes

	fields := fieldNames(req.Samples)
	log.Debug("aggregating fields", "template_id", req.TemplateID, "samples", len(req.Samples), "fields", len(fields))

	regions := make(map[string]template.Region, len(fields))
	for _, field := range fields {
		region, err := AggregateRegion(req.Samples, field)
		if err != nil {
			return nil, fmt.Errorf("failed to aggregate field %q: %w", field, err)
		}
		regions[field] = region
		log.Debug("aggregated field", "field", field, "rect", region.Rect, "stable", region.StdDev == nil || !region.StdDev.Unstable(DefaultThreshold))
	}

	tmpl := &template.Template{
		TemplateID:         req.TemplateID,
		TemplateName:       req.TemplateName,
		Version:            orDefault(req.Version, template.DefaultVersion),
		CreatedAt:          now.Format(template.DateLayout),
		Description:        req.Description,
		ProcessingStrategy: orDefault(req.ProcessingStrategy, template.DefaultProcessingStrategy),
		SamplingMetadata:   meta,
		Regions:            regions,
	}

	log.Info("template built", "template_id", tmpl.TemplateID, "samples", meta.SampleCount, "regions", len(regions),
		"reference_width", meta.ReferenceSize.Width, "reference_height", meta.ReferenceSize.Height)
	return tmpl, nil
}

// fieldNames returns the sorted union of annotated field names.
func fieldNames(samples []template.Sample) []string {
	set := make(map[string]struct{})
	for _, s := range samples {
		for name := range s.Annotations {
			set[name] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(set))
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
