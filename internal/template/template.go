// Package template defines the ROI template document: the aggregated,
// resolution-independent description of where named fields sit on a class of
// document images.
package template

import (
	"encoding/json"
	"maps"
	"slices"

	"github.com/S93RUM-06/ocr-pipeline/internal/geometry"
)

// Defaults applied to new templates and regions.
const (
	DefaultVersion            = "1.0.0"
	DefaultProcessingStrategy = "hybrid_ocr_roi"
	DefaultSamplerVersion     = "1.0.0"
	DefaultUnit               = "pixel"
	DefaultDataType           = "string"
	DefaultPositionWeight     = 0.3
	DefaultToleranceRatio     = 0.2

	// DateLayout is the layout of created_at and sampling_date.
	DateLayout = "2006-01-02"
)

// Sample is one annotated document image. Samples are owned by the caller;
// the template engine only reads them.
type Sample struct {
	ID          string                        `json:"id,omitempty" yaml:"id,omitempty"`
	Width       int                           `json:"pixel_width" yaml:"pixel_width"`
	Height      int                           `json:"pixel_height" yaml:"pixel_height"`
	Annotations map[string]geometry.PixelRect `json:"annotations" yaml:"annotations"`
}

// Template is the derived template document.
type Template struct {
	TemplateID         string            `json:"template_id" yaml:"template_id"`
	TemplateName       string            `json:"template_name" yaml:"template_name"`
	Version            string            `json:"version" yaml:"version"`
	CreatedAt          string            `json:"created_at" yaml:"created_at"`
	UpdatedAt          string            `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
	Description        string            `json:"description,omitempty" yaml:"description,omitempty"`
	ProcessingStrategy string            `json:"processing_strategy" yaml:"processing_strategy"`
	SamplingMetadata   SamplingMetadata  `json:"sampling_metadata" yaml:"sampling_metadata"`
	Regions            map[string]Region `json:"regions" yaml:"regions"`
}

// FieldNames returns the region names in lexicographic order. Every consumer
// of a template iterates regions in this order.
func (t Template) FieldNames() []string {
	return slices.Sorted(maps.Keys(t.Regions))
}

// Clone returns a deep copy of the template.
func (t Template) Clone() *Template {
	out := t
	if t.SamplingMetadata.SizeRange != nil {
		sr := *t.SamplingMetadata.SizeRange
		out.SamplingMetadata.SizeRange = &sr
	}
	out.Regions = make(map[string]Region, len(t.Regions))
	for name, r := range t.Regions {
		out.Regions[name] = r.clone()
	}
	return &out
}

// SamplingMetadata describes the sample set a template was derived from.
type SamplingMetadata struct {
	SampleCount    int           `json:"sample_count" yaml:"sample_count"`
	ReferenceSize  ReferenceSize `json:"reference_size" yaml:"reference_size"`
	SizeRange      *SizeRange    `json:"size_range,omitempty" yaml:"size_range,omitempty"`
	SamplingDate   string        `json:"sampling_date" yaml:"sampling_date"`
	SamplerVersion string        `json:"sampler_version" yaml:"sampler_version"`
	Notes          string        `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// ReferenceSize is the median image size of the sample set.
type ReferenceSize struct {
	Width       int    `json:"width" yaml:"width"`
	Height      int    `json:"height" yaml:"height"`
	Unit        string `json:"unit" yaml:"unit"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// SizeRange holds the independent min/max of sample widths and heights.
// The minimum width and minimum height need not come from the same sample.
type SizeRange struct {
	Width  MinMax `json:"width" yaml:"width"`
	Height MinMax `json:"height" yaml:"height"`
}

// MinMax is an inclusive integer range.
type MinMax struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// StdDev is the per-dimension sample standard deviation of a field's ratio
// rectangle across the samples that annotated it.
type StdDev struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Unstable reports whether any dimension exceeds threshold.
func (s StdDev) Unstable(threshold float64) bool {
	return s.X > threshold || s.Y > threshold || s.Width > threshold || s.Height > threshold
}

// Region is the derived description of one field. Everything besides Rect
// and StdDev is an extraction hint carried through unchanged.
type Region struct {
	Rect            geometry.RatioRect `json:"rect_ratio" yaml:"rect_ratio"`
	StdDev          *StdDev            `json:"rect_std_dev,omitempty" yaml:"rect_std_dev,omitempty"`
	Pattern         string             `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	ExtractGroup    int                `json:"extract_group" yaml:"extract_group"`
	ExpectedLength  *int               `json:"expected_length,omitempty" yaml:"expected_length,omitempty"`
	Required        bool               `json:"required" yaml:"required"`
	PositionWeight  float64            `json:"position_weight" yaml:"position_weight"`
	ToleranceRatio  float64            `json:"tolerance_ratio" yaml:"tolerance_ratio"`
	FallbackPattern string             `json:"fallback_pattern,omitempty" yaml:"fallback_pattern,omitempty"`
	DataType        string             `json:"data_type" yaml:"data_type"`
	Description     string             `json:"description,omitempty" yaml:"description,omitempty"`
}

// DefaultRegion returns a region carrying the default extraction hints.
func DefaultRegion() Region {
	return Region{
		PositionWeight: DefaultPositionWeight,
		ToleranceRatio: DefaultToleranceRatio,
		DataType:       DefaultDataType,
	}
}

// UnmarshalJSON decodes a region, filling hints missing from the document
// with their defaults.
func (r *Region) UnmarshalJSON(data []byte) error {
	type plain Region
	decoded := plain(DefaultRegion())
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*r = Region(decoded)
	return nil
}

func (r Region) clone() Region {
	out := r
	if r.StdDev != nil {
		sd := *r.StdDev
		out.StdDev = &sd
	}
	if r.ExpectedLength != nil {
		n := *r.ExpectedLength
		out.ExpectedLength = &n
	}
	return out
}
