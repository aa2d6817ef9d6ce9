package sampling

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/S93RUM-06/ocr-pipeline/internal/geometry"
	"github.com/S93RUM-06/ocr-pipeline/internal/template"
)

func sample(id string, w, h int, annotations map[string]geometry.PixelRect) template.Sample {
	return template.Sample{ID: id, Width: w, Height: h, Annotations: annotations}
}

func TestAggregateRegion_TwoSamples(t *testing.T) {
	samples := []template.Sample{
		sample("s1", 100, 100, map[string]geometry.PixelRect{"A": {X: 0, Y: 0, Width: 10, Height: 10}}),
		sample("s2", 100, 100, map[string]geometry.PixelRect{"A": {X: 10, Y: 10, Width: 10, Height: 10}}),
	}

	got, err := AggregateRegion(samples, "A")
	if err != nil {
		t.Fatalf("AggregateRegion() error = %v", err)
	}

	want := template.DefaultRegion()
	want.Rect = geometry.RatioRect{X: 0.05, Y: 0.05, Width: 0.1, Height: 0.1}
	want.StdDev = &template.StdDev{X: 0.0707, Y: 0.0707, Width: 0, Height: 0}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("region mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateRegion_SingleSampleHasNoStdDev(t *testing.T) {
	samples := []template.Sample{
		sample("s1", 200, 100, map[string]geometry.PixelRect{"A": {X: 20, Y: 10, Width: 50, Height: 20}}),
		sample("s2", 200, 100, map[string]geometry.PixelRect{"B": {X: 0, Y: 0, Width: 10, Height: 10}}),
	}

	got, err := AggregateRegion(samples, "A")
	if err != nil {
		t.Fatalf("AggregateRegion() error = %v", err)
	}
	if got.StdDev != nil {
		t.Errorf("StdDev = %+v, want nil for one contributing sample", got.StdDev)
	}
	want := geometry.RatioRect{X: 0.1, Y: 0.1, Width: 0.25, Height: 0.2}
	if got.Rect != want {
		t.Errorf("Rect = %+v, want %+v", got.Rect, want)
	}
}

func TestAggregateRegion_MixedResolutions(t *testing.T) {
	// Same relative box on a 1000px and a 2000px wide scan.
	samples := []template.Sample{
		sample("small", 1000, 1400, map[string]geometry.PixelRect{"total": {X: 700, Y: 1260, Width: 200, Height: 70}}),
		sample("large", 2000, 2800, map[string]geometry.PixelRect{"total": {X: 1400, Y: 2520, Width: 400, Height: 140}}),
	}

	got, err := AggregateRegion(samples, "total")
	if err != nil {
		t.Fatalf("AggregateRegion() error = %v", err)
	}
	want := geometry.RatioRect{X: 0.7, Y: 0.9, Width: 0.2, Height: 0.05}
	if got.Rect != want {
		t.Errorf("Rect = %+v, want %+v", got.Rect, want)
	}
	if got.StdDev == nil || *got.StdDev != (template.StdDev{}) {
		t.Errorf("StdDev = %+v, want all zero", got.StdDev)
	}
}

func TestAggregateRegion_NoAnnotations(t *testing.T) {
	samples := []template.Sample{
		sample("s1", 100, 100, map[string]geometry.PixelRect{"A": {Width: 1, Height: 1}}),
	}
	_, err := AggregateRegion(samples, "missing")
	if !errors.Is(err, ErrEmptyFieldAnnotations) {
		t.Fatalf("error = %v, want ErrEmptyFieldAnnotations", err)
	}
}

func TestAggregateRegion_InvalidDimension(t *testing.T) {
	samples := []template.Sample{
		sample("broken", 0, 100, map[string]geometry.PixelRect{"A": {Width: 1, Height: 1}}),
	}
	_, err := AggregateRegion(samples, "A")
	if !errors.Is(err, geometry.ErrInvalidDimension) {
		t.Fatalf("error = %v, want ErrInvalidDimension", err)
	}
}

func TestAggregateMetadata(t *testing.T) {
	samples := []template.Sample{
		sample("a", 100, 50, nil),
		sample("b", 300, 10, nil),
		sample("c", 200, 30, nil),
		sample("d", 401, 21, nil),
	}

	got := AggregateMetadata(samples)
	want := template.SamplingMetadata{
		SampleCount: 4,
		ReferenceSize: template.ReferenceSize{
			Width:       250,
			Height:      25,
			Unit:        "pixel",
			Description: "median size of 4 sample images",
		},
		SizeRange: &template.SizeRange{
			Width:  template.MinMax{Min: 100, Max: 401},
			Height: template.MinMax{Min: 10, Max: 50},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("metadata mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateMetadata_OddCount(t *testing.T) {
	got := AggregateMetadata([]template.Sample{
		sample("a", 1240, 1754, nil),
		sample("b", 1250, 1700, nil),
		sample("c", 1200, 1800, nil),
	})
	if got.ReferenceSize.Width != 1240 || got.ReferenceSize.Height != 1754 {
		t.Errorf("reference size = %dx%d, want 1240x1754", got.ReferenceSize.Width, got.ReferenceSize.Height)
	}
}

func TestBuild(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	samples := []template.Sample{
		sample("s1", 100, 100, map[string]geometry.PixelRect{
			"invoice_number": {X: 0, Y: 0, Width: 10, Height: 10},
			"total_amount":   {X: 50, Y: 80, Width: 40, Height: 10},
		}),
		sample("s2", 100, 100, map[string]geometry.PixelRect{
			"invoice_number": {X: 10, Y: 10, Width: 10, Height: 10},
		}),
	}

	got, err := Build(Request{
		TemplateID:   "tw_einvoice_v1",
		TemplateName: "Taiwan e-invoice",
		Description:  "test",
		Samples:      samples,
		Notes:        "two scans",
		Now:          now,
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if got.TemplateID != "tw_einvoice_v1" || got.TemplateName != "Taiwan e-invoice" || got.Description != "test" {
		t.Errorf("identity not carried: %+v", got)
	}
	if got.Version != template.DefaultVersion || got.ProcessingStrategy != template.DefaultProcessingStrategy {
		t.Errorf("defaults not applied: version=%q strategy=%q", got.Version, got.ProcessingStrategy)
	}
	if got.CreatedAt != "2026-03-14" || got.SamplingMetadata.SamplingDate != "2026-03-14" {
		t.Errorf("dates = %q / %q, want 2026-03-14", got.CreatedAt, got.SamplingMetadata.SamplingDate)
	}
	if got.SamplingMetadata.SampleCount != 2 || got.SamplingMetadata.Notes != "two scans" {
		t.Errorf("metadata = %+v", got.SamplingMetadata)
	}
	if got.SamplingMetadata.SamplerVersion != template.DefaultSamplerVersion {
		t.Errorf("SamplerVersion = %q", got.SamplingMetadata.SamplerVersion)
	}

	if diff := cmp.Diff([]string{"invoice_number", "total_amount"}, got.FieldNames()); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
	if got.Regions["invoice_number"].StdDev == nil {
		t.Error("invoice_number should have a std dev")
	}
	if got.Regions["total_amount"].StdDev != nil {
		t.Error("total_amount has one sample and should have no std dev")
	}
}

func TestBuild_Deterministic(t *testing.T) {
	now := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	samples := []template.Sample{
		sample("s1", 640, 480, map[string]geometry.PixelRect{
			"c": {X: 1, Y: 2, Width: 3, Height: 4},
			"a": {X: 5, Y: 6, Width: 7, Height: 8},
			"b": {X: 9, Y: 10, Width: 11, Height: 12},
		}),
		sample("s2", 800, 600, map[string]geometry.PixelRect{
			"a": {X: 6, Y: 7, Width: 8, Height: 9},
		}),
	}

	first, err := Build(Request{TemplateID: "t", Samples: samples, Now: now})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := Build(Request{TemplateID: "t", Samples: samples, Now: now})
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("non-deterministic build (-first +again):\n%s", diff)
		}
	}
}

func TestBuild_Errors(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		_, err := Build(Request{TemplateID: "t"})
		if !errors.Is(err, ErrEmptyInput) {
			t.Fatalf("error = %v, want ErrEmptyInput", err)
		}
	})

	t.Run("invalid dimension aborts whole build", func(t *testing.T) {
		tmpl, err := Build(Request{TemplateID: "t", Samples: []template.Sample{
			sample("ok", 100, 100, map[string]geometry.PixelRect{"A": {Width: 10, Height: 10}}),
			sample("bad", 100, -1, map[string]geometry.PixelRect{"A": {Width: 10, Height: 10}}),
		}})
		if !errors.Is(err, geometry.ErrInvalidDimension) {
			t.Fatalf("error = %v, want ErrInvalidDimension", err)
		}
		if tmpl != nil {
			t.Error("expected no partial template")
		}
		if !strings.Contains(err.Error(), `"bad"`) {
			t.Errorf("error should name the sample: %v", err)
		}
	})
}

func TestAssess(t *testing.T) {
	tmpl := template.Template{Regions: map[string]template.Region{
		"invoice_number": {StdDev: &template.StdDev{X: 0.15, Y: 0.05, Width: 0.02, Height: 0.01}},
		"single":         {},
	}}

	got := Assess(tmpl, 0.1)
	if len(got) != 1 {
		t.Fatalf("Assess() = %v, want exactly one warning", got)
	}
	if !strings.Contains(got[0], "invoice_number") || !strings.Contains(got[0], "rect_std_dev.x") {
		t.Errorf("warning %q should name field and dimension x", got[0])
	}
	if !strings.Contains(got[0], "0.1500") || !strings.Contains(got[0], "> 0.1") {
		t.Errorf("warning %q should carry value and threshold", got[0])
	}
}

func TestAssess_Order(t *testing.T) {
	tmpl := template.Template{Regions: map[string]template.Region{
		"zeta":  {StdDev: &template.StdDev{Height: 0.3, X: 0.2}},
		"alpha": {StdDev: &template.StdDev{Width: 0.4, Y: 0.5}},
	}}

	got := Assess(tmpl, 0)
	want := []string{"alpha: rect_std_dev.y", "alpha: rect_std_dev.width", "zeta: rect_std_dev.x", "zeta: rect_std_dev.height"}
	if len(got) != len(want) {
		t.Fatalf("Assess() = %v, want %d warnings", got, len(want))
	}
	for i, prefix := range want {
		if !strings.HasPrefix(got[i], prefix) {
			t.Errorf("warning[%d] = %q, want prefix %q", i, got[i], prefix)
		}
	}
}

func TestAssess_StableTemplate(t *testing.T) {
	tmpl := template.Template{Regions: map[string]template.Region{
		"a": {StdDev: &template.StdDev{X: 0.1, Y: 0.1, Width: 0.1, Height: 0.1}},
	}}
	if got := Assess(tmpl, 0.1); len(got) != 0 {
		t.Errorf("Assess() = %v, want none", got)
	}
}
