// Package sampling derives ROI templates from annotated sample images.
//
// Each field's pixel boxes are converted to ratio coordinates, averaged across
// the samples that annotated the field, and paired with a per-dimension
// standard deviation describing how stable the field's position is.
package sampling

import (
	"errors"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/S93RUM-06/ocr-pipeline/internal/geometry"
	"github.com/S93RUM-06/ocr-pipeline/internal/template"
)

// ErrEmptyFieldAnnotations is returned when no sample annotates a field.
var ErrEmptyFieldAnnotations = errors.New("field has no annotations")

// AggregateRegion computes the region of one field from every sample that
// annotates it. Samples without the field are skipped.
func AggregateRegion(samples []template.Sample, field string) (template.Region, error) {
	var xs, ys, ws, hs []float64
	for _, s := range samples {
		px, ok := s.Annotations[field]
		if !ok {
			continue
		}
		r, err := geometry.ToRatio(px, s.Width, s.Height)
		if err != nil {
			return template.Region{}, fmt.Errorf("sample %q field %q: %w", s.ID, field, err)
		}
		xs = append(xs, r.X)
		ys = append(ys, r.Y)
		ws = append(ws, r.Width)
		hs = append(hs, r.Height)
	}
	if len(xs) == 0 {
		return template.Region{}, fmt.Errorf("%w: %q", ErrEmptyFieldAnnotations, field)
	}

	region := template.DefaultRegion()
	region.Rect = geometry.RatioRect{
		X:      geometry.Round4(stat.Mean(xs, nil)),
		Y:      geometry.Round4(stat.Mean(ys, nil)),
		Width:  geometry.Round4(stat.Mean(ws, nil)),
		Height: geometry.Round4(stat.Mean(hs, nil)),
	}

	// A single observation has no spread; leave StdDev nil rather than zero.
	if len(xs) > 1 {
		region.StdDev = &template.StdDev{
			X:      geometry.Round4(stat.StdDev(xs, nil)),
			Y:      geometry.Round4(stat.StdDev(ys, nil)),
			Width:  geometry.Round4(stat.StdDev(ws, nil)),
			Height: geometry.Round4(stat.StdDev(hs, nil)),
		}
	}
	return region, nil
}

// AggregateMetadata computes the sample count, median reference size and
// size range of a sample set. Dates, versions and notes are left to the caller.
func AggregateMetadata(samples []template.Sample) template.SamplingMetadata {
	meta := template.SamplingMetadata{SampleCount: len(samples)}
	if len(samples) == 0 {
		return meta
	}

	widths := make([]float64, len(samples))
	heights := make([]float64, len(samples))
	for i, s := range samples {
		widths[i] = float64(s.Width)
		heights[i] = float64(s.Height)
	}

	meta.ReferenceSize = template.ReferenceSize{
		Width:       int(median(widths)),
		Height:      int(median(heights)),
		Unit:        template.DefaultUnit,
		Description: fmt.Sprintf("median size of %d sample images", len(samples)),
	}
	meta.SizeRange = &template.SizeRange{
		Width:  template.MinMax{Min: int(floats.Min(widths)), Max: int(floats.Max(widths))},
		Height: template.MinMax{Min: int(floats.Min(heights)), Max: int(floats.Max(heights))},
	}
	return meta
}

// median returns the middle value, or the mean of the two middle values for
// an even count. gonum's stat.Quantile picks a single order statistic, so the
// even case is computed here.
func median(values []float64) float64 {
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
