package sampling

import (
	"fmt"

	"github.com/S93RUM-06/ocr-pipeline/internal/template"
)

// DefaultThreshold is the std-dev above which a field position is flagged
// as unstable.
const DefaultThreshold = 0.1

// Assess returns one warning per region dimension whose standard deviation
// exceeds threshold, in field-name order and then x, y, width, height.
// A non-positive threshold means DefaultThreshold. Warnings are advisory.
func Assess(t template.Template, threshold float64) []string {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	var warnings []string
	for _, name := range t.FieldNames() {
		sd := t.Regions[name].StdDev
		if sd == nil {
			continue
		}
		dims := []struct {
			name  string
			value float64
		}{
			{"x", sd.X},
			{"y", sd.Y},
			{"width", sd.Width},
			{"height", sd.Height},
		}
		for _, d := range dims {
			if d.value > threshold {
				warnings = append(warnings, fmt.Sprintf(
					"%s: rect_std_dev.%s = %.4f > %g (unstable position, re-sample recommended)",
					name, d.name, d.value, threshold))
			}
		}
	}
	return warnings
}
