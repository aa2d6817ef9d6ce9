package validation

import (
	"fmt"
	"strings"

	"github.com/S93RUM-06/ocr-pipeline/internal/geometry"
	"github.com/S93RUM-06/ocr-pipeline/internal/template"
)

// DataTypes lists the accepted region data types, compared case-insensitively.
var DataTypes = []string{"string", "number", "date", "datetime", "phone", "email", "tax_id", "custom"}

// CheckRules applies the business rules to t: identity, region geometry,
// data types and sampling metadata sanity.
func CheckRules(t template.Template) []Error {
	var errs []Error

	if strings.TrimSpace(t.TemplateID) == "" {
		errs = append(errs, Error{Kind: KindMissingID, Path: "template_id", Message: "template_id cannot be empty"})
	}

	// Region checks need at least one region; metadata checks still run.
	if len(t.Regions) == 0 {
		errs = append(errs, Error{Kind: KindNoRegions, Path: "regions", Message: "at least one region is required"})
	} else {
		for _, name := range t.FieldNames() {
			errs = append(errs, checkRegion("regions."+name, t.Regions[name])...)
		}
	}

	return append(errs, checkMetadata("sampling_metadata", t.SamplingMetadata)...)
}

func checkRegion(path string, r template.Region) []Error {
	var errs []Error

	rectPath := path + ".rect_ratio"
	errs = append(errs, checkUnitRange(rectPath, "", r.Rect.X, r.Rect.Y, r.Rect.Width, r.Rect.Height)...)

	if !(r.Rect.X+r.Rect.Width <= 1) {
		errs = append(errs, Error{
			Kind:    KindCoordinateLogic,
			Path:    rectPath,
			Message: fmt.Sprintf("x + width (%g + %g = %g) exceeds 1.0", r.Rect.X, r.Rect.Width, geometry.Round4(r.Rect.X+r.Rect.Width)),
		})
	}
	if !(r.Rect.Y+r.Rect.Height <= 1) {
		errs = append(errs, Error{
			Kind:    KindCoordinateLogic,
			Path:    rectPath,
			Message: fmt.Sprintf("y + height (%g + %g = %g) exceeds 1.0", r.Rect.Y, r.Rect.Height, geometry.Round4(r.Rect.Y+r.Rect.Height)),
		})
	}
	if !(r.Rect.Width > 0 && r.Rect.Height > 0) {
		errs = append(errs, Error{
			Kind:    KindCoordinateLogic,
			Path:    rectPath,
			Message: "width and height must be greater than 0",
		})
	}

	if !validDataType(r.DataType) {
		errs = append(errs, Error{
			Kind:    KindInvalidDataType,
			Path:    path + ".data_type",
			Message: fmt.Sprintf("invalid data_type %q, must be one of: %s", r.DataType, strings.Join(DataTypes, ", ")),
		})
	}

	if sd := r.StdDev; sd != nil {
		errs = append(errs, checkUnitRange(path+".rect_std_dev", "_std_dev", sd.X, sd.Y, sd.Width, sd.Height)...)
	}
	return errs
}

// checkUnitRange reports each of x, y, width, height that lies outside [0, 1].
// NaN is outside.
func checkUnitRange(path, suffix string, x, y, width, height float64) []Error {
	var errs []Error
	dims := []struct {
		name  string
		value float64
	}{
		{"x", x},
		{"y", y},
		{"width", width},
		{"height", height},
	}
	for _, d := range dims {
		if !(d.value >= 0 && d.value <= 1) {
			errs = append(errs, Error{
				Kind:    KindCoordinateRange,
				Path:    path + "." + d.name,
				Message: fmt.Sprintf("%s%s must be in range [0, 1], got %g", d.name, suffix, d.value),
			})
		}
	}
	return errs
}

func checkMetadata(path string, m template.SamplingMetadata) []Error {
	var errs []Error
	if m.SampleCount < 1 {
		errs = append(errs, Error{
			Kind:    KindInvalidSampleCount,
			Path:    path + ".sample_count",
			Message: fmt.Sprintf("sample_count must be >= 1, got %d", m.SampleCount),
		})
	}
	if m.ReferenceSize.Width <= 0 {
		errs = append(errs, Error{
			Kind:    KindInvalidReferenceSize,
			Path:    path + ".reference_size.width",
			Message: fmt.Sprintf("reference_size.width must be > 0, got %d", m.ReferenceSize.Width),
		})
	}
	if m.ReferenceSize.Height <= 0 {
		errs = append(errs, Error{
			Kind:    KindInvalidReferenceSize,
			Path:    path + ".reference_size.height",
			Message: fmt.Sprintf("reference_size.height must be > 0, got %d", m.ReferenceSize.Height),
		})
	}
	return errs
}

func validDataType(dataType string) bool {
	for _, dt := range DataTypes {
		if strings.EqualFold(dataType, dt) {
			return true
		}
	}
	return false
}
