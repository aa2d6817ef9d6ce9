package validation

import (
	"encoding/json"
	"slices"
	"strings"
)

// Kind classifies a validation error.
type Kind string

const (
	KindSchemaViolation      Kind = "SchemaViolation"
	KindMissingID            Kind = "MissingId"
	KindNoRegions            Kind = "NoRegions"
	KindCoordinateRange      Kind = "CoordinateRange"
	KindCoordinateLogic      Kind = "CoordinateLogic"
	KindInvalidDataType      Kind = "InvalidDataType"
	KindInvalidSampleCount   Kind = "InvalidSampleCount"
	KindInvalidReferenceSize Kind = "InvalidReferenceSize"
)

// Error is a single problem found in a template. Path is a dotted document
// path such as regions.invoice_number.rect_ratio.x.
type Error struct {
	Kind    Kind   `json:"kind" yaml:"kind"`
	Path    string `json:"path" yaml:"path"`
	Message string `json:"message" yaml:"message"`
}

// String formats the error as "[Kind] path: message".
func (e Error) String() string {
	if e.Path == "" {
		return "[" + string(e.Kind) + "] " + e.Message
	}
	return "[" + string(e.Kind) + "] " + e.Path + ": " + e.Message
}

// Result is the outcome of one validation call. It cannot be modified after
// it is produced.
type Result struct {
	errors []Error
}

func newResult(errs []Error) Result {
	return Result{errors: slices.Clone(errs)}
}

// Valid reports whether no errors were found.
func (r Result) Valid() bool {
	return len(r.errors) == 0
}

// Errors returns a copy of the errors in discovery order.
func (r Result) Errors() []Error {
	return slices.Clone(r.errors)
}

// Summary returns one "[Kind] path: message" line per error, or
// "validation passed".
func (r Result) Summary() string {
	if r.Valid() {
		return "validation passed"
	}
	lines := make([]string, len(r.errors))
	for i, e := range r.errors {
		lines[i] = e.String()
	}
	return strings.Join(lines, "\n")
}

type resultDoc struct {
	IsValid bool    `json:"is_valid" yaml:"is_valid"`
	Errors  []Error `json:"errors" yaml:"errors"`
}

func (r Result) doc() resultDoc {
	errs := r.Errors()
	if errs == nil {
		errs = []Error{}
	}
	return resultDoc{IsValid: r.Valid(), Errors: errs}
}

// MarshalJSON encodes the result as {"is_valid": bool, "errors": [...]}.
func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.doc())
}

// MarshalYAML encodes the result with the same shape as MarshalJSON.
func (r Result) MarshalYAML() (any, error) {
	return r.doc(), nil
}
