// Package profile manages field-set profiles: named lists of the fields a
// document type is expected to carry, with extraction hints per field.
package profile

import (
	"fmt"
	"strings"

	"github.com/S93RUM-06/ocr-pipeline/internal/template"
)

// DefaultDocumentType is used when a profile does not name one.
const DefaultDocumentType = "general"

// Profile is a reusable field configuration for one kind of document.
type Profile struct {
	ID           string   `yaml:"profile_id" json:"profile_id"`
	Name         string   `yaml:"profile_name" json:"profile_name"`
	Description  string   `yaml:"description,omitempty" json:"description,omitempty"`
	DocumentType string   `yaml:"document_type" json:"document_type"`
	Fields       []Field  `yaml:"fields" json:"fields"`
	CreatedAt    string   `yaml:"created_at" json:"created_at"`
	UpdatedAt    string   `yaml:"updated_at,omitempty" json:"updated_at,omitempty"`
	Author       string   `yaml:"author,omitempty" json:"author,omitempty"`
	Tags         []string `yaml:"tags,omitempty" json:"tags,omitempty"`
}

// Field describes a single field of a profile.
type Field struct {
	FieldName      string   `yaml:"field_name" json:"field_name"`
	DisplayName    string   `yaml:"display_name,omitempty" json:"display_name,omitempty"`
	DataType       string   `yaml:"data_type" json:"data_type"`
	Required       bool     `yaml:"required" json:"required"`
	Pattern        string   `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	ExpectedLength *int     `yaml:"expected_length,omitempty" json:"expected_length,omitempty"`
	Description    string   `yaml:"description,omitempty" json:"description,omitempty"`
	ExampleValues  []string `yaml:"example_values,omitempty" json:"example_values,omitempty"`
}

// Label returns the display name, falling back to the field name.
func (f Field) Label() string {
	if f.DisplayName != "" {
		return f.DisplayName
	}
	return f.FieldName
}

func (f Field) clone() Field {
	if f.ExpectedLength != nil {
		n := *f.ExpectedLength
		f.ExpectedLength = &n
	}
	if f.ExampleValues != nil {
		f.ExampleValues = append([]string(nil), f.ExampleValues...)
	}
	return f
}

// Validate returns a list of problems with p. An empty list means the
// profile can be saved and applied.
func Validate(p Profile) []string {
	var errs []string

	if strings.TrimSpace(p.ID) == "" {
		errs = append(errs, "profile_id must not be empty")
	}
	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, "profile_name must not be empty")
	}
	if len(p.Fields) == 0 {
		errs = append(errs, "at least one field is required")
		return errs
	}

	counts := make(map[string]int, len(p.Fields))
	var order []string
	for _, f := range p.Fields {
		if counts[f.FieldName] == 0 {
			order = append(order, f.FieldName)
		}
		counts[f.FieldName]++
	}
	for _, name := range order {
		if counts[name] > 1 {
			errs = append(errs, fmt.Sprintf("duplicate field name: %s", name))
		}
	}

	return errs
}

// Apply returns a copy of t whose regions named by a profile field carry
// that field's extraction hints. Regions the profile does not mention are
// left unchanged, and profile fields without a region are ignored.
func Apply(t template.Template, p Profile) *template.Template {
	out := t.Clone()
	for _, f := range p.Fields {
		region, ok := out.Regions[f.FieldName]
		if !ok {
			continue
		}
		if f.DataType != "" {
			region.DataType = f.DataType
		}
		region.Required = f.Required
		region.Pattern = f.Pattern
		if f.ExpectedLength != nil {
			n := *f.ExpectedLength
			region.ExpectedLength = &n
		} else {
			region.ExpectedLength = nil
		}
		if f.Description != "" {
			region.Description = f.Description
		}
		out.Regions[f.FieldName] = region
	}
	return out
}

// Missing lists the profile fields, in profile order, that have no region
// in t.
func Missing(t template.Template, p Profile) []string {
	var missing []string
	for _, f := range p.Fields {
		if _, ok := t.Regions[f.FieldName]; !ok {
			missing = append(missing, f.FieldName)
		}
	}
	return missing
}
