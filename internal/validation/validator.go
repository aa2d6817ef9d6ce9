// Package validation gates ROI templates before they are trusted for
// extraction. A template is checked in two independent passes: structurally
// against a JSON Schema document, then against business rules the schema
// cannot express. Every problem found is reported; nothing fails fast.
package validation

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/S93RUM-06/ocr-pipeline/internal/template"
)

var (
	// ErrSchemaNotFound is returned when a schema file does not exist.
	ErrSchemaNotFound = errors.New("schema not found")
	// ErrSchemaParse is returned when a schema document is malformed or is
	// not a valid JSON Schema.
	ErrSchemaParse = errors.New("failed to parse schema")
)

// schemaResource is the URL the schema document is registered under.
const schemaResource = "template-schema.json"

//go:embed schemas/template-v1.0.json
var defaultSchema []byte

// DefaultSchema returns a copy of the embedded template-v1.0 schema document.
func DefaultSchema() []byte {
	return bytes.Clone(defaultSchema)
}

// Validator checks templates against a compiled schema. It is immutable and
// safe for concurrent use.
type Validator struct {
	schema *jsonschema.Schema
}

// FromDocument compiles a JSON Schema document into a Validator.
func FromDocument(doc []byte) (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(schemaResource, bytes.NewReader(doc)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaParse, err)
	}
	schema, err := compiler.Compile(schemaResource)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaParse, err)
	}
	return &Validator{schema: schema}, nil
}

// FromFile reads and compiles the schema document at path.
func FromFile(ctx context.Context, path string) (*Validator, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrSchemaNotFound)
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	doc, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSchemaNotFound, path)
		}
		return nil, fmt.Errorf("failed to read schema %s: %w", path, err)
	}
	v, err := FromDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

var defaultValidator = sync.OnceValues(func() (*Validator, error) {
	return FromDocument(defaultSchema)
})

// Default returns the Validator for the embedded schema. It is compiled once.
func Default() (*Validator, error) {
	return defaultValidator()
}

// Validate runs the schema pass and the business-rule pass and combines
// their errors, schema errors first.
func (v *Validator) Validate(t template.Template) Result {
	errs := v.CheckSchema(t)
	errs = append(errs, CheckRules(t)...)
	return newResult(errs)
}

// CheckSchema validates the canonical JSON form of t against the schema.
func (v *Validator) CheckSchema(t template.Template) []Error {
	raw, err := json.Marshal(t)
	if err != nil {
		return []Error{{Kind: KindSchemaViolation, Message: fmt.Sprintf("failed to encode template: %v", err)}}
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return []Error{{Kind: KindSchemaViolation, Message: fmt.Sprintf("failed to decode template: %v", err)}}
	}
	// A nil region map encodes as null; report it as absent.
	if m, ok := doc.(map[string]any); ok && t.Regions == nil {
		delete(m, "regions")
	}

	err = v.schema.Validate(doc)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []Error{{Kind: KindSchemaViolation, Message: err.Error()}}
	}

	leaves := leafErrors(ve, nil)
	sort.SliceStable(leaves, func(i, j int) bool {
		if leaves[i].InstanceLocation != leaves[j].InstanceLocation {
			return leaves[i].InstanceLocation < leaves[j].InstanceLocation
		}
		return leaves[i].KeywordLocation < leaves[j].KeywordLocation
	})

	out := make([]Error, 0, len(leaves))
	for _, leaf := range leaves {
		out = append(out, Error{
			Kind:    KindSchemaViolation,
			Path:    dottedPath(leaf.InstanceLocation),
			Message: leaf.Message,
		})
	}
	return out
}

// leafErrors flattens the validation error tree to the errors that carry
// no further causes.
func leafErrors(ve *jsonschema.ValidationError, acc []*jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return append(acc, ve)
	}
	for _, cause := range ve.Causes {
		acc = leafErrors(cause, acc)
	}
	return acc
}

// dottedPath converts a JSON pointer such as /regions/a~1b/rect_ratio into
// regions.a/b.rect_ratio. The document root maps to "".
func dottedPath(pointer string) string {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(pointer, "#"), "/")
	if trimmed == "" {
		return ""
	}
	parts := strings.Split(trimmed, "/")
	for i, p := range parts {
		p = strings.ReplaceAll(p, "~1", "/")
		parts[i] = strings.ReplaceAll(p, "~0", "~")
	}
	return strings.Join(parts, ".")
}
