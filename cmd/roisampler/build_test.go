package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/S93RUM-06/ocr-pipeline/internal/config"
	"github.com/S93RUM-06/ocr-pipeline/internal/geometry"
	"github.com/S93RUM-06/ocr-pipeline/internal/profile"
	"github.com/S93RUM-06/ocr-pipeline/internal/validation"
)

const twoSamples = `{"samples": [
  {"id": "a", "pixel_width": 100, "pixel_height": 100,
   "annotations": {"invoice_number": {"x": 0, "y": 0, "width": 10, "height": 10}}},
  {"id": "b", "pixel_width": 200, "pixel_height": 200,
   "annotations": {"invoice_number": {"x": 20, "y": 20, "width": 20, "height": 20}}}
]}`

func testOptions(t *testing.T, paths ...string) buildOptions {
	t.Helper()
	v, err := validation.Default()
	require.NoError(t, err)
	return buildOptions{
		Paths:     paths,
		Template:  config.DefaultConfig().Template,
		Threshold: 0.1,
		Validate:  true,
		Validator: v,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func writeSamples(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestBuildTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "einvoice-1.json")
	writeSamples(t, path, twoSamples)

	res, err := buildTemplate(context.Background(), testOptions(t, path))
	require.NoError(t, err)

	tmpl := res.Template
	assert.Equal(t, "einvoice", tmpl.TemplateID)
	assert.Equal(t, "einvoice", tmpl.TemplateName)
	assert.Equal(t, 2, res.Samples)
	assert.Empty(t, res.Warnings)
	require.Contains(t, tmpl.Regions, "invoice_number")
	assert.Equal(t, geometry.RatioRect{X: 0.05, Y: 0.05, Width: 0.1, Height: 0.1}, tmpl.Regions["invoice_number"].Rect)
}

func TestBuildTemplate_Threshold(t *testing.T) {
	path := filepath.Join(t.TempDir(), "einvoice-1.json")
	writeSamples(t, path, twoSamples)

	opts := testOptions(t, path)
	opts.Threshold = 0.01
	res, err := buildTemplate(context.Background(), opts)
	require.NoError(t, err)

	// x and y spread by 0.0354; width and height are identical
	assert.Len(t, res.Warnings, 2)
}

func TestBuildTemplate_Profile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "einvoice-1.json")
	writeSamples(t, path, twoSamples)

	opts := testOptions(t, path)
	opts.ID = "tw_einvoice"
	p := profile.Defaults()[0]
	opts.Profile = &p

	res, err := buildTemplate(context.Background(), opts)
	require.NoError(t, err)

	region := res.Template.Regions["invoice_number"]
	assert.Equal(t, "tw_einvoice", res.Template.TemplateID)
	assert.True(t, region.Required)
	assert.Equal(t, `[A-Z]{2}-\d{8}`, region.Pattern)
}

func TestBuildTemplate_InvalidTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "einvoice-1.json")
	writeSamples(t, path, twoSamples)

	opts := testOptions(t, path)
	opts.Profile = &profile.Profile{
		ID:     "bad",
		Name:   "bad",
		Fields: []profile.Field{{FieldName: "invoice_number", DataType: "money"}},
	}

	_, err := buildTemplate(context.Background(), opts)
	assert.ErrorIs(t, err, errInvalidTemplate)

	opts.Validate = false
	_, err = buildTemplate(context.Background(), opts)
	assert.NoError(t, err)
}

func TestBuildTemplate_IngestError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	writeSamples(t, path, `{"samples": [`)

	_, err := buildTemplate(context.Background(), testOptions(t, path))
	assert.ErrorContains(t, err, "broken.json")
	assert.NotErrorIs(t, err, errInvalidTemplate)
}

func TestParseFieldArg(t *testing.T) {
	tests := []struct {
		arg     string
		want    profile.Field
		wantErr bool
	}{
		{arg: "amount", want: profile.Field{FieldName: "amount", DataType: "string"}},
		{arg: "amount:number", want: profile.Field{FieldName: "amount", DataType: "number"}},
		{arg: "amount:number:required", want: profile.Field{FieldName: "amount", DataType: "number", Required: true}},
		{arg: "amount::required", want: profile.Field{FieldName: "amount", DataType: "string", Required: true}},
		{arg: ":number", wantErr: true},
		{arg: "amount:number:optional", wantErr: true},
		{arg: "a:b:c:d", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := parseFieldArg(tt.arg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
