// Package ingest loads annotated sample sets from JSON or YAML documents.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/S93RUM-06/ocr-pipeline/internal/template"
)

// Request contains the parameters for loading sample sets.
type Request struct {
	Paths  []string     // sample-set files (sorted by numeric suffix)
	Logger *slog.Logger // Optional logger for progress updates
}

// Result contains the samples of all loaded files.
type Result struct {
	Samples []template.Sample
	Files   []string // files in load order
}

// sampleSet is the object form of a sample-set document. A bare array of
// samples is accepted as well.
type sampleSet struct {
	Samples []template.Sample `json:"samples" yaml:"samples"`
}

// Load reads every file in req.Paths and concatenates their samples.
// Samples without an id are given a random UUID; duplicate ids are rejected.
func Load(ctx context.Context, req Request) (*Result, error) {
	log := req.Logger
	if log == nil {
		log = slog.Default()
	}

	if len(req.Paths) == 0 {
		return nil, fmt.Errorf("no sample files provided")
	}

	files := sortByNumber(req.Paths)
	log.Debug("loading samples", "files", len(files))

	seen := make(map[string]string)
	var samples []template.Sample
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read samples: %w", err)
		}
		loaded, err := Decode(data, formatOf(path))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}

		for i := range loaded {
			if loaded[i].ID == "" {
				loaded[i].ID = uuid.New().String()
			}
			if prev, dup := seen[loaded[i].ID]; dup {
				return nil, fmt.Errorf("%s: duplicate sample id %q (first seen in %s)", path, loaded[i].ID, prev)
			}
			seen[loaded[i].ID] = path
		}
		log.Debug("loaded sample file", "file", filepath.Base(path), "samples", len(loaded))
		samples = append(samples, loaded...)
	}

	log.Info("samples loaded", "files", len(files), "samples", len(samples))
	return &Result{Samples: samples, Files: files}, nil
}

// Format is a sample-set document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func formatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Decode parses a sample-set document, either {"samples": [...]} or a bare
// array of samples.
func Decode(data []byte, format Format) ([]template.Sample, error) {
	switch format {
	case FormatYAML:
		var root yaml.Node
		if err := yaml.Unmarshal(data, &root); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
		if len(root.Content) == 0 {
			return nil, nil
		}
		doc := root.Content[0]
		if doc.Kind == yaml.SequenceNode {
			var samples []template.Sample
			if err := doc.Decode(&samples); err != nil {
				return nil, fmt.Errorf("failed to decode samples: %w", err)
			}
			return samples, nil
		}
		var set sampleSet
		if err := doc.Decode(&set); err != nil {
			return nil, fmt.Errorf("failed to decode samples: %w", err)
		}
		return set.Samples, nil

	case FormatJSON:
		trimmed := bytes.TrimSpace(data)
		if bytes.HasPrefix(trimmed, []byte("[")) {
			var samples []template.Sample
			if err := json.Unmarshal(trimmed, &samples); err != nil {
				return nil, fmt.Errorf("failed to parse JSON: %w", err)
			}
			return samples, nil
		}
		var set sampleSet
		if err := json.Unmarshal(trimmed, &set); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
		return set.Samples, nil

	default:
		return nil, fmt.Errorf("unknown sample format: %s", format)
	}
}

var numberSuffix = regexp.MustCompile(`-(\d+)\.(json|ya?ml)$`)

// sortByNumber sorts sample files by their numeric suffix.
// e.g., ["scan-2.json", "scan-1.json", "scan-10.json"] -> ["scan-1.json", "scan-2.json", "scan-10.json"]
func sortByNumber(paths []string) []string {
	sorted := make([]string, len(paths))
	copy(sorted, paths)

	sort.SliceStable(sorted, func(i, j int) bool {
		mi := numberSuffix.FindStringSubmatch(strings.ToLower(sorted[i]))
		mj := numberSuffix.FindStringSubmatch(strings.ToLower(sorted[j]))

		// If both have numbers, sort numerically
		if len(mi) > 1 && len(mj) > 1 {
			ni, _ := strconv.Atoi(mi[1])
			nj, _ := strconv.Atoi(mj[1])
			return ni < nj
		}

		// Files without numbers come first
		if len(mi) > 1 {
			return false
		}
		if len(mj) > 1 {
			return true
		}

		return sorted[i] < sorted[j]
	})

	return sorted
}

var (
	trailingNumber = regexp.MustCompile(`-\d+$`)
	nonIDChars     = regexp.MustCompile(`[^a-z0-9_]+`)
)

// DeriveName extracts a template name from a sample-set filename.
// e.g., "tw-einvoice-1.json" -> "tw-einvoice"
func DeriveName(path string) string {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return trailingNumber.ReplaceAllString(name, "")
}

// DeriveID turns a name into a template id of lowercase letters, digits and
// underscores. e.g., "TW e-Invoice" -> "tw_e_invoice"
func DeriveID(name string) string {
	id := nonIDChars.ReplaceAllString(strings.ToLower(name), "_")
	return strings.Trim(id, "_")
}
