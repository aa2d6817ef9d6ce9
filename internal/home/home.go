package home

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultDirName is the default name for the roisampler home directory.
	DefaultDirName = ".roisampler"

	// ProfilesDirName is the subdirectory for field-set profiles.
	ProfilesDirName = "profiles"

	// TemplatesDirName is the subdirectory for built templates.
	TemplatesDirName = "templates"

	// SchemasDirName is the subdirectory for custom template schemas.
	SchemasDirName = "schemas"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"
)

// Dir represents the roisampler home directory structure.
type Dir struct {
	path string
}

// New creates a new Dir with the given path.
// If path is empty, uses the default (~/.roisampler).
func New(path string) (*Dir, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, DefaultDirName)
	}

	return &Dir{path: path}, nil
}

// Path returns the root path of the home directory.
func (d *Dir) Path() string {
	return d.path
}

// ProfilesPath returns the path to the profiles directory.
func (d *Dir) ProfilesPath() string {
	return filepath.Join(d.path, ProfilesDirName)
}

// TemplatesPath returns the path to the templates directory.
func (d *Dir) TemplatesPath() string {
	return filepath.Join(d.path, TemplatesDirName)
}

// TemplatePath returns where the template with the given id is stored.
func (d *Dir) TemplatePath(templateID string) string {
	return filepath.Join(d.TemplatesPath(), templateID+".json")
}

// SchemasPath returns the path to the custom schema directory.
func (d *Dir) SchemasPath() string {
	return filepath.Join(d.path, SchemasDirName)
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

// EnsureExists creates the home directory and subdirectories if they don't exist.
func (d *Dir) EnsureExists() error {
	for _, sub := range []string{d.ProfilesPath(), d.TemplatesPath(), d.SchemasPath()} {
		if err := os.MkdirAll(sub, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", sub, err)
		}
	}
	return nil
}

// Exists returns true if the home directory exists.
func (d *Dir) Exists() bool {
	_, err := os.Stat(d.path)
	return err == nil
}

// ConfigExists returns true if the config file exists in the home directory.
func (d *Dir) ConfigExists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}
