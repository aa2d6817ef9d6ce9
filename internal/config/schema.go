package config

import (
	"fmt"
	"log/slog"

	"github.com/S93RUM-06/ocr-pipeline/internal/sampling"
	"github.com/S93RUM-06/ocr-pipeline/internal/template"
)

// Config holds roisampler configuration.
// Stored at: {home}/config.yaml
type Config struct {
	// SchemaPath points at a custom template schema. Empty uses the built-in schema.
	SchemaPath string `mapstructure:"schema_path" yaml:"schema_path" json:"schema_path"`

	// QualityThreshold is the largest rect_std_dev component accepted without a warning.
	QualityThreshold float64     `mapstructure:"quality_threshold" yaml:"quality_threshold" json:"quality_threshold"`
	Template         TemplateCfg `mapstructure:"template" yaml:"template" json:"template"`

	// ProfilesDir and TemplatesDir default to subdirectories of the home directory.
	ProfilesDir  string `mapstructure:"profiles_dir" yaml:"profiles_dir" json:"profiles_dir"`
	TemplatesDir string `mapstructure:"templates_dir" yaml:"templates_dir" json:"templates_dir"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
}

// TemplateCfg holds the values stamped into every built template.
type TemplateCfg struct {
	Version            string `mapstructure:"version" yaml:"version" json:"version"`
	ProcessingStrategy string `mapstructure:"processing_strategy" yaml:"processing_strategy" json:"processing_strategy"`
	SamplerVersion     string `mapstructure:"sampler_version" yaml:"sampler_version" json:"sampler_version"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		QualityThreshold: sampling.DefaultThreshold,
		Template: TemplateCfg{
			Version:            template.DefaultVersion,
			ProcessingStrategy: template.DefaultProcessingStrategy,
			SamplerVersion:     template.DefaultSamplerVersion,
		},
		LogLevel: "info",
	}
}

// Level parses LogLevel. Empty means info.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// Validate checks values viper cannot type-check.
func (c *Config) Validate() error {
	if c.QualityThreshold <= 0 {
		return fmt.Errorf("quality_threshold must be positive, got %g", c.QualityThreshold)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// ResolvedSchemaPath returns SchemaPath with ${ENV_VAR} references expanded.
func (c *Config) ResolvedSchemaPath() string {
	return ResolveEnvVars(c.SchemaPath)
}
