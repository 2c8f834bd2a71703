// Package config loads the YAML document that names every input,
// output, and tunable of a pipeline run.
//
// Grounded on §6.5; no teacher analogue (the teacher reads its grammar
// source from a bare file path argument, no document-shaped config), so
// this package's shape follows the pack's general YAML-via-yaml.v3
// convention instead of a specific teacher file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Oracle configures how the pipeline dials out to the system under test.
type Oracle struct {
	Backend        string        `yaml:"backend"`
	Command        []string      `yaml:"command"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	MaxRestarts    int           `yaml:"max_restarts"`
}

// Config is the full document of §6.5.
type Config struct {
	OutputDirectory    string `yaml:"output_directory"`
	SeedDirectory      string `yaml:"seed_directory"`
	TraceDirectory     string `yaml:"trace_directory"`
	BinaryFile         string `yaml:"binary_file"`
	LogLevel           string `yaml:"log_level"`
	RNGSeed            uint64 `yaml:"rng_seed"`
	MaxProcSamples     int    `yaml:"max_proc_samples"`
	MaxChecks          int    `yaml:"max_checks"`
	FuzzRange          int    `yaml:"fuzz_range"`
	OriginalMimid      bool   `yaml:"original_mimid"`
	DelayedWatchpoints bool   `yaml:"delayed_watchpoints"`
	Oracle             Oracle `yaml:"oracle"`
}

// defaults mirror the worked example in §6.5 for every field a document
// may reasonably omit.
func defaults() Config {
	return Config{
		LogLevel:       "info",
		RNGSeed:        1,
		MaxProcSamples: 50,
		MaxChecks:      100,
		FuzzRange:      10,
		OriginalMimid:  true,
		Oracle: Oracle{
			Backend:        "subprocess",
			RequestTimeout: 5 * time.Second,
			MaxRestarts:    3,
		},
	}
}

// Load reads and parses the YAML document at path, applying the §6.5
// defaults to any field the document leaves unset.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return &cfg, nil
}

// Level maps the document's log_level string to a slog.Level, defaulting
// to Info for an unrecognized value.
func (c *Config) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c *Config) validate() error {
	if c.OutputDirectory == "" {
		return fmt.Errorf("output_directory is required")
	}
	if c.BinaryFile == "" {
		return fmt.Errorf("binary_file is required")
	}
	if len(c.Oracle.Command) == 0 {
		return fmt.Errorf("oracle.command is required")
	}
	return nil
}
