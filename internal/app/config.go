package app

import (
	"errors"
	"fmt"
)

// Output formats for invocation results.
const (
	OutputText = "text"
	OutputJSON = "json"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	SourcePath string // .hcl, .yaml, .yml and .json sources

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
	WorkerCount     int

	// MaxIterations bounds loop iterations per invocation. Zero means no
	// bound.
	MaxIterations int
	// Output selects the result format, OutputText or OutputJSON.
	Output string
	// DumpGraph prints every compiled graph before running.
	DumpGraph bool
	// BackendURL offloads pure primitives to a primitive server.
	BackendURL string
	// Format rewrites HCL sources in canonical layout instead of running
	// them.
	Format bool
	// ServeAddr runs a primitive server on this address instead of running
	// sources.
	ServeAddr string
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.SourcePath == "" && cfg.ServeAddr == "" {
		return nil, errors.New("SourcePath is a required configuration field and cannot be empty")
	}
	if cfg.Output == "" {
		cfg.Output = OutputText
	}
	if cfg.Output != OutputText && cfg.Output != OutputJSON {
		return nil, fmt.Errorf("invalid output format %q: must be '%s' or '%s'", cfg.Output, OutputText, OutputJSON)
	}
	if cfg.WorkerCount <= 0 {
		return nil, fmt.Errorf("worker count must be positive, got %d", cfg.WorkerCount)
	}
	if cfg.MaxIterations < 0 {
		return nil, fmt.Errorf("max iterations must not be negative, got %d", cfg.MaxIterations)
	}
	if cfg.Format && cfg.ServeAddr != "" {
		return nil, errors.New("format and serve modes are mutually exclusive")
	}
	return &cfg, nil
}
