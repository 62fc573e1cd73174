// Package config parses the optional dispatchgen.yaml configuration.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is looked up in the working directory when no -config
// flag is given.
const DefaultConfigFile = "dispatchgen.yaml"

// MarkerFunc is the name of the placeholder function the rewriter expands.
const MarkerFunc = "Expand"

// DefaultMarkerImport is the import path whose Expand calls are expanded.
const DefaultMarkerImport = "github.com/ozars/specialized-dispatch/pkg/dispatch"

// DefaultOutputSuffix names the generated declarations file next to each
// rewritten source file: foo.go -> foo_dispatch.go.
const DefaultOutputSuffix = "_dispatch.go"

// Config represents the top-level dispatchgen.yaml configuration.
type Config struct {
	// MarkerImport overrides the import path of the marker package.
	// Useful when the marker is vendored or forked.
	MarkerImport string `yaml:"marker_import,omitempty"`

	// OutputSuffix overrides the generated file suffix. Must end in ".go"
	// and must not be empty.
	OutputSuffix string `yaml:"output_suffix,omitempty"`

	// LineDirectives toggles //line attribution of arm bodies back to
	// the original call sites. Defaults to true.
	LineDirectives *bool `yaml:"line_directives,omitempty"`

	// Color controls diagnostic coloring: "auto" (default), "always" or
	// "never".
	Color string `yaml:"color,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	c.applyDefaults()
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &c, nil
}

// LoadDefault loads dispatchgen.yaml from the working directory if it
// exists, the built-in defaults otherwise.
func LoadDefault() (*Config, error) {
	if _, err := os.Stat(DefaultConfigFile); err != nil {
		return Default(), nil
	}
	return Load(DefaultConfigFile)
}

func (c *Config) applyDefaults() {
	if c.MarkerImport == "" {
		c.MarkerImport = DefaultMarkerImport
	}
	if c.OutputSuffix == "" {
		c.OutputSuffix = DefaultOutputSuffix
	}
	if c.LineDirectives == nil {
		t := true
		c.LineDirectives = &t
	}
	if c.Color == "" {
		c.Color = "auto"
	}
}

func (c *Config) validate() error {
	if !strings.HasSuffix(c.OutputSuffix, ".go") {
		return fmt.Errorf("output_suffix %q must end in .go", c.OutputSuffix)
	}
	switch c.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("color %q must be auto, always or never", c.Color)
	}
	return nil
}

// EmitLineDirectives reports the effective //line setting.
func (c *Config) EmitLineDirectives() bool {
	return c.LineDirectives == nil || *c.LineDirectives
}
