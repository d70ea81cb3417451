// Package config loads the optional YAML configuration surface
// SPEC_FULL.md §3 gives the implementation toggles spec.md leaves open:
// the uninitialized-variable mode, GC pacing constants, and REPL
// cosmetics. Every field has a spec-mandated default, so an absent or
// partially-specified file is always valid.
package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/loxlang/loxi/internal/runtime"
)

// Config is the parsed configuration document.
type Config struct {
	// UninitializedVariableIsError selects spec.md §4.2's stricter mode:
	// reading a `var` declared without an initializer is a runtime error
	// instead of yielding Nil. Default false.
	UninitializedVariableIsError bool `yaml:"uninitializedVariableIsError"`

	// GCInitialThreshold is the live-value/environment count that
	// triggers the first collection (spec.md §4.3). Default 256.
	GCInitialThreshold int `yaml:"gcInitialThreshold"`

	// GCGrowthFactor is the pacing multiplier applied to the live count
	// after each collection (spec.md §4.3's "2 ×"). Default 2.0.
	GCGrowthFactor float64 `yaml:"gcGrowthFactor"`

	// MaxPinDepth caps the GC pin stack (spec.md §4.3). Default 4096.
	MaxPinDepth int `yaml:"maxPinDepth"`

	// MaxEnvironments caps the number of live environments before a
	// function call raises "Stack overflow." (spec.md §4.3). Default
	// 31*1024.
	MaxEnvironments int `yaml:"maxEnvironments"`

	// REPL cosmetics (SPEC_FULL.md §3 "REPL styling").
	Banner       string `yaml:"banner"`
	PromptColor  string `yaml:"promptColor"`
	ErrorColor   string `yaml:"errorColor"`
}

// Default returns the configuration spec.md's reference values describe,
// with no file loaded.
func Default() Config {
	rc := runtime.DefaultConfig()
	return Config{
		UninitializedVariableIsError: false,
		GCInitialThreshold:           rc.InitialThreshold,
		GCGrowthFactor:               rc.GrowthFactor,
		MaxPinDepth:                  rc.MaxPinDepth,
		MaxEnvironments:              rc.MaxEnvironments,
		Banner:                       "loxi — a tree-walking Lox interpreter",
		PromptColor:                  "12",
		ErrorColor:                   "9",
	}
}

// Load reads and merges a YAML document at path over Default(). An empty
// path is a no-op (the defaults stand).
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("loxi: reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("loxi: parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// RuntimeConfig projects the GC-relevant fields into a runtime.Config.
func (c Config) RuntimeConfig() runtime.Config {
	return runtime.Config{
		InitialThreshold: c.GCInitialThreshold,
		GrowthFactor:     c.GCGrowthFactor,
		MaxPinDepth:      c.MaxPinDepth,
		MaxEnvironments:  c.MaxEnvironments,
	}
}
