// Package config holds the interpreter's compile-time limits and the
// runtime options loaded from an optional clox.yaml next to the script
// (or the working directory for the REPL). Options can also be forced on
// through CLOX_* environment variables, which win over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// OptionsFileName is looked up next to the script being run.
const OptionsFileName = "clox.yaml"

// Options control diagnostics and GC behavior of the VM.
type Options struct {
	// TraceExecution dumps the stack and the disassembled instruction
	// before each opcode executes.
	TraceExecution bool `yaml:"trace_execution"`

	// PrintCode disassembles every function chunk after a clean compile.
	PrintCode bool `yaml:"print_code"`

	// StressGC runs a full collection on every allocation.
	StressGC bool `yaml:"stress_gc"`

	// LogGC logs collection phases and freed objects.
	LogGC bool `yaml:"log_gc"`

	// GCHeapGrow overrides the heap growth factor. Zero means default.
	GCHeapGrow int `yaml:"gc_heap_grow"`
}

// DefaultOptions returns the options used when no clox.yaml is present.
func DefaultOptions() Options {
	return Options{GCHeapGrow: GCHeapGrowFactor}
}

// LoadOptions reads clox.yaml from dir, falling back to defaults when the
// file does not exist. Environment overrides are applied on top.
func LoadOptions(dir string) (Options, error) {
	opts := DefaultOptions()

	path := filepath.Join(dir, OptionsFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return opts, fmt.Errorf("reading %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &opts); err != nil {
			return opts, fmt.Errorf("parsing %s: %w", path, err)
		}
		if opts.GCHeapGrow < 0 {
			return opts, fmt.Errorf("%s: gc_heap_grow must not be negative", path)
		}
		if opts.GCHeapGrow == 0 {
			opts.GCHeapGrow = GCHeapGrowFactor
		}
	}

	applyEnvOverrides(&opts)
	return opts, nil
}

func applyEnvOverrides(opts *Options) {
	if envSet(EnvTrace) {
		opts.TraceExecution = true
	}
	if envSet(EnvPrintCode) {
		opts.PrintCode = true
	}
	if envSet(EnvStressGC) {
		opts.StressGC = true
	}
	if envSet(EnvLogGC) {
		opts.LogGC = true
	}
}

func envSet(name string) bool {
	v, ok := os.LookupEnv(name)
	return ok && v != "" && v != "0" && v != "false"
}
