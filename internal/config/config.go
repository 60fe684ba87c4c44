// Package config provides SharpInspect's Options: an immutable configuration
// snapshot produced by applying a caller-supplied mutator to defaults, then
// frozen.
//
// Grounded on config/config.go's DefaultConfig()/LoadConfig() split from the
// teacher repo, generalized from JSON-file loading (out of scope here per
// spec.md §1 Non-goals: "Configuration file parsing... of the embedding
// application") to an in-process mutator function, matching spec.md §4.1's
// "applying a caller-supplied mutator to defaults, then frozen".
package config

import (
	"fmt"
	"time"

	"github.com/sharpinspect/sharpinspect/internal/model"
)

// DevelopmentDetectionMode selects how the dev-mode gate decides whether the
// capture pipeline runs in this process.
type DevelopmentDetectionMode int

const (
	// Auto checks the environment variable first, falling back to
	// "debugger attached?" if unset.
	Auto DevelopmentDetectionMode = iota
	// EnvironmentVariableOnly checks only the environment variable;
	// unset means false.
	EnvironmentVariableOnly
	// DebuggerOnly checks only whether a debugger is attached.
	DebuggerOnly
	// Custom defers entirely to Options.CustomDevelopmentCheck.
	Custom
)

// Options is SharpInspect's frozen configuration snapshot. Construct with
// New; the zero value is not valid (use New(nil) for defaults).
type Options struct {
	Port int

	MaxNetworkEntries     int
	MaxConsoleEntries     int
	MaxPerformanceEntries int
	MaxBodyBytes          int64

	EnableNetworkCapture     bool
	EnableConsoleCapture     bool
	EnablePerformanceCapture bool

	MinLogLevel model.Level

	PerformanceSampleInterval time.Duration

	EnableInDevelopmentOnly  bool
	DevelopmentDetectionMode DevelopmentDetectionMode
	CustomDevelopmentCheck   func() bool

	// BindAllInterfaces, when true, binds 0.0.0.0 instead of the default
	// loopback-only 127.0.0.1 (spec.md §4.10). Must be requested explicitly.
	BindAllInterfaces bool
}

// Mutator customizes Options away from their defaults. Implementations must
// not retain the pointer past the call: New freezes a copy afterward.
type Mutator func(*Options)

// Defaults returns a fresh Options holding SharpInspect's documented
// defaults (spec.md §4.1).
func Defaults() Options {
	return Options{
		Port:                      9229,
		MaxNetworkEntries:         1000,
		MaxConsoleEntries:         1000,
		MaxPerformanceEntries:     500,
		MaxBodyBytes:              1 << 20, // 1 MiB
		EnableNetworkCapture:      true,
		EnableConsoleCapture:      true,
		EnablePerformanceCapture:  true,
		MinLogLevel:               model.LevelTrace,
		PerformanceSampleInterval: time.Second,
		EnableInDevelopmentOnly:   true,
		DevelopmentDetectionMode:  Auto,
	}
}

// New builds Options by applying mutate (if non-nil) to Defaults(), then
// validates the result. Returns a descriptive error for a negative bound or
// an unrecognized MinLogLevel or DevelopmentDetectionMode; the root
// package's Initialize wraps it as a KindInvalidConfig error.
func New(mutate Mutator) (*Options, error) {
	opts := Defaults()
	if mutate != nil {
		mutate(&opts)
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	frozen := opts
	return &frozen, nil
}

func (o *Options) validate() error {
	if o.Port < 0 {
		return fmt.Errorf("config: Port must be >= 0, got %d", o.Port)
	}
	if o.MaxNetworkEntries < 0 {
		return fmt.Errorf("config: MaxNetworkEntries must be >= 0, got %d", o.MaxNetworkEntries)
	}
	if o.MaxConsoleEntries < 0 {
		return fmt.Errorf("config: MaxConsoleEntries must be >= 0, got %d", o.MaxConsoleEntries)
	}
	if o.MaxPerformanceEntries < 0 {
		return fmt.Errorf("config: MaxPerformanceEntries must be >= 0, got %d", o.MaxPerformanceEntries)
	}
	if o.MaxBodyBytes < 0 {
		return fmt.Errorf("config: MaxBodyBytes must be >= 0, got %d", o.MaxBodyBytes)
	}
	if o.PerformanceSampleInterval < 0 {
		return fmt.Errorf("config: PerformanceSampleInterval must be >= 0, got %s", o.PerformanceSampleInterval)
	}
	if o.MinLogLevel < model.LevelTrace || o.MinLogLevel > model.LevelCritical {
		return fmt.Errorf("config: MinLogLevel %d is not a recognized level", o.MinLogLevel)
	}
	if o.DevelopmentDetectionMode < Auto || o.DevelopmentDetectionMode > Custom {
		return fmt.Errorf("config: DevelopmentDetectionMode %d is not recognized", o.DevelopmentDetectionMode)
	}
	return nil
}
