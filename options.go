package sharpinspect

import (
	"github.com/sharpinspect/sharpinspect/internal/config"
	"github.com/sharpinspect/sharpinspect/internal/model"
)

// DevelopmentDetectionMode selects how the dev-mode gate decides whether
// the capture pipeline runs in this process (spec.md §4.11).
type DevelopmentDetectionMode = config.DevelopmentDetectionMode

const (
	Auto                    = config.Auto
	EnvironmentVariableOnly = config.EnvironmentVariableOnly
	DebuggerOnly            = config.DebuggerOnly
	Custom                  = config.Custom
)

// Level is a console log severity (spec.md §3).
type Level = model.Level

const (
	LevelTrace       = model.LevelTrace
	LevelDebug       = model.LevelDebug
	LevelInformation = model.LevelInformation
	LevelWarning     = model.LevelWarning
	LevelError       = model.LevelError
	LevelCritical    = model.LevelCritical
)

// Options is SharpInspect's frozen configuration snapshot, the embedder's
// only public entry point for tuning the capture pipeline (spec.md §4.1).
// It is a thin alias over internal/config.Options: the public surface
// deliberately stays this small so SharpInspect never exposes its
// internal package layout as part of its API contract.
type Options = config.Options

// Mutator customizes Options away from their defaults, passed to
// Initialize.
type Mutator = config.Mutator

// DefaultOptions returns SharpInspect's documented defaults, useful for
// embedders that want to start from them and override a handful of
// fields outside of a Mutator closure.
func DefaultOptions() Options { return config.Defaults() }
