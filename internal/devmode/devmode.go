// Package devmode implements the dev-mode detector (spec.md §4.11): the
// policy deciding whether the capture pipeline should run in this process
// at all.
package devmode

import (
	"os"
	"runtime"
	"strings"

	"github.com/sharpinspect/sharpinspect/internal/config"
)

// Check evaluates opts.DevelopmentDetectionMode and returns whether the
// capture pipeline should be active. If opts.EnableInDevelopmentOnly is
// false, the gate is bypassed entirely (always true) — that flag, not this
// function, is the top-level switch per spec.md §3's invariant.
func Check(opts *config.Options) bool {
	if !opts.EnableInDevelopmentOnly {
		return true
	}
	switch opts.DevelopmentDetectionMode {
	case config.EnvironmentVariableOnly:
		return envSaysDevelopment()
	case config.DebuggerOnly:
		return debuggerAttached()
	case config.Custom:
		if opts.CustomDevelopmentCheck != nil {
			return opts.CustomDevelopmentCheck()
		}
		return autoCheck()
	default: // Auto
		return autoCheck()
	}
}

func autoCheck() bool {
	if v, ok := lookupEnvironmentName(); ok {
		return strings.EqualFold(v, "Development")
	}
	return debuggerAttached()
}

func envSaysDevelopment() bool {
	v, ok := lookupEnvironmentName()
	if !ok {
		return false
	}
	return strings.EqualFold(v, "Development")
}

// lookupEnvironmentName reads DOTNET_ENVIRONMENT, falling back to
// ASPNETCORE_ENVIRONMENT, per spec.md §4.11/§6.
func lookupEnvironmentName() (string, bool) {
	if v, ok := os.LookupEnv("DOTNET_ENVIRONMENT"); ok {
		return v, true
	}
	if v, ok := os.LookupEnv("ASPNETCORE_ENVIRONMENT"); ok {
		return v, true
	}
	return "", false
}

// debuggerAttached reports whether a debugger appears to be attached to this
// process. On Linux this reads /proc/self/status's TracerPid, the standard
// lightweight signal a debugger (or strace/ptrace) is attached; on other
// platforms there is no equivalently cheap stdlib-only signal, so it
// conservatively reports false.
func debuggerAttached() bool {
	if runtime.GOOS != "linux" {
		return false
	}
	data, err := os.ReadFile("/proc/self/status")
	if err != nil {
		return false
	}
	const marker = "TracerPid:"
	idx := strings.Index(string(data), marker)
	if idx == -1 {
		return false
	}
	rest := strings.TrimSpace(string(data)[idx+len(marker):])
	if nl := strings.IndexByte(rest, '\n'); nl != -1 {
		rest = rest[:nl]
	}
	return strings.TrimSpace(rest) != "0"
}
