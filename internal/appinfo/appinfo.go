// Package appinfo gathers the process-wide ApplicationInfo singleton once
// at startup.
//
// Grounded on spec.md §3's ApplicationInfo type directly — no prior
// implementation was retrieved for this part of the spec. loadedAssemblies
// has no exact Go analog; debug.ReadBuildInfo's dependency-module list
// ({Path, Version} per imported module) is the closest equivalent to
// ".NET loaded assemblies" and is used as-is.
package appinfo

import (
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/sharpinspect/sharpinspect/internal/model"
)

// Gather computes an ApplicationInfo snapshot for the current process.
// Intended to be called once, at Initialize, and cached.
func Gather() model.ApplicationInfo {
	return model.ApplicationInfo{
		AssemblyName:         assemblyName(),
		RuntimeVersion:       runtime.Version(),
		ProcessId:            os.Getpid(),
		ProcessorCount:       runtime.NumCPU(),
		EnvironmentVariables: environmentVariables(),
		LoadedAssemblies:     loadedAssemblies(),
	}
}

func assemblyName() string {
	if len(os.Args) == 0 {
		return ""
	}
	return filepath.Base(os.Args[0])
}

func environmentVariables() map[string]string {
	env := os.Environ()
	out := make(map[string]string, len(env))
	for _, kv := range env {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		out[name] = value
	}
	return out
}

// loadedAssemblies maps the module's resolved dependency versions
// (debug.ReadBuildInfo) onto AssemblyVersion, the closest Go analog of
// ".NET loaded assemblies": both describe the concrete versions of the
// code units actually linked into the running process.
func loadedAssemblies() []model.AssemblyVersion {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return nil
	}
	out := make([]model.AssemblyVersion, 0, len(info.Deps)+1)
	out = append(out, model.AssemblyVersion{Name: info.Main.Path, Version: orDevel(info.Main.Version)})
	for _, dep := range info.Deps {
		out = append(out, model.AssemblyVersion{Name: dep.Path, Version: dep.Version})
	}
	return out
}

func orDevel(v string) string {
	if v == "" {
		return "(devel)"
	}
	return v
}
