package devmode

import (
	"testing"

	"github.com/sharpinspect/sharpinspect/internal/config"
)

func TestCheckBypassedWhenNotGated(t *testing.T) {
	opts, _ := config.New(func(o *config.Options) { o.EnableInDevelopmentOnly = false })
	if !Check(opts) {
		t.Fatalf("Check should return true when EnableInDevelopmentOnly is false")
	}
}

func TestCheckEnvironmentVariableOnlyUnset(t *testing.T) {
	t.Setenv("DOTNET_ENVIRONMENT", "")
	t.Setenv("ASPNETCORE_ENVIRONMENT", "")
	os := func(o *config.Options) {
		o.EnableInDevelopmentOnly = true
		o.DevelopmentDetectionMode = config.EnvironmentVariableOnly
	}
	opts, _ := config.New(os)
	if Check(opts) {
		t.Fatalf("Check should be false: env var unset in EnvironmentVariableOnly mode")
	}
}

func TestCheckEnvironmentVariableOnlyMatches(t *testing.T) {
	t.Setenv("DOTNET_ENVIRONMENT", "Development")
	opts, _ := config.New(func(o *config.Options) {
		o.EnableInDevelopmentOnly = true
		o.DevelopmentDetectionMode = config.EnvironmentVariableOnly
	})
	if !Check(opts) {
		t.Fatalf("Check should be true: DOTNET_ENVIRONMENT=Development")
	}
}

func TestCheckCustom(t *testing.T) {
	opts, _ := config.New(func(o *config.Options) {
		o.EnableInDevelopmentOnly = true
		o.DevelopmentDetectionMode = config.Custom
		o.CustomDevelopmentCheck = func() bool { return true }
	})
	if !Check(opts) {
		t.Fatalf("Check should defer to CustomDevelopmentCheck")
	}
}

func TestCheckCustomNilFallsBackToAuto(t *testing.T) {
	t.Setenv("DOTNET_ENVIRONMENT", "Production")
	opts, _ := config.New(func(o *config.Options) {
		o.EnableInDevelopmentOnly = true
		o.DevelopmentDetectionMode = config.Custom
		o.CustomDevelopmentCheck = nil
	})
	if Check(opts) {
		t.Fatalf("Check should be false: Auto fallback sees Production")
	}
}
