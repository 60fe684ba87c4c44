package appinfo

import "testing"

func TestGatherPopulatesProcessFields(t *testing.T) {
	info := Gather()
	if info.ProcessId <= 0 {
		t.Fatalf("ProcessId = %d, want > 0", info.ProcessId)
	}
	if info.ProcessorCount <= 0 {
		t.Fatalf("ProcessorCount = %d, want > 0", info.ProcessorCount)
	}
	if info.RuntimeVersion == "" {
		t.Fatalf("RuntimeVersion is empty")
	}
	if info.AssemblyName == "" {
		t.Fatalf("AssemblyName is empty")
	}
	if len(info.EnvironmentVariables) == 0 {
		t.Fatalf("EnvironmentVariables is empty")
	}
}

func TestGatherIncludesMainModule(t *testing.T) {
	info := Gather()
	if len(info.LoadedAssemblies) == 0 {
		t.Fatalf("LoadedAssemblies is empty")
	}
}
