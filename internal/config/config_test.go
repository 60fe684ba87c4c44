package config

import "testing"

func TestNewAppliesDefaults(t *testing.T) {
	opts, err := New(nil)
	if err != nil {
		t.Fatalf("New(nil) error: %v", err)
	}
	if opts.Port != 9229 {
		t.Fatalf("Port = %d, want 9229", opts.Port)
	}
	if opts.MaxNetworkEntries != 1000 {
		t.Fatalf("MaxNetworkEntries = %d, want 1000", opts.MaxNetworkEntries)
	}
	if !opts.EnableInDevelopmentOnly {
		t.Fatalf("EnableInDevelopmentOnly should default true")
	}
}

func TestNewAppliesMutator(t *testing.T) {
	opts, err := New(func(o *Options) {
		o.Port = 0
		o.MaxNetworkEntries = 3
	})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if opts.Port != 0 {
		t.Fatalf("Port = %d, want 0", opts.Port)
	}
	if opts.MaxNetworkEntries != 3 {
		t.Fatalf("MaxNetworkEntries = %d, want 3", opts.MaxNetworkEntries)
	}
}

func TestNewRejectsNegativeBounds(t *testing.T) {
	_, err := New(func(o *Options) { o.MaxBodyBytes = -1 })
	if err == nil {
		t.Fatalf("expected error for negative MaxBodyBytes")
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(func(o *Options) { o.MinLogLevel = 99 })
	if err == nil {
		t.Fatalf("expected error for unrecognized MinLogLevel")
	}
}
