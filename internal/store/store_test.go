package store

import (
	"testing"
	"time"

	"github.com/sharpinspect/sharpinspect/internal/model"
)

func networkEntry(method, url string, status int, isError bool) model.NetworkEntry {
	return model.NetworkEntry{
		Method:     method,
		Url:        url,
		StatusCode: status,
		IsError:    isError,
		Timestamp:  time.Now(),
	}
}

func TestNetworkFilterStatusClass(t *testing.T) {
	s := NewNetworkStore(10)
	s.Append(networkEntry("GET", "https://a.test/one", 200, false))
	s.Append(networkEntry("GET", "https://a.test/two", 404, false))
	s.Append(networkEntry("GET", "https://a.test/three", 500, false))
	s.Append(networkEntry("GET", "https://a.test/four", 0, true))

	p := s.Page(0, 100, NetworkFilter{StatusClass: "4xx"})
	if len(p.Items) != 1 || p.Items[0].StatusCode != 404 {
		t.Fatalf("4xx filter: got %+v", p.Items)
	}
	if p.Total != 4 {
		t.Fatalf("Total = %d, want 4 (live count regardless of filter)", p.Total)
	}

	p = s.Page(0, 100, NetworkFilter{StatusClass: "error"})
	if len(p.Items) != 1 || !p.Items[0].IsError {
		t.Fatalf("error filter: got %+v", p.Items)
	}
}

func TestNetworkFilterURLAndMethod(t *testing.T) {
	s := NewNetworkStore(10)
	s.Append(networkEntry("GET", "https://api.example.com/users", 200, false))
	s.Append(networkEntry("POST", "https://api.example.com/users", 201, false))
	s.Append(networkEntry("GET", "https://api.example.com/orders", 200, false))

	p := s.Page(0, 100, NetworkFilter{URLContains: "USERS", Method: "get"})
	if len(p.Items) != 1 || p.Items[0].Method != "GET" {
		t.Fatalf("got %+v", p.Items)
	}
}

func TestConsoleFilterLevelMinimum(t *testing.T) {
	s := NewConsoleStore(10)
	s.Append(model.ConsoleEntry{Message: "info", Level: model.LevelInformation, Category: "stdout"})
	s.Append(model.ConsoleEntry{Message: "warn", Level: model.LevelWarning, Category: "stdout"})
	s.Append(model.ConsoleEntry{Message: "err", Level: model.LevelError, Category: "stderr"})
	s.Append(model.ConsoleEntry{Message: "debug", Level: model.LevelDebug, Category: "stdout"})

	p := s.Page(0, 100, ConsoleFilter{MinLevel: model.LevelWarning, HasLevel: true})
	if len(p.Items) != 2 {
		t.Fatalf("expected exactly Warning and Error entries, got %+v", p.Items)
	}
}

func TestConsoleFilterSearchAndCategory(t *testing.T) {
	s := NewConsoleStore(10)
	s.Append(model.ConsoleEntry{Message: "connection refused", Category: "stderr"})
	s.Append(model.ConsoleEntry{Message: "request completed", Category: "stdout"})

	p := s.Page(0, 100, ConsoleFilter{Search: "REFUSED"})
	if len(p.Items) != 1 {
		t.Fatalf("got %+v", p.Items)
	}

	p = s.Page(0, 100, ConsoleFilter{Category: "stdout"})
	if len(p.Items) != 1 || p.Items[0].Message != "request completed" {
		t.Fatalf("got %+v", p.Items)
	}
}

func TestParseOffsetLimitDefaultsAndCap(t *testing.T) {
	offset, limit, err := ParseOffsetLimit("", "")
	if err != nil || offset != 0 || limit != 100 {
		t.Fatalf("defaults: offset=%d limit=%d err=%v", offset, limit, err)
	}

	_, limit, err = ParseOffsetLimit("", "5000")
	if err != nil || limit != 1000 {
		t.Fatalf("limit should clamp to 1000, got %d err=%v", limit, err)
	}

	_, _, err = ParseOffsetLimit("-1", "")
	if err == nil {
		t.Fatalf("expected error for negative offset")
	}
}

func TestParseStatusClass(t *testing.T) {
	if v, ok := ParseStatusClass(""); !ok || v != "" {
		t.Fatalf("empty status class should be valid no-op, got %q ok=%v", v, ok)
	}
	if v, ok := ParseStatusClass("4XX"); !ok || v != "4xx" {
		t.Fatalf("got %q ok=%v", v, ok)
	}
	if _, ok := ParseStatusClass("bogus"); ok {
		t.Fatalf("bogus status class should be rejected")
	}
}

func TestPerformanceStorePage(t *testing.T) {
	s := NewPerformanceStore(5)
	for i := 0; i < 3; i++ {
		s.Append(model.PerformanceEntry{CpuUsagePercent: float64(i)})
	}
	p := s.Page(0, 10)
	if len(p.Items) != 3 || p.Total != 3 {
		t.Fatalf("got %+v", p)
	}
}
