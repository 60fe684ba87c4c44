package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sharpinspect/sharpinspect/internal/clock"
	"github.com/sharpinspect/sharpinspect/internal/model"
	"github.com/sharpinspect/sharpinspect/internal/store"
)

type fakeHub struct{}

func (fakeHub) ServeHTTP(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }
func (fakeHub) ClientCount() int                                  { return 3 }

func newTestServer() *Server {
	ns := store.NewNetworkStore(10)
	ns.Append(model.NetworkEntry{Id: 1, Method: "GET", Url: "https://example.com/a", StatusCode: 200})
	ns.Append(model.NetworkEntry{Id: 2, Method: "POST", Url: "https://example.com/b", StatusCode: 500, IsError: false})

	cs := store.NewConsoleStore(10)
	cs.Append(model.ConsoleEntry{Id: 1, Message: "hello", Level: model.LevelInformation})

	ps := store.NewPerformanceStore(10)
	ps.Append(model.PerformanceEntry{Id: 1})

	return New(Deps{
		NetworkStore:     ns,
		ConsoleStore:     cs,
		PerformanceStore: ps,
		Hub:              fakeHub{},
		Info:             model.ApplicationInfo{AssemblyName: "test-host"},
		Clock:            clock.NewFixed(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
	})
}

func TestHandleStatusReturnsCounts(t *testing.T) {
	s := newTestServer()
	s.startedAt = s.deps.Clock.Now()
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"networkEntryCount":2`) {
		t.Fatalf("body = %s", body)
	}
	if !strings.Contains(body, `"webSocketClients":3`) {
		t.Fatalf("body = %s", body)
	}
}

func TestHandleNetworkListFiltersByMethod(t *testing.T) {
	s := newTestServer()
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/network?method=POST", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"url":"https://example.com/b"`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestHandleNetworkGetUnknownIDReturns404(t *testing.T) {
	s := newTestServer()
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/network/999", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHandleNetworkGetBadIDReturns400(t *testing.T) {
	s := newTestServer()
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/network/not-a-number", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleNetworkHARPrefersHARRouteOverIDWildcard(t *testing.T) {
	s := newTestServer()
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/network/har", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"version":"1.2"`) {
		t.Fatalf("expected HAR body, got %s", rec.Body.String())
	}
}

func TestHandleNetworkClearEmptiesStore(t *testing.T) {
	s := newTestServer()
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/network", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if s.deps.NetworkStore.Count() != 0 {
		t.Fatalf("Count = %d, want 0 after clear", s.deps.NetworkStore.Count())
	}
}

func TestUnsupportedMethodReturns405(t *testing.T) {
	s := newTestServer()
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/status", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

func TestHandleConsoleListFiltersByMinLevel(t *testing.T) {
	s := newTestServer()
	s.deps.ConsoleStore.Append(model.ConsoleEntry{Id: 2, Message: "oops", Level: model.LevelError})
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/console?level=Error", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), `"message":"hello"`) {
		t.Fatalf("expected Information entry filtered out, got %s", rec.Body.String())
	}
}

func TestHandleConsoleListBadLevelReturns400(t *testing.T) {
	s := newTestServer()
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/console?level=bogus", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleInfoReturnsApplicationInfo(t *testing.T) {
	s := newTestServer()
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/info", nil))
	if !strings.Contains(rec.Body.String(), `"assemblyName":"test-host"`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestStartBindsLoopbackAndShutdown(t *testing.T) {
	s := newTestServer()
	if err := s.Start(0, false); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !strings.HasPrefix(s.BaseURL(), "http://127.0.0.1:") {
		t.Fatalf("BaseURL = %q", s.BaseURL())
	}
	resp, err := http.Get(s.BaseURL() + "/api/status")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if err := s.Shutdown(httptest.NewRequest(http.MethodGet, "/", nil).Context()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}
