// Package httpapi is SharpInspect's REST surface: paged queries over the
// three stores, HAR export, status, and the static web-UI bundle, plus the
// WebSocket upgrade route.
//
// Grounded on dashboard/server.go's shape from the teacher repo (a Server
// struct wrapping an *http.ServeMux built once in a registerRoutes method,
// an explicit *http.Server with generous timeouts in ListenAndServe/Start)
// adapted from the teacher's SSE/metrics endpoints to spec.md §4.10's REST
// table. Routing uses the standard library's method-and-wildcard
// http.ServeMux patterns (Go 1.22+) rather than a hand-rolled router: its
// longest-match-wins rule already gives the "path-prefix-first-match, more
// specific wins" semantics spec.md §4.10 asks for (e.g. "GET
// /api/network/har" beats "GET /api/network/{id}"), and unmatched methods
// on a registered path already answer 405 without extra code.
package httpapi

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/sharpinspect/sharpinspect/internal/clock"
	"github.com/sharpinspect/sharpinspect/internal/model"
	"github.com/sharpinspect/sharpinspect/internal/store"
	"github.com/sharpinspect/sharpinspect/internal/webui"
	"github.com/sharpinspect/sharpinspect/internal/wshub"
)

const version = "1.0.0"

// Hub is the subset of *wshub.Hub the API layer depends on.
type Hub interface {
	http.Handler
	ClientCount() int
}

// Deps are the components Server wires into its routes.
type Deps struct {
	NetworkStore     *store.NetworkStore
	ConsoleStore     *store.ConsoleStore
	PerformanceStore *store.PerformanceStore
	Hub              Hub
	Info             model.ApplicationInfo
	Clock            clock.Clock
}

// Server is SharpInspect's HTTP server: binds loopback-only by default
// (spec.md §4.10), serves the REST table, the WebSocket upgrade, and the
// embedded web UI.
type Server struct {
	deps      Deps
	mux       *http.ServeMux
	srv       *http.Server
	startedAt time.Time
	baseURL   string
}

// New builds a Server bound to the given dependencies; call Start to bind
// and begin serving.
func New(deps Deps) *Server {
	s := &Server{deps: deps, mux: http.NewServeMux()}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /api/status", s.handleStatus)

	s.mux.HandleFunc("GET /api/network", s.handleNetworkList)
	s.mux.HandleFunc("DELETE /api/network", s.handleNetworkClear)
	s.mux.HandleFunc("GET /api/network/har", s.handleNetworkHAR)
	s.mux.HandleFunc("GET /api/network/{id}", s.handleNetworkGet)

	s.mux.HandleFunc("GET /api/console", s.handleConsoleList)
	s.mux.HandleFunc("DELETE /api/console", s.handleConsoleClear)

	s.mux.HandleFunc("GET /api/performance", s.handlePerformanceList)

	s.mux.HandleFunc("GET /api/info", s.handleInfo)

	s.mux.Handle("GET /ws", s.deps.Hub)

	s.mux.Handle("GET /", webui.FileServer())
}

// Start binds addr (loopback by default; 0.0.0.0 only when bindAll is
// true, per spec.md §4.10) and begins serving in a background goroutine.
// It returns once the listener is bound, so BaseUrl is valid on return; a
// bind failure is reported as a *PortInUseError.
func (s *Server) Start(port int, bindAll bool) error {
	host := "127.0.0.1"
	if bindAll {
		host = "0.0.0.0"
	}
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return &PortInUseError{Addr: addr, Err: err}
	}

	s.startedAt = s.deps.Clock.Now()
	s.baseURL = "http://" + ln.Addr().String()
	s.srv = &http.Server{
		Handler:      s.mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // HAR export and WS upgrades must not be cut short
		IdleTimeout:  120 * time.Second,
	}

	go s.srv.Serve(ln) //nolint:errcheck

	return nil
}

// BaseURL is http://127.0.0.1:{port} (or the 0.0.0.0-bound equivalent),
// valid once Start has returned successfully.
func (s *Server) BaseURL() string { return s.baseURL }

// Shutdown stops accepting new connections and waits (bounded by ctx) for
// in-flight requests to finish.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// PortInUseError reports a Start failure to bind addr.
type PortInUseError struct {
	Addr string
	Err  error
}

func (e *PortInUseError) Error() string { return "httpapi: bind " + e.Addr + ": " + e.Err.Error() }
func (e *PortInUseError) Unwrap() error { return e.Err }
