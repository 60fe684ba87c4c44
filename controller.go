// Package sharpinspect is the public façade over SharpInspect's internal
// telemetry pipeline: capture hooks -> event bus -> bounded stores ->
// WebSocket broadcaster -> REST/HAR query layer, all reachable only
// through Initialize, Shutdown, DevToolsUrl, CreateHttpClient, and
// OpenDevTools (spec.md §6's "Configuration API (in-process)"). Nothing
// under internal/ is part of the module's API contract.
package sharpinspect

import (
	"context"
	"fmt"
	"net/http"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"github.com/sharpinspect/sharpinspect/internal/appinfo"
	"github.com/sharpinspect/sharpinspect/internal/capture"
	"github.com/sharpinspect/sharpinspect/internal/clock"
	"github.com/sharpinspect/sharpinspect/internal/config"
	"github.com/sharpinspect/sharpinspect/internal/devmode"
	"github.com/sharpinspect/sharpinspect/internal/eventbus"
	"github.com/sharpinspect/sharpinspect/internal/httpapi"
	"github.com/sharpinspect/sharpinspect/internal/inspectlog"
	"github.com/sharpinspect/sharpinspect/internal/store"
	"github.com/sharpinspect/sharpinspect/internal/wshub"
)

// controller holds every long-lived component Initialize wires together.
// It is the only mutable global state in the module (spec.md §5: "No
// global mutable state escapes the singleton container produced by
// Initialize").
type controller struct {
	opts *config.Options

	networkStore     *store.NetworkStore
	consoleStore     *store.ConsoleStore
	performanceStore *store.PerformanceStore

	bus *eventbus.Bus
	hub *wshub.Hub

	interceptor *capture.NetworkInterceptor
	consoleHook *capture.ConsoleHook
	sampler     *capture.PerformanceSampler

	server *httpapi.Server
	clock  clock.Clock
	active bool // false when dev-mode gate disabled the pipeline entirely
}

var (
	singletonMu sync.Mutex
	singleton   *controller
)

// Initialize builds Options from mutate (nil uses defaults), then wires
// and starts the capture pipeline and HTTP/WebSocket server. A second call
// without an intervening Shutdown fails with ErrAlreadyInitialized
// (spec.md §5).
func Initialize(mutate Mutator) error {
	singletonMu.Lock()
	defer singletonMu.Unlock()

	if singleton != nil {
		return ErrAlreadyInitialized
	}

	opts, err := config.New(mutate)
	if err != nil {
		return newError(KindInvalidConfig, "sharpinspect: invalid options", err)
	}

	c := &controller{opts: opts, clock: clock.System{}}

	if !devmode.Check(opts) {
		// Dev-mode gate declined to activate the pipeline: Initialize still
		// succeeds (per spec.md §4.11 this is a policy decision, not an
		// error) but every component stays nil and Shutdown is a no-op.
		singleton = c
		return nil
	}

	c.networkStore = store.NewNetworkStore(opts.MaxNetworkEntries)
	c.consoleStore = store.NewConsoleStore(opts.MaxConsoleEntries)
	c.performanceStore = store.NewPerformanceStore(opts.MaxPerformanceEntries)
	c.bus = eventbus.New()
	c.hub = wshub.NewHub(c.bus)
	c.hub.Start()

	if opts.EnableNetworkCapture {
		c.interceptor = capture.NewNetworkInterceptor(http.DefaultTransport, c.networkStore, c.bus, opts.MaxBodyBytes, c.clock)
	}
	if opts.EnableConsoleCapture {
		c.consoleHook = capture.NewConsoleHook(c.consoleStore, c.bus, c.clock)
		if err := c.consoleHook.Install(); err != nil {
			return newError(KindInvalidConfig, "sharpinspect: install console hook", err)
		}
	}
	if opts.EnablePerformanceCapture {
		c.sampler = capture.NewPerformanceSampler(c.performanceStore, c.bus, c.clock, opts.PerformanceSampleInterval)
		c.sampler.Start()
	}

	c.server = httpapi.New(httpapi.Deps{
		NetworkStore:     c.networkStore,
		ConsoleStore:     c.consoleStore,
		PerformanceStore: c.performanceStore,
		Hub:              c.hub,
		Info:             appinfo.Gather(),
		Clock:            c.clock,
	})
	if err := c.server.Start(opts.Port, opts.BindAllInterfaces); err != nil {
		return newError(KindPortInUse, "sharpinspect: start HTTP server", err)
	}

	c.active = true
	singleton = c
	return nil
}

// Shutdown tears the pipeline down in this order: stop accepting new HTTP
// connections, then the hub's CloseAll (which disposes its EventBus
// subscriptions first and then closes WebSocket clients with a 1 s grace),
// stop the sampler, uninstall the console hook, then clear the stores. Safe
// to call from any goroutine; idempotent.
func Shutdown() error {
	singletonMu.Lock()
	c := singleton
	singleton = nil
	singletonMu.Unlock()

	if c == nil || !c.active {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.server.Shutdown(ctx); err != nil {
		inspectlog.Default.Errorf("sharpinspect: HTTP server shutdown: %v", err)
	}

	c.hub.CloseAll()

	if c.sampler != nil {
		c.sampler.Stop()
	}
	if c.consoleHook != nil {
		c.consoleHook.Uninstall()
	}

	c.networkStore.Clear()
	c.consoleStore.Clear()
	c.performanceStore.Clear()

	return nil
}

// DevToolsUrl returns the base URL the embedded HTTP server is listening
// on (http://127.0.0.1:{port} by default), or ErrNotInitialized if
// Initialize has not (successfully) run, or the dev-mode gate declined to
// start the server.
func DevToolsUrl() (string, error) {
	singletonMu.Lock()
	c := singleton
	singletonMu.Unlock()

	if c == nil || !c.active {
		return "", ErrNotInitialized
	}
	return c.server.BaseURL(), nil
}

// CreateHttpClient returns an *http.Client pre-wired with the
// NetworkInterceptor, so every request the host application issues
// through it is captured exactly like requests the interceptor wraps
// directly. If network capture is disabled or the pipeline is inactive,
// it returns a plain *http.Client with the standard transport.
func CreateHttpClient() (*http.Client, error) {
	singletonMu.Lock()
	c := singleton
	singletonMu.Unlock()

	if c == nil {
		return nil, ErrNotInitialized
	}
	if c.interceptor == nil {
		return &http.Client{}, nil
	}
	return &http.Client{Transport: c.interceptor}, nil
}

// OpenDevTools is a best-effort helper that opens DevToolsUrl in the
// host's default browser. Failures (headless environment, no configured
// browser) are returned but are not fatal to the caller's own lifecycle.
func OpenDevTools() error {
	url, err := DevToolsUrl()
	if err != nil {
		return err
	}
	return openBrowser(url)
}

// openBrowser shells out to the platform's "open a URL" command. There is
// no cross-platform stdlib facility for this and no library in the
// example pack addresses it either, so this is a deliberate,
// narrowly-scoped stdlib (os/exec) implementation.
func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("sharpinspect: open browser: %w", err)
	}
	return nil
}
