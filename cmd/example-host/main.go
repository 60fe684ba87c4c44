// example-host is a minimal demonstration of embedding SharpInspect in a
// host application.
//
// Startup sequence (mirrors the shape of GoSessionEngine's original
// cmd/main.go: flag parsing, a levelled logger, a background component
// started before the main loop, then block-until-signal graceful
// shutdown):
//  1. Parse flags (port, target URL to poll).
//  2. Initialize SharpInspect.
//  3. Print the DevTools URL.
//  4. Build an instrumented HTTP client via CreateHttpClient and, when
//     -target is set, use it to poll the target URL on an interval, so
//     NetworkInterceptor has real traffic to capture.
//  5. Block until SIGINT/SIGTERM, then Shutdown cleanly.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sharpinspect "github.com/sharpinspect/sharpinspect"
	"github.com/sharpinspect/sharpinspect/internal/inspectlog"
)

func main() {
	port := flag.Int("port", 9229, "Port for SharpInspect's HTTP/WebSocket server")
	target := flag.String("target", "", "URL to poll periodically through the instrumented HTTP client (optional)")
	pollInterval := flag.Duration("poll-interval", 5*time.Second, "Interval between polls of -target")
	flag.Parse()

	log := inspectlog.New(inspectlog.LevelInfo)
	log.Info("example-host starting up")

	err := sharpinspect.Initialize(func(o *sharpinspect.Options) {
		o.Port = *port
		o.EnableInDevelopmentOnly = false // demo host: always on, regardless of DOTNET_ENVIRONMENT
	})
	if err != nil {
		log.Errorf("sharpinspect.Initialize failed: %v", err)
		os.Exit(1)
	}
	log.Info("sharpinspect initialized")

	devToolsURL, err := sharpinspect.DevToolsUrl()
	if err != nil {
		log.Errorf("sharpinspect.DevToolsUrl failed: %v", err)
	} else {
		log.Infof("DevTools available at %s", devToolsURL)
	}

	client, err := sharpinspect.CreateHttpClient()
	if err != nil {
		log.Errorf("sharpinspect.CreateHttpClient failed: %v", err)
		os.Exit(1)
	}

	stopPolling := make(chan struct{})
	if *target != "" {
		go pollTarget(log, client, *target, *pollInterval, stopPolling)
		log.Infof("polling %s every %s", *target, *pollInterval)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	fmt.Println() // newline after ^C
	log.Infof("received signal %s; shutting down", sig)

	close(stopPolling)
	if err := sharpinspect.Shutdown(); err != nil {
		log.Errorf("sharpinspect.Shutdown failed: %v", err)
		os.Exit(1)
	}
	log.Info("example-host shut down cleanly")
}

func pollTarget(log *inspectlog.Logger, client *http.Client, target string, interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			resp, err := client.Get(target)
			if err != nil {
				log.Debugf("poll %s: %v", target, err)
				continue
			}
			resp.Body.Close()
			log.Debugf("poll %s: %s", target, resp.Status)
		}
	}
}
