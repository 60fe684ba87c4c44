// Package capture holds SharpInspect's three capture sources: the HTTP
// NetworkInterceptor (this file), the ConsoleHook (console.go), and the
// PerformanceSampler (performance.go).
package capture

import (
	"bytes"
	"compress/gzip"
	"crypto/tls"
	"io"
	"net/http"
	"net/http/httptrace"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/google/uuid"

	"github.com/sharpinspect/sharpinspect/internal/clock"
	"github.com/sharpinspect/sharpinspect/internal/eventbus"
	"github.com/sharpinspect/sharpinspect/internal/model"
	"github.com/sharpinspect/sharpinspect/internal/store"
)

const truncatedSentinel = "…[truncated]"

// NetworkInterceptor wraps an underlying http.RoundTripper, recording every
// request/response pair it sees without altering what the caller observes
// (spec.md §4.5's "interception is observational only" invariant).
//
// Grounded on client/h2_transport.go's chrome120RoundTripper: clone the
// request, decorate, delegate to the wrapped transport. Body-capture
// capping is grounded on dashboard/server.go's maxProxyUploadSize +
// http.MaxBytesReader-style bounded read.
type NetworkInterceptor struct {
	Transport    http.RoundTripper
	Store        *store.NetworkStore
	Bus          *eventbus.Bus
	MaxBodyBytes int64
	Clock        clock.Clock
}

// NewNetworkInterceptor returns an interceptor delegating to next (or
// http.DefaultTransport if next is nil).
func NewNetworkInterceptor(next http.RoundTripper, st *store.NetworkStore, bus *eventbus.Bus, maxBodyBytes int64, c clock.Clock) *NetworkInterceptor {
	if next == nil {
		next = http.DefaultTransport
	}
	if c == nil {
		c = clock.System{}
	}
	return &NetworkInterceptor{Transport: next, Store: st, Bus: bus, MaxBodyBytes: maxBodyBytes, Clock: c}
}

// RoundTrip implements http.RoundTripper.
func (ni *NetworkInterceptor) RoundTrip(req *http.Request) (*http.Response, error) {
	requestID := uuid.New()
	entry := &model.NetworkEntry{
		RequestId:   requestID,
		Method:      req.Method,
		Url:         req.URL.String(),
		QueryString: safeQueryString(req.URL),
		Timestamp:   ni.Clock.Now(),
	}

	reqHeaders := model.NewHeaderSet()
	for name, vals := range req.Header {
		for _, v := range vals {
			reqHeaders.Add(name, v)
		}
	}
	entry.RequestHeaders = reqHeaders.Map()
	entry.RequestContentType = req.Header.Get("Content-Type")

	r := req.Clone(req.Context())
	if req.Body != nil {
		captured, restored, contentLen, err := teeAndCap(req.Body, ni.MaxBodyBytes)
		if err == nil {
			r.Body = restored
			entry.RequestContentLength = contentLen
			body := decodeForDisplay(captured, req.Header.Get("Content-Encoding"))
			if contentLen > int64(len(captured)) {
				body += truncatedSentinel
			}
			entry.RequestBody = &body
		}
	}

	phases := &phaseTimer{}
	ctx := httptrace.WithClientTrace(req.Context(), phases.clientTrace())
	r = r.WithContext(ctx)

	start := ni.Clock.Monotonic()
	resp, err := ni.Transport.RoundTrip(r)
	total := ni.Clock.Monotonic().Sub(start)

	entry.DnsLookupMs = phases.dnsLookup.Seconds() * 1000
	entry.TcpConnectMs = phases.tcpConnect.Seconds() * 1000
	entry.TlsHandshakeMs = phases.tlsHandshake.Seconds() * 1000
	entry.RequestSentMs = phases.requestSent.Seconds() * 1000
	entry.WaitingMs = phases.waiting.Seconds() * 1000
	entry.TotalMs = total.Seconds() * 1000

	if err != nil {
		msg := err.Error()
		entry.IsError = true
		entry.ErrorMessage = &msg
		entry.StatusCode = 0
		entry.IsComplete = true
		ni.publish(entry)
		return resp, err
	}

	entry.StatusCode = resp.StatusCode
	entry.StatusText = http.StatusText(resp.StatusCode)
	entry.Protocol = resp.Proto
	entry.ResponseProtocol = resp.Proto

	respHeaders := model.NewHeaderSet()
	for name, vals := range resp.Header {
		for _, v := range vals {
			respHeaders.Add(name, v)
		}
	}
	entry.ResponseHeaders = respHeaders.Map()
	entry.ResponseContentType = resp.Header.Get("Content-Type")
	if cl := resp.Header.Get("Content-Length"); cl != "" {
		if n, perr := strconv.ParseInt(cl, 10, 64); perr == nil {
			entry.ResponseContentLength = n
		}
	}

	downloadStart := ni.Clock.Monotonic()
	resp.Body = &teeReadCloser{
		inner:     resp.Body,
		limit:     ni.MaxBodyBytes,
		onClose: func(captured []byte, truncated bool) {
			entry.ContentDownloadMs = ni.Clock.Monotonic().Sub(downloadStart).Seconds() * 1000
			entry.TotalMs = ni.Clock.Monotonic().Sub(start).Seconds() * 1000
			body := decodeForDisplay(captured, resp.Header.Get("Content-Encoding"))
			if truncated {
				body += truncatedSentinel
			}
			entry.ResponseBody = &body
			if entry.ResponseContentLength == 0 {
				entry.ResponseContentLength = int64(len(captured))
			}
			entry.IsComplete = true
			ni.publish(entry)
		},
	}

	return resp, nil
}

// publish appends the (now-sealed) entry to the store and broadcasts it.
// Published asynchronously: network capture must never make the caller's
// response-body read slower than it would otherwise be.
func (ni *NetworkInterceptor) publish(entry *model.NetworkEntry) {
	if ni.Store != nil {
		entry.Id = ni.Store.Append(*entry)
	}
	if ni.Bus != nil {
		eventbus.PublishAsync(ni.Bus, model.NetworkEntryEvent{Entry: entry})
	}
}

func safeQueryString(u *url.URL) string {
	if u == nil {
		return ""
	}
	return u.RawQuery
}

// teeAndCap reads up to limit bytes of body for capture while returning a
// fresh io.ReadCloser with the full original content, so the caller (or the
// underlying transport) still sees the complete, unmodified body.
func teeAndCap(body io.ReadCloser, limit int64) (captured []byte, restored io.ReadCloser, total int64, err error) {
	defer body.Close()
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, nil, 0, err
	}
	total = int64(len(data))
	capped := data
	if int64(len(capped)) > limit {
		capped = capped[:limit]
	}
	return capped, io.NopCloser(bytes.NewReader(data)), total, nil
}

// teeReadCloser forwards every Read to the caller unchanged while buffering
// up to limit bytes for capture; onClose fires exactly once, when a Read
// reaches end of body or on Close, whichever comes first, with the captured
// bytes and whether the capture was truncated.
type teeReadCloser struct {
	inner     io.ReadCloser
	limit     int64
	buf       bytes.Buffer
	truncated bool
	onClose   func(captured []byte, truncated bool)
	closed    bool
}

func (t *teeReadCloser) Read(p []byte) (int, error) {
	n, err := t.inner.Read(p)
	if n > 0 {
		room := t.limit - int64(t.buf.Len())
		if room > 0 {
			take := int64(n)
			if take > room {
				take = room
				t.truncated = true
			}
			t.buf.Write(p[:take])
		} else if t.limit >= 0 {
			t.truncated = true
		}
	}
	if err == io.EOF {
		t.finish()
	}
	return n, err
}

func (t *teeReadCloser) Close() error {
	err := t.inner.Close()
	t.finish()
	return err
}

func (t *teeReadCloser) finish() {
	if t.closed {
		return
	}
	t.closed = true
	if t.onClose != nil {
		t.onClose(t.buf.Bytes(), t.truncated)
	}
}

// decodeForDisplay best-effort decompresses captured body bytes for storage
// so the DevTools UI shows readable text rather than a compressed blob; the
// bytes actually forwarded to the caller are never touched by this (see
// teeReadCloser, which tees raw bytes only).
func decodeForDisplay(captured []byte, contentEncoding string) string {
	switch strings.ToLower(strings.TrimSpace(contentEncoding)) {
	case "br":
		r := brotli.NewReader(bytes.NewReader(captured))
		if out, err := io.ReadAll(r); err == nil {
			return string(out)
		}
	case "gzip":
		if r, err := gzip.NewReader(bytes.NewReader(captured)); err == nil {
			defer r.Close()
			if out, err := io.ReadAll(r); err == nil {
				return string(out)
			}
		}
	}
	return string(captured)
}

// phaseTimer accumulates httptrace callback timings into the durations
// NetworkEntry stores. Phases the transport never reports (e.g. pooled
// keep-alive connections skip DNS/connect/TLS) remain zero, per spec.md
// §4.5 ("Unexposed phases remain 0").
type phaseTimer struct {
	dnsStart, connectStart, tlsStart, wroteRequest, gotFirstByte time.Time

	dnsLookup    time.Duration
	tcpConnect   time.Duration
	tlsHandshake time.Duration
	requestSent  time.Duration
	waiting      time.Duration
}

func (p *phaseTimer) clientTrace() *httptrace.ClientTrace {
	return &httptrace.ClientTrace{
		DNSStart: func(httptrace.DNSStartInfo) { p.dnsStart = time.Now() },
		DNSDone: func(httptrace.DNSDoneInfo) {
			if !p.dnsStart.IsZero() {
				p.dnsLookup = time.Since(p.dnsStart)
			}
		},
		ConnectStart: func(string, string) { p.connectStart = time.Now() },
		ConnectDone: func(network, addr string, err error) {
			if !p.connectStart.IsZero() && err == nil {
				p.tcpConnect = time.Since(p.connectStart)
			}
		},
		TLSHandshakeStart: func() { p.tlsStart = time.Now() },
		TLSHandshakeDone: func(tls.ConnectionState, error) {
			if !p.tlsStart.IsZero() {
				p.tlsHandshake = time.Since(p.tlsStart)
			}
		},
		WroteRequest: func(info httptrace.WroteRequestInfo) {
			p.wroteRequest = time.Now()
			if info.Err == nil && !p.connectStart.IsZero() {
				p.requestSent = p.wroteRequest.Sub(p.connectStart)
			}
		},
		GotFirstResponseByte: func() {
			p.gotFirstByte = time.Now()
			if !p.wroteRequest.IsZero() {
				p.waiting = p.gotFirstByte.Sub(p.wroteRequest)
			}
		},
	}
}
