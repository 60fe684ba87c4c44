// Package har builds a HAR (HTTP Archive) 1.2 object graph from captured
// NetworkEntry values, as a pure transform with no pack-example precedent
// to ground against (see DESIGN.md): this file is built directly from
// spec.md §4.7's transform rules.
package har

import (
	"net/url"
	"strings"

	"github.com/sharpinspect/sharpinspect/internal/model"
)

const timeFormat = "2006-01-02T15:04:05.000Z"

// Field names here avoid consecutive capitals (Url, not URL; Http, not
// HTTP) on purpose: internal/jsonenc derives each wire key by lowering
// only the first rune of the Go field name, so "URLVersion" would encode
// as "uRLVersion" instead of the intended "urlVersion". Matching
// model.NetworkEntry's own convention of carrying no encoding/json tags.

// NameValue is a HAR {name, value} pair.
type NameValue struct {
	Name  string
	Value string
}

type PostData struct {
	MimeType string
	Text     string
}

type Content struct {
	Size     int64
	MimeType string
	Text     string
}

type Request struct {
	Method      string
	Url         string
	HttpVersion string
	Cookies     []NameValue
	Headers     []NameValue
	QueryString []NameValue
	PostData    *PostData
	HeadersSize int
	BodySize    int64
}

type Response struct {
	Status      int
	StatusText  string
	HttpVersion string
	Cookies     []NameValue
	Headers     []NameValue
	Content     Content
	RedirectUrl string
	HeadersSize int
	BodySize    int64
}

type Timings struct {
	Blocked float64
	Dns     float64
	Connect float64
	Ssl     float64
	Send    float64
	Wait    float64
	Receive float64
}

type Entry struct {
	StartedDateTime string
	Time            int64
	Request         Request
	Response        Response
	Cache           struct{}
	Timings         Timings
	Comment         string
}

type Creator struct {
	Name    string
	Version string
}

type Log struct {
	Version string
	Creator Creator
	Entries []Entry
}

type Root struct {
	Log Log
}

// Export converts captured entries (oldest-first, as returned by a
// store's Snapshot) into a HAR 1.2 document.
func Export(entries []model.NetworkEntry) Root {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, exportEntry(e))
	}
	return Root{
		Log: Log{
			Version: "1.2",
			Creator: Creator{Name: "SharpInspect", Version: "1.0.0"},
			Entries: out,
		},
	}
}

func exportEntry(e model.NetworkEntry) Entry {
	entry := Entry{
		StartedDateTime: e.Timestamp.UTC().Format(timeFormat),
		Time:            int64(e.TotalMs),
		Request: Request{
			Method:      e.Method,
			Url:         e.Url,
			HttpVersion: orDefault(e.Protocol, "HTTP/1.1"),
			Cookies:     parseCookiePairs(e.RequestHeaders["Cookie"]),
			Headers:     headerPairs(e.RequestHeaders),
			QueryString: parseQueryString(e.QueryString),
			HeadersSize: -1,
			BodySize:    bodySizeOf(e.RequestContentLength),
		},
		Response: Response{
			Status:      e.StatusCode,
			StatusText:  e.StatusText,
			HttpVersion: orDefault(e.ResponseProtocol, "HTTP/1.1"),
			Cookies:     parseSetCookie(e.ResponseHeaders["Set-Cookie"]),
			Headers:     headerPairs(e.ResponseHeaders),
			Content: Content{
				Size:     e.ResponseContentLength,
				MimeType: e.ResponseContentType,
				Text:     derefOr(e.ResponseBody, ""),
			},
			HeadersSize: -1,
			BodySize:    bodySizeOf(e.ResponseContentLength),
		},
		Timings: Timings{
			Blocked: -1,
			Dns:     knownOr(e.DnsLookupMs),
			Connect: knownOr(e.TcpConnectMs),
			Ssl:     knownOr(e.TlsHandshakeMs),
			Send:    knownOr(e.RequestSentMs),
			Wait:    knownOr(e.WaitingMs),
			Receive: knownOr(e.ContentDownloadMs),
		},
	}

	if e.RequestBody != nil && *e.RequestBody != "" {
		entry.Request.PostData = &PostData{
			MimeType: e.RequestContentType,
			Text:     *e.RequestBody,
		}
	}

	if e.IsError && e.ErrorMessage != nil {
		entry.Comment = *e.ErrorMessage
	}

	return entry
}

// bodySizeOf reports contentLength when known positive, else -1 (HAR's
// "unknown" sentinel) per spec.md §4.7.
func bodySizeOf(contentLength int64) int64 {
	if contentLength > 0 {
		return contentLength
	}
	return -1
}

// knownOr maps a captured-but-possibly-zero phase duration to HAR's
// known/unknown convention: httptrace only fires a phase's callbacks when
// that phase actually occurs (e.g. pooled connections skip DNS/connect/
// TLS), so an exact-zero duration here means the phase was not observed,
// not that it completed instantaneously.
func knownOr(ms float64) float64 {
	if ms > 0 {
		return ms
	}
	return -1
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func derefOr(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}

// headerPairs renders a header map as name/value pairs. model.NetworkEntry
// stores headers as map[string]string (internal/model.HeaderSet.Map), so
// first-seen insertion order is already lost by the time an entry reaches
// here; pairs are instead emitted sorted by name for deterministic output
// (documented limitation, see DESIGN.md).
func headerPairs(headers map[string]string) []NameValue {
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sortStrings(names)
	out := make([]NameValue, 0, len(names))
	for _, name := range names {
		out = append(out, NameValue{Name: name, Value: headers[name]})
	}
	return out
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// parseQueryString splits a raw query string into decoded name/value
// pairs: split on '&', each item split on the first '=', both sides
// URL-decoded treating '+' as space (query-component decoding).
func parseQueryString(raw string) []NameValue {
	if raw == "" {
		return []NameValue{}
	}
	parts := strings.Split(raw, "&")
	out := make([]NameValue, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		name, value := splitFirst(part, '=')
		out = append(out, NameValue{Name: queryUnescape(name), Value: queryUnescape(value)})
	}
	return out
}

func queryUnescape(s string) string {
	if v, err := url.QueryUnescape(s); err == nil {
		return v
	}
	return s
}

// parseCookiePairs parses a Cookie request header: split on ';', trim
// each, split on the first '='.
func parseCookiePairs(header string) []NameValue {
	if header == "" {
		return []NameValue{}
	}
	parts := strings.Split(header, ";")
	out := make([]NameValue, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value := splitFirst(part, '=')
		out = append(out, NameValue{Name: strings.TrimSpace(name), Value: strings.TrimSpace(value)})
	}
	return out
}

// parseSetCookie parses a single Set-Cookie response header into one
// name/value pair: the name is the text before the first '=', the value the
// text after it up to the first ';'. Attributes after that ';' (Expires,
// Path, Domain, ...) are discarded, not parsed.
func parseSetCookie(header string) []NameValue {
	if header == "" {
		return []NameValue{}
	}
	name, rest := splitFirst(header, '=')
	value, _ := splitFirst(rest, ';')
	return []NameValue{{Name: strings.TrimSpace(name), Value: strings.TrimSpace(value)}}
}

func splitFirst(s string, sep byte) (before, after string) {
	idx := strings.IndexByte(s, sep)
	if idx == -1 {
		return s, ""
	}
	return s[:idx], s[idx+1:]
}
