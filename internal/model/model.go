// Package model holds the SharpInspect data model: the entry types captured
// by the pipeline and the events published when they are appended.
//
// These types carry no encoding/json struct tags. internal/jsonenc derives
// wire field names from the Go field names themselves (see its doc comment),
// matching the source encoder's reflection-based approach.
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Level is a console log severity, ordered from least to most severe.
type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInformation
	LevelWarning
	LevelError
	LevelCritical
)

// String renders the level the way it is serialised on the wire.
func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "Trace"
	case LevelDebug:
		return "Debug"
	case LevelInformation:
		return "Information"
	case LevelWarning:
		return "Warning"
	case LevelError:
		return "Error"
	case LevelCritical:
		return "Critical"
	default:
		return "Information"
	}
}

// ParseLevel recognises the names produced by String, case-insensitively.
func ParseLevel(s string) (Level, bool) {
	switch strings.ToLower(s) {
	case "trace":
		return LevelTrace, true
	case "debug":
		return LevelDebug, true
	case "information", "info":
		return LevelInformation, true
	case "warning", "warn":
		return LevelWarning, true
	case "error":
		return LevelError, true
	case "critical":
		return LevelCritical, true
	default:
		return 0, false
	}
}

// NameValue is one name/value pair. The entry types in this package do not
// use it: their headers are stored as map[string]string (see HeaderSet.Map).
type NameValue struct {
	Name  string
	Value string
}

// HeaderSet preserves first-seen header-name casing while remaining
// case-insensitive on lookup, per spec: "names preserved in first-seen
// case; lookup is case-insensitive". http.Header canonicalizes keys and
// would lose that, so capture uses this instead.
type HeaderSet struct {
	order []string          // first-seen original-case names
	index map[string]int    // lower(name) -> position in order
	vals  map[string]string // lower(name) -> comma-joined value
}

// NewHeaderSet returns an empty HeaderSet.
func NewHeaderSet() *HeaderSet {
	return &HeaderSet{index: make(map[string]int), vals: make(map[string]string)}
}

// Add appends value to name, joining with ", " if name was already set,
// preserving the casing of the first Add call for a given name.
func (h *HeaderSet) Add(name, value string) {
	key := lower(name)
	if i, ok := h.index[key]; ok {
		existing := h.vals[key]
		if existing == "" {
			h.vals[key] = value
		} else {
			h.vals[key] = existing + ", " + value
		}
		_ = i
		return
	}
	h.index[key] = len(h.order)
	h.order = append(h.order, name)
	h.vals[key] = value
}

// Get returns the comma-joined value for name (case-insensitive), or "".
func (h *HeaderSet) Get(name string) string {
	return h.vals[lower(name)]
}

// Len returns the number of distinct header names.
func (h *HeaderSet) Len() int { return len(h.order) }

// Each calls fn once per header in first-seen order.
func (h *HeaderSet) Each(fn func(name, value string)) {
	for _, name := range h.order {
		fn(name, h.vals[lower(name)])
	}
}

// Map returns a name->value map in first-seen-case form, suitable for
// attaching to a NetworkEntry.
func (h *HeaderSet) Map() map[string]string {
	out := make(map[string]string, len(h.order))
	h.Each(func(name, value string) { out[name] = value })
	return out
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// NetworkEntry is one captured HTTP transaction. It is created when a
// request is first observed and mutated in place (same RequestId) as
// phases complete; IsComplete is set true on response-finished or terminal
// error, after which it must not be mutated further.
//
// Field names use a single leading capital per word (Id, Url, Dns, Tcp,
// Tls) rather than Go's conventional all-caps acronym style (ID, URL,
// DNS...): internal/jsonenc derives wire keys by lowering only the first
// rune of the field name (spec.md §4.8: "first character lowered, rest
// preserved"), so an all-caps acronym would serialize as "uRL" instead of
// "url". Every field here is also part of the documented REST wire
// contract (spec.md §6's paging examples show literal "url" keys), so the
// naming has to survive the encoder's literal rule, exactly as
// internal/har's types already do.
type NetworkEntry struct {
	Id        uint64
	RequestId uuid.UUID

	Method               string
	Url                  string
	QueryString          string
	Protocol             string
	RequestHeaders       map[string]string
	RequestContentType   string
	RequestContentLength int64
	RequestBody          *string

	StatusCode            int
	StatusText            string
	ResponseHeaders       map[string]string
	ResponseContentType   string
	ResponseContentLength int64
	ResponseBody          *string
	ResponseProtocol      string

	Timestamp         time.Time
	DnsLookupMs       float64
	TcpConnectMs      float64
	TlsHandshakeMs    float64
	RequestSentMs     float64
	WaitingMs         float64
	ContentDownloadMs float64
	TotalMs           float64

	IsError      bool
	ErrorMessage *string
	IsComplete   bool
}

// ConsoleEntry is one captured output line.
type ConsoleEntry struct {
	Id        uint64
	Timestamp time.Time
	Message   string
	Level     Level
	Category  string
	Source    string // optional, "" if unknown
}

// PerformanceEntry is one performance sample.
type PerformanceEntry struct {
	Id               uint64
	Timestamp        time.Time
	CpuUsagePercent  float64
	TotalMemoryBytes uint64
	WorkingSetBytes  uint64
	Gen0Collections  uint64
	Gen1Collections  uint64
	Gen2Collections  uint64
	ThreadCount      int
	HandleCount      int
}

// AssemblyVersion names one loaded module and its resolved version.
type AssemblyVersion struct {
	Name    string
	Version string
}

// ApplicationInfo is the process-wide singleton produced once at startup.
type ApplicationInfo struct {
	AssemblyName         string
	RuntimeVersion       string
	ProcessId            int
	ProcessorCount       int
	EnvironmentVariables map[string]string
	LoadedAssemblies     []AssemblyVersion
}

// NetworkEntryEvent is published once per NetworkEntry, when the entry is
// sealed (response-finished or terminal error) and appended to the store.
type NetworkEntryEvent struct{ Entry *NetworkEntry }

// ConsoleEntryEvent is published once per appended ConsoleEntry.
type ConsoleEntryEvent struct{ Entry *ConsoleEntry }

// PerformanceEntryEvent is published once per appended PerformanceEntry.
type PerformanceEntryEvent struct{ Entry *PerformanceEntry }
