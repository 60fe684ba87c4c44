// Package store wraps internal/ring.Ring with the typed append/page/clear
// API each of SharpInspect's three buffers exposes, plus the filter DSL
// used by the network and console query endpoints (spec.md §4.2, §6).
package store

import (
	"strconv"
	"strings"

	"github.com/sharpinspect/sharpinspect/internal/model"
	"github.com/sharpinspect/sharpinspect/internal/ring"
)

// Page is the paged-read envelope returned by every store's Page method.
// total is the live entry count at read time, independent of how many
// items the filter matched (spec.md §4.2: "total is the live count").
type Page[T any] struct {
	Items  []T
	Offset int
	Limit  int
	Total  int
}

// NetworkFilter selects which NetworkEntry values a page should include.
// A zero-value field means "no constraint on this dimension".
type NetworkFilter struct {
	URLContains string // case-insensitive substring match
	Method      string // case-insensitive equality
	StatusClass string // "2xx" | "4xx" | "5xx" | "error"
}

func (f NetworkFilter) matches(e model.NetworkEntry) bool {
	if f.URLContains != "" && !strings.Contains(strings.ToLower(e.Url), strings.ToLower(f.URLContains)) {
		return false
	}
	if f.Method != "" && !strings.EqualFold(f.Method, e.Method) {
		return false
	}
	if f.StatusClass != "" && !statusClassMatches(f.StatusClass, e) {
		return false
	}
	return true
}

func statusClassMatches(class string, e model.NetworkEntry) bool {
	switch strings.ToLower(class) {
	case "error":
		return e.IsError
	case "2xx":
		return e.StatusCode >= 200 && e.StatusCode < 300
	case "4xx":
		return e.StatusCode >= 400 && e.StatusCode < 500
	case "5xx":
		return e.StatusCode >= 500 && e.StatusCode < 600
	default:
		return true
	}
}

// ConsoleFilter selects which ConsoleEntry values a page should include.
type ConsoleFilter struct {
	MinLevel model.Level
	HasLevel bool // MinLevel is only applied when HasLevel is true
	Category string
	Search   string // case-insensitive substring match on Message
}

func (f ConsoleFilter) matches(e model.ConsoleEntry) bool {
	if f.HasLevel && e.Level < f.MinLevel {
		return false
	}
	if f.Category != "" && !strings.EqualFold(f.Category, e.Category) {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(e.Message), strings.ToLower(f.Search)) {
		return false
	}
	return true
}

// NetworkStore is the bounded buffer of captured HTTP transactions.
type NetworkStore struct {
	ring *ring.Ring[model.NetworkEntry]
}

func NewNetworkStore(capacity int) *NetworkStore {
	return &NetworkStore{ring: ring.New[model.NetworkEntry](capacity)}
}

func (s *NetworkStore) Append(e model.NetworkEntry) uint64 { return s.ring.Append(e) }
func (s *NetworkStore) Clear()                              { s.ring.Clear() }
func (s *NetworkStore) Count() int                          { return s.ring.Count() }
func (s *NetworkStore) FirstID() uint64                     { return s.ring.FirstID() }
func (s *NetworkStore) LastID() uint64                      { return s.ring.LastID() }
func (s *NetworkStore) Snapshot() []model.NetworkEntry       { return s.ring.Snapshot() }
func (s *NetworkStore) Get(id uint64) (model.NetworkEntry, bool) { return s.ring.Get(id) }

func (s *NetworkStore) Page(offset, limit int, filter NetworkFilter) Page[model.NetworkEntry] {
	items, total := s.ring.Page(offset, limit, filter.matches)
	return Page[model.NetworkEntry]{Items: items, Offset: offset, Limit: limit, Total: total}
}

// ConsoleStore is the bounded buffer of captured console/log output.
type ConsoleStore struct {
	ring *ring.Ring[model.ConsoleEntry]
}

func NewConsoleStore(capacity int) *ConsoleStore {
	return &ConsoleStore{ring: ring.New[model.ConsoleEntry](capacity)}
}

func (s *ConsoleStore) Append(e model.ConsoleEntry) uint64 { return s.ring.Append(e) }
func (s *ConsoleStore) Clear()                              { s.ring.Clear() }
func (s *ConsoleStore) Count() int                          { return s.ring.Count() }
func (s *ConsoleStore) FirstID() uint64                     { return s.ring.FirstID() }
func (s *ConsoleStore) LastID() uint64                      { return s.ring.LastID() }
func (s *ConsoleStore) Snapshot() []model.ConsoleEntry       { return s.ring.Snapshot() }
func (s *ConsoleStore) Get(id uint64) (model.ConsoleEntry, bool) { return s.ring.Get(id) }

func (s *ConsoleStore) Page(offset, limit int, filter ConsoleFilter) Page[model.ConsoleEntry] {
	items, total := s.ring.Page(offset, limit, filter.matches)
	return Page[model.ConsoleEntry]{Items: items, Offset: offset, Limit: limit, Total: total}
}

// PerformanceStore is the bounded buffer of periodic performance samples.
type PerformanceStore struct {
	ring *ring.Ring[model.PerformanceEntry]
}

func NewPerformanceStore(capacity int) *PerformanceStore {
	return &PerformanceStore{ring: ring.New[model.PerformanceEntry](capacity)}
}

func (s *PerformanceStore) Append(e model.PerformanceEntry) uint64 { return s.ring.Append(e) }
func (s *PerformanceStore) Clear()                                  { s.ring.Clear() }
func (s *PerformanceStore) Count() int                              { return s.ring.Count() }
func (s *PerformanceStore) FirstID() uint64                         { return s.ring.FirstID() }
func (s *PerformanceStore) LastID() uint64                          { return s.ring.LastID() }
func (s *PerformanceStore) Snapshot() []model.PerformanceEntry       { return s.ring.Snapshot() }
func (s *PerformanceStore) Get(id uint64) (model.PerformanceEntry, bool) { return s.ring.Get(id) }

func (s *PerformanceStore) Page(offset, limit int) Page[model.PerformanceEntry] {
	items, total := s.ring.Page(offset, limit, func(model.PerformanceEntry) bool { return true })
	return Page[model.PerformanceEntry]{Items: items, Offset: offset, Limit: limit, Total: total}
}

// ParseStatusClass validates a status-class token from a query string,
// returning "" (no constraint) if s is empty.
func ParseStatusClass(s string) (string, bool) {
	switch strings.ToLower(s) {
	case "":
		return "", true
	case "2xx", "4xx", "5xx", "error":
		return strings.ToLower(s), true
	default:
		return "", false
	}
}

// ParseOffsetLimit applies the REST layer's defaults and caps: offset
// defaults to 0, limit defaults to 100, and a limit above 1000 is lowered
// to 1000. A non-integer or negative offset or limit is an error.
func ParseOffsetLimit(offsetStr, limitStr string) (offset, limit int, err error) {
	offset = 0
	limit = 100
	if offsetStr != "" {
		offset, err = strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			return 0, 0, errInvalidOffset
		}
	}
	if limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit < 0 {
			return 0, 0, errInvalidLimit
		}
	}
	if limit > 1000 {
		limit = 1000
	}
	return offset, limit, nil
}
