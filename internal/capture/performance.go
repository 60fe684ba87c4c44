package capture

import (
	"runtime"
	"sync"
	"time"

	"github.com/sharpinspect/sharpinspect/internal/clock"
	"github.com/sharpinspect/sharpinspect/internal/eventbus"
	"github.com/sharpinspect/sharpinspect/internal/model"
	"github.com/sharpinspect/sharpinspect/internal/store"
)

// PerformanceSampler periodically records process performance into the
// performance store.
//
// Grounded on scheduler/scheduler.go's stopCh+sync.Once control-loop shape
// (Start spawns a background goroutine, Stop closes a channel it selects
// on) and metrics/metrics.go's atomic-snapshot conventions, adapted from a
// per-request counter to a periodic gauge sampler.
type PerformanceSampler struct {
	Store    *store.PerformanceStore
	Bus      *eventbus.Bus
	Clock    clock.Clock
	Interval time.Duration

	stopCh chan struct{}
	once   sync.Once
	done   chan struct{}
}

// NewPerformanceSampler constructs a sampler with the given interval
// (spec.md §4.6/§6's PerformanceSampleInterval).
func NewPerformanceSampler(st *store.PerformanceStore, bus *eventbus.Bus, c clock.Clock, interval time.Duration) *PerformanceSampler {
	if c == nil {
		c = clock.System{}
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &PerformanceSampler{
		Store:    st,
		Bus:      bus,
		Clock:    c,
		Interval: interval,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins periodic sampling in the background. Start is non-blocking;
// the control goroutine runs until Stop is called.
func (ps *PerformanceSampler) Start() {
	go func() {
		defer close(ps.done)
		ticker := time.NewTicker(ps.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ps.stopCh:
				return
			case <-ticker.C:
				ps.sampleOnce()
			}
		}
	}()
}

// Stop signals the sampler to stop and waits for the control goroutine to
// exit. Idempotent.
func (ps *PerformanceSampler) Stop() {
	ps.once.Do(func() {
		close(ps.stopCh)
	})
	<-ps.done
}

func (ps *PerformanceSampler) sampleOnce() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	entry := model.PerformanceEntry{
		Timestamp:        ps.Clock.Now(),
		CpuUsagePercent:  0, // no portable stdlib CPU-percent signal; left 0 per spec.md §4.5-analogue "unexposed phases remain 0"
		TotalMemoryBytes: memStats.Sys,
		WorkingSetBytes:  memStats.HeapAlloc,
		Gen0Collections:  0,
		Gen1Collections:  0,
		Gen2Collections:  uint64(memStats.NumGC), // Go has one GC generation; reported as Gen2 (the long-lived generation in the generational-GC vocabulary this field was named for)
		ThreadCount:      runtime.NumGoroutine(),
		HandleCount:      0,
	}

	if ps.Store != nil {
		entry.Id = ps.Store.Append(entry)
	}
	if ps.Bus != nil {
		eventbus.PublishAsync(ps.Bus, model.PerformanceEntryEvent{Entry: &entry})
	}
}
