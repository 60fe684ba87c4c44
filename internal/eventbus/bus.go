// Package eventbus is SharpInspect's in-process typed publish/subscribe
// bus: the glue between the capture pipeline and its two consumers (the
// bounded stores and the WebSocket hub).
//
// Two delivery modes are offered. Publish calls every current subscriber's
// handler synchronously on the caller's goroutine — simple, ordered, but a
// slow handler stalls the publisher. PublishAsync instead hands the event
// to each subscriber's own buffered mailbox, serviced by a dedicated
// dispatch goroutine; a slow subscriber drops its oldest undelivered event
// rather than blocking the publisher, the same back-pressure shape as
// worker/pool.go's bounded job queue, inverted (here the *consumer* owns
// the buffer instead of a shared pool intake).
//
// For either mode, a single subscriber always observes its own events in
// publish order; no ordering is promised across distinct subscribers.
package eventbus

import (
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/sharpinspect/sharpinspect/internal/inspectlog"
)

// Subscription is a disposable handle returned by Subscribe. Close stops
// delivery and releases the subscriber's mailbox goroutine.
type Subscription interface {
	Close()
}

// Bus is a typed event bus keyed by the Go type of the published value.
type Bus struct {
	mu   sync.RWMutex
	subs map[reflect.Type][]*subscriber
	next uint64

	// Dropped counts events dropped across all subscribers because their
	// mailbox was full, exposed for diagnostics (spec.md §4.2 "drop-oldest
	// with a dropped-event counter").
	Dropped uint64
}

type subscriber struct {
	id      uint64
	typ     reflect.Type
	mailbox chan interface{}
	handle  func(interface{})
	done    chan struct{}
	once    sync.Once
	bus     *Bus
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{subs: make(map[reflect.Type][]*subscriber)}
}

// mailboxCapacity bounds each subscriber's undelivered-event buffer
// (spec.md §4.3: "bounded mailbox (default 1024)").
const mailboxCapacity = 1024

// Subscribe registers handler to be called for every value of type T
// published after this call returns: on the publisher's goroutine for
// Publish, and on the subscriber's own dispatch goroutine for PublishAsync.
// The returned Subscription must be Closed to stop delivery and release the
// goroutine.
func Subscribe[T any](b *Bus, handler func(T)) Subscription {
	var zero T
	typ := reflect.TypeOf(zero)

	sub := &subscriber{
		typ:     typ,
		mailbox: make(chan interface{}, mailboxCapacity),
		done:    make(chan struct{}),
		bus:     b,
		handle: func(v interface{}) {
			handler(v.(T))
		},
	}

	b.mu.Lock()
	b.next++
	sub.id = b.next
	b.subs[typ] = append(b.subs[typ], sub)
	b.mu.Unlock()

	go sub.run()

	return sub
}

func (s *subscriber) run() {
	for {
		select {
		case v := <-s.mailbox:
			s.safeInvoke(v)
		case <-s.done:
			return
		}
	}
}

// safeInvoke isolates one subscriber's handler panic from the publisher and
// from other subscribers, logging it to the bypass logger rather than the
// ConsoleHook (the same rationale as inspectlog itself: a panicking
// handler must not recurse into capture).
func (s *subscriber) safeInvoke(v interface{}) {
	defer func() {
		if r := recover(); r != nil {
			inspectlog.Default.Errorf("eventbus: subscriber panic: %v", r)
		}
	}()
	s.handle(v)
}

// Close stops delivery to this subscriber and releases its goroutine. Safe
// to call more than once.
func (s *subscriber) Close() {
	s.once.Do(func() {
		close(s.done)
		s.bus.remove(s)
	})
}

func (b *Bus) remove(target *subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.subs[target.typ]
	for i, s := range list {
		if s == target {
			b.subs[target.typ] = append(list[:i], list[i+1:]...)
			break
		}
	}
}

// Publish delivers v synchronously to every current subscriber of T, on
// the caller's goroutine, in subscriber-registration order. A panicking
// handler is recovered and logged (see safeInvoke) so it cannot abort
// delivery to the remaining subscribers or propagate to the publisher.
func Publish[T any](b *Bus, v T) {
	typ := reflect.TypeOf(v)

	b.mu.RLock()
	subs := append([]*subscriber(nil), b.subs[typ]...)
	b.mu.RUnlock()

	for _, s := range subs {
		s.safeInvoke(v)
	}
}

// PublishAsync hands v to every current subscriber of T's mailbox via a
// non-blocking send; if a subscriber's mailbox is full its oldest queued
// event is dropped to make room (drop-oldest), and Dropped is
// incremented. PublishAsync itself never blocks.
func PublishAsync[T any](b *Bus, v T) {
	typ := reflect.TypeOf(v)

	b.mu.RLock()
	subs := append([]*subscriber(nil), b.subs[typ]...)
	b.mu.RUnlock()

	for _, s := range subs {
		deliver(b, s, v)
	}
}

func deliver(b *Bus, s *subscriber, v interface{}) {
	select {
	case s.mailbox <- v:
		return
	default:
	}
	// Mailbox full: drop the oldest queued event and retry once.
	select {
	case <-s.mailbox:
		atomic.AddUint64(&b.Dropped, 1)
	default:
	}
	select {
	case s.mailbox <- v:
	default:
		// Another goroutine refilled it between our drain and retry; count
		// this event as dropped instead of blocking the publisher.
		atomic.AddUint64(&b.Dropped, 1)
	}
}

// DroppedCount returns the cumulative number of events dropped because a
// subscriber's mailbox was full.
func (b *Bus) DroppedCount() uint64 {
	return atomic.LoadUint64(&b.Dropped)
}
