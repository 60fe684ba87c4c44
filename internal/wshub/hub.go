// Package wshub is SharpInspect's WebSocket broadcaster: it bridges the
// EventBus to any number of connected DevTools UI clients.
//
// Grounded on other_examples' ClawDaemon internal/ws-hub.go (client{conn,
// send chan}, register/unregister channels, a dedicated writePump per
// client serializing writes to one gorilla/websocket.Conn, a readPump that
// discards incoming frames except close/ping) — the shape spec.md §4.9
// itself describes almost verbatim. Adapted to source its broadcasts from
// internal/eventbus instead of direct Broadcast(msg) calls, and to encode
// with internal/jsonenc instead of encoding/json (spec.md §4.8's
// no-external-JSON-library requirement covers every JSON emission point
// in the module, not just the HTTP API).
package wshub

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sharpinspect/sharpinspect/internal/eventbus"
	"github.com/sharpinspect/sharpinspect/internal/jsonenc"
	"github.com/sharpinspect/sharpinspect/internal/model"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	closeGrace     = time.Second
	clientSendSize = 64
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// envelope is the {type, data} wire shape spec.md §4.9 requires for every
// broadcast frame.
type envelope struct {
	Type string
	Data interface{}
}

// client state machine: Connecting -> Open -> Closing -> Closed; any error
// transitions directly to Closed and removes the client (spec.md §4.9).
type clientState int

const (
	stateConnecting clientState = iota
	stateOpen
	stateClosing
	stateClosed
)

type client struct {
	conn  *websocket.Conn
	send  chan []byte
	mu    sync.Mutex
	state clientState
}

func (c *client) setState(s clientState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Hub manages every connected DevTools UI client and fans EventBus events
// out to them as JSON frames.
type Hub struct {
	bus *eventbus.Bus

	mu      sync.RWMutex
	clients map[*client]struct{}

	subs []eventbus.Subscription

	registerOnce sync.Once
	closed       bool
}

// NewHub constructs a Hub bound to bus. Start must be called once to
// begin forwarding events.
func NewHub(bus *eventbus.Bus) *Hub {
	return &Hub{bus: bus, clients: make(map[*client]struct{})}
}

// Start subscribes the hub to the three entry-event types. Safe to call
// only once; subsequent calls are no-ops.
func (h *Hub) Start() {
	h.registerOnce.Do(func() {
		h.subs = append(h.subs,
			eventbus.Subscribe(h.bus, func(e model.NetworkEntryEvent) {
				h.broadcast(envelope{Type: "network:entry", Data: e.Entry})
			}),
			eventbus.Subscribe(h.bus, func(e model.ConsoleEntryEvent) {
				h.broadcast(envelope{Type: "console:entry", Data: e.Entry})
			}),
			eventbus.Subscribe(h.bus, func(e model.PerformanceEntryEvent) {
				h.broadcast(envelope{Type: "performance:entry", Data: e.Entry})
			}),
		)
	})
}

// ServeHTTP completes the WebSocket handshake, registers the client,
// sends the welcome frame, and starts its write/read pumps.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	c := &client{conn: conn, send: make(chan []byte, clientSendSize), state: stateConnecting}
	h.addClient(c)
	c.setState(stateOpen)

	welcome := jsonenc.Marshal(envelope{
		Type: "connected",
		Data: map[string]string{"message": "Welcome to SharpInspect"},
	})
	select {
	case c.send <- welcome:
	default:
	}

	go h.writePump(c)
	go h.readPump(c)
}

func (h *Hub) addClient(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		c.conn.Close()
		return
	}
	h.clients[c] = struct{}{}
}

func (h *Hub) removeClient(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
	}
	h.mu.Unlock()
	if ok {
		c.setState(stateClosed)
		close(c.send)
	}
}

// broadcast serializes msg once and schedules an independent, non-blocking
// send to every current client; a client whose send buffer is full is not
// blocked on — its frame is simply dropped rather than stalling the other
// clients (spec.md §4.9: "one slow or stuck client must not delay others").
func (h *Hub) broadcast(msg envelope) {
	data := jsonenc.Marshal(msg)

	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		select {
		case c.send <- data:
		default:
		}
	}
}

// writePump is the only goroutine that ever calls conn.WriteMessage for
// this client, which is what actually serializes its writes; gorilla's
// Conn forbids concurrent writers, so funneling every write through one
// goroutine's channel read achieves the same guarantee as an explicit
// per-client send mutex (spec.md §4.9) without needing one. CloseAll's
// close frame goes through WriteControl, which gorilla allows alongside
// another writer.
func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{}) //nolint:errcheck
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.removeClient(c)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.removeClient(c)
				return
			}
		}
	}
}

// readPump discards every incoming frame except close (spec.md §4.9); its
// only purpose is to notice the peer going away and keep the read
// deadline alive via pong handling.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.removeClient(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// ClientCount returns the number of currently connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// CloseAll disposes the hub's EventBus subscriptions first, so no new
// broadcast can be scheduled once disposal begins, then sends a close
// frame to every client with a 1-second grace period before dropping it
// (spec.md §4.9).
func (h *Hub) CloseAll() {
	for _, s := range h.subs {
		s.Close()
	}

	h.mu.Lock()
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	var wg sync.WaitGroup
	for _, c := range clients {
		c.setState(stateClosing)
		wg.Add(1)
		go func(c *client) {
			defer wg.Done()
			// WriteControl may run concurrently with writePump's writes.
			c.conn.WriteControl(websocket.CloseMessage, //nolint:errcheck
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(closeGrace))
			time.Sleep(closeGrace)
			h.removeClient(c)
		}(c)
	}
	wg.Wait()
}
