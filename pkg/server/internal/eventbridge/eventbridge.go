// Package eventbridge is a reference implementation of the external
// event-broadcast boundary spec.md §1 calls out as "referenced only by
// interface": a minimal concrete websocket adapter so a demo deployment of
// this engine has somewhere real to send its emitted events. Production
// deployments are free to subscribe to the Mutator directly instead.
package eventbridge

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/decred/slog"
	"github.com/gorilla/websocket"

	"github.com/greenfelt/pokerengine/pkg/poker"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// message is the wire envelope sent to every connected client.
type message struct {
	TableID string          `json:"tableId"`
	Kind    poker.EventKind `json:"kind"`
	Payload interface{}     `json:"payload"`
}

// Hub fans out table events to subscribed websocket connections, grouped
// by table id.
type Hub struct {
	log slog.Logger

	mu    sync.RWMutex
	conns map[string]map[*websocket.Conn]bool // tableID -> conn set
}

// NewHub builds an empty Hub.
func NewHub(log slog.Logger) *Hub {
	return &Hub{
		log:   log,
		conns: make(map[string]map[*websocket.Conn]bool),
	}
}

// ServeTable upgrades an HTTP request to a websocket and registers the
// connection as a subscriber to tableID's events until it disconnects.
func (h *Hub) ServeTable(tableID string, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnf("eventbridge: upgrade failed for table %s: %v", tableID, err)
		return
	}

	h.mu.Lock()
	if h.conns[tableID] == nil {
		h.conns[tableID] = make(map[*websocket.Conn]bool)
	}
	h.conns[tableID][conn] = true
	h.mu.Unlock()

	// Drain and discard client frames; this adapter is broadcast-only.
	// Returning from this goroutine closes and deregisters the conn.
	go func() {
		defer h.remove(tableID, conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) remove(tableID string, conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns[tableID], conn)
	h.mu.Unlock()
	conn.Close()
}

// OnEvents handles one Mutator.Subscribe batch for tableID (the subscribing
// closure supplies tableID): it JSON-encodes each event and broadcasts it
// to every websocket currently subscribed to tableID.
func (h *Hub) OnEvents(tableID string, events []poker.Event) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.conns[tableID]))
	for c := range h.conns[tableID] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, ev := range events {
		body, err := json.Marshal(message{TableID: tableID, Kind: ev.Kind, Payload: ev.Payload})
		if err != nil {
			h.log.Errorf("eventbridge: marshal event %s for table %s: %v", ev.Kind, tableID, err)
			continue
		}
		for _, c := range conns {
			if err := c.WriteMessage(websocket.TextMessage, body); err != nil {
				h.log.Debugf("eventbridge: write to subscriber of table %s failed: %v", tableID, err)
				h.remove(tableID, c)
			}
		}
	}
}
