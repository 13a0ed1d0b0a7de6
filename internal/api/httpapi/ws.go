package httpapi

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// feedMessage is one event on an encounter feed. Encounter carries the
// post-mutation aggregate so clients need not re-fetch.
type feedMessage struct {
	Type      string `json:"type"`
	Payload   any    `json:"payload,omitempty"`
	Encounter any    `json:"encounter,omitempty"`
}

// Hub fans encounter events out to websocket subscribers.
type Hub struct {
	logger *log.Logger

	mu   sync.Mutex
	subs map[string]map[*websocket.Conn]bool
}

// NewHub builds an empty hub.
func NewHub(logger *log.Logger) *Hub {
	return &Hub{logger: logger, subs: map[string]map[*websocket.Conn]bool{}}
}

func (h *Hub) subscribe(encounterID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[encounterID] == nil {
		h.subs[encounterID] = map[*websocket.Conn]bool{}
	}
	h.subs[encounterID][conn] = true
}

func (h *Hub) unsubscribe(encounterID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs[encounterID], conn)
	if len(h.subs[encounterID]) == 0 {
		delete(h.subs, encounterID)
	}
}

// Broadcast sends a message to every subscriber of one encounter.
// Connections that fail to write are dropped.
func (h *Hub) Broadcast(encounterID string, msg feedMessage) {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.subs[encounterID]))
	for conn := range h.subs[encounterID] {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		if err := conn.WriteJSON(msg); err != nil {
			h.logger.Printf("feed write %s: %v", encounterID, err)
			h.unsubscribe(encounterID, conn)
			conn.Close()
		}
	}
}

// handleEncounterFeed upgrades the connection and streams encounter
// events until the client disconnects.
func (h *Handler) handleEncounterFeed(w http.ResponseWriter, r *http.Request) {
	encounterID := mux.Vars(r)["id"]
	if _, err := h.svc.GetEncounter(r.Context(), encounterID); err != nil {
		h.writeError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("feed upgrade %s: %v", encounterID, err)
		return
	}
	h.hub.subscribe(encounterID, conn)
	defer func() {
		h.hub.unsubscribe(encounterID, conn)
		conn.Close()
	}()

	// Drain control frames; the feed is write-only.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
