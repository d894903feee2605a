package realtime

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/yeremiapane/table-sync-app/models"
	"github.com/yeremiapane/table-sync-app/utils"
)

// Event names on the wire. Fixed, existing clients depend on them.
const (
	EventJoinTable   = "join-table"
	EventTrayUpdate  = "trey-update"
	EventTrayChanged = "trey-changed"
	EventTableStatus = "table-status-updated"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// TableStatusPayload is broadcast to every connection (not room-scoped) so
// the admin console sees all tables. Customer fields are null when a table
// goes back to available.
type TableStatusPayload struct {
	TableNumber   string  `json:"tableNumber"`
	Status        string  `json:"status"`
	CustomerName  *string `json:"customerName"`
	CustomerPhone *string `json:"customerPhone"`
}

// Hub is the room-scoped broadcast layer. One instance per process, built in
// main and handed to whoever publishes or subscribes, never reached through
// package globals. It holds no domain state, it is a relay only.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]string // conn -> connection id
	rooms   map[string]map[*websocket.Conn]bool
	joined  map[*websocket.Conn]string // conn -> table number
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]string),
		rooms:   make(map[string]map[*websocket.Conn]bool),
		joined:  make(map[*websocket.Conn]string),
	}
}

// Register -> add a connection to the hub, returns its connection id.
func (h *Hub) Register(conn *websocket.Conn) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := uuid.NewString()
	h.clients[conn] = id
	return id
}

// Unregister -> drop the connection from its room and the hub, then close it.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(conn)
	delete(h.clients, conn)
	conn.Close()
}

// Join subscribes a connection to a table's room. Idempotent; joining a new
// table leaves the previous room first.
func (h *Hub) Join(conn *websocket.Conn, tableNumber string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.joined[conn] == tableNumber {
		return
	}
	h.leaveLocked(conn)

	room := h.rooms[tableNumber]
	if room == nil {
		room = make(map[*websocket.Conn]bool)
		h.rooms[tableNumber] = room
	}
	room[conn] = true
	h.joined[conn] = tableNumber

	utils.InfoLogger.Printf("conn %s joined table-%s", h.clients[conn], tableNumber)
}

// BroadcastTray delivers the tray to every subscriber of the table's room
// except the sender, so the author never hears its own update echoed back.
func (h *Hub) BroadcastTray(tableNumber string, sender *websocket.Conn, tray []models.TrayItem) {
	h.mu.Lock()
	defer h.mu.Unlock()

	data, err := json.Marshal(Message{Event: EventTrayChanged, Data: tray})
	if err != nil {
		utils.ErrorLogger.Printf("marshal trey-changed: %v", err)
		return
	}

	for conn := range h.rooms[tableNumber] {
		if conn == sender {
			continue
		}
		h.writeLocked(conn, data)
	}
}

// BroadcastTableStatus goes to all connections regardless of room.
func (h *Hub) BroadcastTableStatus(p TableStatusPayload) {
	h.mu.Lock()
	defer h.mu.Unlock()

	data, err := json.Marshal(Message{Event: EventTableStatus, Data: p})
	if err != nil {
		utils.ErrorLogger.Printf("marshal table-status-updated: %v", err)
		return
	}

	for conn := range h.clients {
		h.writeLocked(conn, data)
	}
}

// RoomSize reports current membership of a table's room.
func (h *Hub) RoomSize(tableNumber string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[tableNumber])
}

func (h *Hub) leaveLocked(conn *websocket.Conn) {
	table, ok := h.joined[conn]
	if !ok {
		return
	}
	delete(h.rooms[table], conn)
	if len(h.rooms[table]) == 0 {
		delete(h.rooms, table)
	}
	delete(h.joined, conn)
}

// writeLocked sends best-effort, at most once. A failed write just logs;
// the disconnected client re-fetches authoritative state on reconnect.
func (h *Hub) writeLocked(conn *websocket.Conn, data []byte) {
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		utils.ErrorLogger.Printf("send to %s failed: %v", h.clients[conn], err)
	}
}
