package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/yeremiapane/table-sync-app/models"
	"github.com/yeremiapane/table-sync-app/realtime"
	"github.com/yeremiapane/table-sync-app/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Sesuaikan dengan kebutuhan keamanan
	},
}

type WSController struct {
	Hub *realtime.Hub
}

func NewWSController(hub *realtime.Hub) *WSController {
	return &WSController{Hub: hub}
}

type inboundMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type trayUpdatePayload struct {
	TableNumber string            `json:"tableNumber"`
	Tray        []models.TrayItem `json:"tray"`
}

// Handle -> websocket endpoint. Each connection is registered with the hub
// and then read in a loop; join-table subscribes it to a room, trey-update
// relays the full tray to the other room members (never back to the sender).
func (wc *WSController) Handle(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	id := wc.Hub.Register(ws)
	defer wc.Hub.Unregister(ws)
	utils.InfoLogger.Printf("Client connected: %s", id)

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			break
		}

		var msg inboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			utils.ErrorLogger.Printf("bad frame from %s: %v", id, err)
			continue
		}

		switch msg.Event {
		case realtime.EventJoinTable:
			var table string
			if err := json.Unmarshal(msg.Data, &table); err != nil || table == "" {
				utils.ErrorLogger.Printf("bad join-table payload from %s", id)
				continue
			}
			wc.Hub.Join(ws, table)
		case realtime.EventTrayUpdate:
			var p trayUpdatePayload
			if err := json.Unmarshal(msg.Data, &p); err != nil || p.TableNumber == "" {
				utils.ErrorLogger.Printf("bad trey-update payload from %s", id)
				continue
			}
			wc.Hub.BroadcastTray(p.TableNumber, ws, p.Tray)
		}
	}

	utils.InfoLogger.Printf("Client disconnected: %s", id)
}
