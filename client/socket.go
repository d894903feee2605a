package client

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/yeremiapane/table-sync-app/models"
	"github.com/yeremiapane/table-sync-app/realtime"
	"github.com/yeremiapane/table-sync-app/utils"
)

// Socket is the device-side websocket connection. Callbacks run on the
// Listen goroutine; they must not block.
type Socket struct {
	conn    *websocket.Conn
	writeMu sync.Mutex

	OnTrayChanged func(tray []models.TrayItem)
	OnTableStatus func(p realtime.TableStatusPayload)
}

// DialSocket connects to the hub endpoint, e.g. ws://host:8080/ws.
func DialSocket(wsURL string) (*Socket, error) {
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return nil, err
	}
	return &Socket{conn: conn}, nil
}

// JoinTable subscribes this connection to one table's room.
func (s *Socket) JoinTable(tableNumber string) error {
	return s.send(realtime.Message{Event: realtime.EventJoinTable, Data: tableNumber})
}

// SendTrayUpdate publishes the full tray to the other members of the room.
func (s *Socket) SendTrayUpdate(tableNumber string, tray []models.TrayItem) error {
	if tray == nil {
		tray = []models.TrayItem{}
	}
	return s.send(realtime.Message{
		Event: realtime.EventTrayUpdate,
		Data: map[string]interface{}{
			"tableNumber": tableNumber,
			"tray":        tray,
		},
	})
}

// Listen reads events until the connection drops and dispatches them to the
// callbacks. Missed events while disconnected are gone for good; callers
// re-fetch the session after reconnecting.
func (s *Socket) Listen() error {
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return err
		}

		var msg struct {
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(data, &msg); err != nil {
			utils.ErrorLogger.Printf("bad frame from server: %v", err)
			continue
		}

		switch msg.Event {
		case realtime.EventTrayChanged:
			if s.OnTrayChanged == nil {
				continue
			}
			var tray []models.TrayItem
			if err := json.Unmarshal(msg.Data, &tray); err != nil {
				utils.ErrorLogger.Printf("bad trey-changed payload: %v", err)
				continue
			}
			s.OnTrayChanged(tray)
		case realtime.EventTableStatus:
			if s.OnTableStatus == nil {
				continue
			}
			var p realtime.TableStatusPayload
			if err := json.Unmarshal(msg.Data, &p); err != nil {
				utils.ErrorLogger.Printf("bad table-status payload: %v", err)
				continue
			}
			s.OnTableStatus(p)
		}
	}
}

func (s *Socket) Close() error {
	return s.conn.Close()
}

func (s *Socket) send(msg realtime.Message) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return s.conn.WriteMessage(websocket.TextMessage, data)
}
