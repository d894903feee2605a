package realtime_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"

	"github.com/yeremiapane/table-sync-app/models"
	"github.com/yeremiapane/table-sync-app/realtime"
	"github.com/yeremiapane/table-sync-app/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	m.Run()
}

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// newHubServer upgrades every request, registers the connection with the hub
// and hands the server-side conn to the test over a channel.
func newHubServer(t *testing.T, hub *realtime.Hub) (*httptest.Server, chan *websocket.Conn) {
	t.Helper()
	serverConns := make(chan *websocket.Conn, 32)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Register(conn)
		serverConns <- conn
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		hub.Unregister(conn)
	}))
	t.Cleanup(srv.Close)
	return srv, serverConns
}

func dialHub(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	assert.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	assert.NoError(t, err)
	var f frame
	assert.NoError(t, json.Unmarshal(data, &f))
	return f
}

func assertSilent(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err, "expected no message on this connection")
}

func TestBroadcastTrayExcludesSender(t *testing.T) {
	hub := realtime.NewHub()
	srv, serverConns := newHubServer(t, hub)

	clientA := dialHub(t, srv)
	serverA := <-serverConns
	clientB := dialHub(t, srv)
	serverB := <-serverConns
	clientC := dialHub(t, srv)
	serverC := <-serverConns

	hub.Join(serverA, "7")
	hub.Join(serverB, "7")
	hub.Join(serverC, "9")

	trayItems := []models.TrayItem{{ItemName: "Burger", Price: 250, Quantity: 1}}
	hub.BroadcastTray("7", serverA, trayItems)

	f := readFrame(t, clientB)
	assert.Equal(t, realtime.EventTrayChanged, f.Event)
	var got []models.TrayItem
	assert.NoError(t, json.Unmarshal(f.Data, &got))
	assert.Equal(t, trayItems, got)

	// The author never hears its own update, other rooms hear nothing.
	assertSilent(t, clientA)
	assertSilent(t, clientC)
}

func TestJoinIsIdempotent(t *testing.T) {
	hub := realtime.NewHub()
	srv, serverConns := newHubServer(t, hub)

	dialHub(t, srv)
	serverA := <-serverConns

	hub.Join(serverA, "7")
	hub.Join(serverA, "7")
	assert.Equal(t, 1, hub.RoomSize("7"))

	// Joining another table leaves the old room.
	hub.Join(serverA, "9")
	assert.Equal(t, 0, hub.RoomSize("7"))
	assert.Equal(t, 1, hub.RoomSize("9"))
}

func TestTableStatusReachesEveryConnection(t *testing.T) {
	hub := realtime.NewHub()
	srv, serverConns := newHubServer(t, hub)

	clientA := dialHub(t, srv)
	serverA := <-serverConns
	clientB := dialHub(t, srv)
	<-serverConns

	// A watches table 7, B joined nothing. The admin console case.
	hub.Join(serverA, "7")

	name, phone := "Alice", "01712345678"
	hub.BroadcastTableStatus(realtime.TableStatusPayload{
		TableNumber:   "7",
		Status:        models.TableOccupied,
		CustomerName:  &name,
		CustomerPhone: &phone,
	})

	for _, conn := range []*websocket.Conn{clientA, clientB} {
		f := readFrame(t, conn)
		assert.Equal(t, realtime.EventTableStatus, f.Event)
		var p realtime.TableStatusPayload
		assert.NoError(t, json.Unmarshal(f.Data, &p))
		assert.Equal(t, "7", p.TableNumber)
		assert.Equal(t, models.TableOccupied, p.Status)
		assert.Equal(t, "Alice", *p.CustomerName)
	}
}

func TestDisconnectLeavesRoom(t *testing.T) {
	hub := realtime.NewHub()
	srv, serverConns := newHubServer(t, hub)

	clientA := dialHub(t, srv)
	serverA := <-serverConns
	hub.Join(serverA, "7")
	assert.Equal(t, 1, hub.RoomSize("7"))

	clientA.Close()
	assert.Eventually(t, func() bool { return hub.RoomSize("7") == 0 },
		2*time.Second, 10*time.Millisecond)
}

// Membership is mutated concurrently by joins, leaves and broadcasts from
// many connections; none of it may corrupt the maps or deadlock.
func TestConcurrentJoinLeaveBroadcast(t *testing.T) {
	hub := realtime.NewHub()
	srv, serverConns := newHubServer(t, hub)

	const clients = 16
	conns := make([]*websocket.Conn, 0, clients)
	for i := 0; i < clients; i++ {
		dialHub(t, srv)
		conns = append(conns, <-serverConns)
	}

	var wg sync.WaitGroup
	for i, conn := range conns {
		wg.Add(1)
		go func(i int, conn *websocket.Conn) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				if j%2 == 0 {
					hub.Join(conn, "7")
				} else {
					hub.Join(conn, "9")
				}
			}
		}(i, conn)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 50; j++ {
			hub.BroadcastTray("7", nil, []models.TrayItem{{ItemName: "Burger", Price: 250, Quantity: j + 1}})
			hub.BroadcastTableStatus(realtime.TableStatusPayload{TableNumber: "7", Status: models.TableOccupied})
		}
	}()
	wg.Wait()

	for _, conn := range conns {
		hub.Unregister(conn)
	}
	assert.Equal(t, 0, hub.RoomSize("7"))
	assert.Equal(t, 0, hub.RoomSize("9"))
}
