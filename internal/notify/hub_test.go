package notify

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func wsServer(t *testing.T, hub *Hub, memberID int64) *websocket.Conn {
	t.Helper()

	e := echo.New()
	e.GET("/ws", func(c echo.Context) error {
		return hub.ServeWS(c, memberID)
	})
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	// Let the hub process the registration before broadcasting
	time.Sleep(50 * time.Millisecond)
	return conn
}

func TestHubDeliversToItsMember(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	conn := wsServer(t, hub, 7)

	hub.Broadcast(Event{MemberID: 7, Action: "borrow.checkout", Message: "checked out stock unit 1"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var event Event
	require.NoError(t, json.Unmarshal(payload, &event))
	require.Equal(t, int64(7), event.MemberID)
	require.Equal(t, "borrow.checkout", event.Action)
	require.False(t, event.Time.IsZero())
}

func TestHubDropsEventsForOtherMembers(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	conn := wsServer(t, hub, 7)

	hub.Broadcast(Event{MemberID: 8, Action: "borrow.checkout", Message: "not for member 7"})
	hub.Broadcast(Event{MemberID: 7, Action: "borrow.checkin", Message: "for member 7"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var event Event
	require.NoError(t, json.Unmarshal(payload, &event))
	require.Equal(t, int64(7), event.MemberID)
	require.Equal(t, "borrow.checkin", event.Action)
}
