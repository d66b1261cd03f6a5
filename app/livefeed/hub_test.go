package livefeed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		coachId, err := strconv.ParseUint(r.URL.Query().Get("coach"), 10, 64)
		if err != nil {
			http.Error(w, "bad coach", http.StatusBadRequest)
			return
		}
		hub.Serve(w, r, uint(coachId))
	}))
	t.Cleanup(srv.Close)
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, coachId int) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?coach=" + strconv.Itoa(coachId)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitConnections(t *testing.T, hub *Hub, coachId uint, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.Connections(coachId) == n }, 2*time.Second, 10*time.Millisecond)
}

func TestHubDeliversToOwningCoachOnly(t *testing.T) {
	hub, srv := startHub(t)
	alice := dial(t, srv, 1)
	aliceTab := dial(t, srv, 1)
	bob := dial(t, srv, 2)
	waitConnections(t, hub, 1, 2)
	waitConnections(t, hub, 2, 1)

	hub.Publish(1, TypeCheckIn, ActionAdd, map[string]string{"note": "week 3"})

	for _, conn := range []*websocket.Conn{alice, aliceTab} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		msg := struct {
			MessageType string            `json:"message_type"`
			Action      string            `json:"action"`
			Data        map[string]string `json:"data"`
		}{}
		require.NoError(t, conn.ReadJSON(&msg))
		assert.Equal(t, TypeCheckIn, msg.MessageType)
		assert.Equal(t, ActionAdd, msg.Action)
		assert.Equal(t, "week 3", msg.Data["note"])
	}

	bob.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err := bob.ReadMessage()
	assert.Error(t, err)
}

func TestHubForgetsClosedConnections(t *testing.T) {
	hub, srv := startHub(t)
	conn := dial(t, srv, 7)
	waitConnections(t, hub, 7, 1)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	waitConnections(t, hub, 7, 0)

	// publishing to a coach without connections is a no-op
	hub.Publish(7, TypeClient, ActionDelete, nil)
}

func TestPublishNeverBlocks(t *testing.T) {
	hub := NewHub(nil)
	done := make(chan struct{})
	go func() {
		for i := 0; i < cap(hub.incoming)+10; i++ {
			hub.Publish(1, TypeImport, ActionAdd, i)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked without a running hub")
	}
}

func TestTickets(t *testing.T) {
	tickets := NewTickets()
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	tickets.now = func() time.Time { return now }

	key := tickets.Issue(4)
	coachId, ok := tickets.Redeem(key)
	assert.True(t, ok)
	assert.Equal(t, uint(4), coachId)

	_, ok = tickets.Redeem(key)
	assert.False(t, ok, "tickets are single use")

	key = tickets.Issue(4)
	now = now.Add(TicketTTL)
	_, ok = tickets.Redeem(key)
	assert.False(t, ok, "expired ticket")

	_, ok = tickets.Redeem("unknown")
	assert.False(t, ok)
}
