// Package livefeed pushes client, check-in and import events to the browsers
// of the coach they belong to.
package livefeed

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10

	// per connection
	sendBuffer = 16
)

type connection struct {
	ws   *websocket.Conn
	send chan Message
}

// Hub keeps the open connections per coach.
type Hub struct {
	mu       sync.RWMutex
	coaches  map[uint]map[*connection]struct{}
	incoming chan coachMessage
	upgrader websocket.Upgrader
	logger   *log.Logger
}

func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		coaches:  make(map[uint]map[*connection]struct{}),
		incoming: make(chan coachMessage, 256),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger: logger,
	}
}

// Publish queues an event for coachId. It never blocks; when the queue is full
// the event is dropped.
func (h *Hub) Publish(coachId uint, messageType, action string, data interface{}) {
	select {
	case h.incoming <- coachMessage{CoachId: coachId, Message: newMessage(messageType, action, data)}:
	default:
		h.logger.Warn("live feed queue full, dropping event", "coach", coachId, "type", messageType)
	}
}

// Run delivers queued events until ctx is done, then closes every connection.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case msg := <-h.incoming:
			h.deliver(msg)
		}
	}
}

func (h *Hub) deliver(msg coachMessage) {
	h.mu.RLock()
	var slow []*connection
	for conn := range h.coaches[msg.CoachId] {
		select {
		case conn.send <- msg.Message:
		default:
			slow = append(slow, conn)
		}
	}
	h.mu.RUnlock()

	for _, conn := range slow {
		h.logger.Warn("live feed connection too slow, closing", "coach", msg.CoachId)
		h.unregister(msg.CoachId, conn)
	}
}

func (h *Hub) register(coachId uint, conn *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.coaches[coachId]; !ok {
		h.coaches[coachId] = make(map[*connection]struct{})
	}
	h.coaches[coachId][conn] = struct{}{}
}

// unregister removes conn and closes its send queue once.
func (h *Hub) unregister(coachId uint, conn *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.coaches[coachId]
	if !ok {
		return
	}
	if _, ok := conns[conn]; !ok {
		return
	}
	delete(conns, conn)
	close(conn.send)
	if len(conns) == 0 {
		delete(h.coaches, coachId)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for coachId, conns := range h.coaches {
		for conn := range conns {
			close(conn.send)
		}
		delete(h.coaches, coachId)
	}
}

// Connections returns the number of open connections of coachId.
func (h *Hub) Connections(coachId uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.coaches[coachId])
}

// Serve upgrades the request and streams the coach's events until the
// browser goes away.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, coachId uint) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader already answered the request
		h.logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	conn := &connection{ws: ws, send: make(chan Message, sendBuffer)}
	h.register(coachId, conn)
	h.logger.Debug("live feed connected", "coach", coachId)

	go h.writePump(conn)
	h.readPump(coachId, conn)
}

func (h *Hub) readPump(coachId uint, conn *connection) {
	defer func() {
		h.unregister(coachId, conn)
		conn.ws.Close()
		h.logger.Debug("live feed disconnected", "coach", coachId)
	}()

	conn.ws.SetReadLimit(4096)
	conn.ws.SetReadDeadline(time.Now().Add(pongWait))
	conn.ws.SetPongHandler(func(string) error {
		return conn.ws.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		var msg Message
		if err := conn.ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("live feed read failed", "coach", coachId, "err", err)
			}
			return
		}
		if msg.MessageType == TypeHeartbeat {
			conn.ws.SetReadDeadline(time.Now().Add(pongWait))
		}
	}
}

func (h *Hub) writePump(conn *connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.ws.Close()
	}()

	for {
		select {
		case msg, ok := <-conn.send:
			conn.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.ws.WriteJSON(&msg); err != nil {
				h.logger.Warn("live feed write failed", "err", err)
				return
			}
		case <-ticker.C:
			conn.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
