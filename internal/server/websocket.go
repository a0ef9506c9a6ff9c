package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// wsMessage is the envelope both directions on the realtime channel.
type wsMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// wsConn pairs a websocket connection with its ephemeral participant id.
type wsConn struct {
	id      string
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *wsConn) send(payload any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(payload)
}

// wsHub tracks which connections are joined to which rooms, the server-side
// counterpart of the original channel's room membership.
type wsHub struct {
	mu    sync.Mutex
	rooms map[string]map[*wsConn]struct{}
}

func newWSHub() *wsHub {
	return &wsHub{rooms: make(map[string]map[*wsConn]struct{})}
}

func (h *wsHub) Join(roomID string, c *wsConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.rooms[roomID]
	if group == nil {
		group = make(map[*wsConn]struct{})
		h.rooms[roomID] = group
	}
	group[c] = struct{}{}
}

func (h *wsHub) LeaveAll(c *wsConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for roomID, group := range h.rooms {
		delete(group, c)
		if len(group) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

func (h *wsHub) connsFor(roomID string, except *wsConn) []*wsConn {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.rooms[roomID]
	conns := make([]*wsConn, 0, len(group))
	for c := range group {
		if c == except {
			continue
		}
		conns = append(conns, c)
	}
	return conns
}

func (h *wsHub) Broadcast(roomID string, payload any) {
	for _, c := range h.connsFor(roomID, nil) {
		if err := c.send(payload); err != nil {
			log.Printf("ws write failed room_id=%s conn_id=%s error=%v", roomID, c.id, err)
		}
	}
}

func (h *wsHub) BroadcastExcept(roomID string, except *wsConn, payload any) {
	for _, c := range h.connsFor(roomID, except) {
		if err := c.send(payload); err != nil {
			log.Printf("ws write failed room_id=%s conn_id=%s error=%v", roomID, c.id, err)
		}
	}
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &wsConn{id: newConnID(), conn: conn}
	log.Printf("ws connected conn_id=%s remote=%s", c.id, r.RemoteAddr)
	go s.readWS(c)
}

// readWS is the per-connection event loop. Each inbound event is handled
// independently; a handler failure never terminates the connection.
func (s *Server) readWS(c *wsConn) {
	defer func() {
		s.hub.LeaveAll(c)
		_ = c.conn.Close()
		s.reconcileDisconnect(context.Background(), c)
	}()
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			log.Printf("ws disconnected conn_id=%s error=%v", c.id, err)
			return
		}
		var msg inboundMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Printf("ws bad envelope conn_id=%s error=%v", c.id, err)
			continue
		}
		s.dispatch(context.Background(), c, msg)
	}
}
