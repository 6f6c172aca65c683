/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"net/http"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

// Broadcaster is the transport surface the game core depends on. The
// membership accessors are the source of truth for capacity checks and
// room enumeration; the core never caches them. RoomMembers returns ids
// in lexicographic order so everything derived from membership order
// (seats, tie-breaks) is deterministic.
type Broadcaster interface {
	JoinRoom(roomID, connID string)
	LeaveRoom(roomID, connID string)
	ClearRoom(roomID string)
	RoomMembers(roomID string) []string
	RoomSize(roomID string) int
	InRoom(roomID, connID string) bool
	ToAll(msg any)
	ToRoom(roomID string, msg any)
	ToRoomExcept(roomID, skipID string, msg any)
	ToConn(connID string, msg any)
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan any
}

// Hub owns the live connections and the named broadcast groups, and
// feeds inbound events to the game dispatcher one at a time.
type Hub struct {
	mu      sync.Mutex
	clients map[string]*client
	rooms   map[string]map[string]*client

	register chan *client
	unreg    chan *client
	inbound  chan inboundEvent

	game *Game
}

func newHub() *Hub {
	return &Hub{
		clients:  make(map[string]*client),
		rooms:    make(map[string]map[string]*client),
		register: make(chan *client),
		unreg:    make(chan *client),
		inbound:  make(chan inboundEvent, 64),
	}
}

// run is the single dispatcher loop. Handlers run to completion before
// the next event is picked up; only deferred timers interleave, and
// those synchronize on the game mutex.
func (h *Hub) run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c.id] = c
			h.mu.Unlock()

			h.game.connect(c.id)

		case c := <-h.unreg:
			h.mu.Lock()
			if _, ok := h.clients[c.id]; ok {
				delete(h.clients, c.id)
				close(c.send)
			}
			for roomID, members := range h.rooms {
				delete(members, c.id)
				if len(members) == 0 {
					delete(h.rooms, roomID)
				}
			}
			h.mu.Unlock()

			h.game.disconnect(c.id)

		case ev := <-h.inbound:
			h.game.dispatch(ev)
		}
	}
}

func (h *Hub) JoinRoom(roomID, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.clients[connID]
	if !ok {
		return
	}
	members := h.rooms[roomID]
	if members == nil {
		members = make(map[string]*client)
		h.rooms[roomID] = members
	}
	members[connID] = c
}

func (h *Hub) LeaveRoom(roomID, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[roomID]
	if !ok {
		return
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(h.rooms, roomID)
	}
}

func (h *Hub) ClearRoom(roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.rooms, roomID)
}

func (h *Hub) RoomMembers(roomID string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	ids := make([]string, 0, len(h.rooms[roomID]))
	for id := range h.rooms[roomID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (h *Hub) RoomSize(roomID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.rooms[roomID])
}

func (h *Hub) InRoom(roomID, connID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	_, ok := h.rooms[roomID][connID]
	return ok
}

func (h *Hub) ToAll(msg any) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, c := range h.clients {
		h.sendLocked(c, msg)
	}
}

func (h *Hub) ToRoom(roomID string, msg any) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, c := range h.rooms[roomID] {
		h.sendLocked(c, msg)
	}
}

func (h *Hub) ToRoomExcept(roomID, skipID string, msg any) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, c := range h.rooms[roomID] {
		if id == skipID {
			continue
		}
		h.sendLocked(c, msg)
	}
}

func (h *Hub) ToConn(connID string, msg any) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c, ok := h.clients[connID]; ok {
		h.sendLocked(c, msg)
	}
}

// sendLocked delivers without blocking; a client whose buffer is full is
// dropped, and its read pump tears the connection down from there.
func (h *Hub) sendLocked(c *client, msg any) {
	select {
	case c.send <- msg:
	default:
		if _, ok := h.clients[c.id]; ok {
			delete(h.clients, c.id)
			close(c.send)
		}
		for roomID, members := range h.rooms {
			delete(members, c.id)
			if len(members) == 0 {
				delete(h.rooms, roomID)
			}
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// serveWS upgrades the connection, assigns it a fresh connection id, and
// starts the pumps.
func serveWS(cfg *Config, h *Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(cfg, "SERVE: Websocket upgrade error from %s: %v", realIP(r), err)
			return
		}

		c := &client{
			id:   uuid.NewString(),
			conn: conn,
			send: make(chan any, 8),
		}

		h.register <- c

		go c.writePump()
		c.readPump(h)
	}
}

func (c *client) readPump(h *Hub) {
	defer func() {
		h.unreg <- c
		_ = c.conn.Close()
	}()

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		kind, ok := parseEventKind(msg.Type)
		if !ok {
			continue
		}

		h.inbound <- inboundEvent{
			kind: kind,
			conn: c.id,
			msg:  msg,
		}
	}
}

func (c *client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}
