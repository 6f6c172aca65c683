/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
)

// Game owns every registry: connected users, gamerooms, and in-room
// players. All three are guarded by a single mutex; the hub delivers
// inbound events one at a time, and deferred timers (fruit placement,
// power-up reset) re-acquire the mutex and re-check entity existence
// before mutating, so a timer firing after a leave or disconnect is a
// harmless no-op.
//
// Room membership is never cached here. Capacity checks and "who is in
// this room" always re-derive it from the transport collaborator.
type Game struct {
	cfg *Config
	net Broadcaster

	mu         sync.Mutex
	users      map[string]*User
	gamerooms  map[string]*Gameroom
	players    map[string]*Player
	nextRoomID int
}

func newGame(cfg *Config, net Broadcaster) *Game {
	return &Game{
		cfg:        cfg,
		net:        net,
		users:      make(map[string]*User),
		gamerooms:  make(map[string]*Gameroom),
		players:    make(map[string]*Player),
		nextRoomID: 1,
	}
}

// dispatch routes one inbound event to its handler. The mutex is held for
// the whole handler body, matching the single-dispatcher model: handlers
// never interleave with each other or with timer callbacks.
func (g *Game) dispatch(ev inboundEvent) {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch ev.kind {
	case evJoinLobby:
		g.joinLobby(ev.conn)
	case evChatMessage:
		g.relayChat(ev.msg.Message, ev.msg.Username)
	case evJoinGameroom:
		g.joinGameroom(ev.msg.GameroomID, ev.conn)
	case evLeaveGameroom:
		g.leaveGameroom(ev.msg.GameroomID, ev.conn)
	case evGameStart:
		g.startGame(ev.msg.GameroomID)
	case evInitialPositions:
		g.assignInitialPositions(ev.msg.GameroomID, ev.conn)
	case evPlayerMovement:
		g.movePlayer(ev.msg.GameroomID, ev.msg.PlayerID, ev.conn, ev.msg.Position)
	case evPlayerDefeat:
		g.reportDefeat(ev.msg.GameroomID, ev.msg.WinnerID, ev.msg.DefeatedID, ev.conn)
	case evFruitTimer:
		g.scheduleFruit(ev.msg.GameroomID, ev.msg.Duration)
	case evResetFruit:
		g.resetFruit(ev.msg.GameroomID)
	case evGotCherry:
		g.grantPower(ev.msg.GameroomID, ev.msg.PlayerID, ev.conn)
	case evWinRound:
		g.reportWin(ev.msg.WinnerID, ev.conn)
	case evUpdateRoundCount:
		g.advanceRound(ev.msg.GameroomID, ev.conn)
	}
}

// connect registers presence for a fresh connection and announces it.
func (g *Game) connect(connID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	user := g.registerUser(connID)
	logf(g.cfg, "LOBBY: User %q has connected.", user.Name)

	g.net.ToConn(connID, UserDataMessage{Type: "current user data", User: user})
	g.net.ToAll(UserConnectedMessage{Type: "user connected", Name: user.Name})
	g.net.ToAll(UserListMessage{Type: "update user list", Users: g.userList()})
}

// disconnect runs the same cleanup as an explicit leave, then removes
// presence. Cleanup of a half-torn-down connection must never take the
// process down, so it is recover-wrapped and logged instead.
func (g *Game) disconnect(connID string) {
	defer func() {
		if r := recover(); r != nil {
			logf(g.cfg, "LOBBY: Error during disconnect cleanup for %s: %v", connID, r)
		}
	}()

	g.mu.Lock()
	defer g.mu.Unlock()

	if player, ok := g.players[connID]; ok {
		g.leaveGameroom(player.GameroomID, connID)
	}

	user, ok := g.removeUser(connID)
	if !ok {
		return
	}
	logf(g.cfg, "LOBBY: User %q has disconnected.", user.Name)

	g.net.ToAll(UserDisconnectedMessage{Type: "user disconnected", Name: user.Name})
	g.net.ToAll(UserListMessage{Type: "update user list", Users: g.userList()})
}

// randRange returns a random integer in [min, max] inclusive.
func randRange(min, max int) int {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return min
	}
	span := uint64(max - min + 1)
	return min + int(binary.BigEndian.Uint64(buf[:])%span)
}
