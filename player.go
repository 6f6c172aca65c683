/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"time"
)

// Player is the in-room superset of User, created lazily the first time
// a connection joins a room. Position stays nil until seat assignment.
type Player struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Color       string    `json:"color"`
	Position    *Position `json:"position"`
	Orientation string    `json:"orientation,omitempty"`
	Score       int       `json:"score"`
	GainedPower bool      `json:"gainedPower"`
	GameroomID  string    `json:"gameroom"`
	Seat        int       `json:"seat,omitempty"`
}

// paletteColors is the fixed assignment order. No two players in one room
// ever share a color, so the palette size bounds effective room capacity.
var paletteColors = []string{"yellow", "red", "cyan", "pink", "orange"}

var (
	errRoomNotFound     = errors.New("The game room does not exist")
	errRoomFull         = errors.New("The game room is full.")
	errPaletteExhausted = errors.New("No player colors are left to assign.")
)

// Fixed start poses: seat one bottom-left facing right, seat two
// top-right facing left.
var startSeats = []struct {
	position    Position
	orientation string
}{
	{Position{X: 100, Y: 300}, "right"},
	{Position{X: 500, Y: 100}, "left"},
}

// joinGameroom admits a connection into a room, assigning a color on
// first join. Errors are acked directly to the requesting connection;
// success is broadcast to the room and the global player count updated.
// Caller holds g.mu.
func (g *Game) joinGameroom(roomID, connID string) {
	room, ok := g.gamerooms[roomID]
	if !ok {
		g.net.ToConn(connID, JoinErrorMessage{Type: "join error", Message: errRoomNotFound.Error()})
		return
	}

	// Capacity check against live membership, tolerating rejoins.
	members := g.net.RoomMembers(roomID)
	if !g.net.InRoom(roomID, connID) && len(members) >= room.MaxPlayerCount {
		g.net.ToConn(connID, JoinErrorMessage{Type: "join error", Message: errRoomFull.Error()})
		return
	}

	user, hasUser := g.users[connID]
	if hasUser {
		if _, joined := g.players[connID]; !joined {
			color, ok := g.unusedColor(members)
			if !ok {
				g.net.ToConn(connID, JoinErrorMessage{Type: "join error", Message: errPaletteExhausted.Error()})
				return
			}
			g.players[connID] = &Player{
				ID:         user.ID,
				Name:       user.Name,
				Color:      color,
				Position:   nil,
				Score:      0,
				GameroomID: roomID,
			}
		}
	}

	g.net.JoinRoom(roomID, connID)

	players := g.roomPlayers(roomID)
	logf(g.cfg, "ROOMS: %s joined gameroom %s (%d players)", connID, roomID, len(players))

	g.net.ToRoom(roomID, PlayersJoinedMessage{Type: "players joined", Players: players, HostID: room.HostID})
	g.net.ToAll(PlayerCountMessage{Type: "gameroom player count", GameroomID: roomID, Count: len(players)})
}

// leaveGameroom handles both the host case (room dies with its host) and
// the ordinary case. A room emptied by its last member is deleted rather
// than leaked. Caller holds g.mu.
func (g *Game) leaveGameroom(roomID, connID string) {
	room, ok := g.gamerooms[roomID]
	if !ok {
		return
	}

	if room.HostID == connID {
		g.net.ToRoom(roomID, HostLeftMessage{Type: "host left"})
		g.deleteGameroom(roomID)
		return
	}

	g.net.LeaveRoom(roomID, connID)
	delete(g.players, connID)

	name := ""
	if user, ok := g.users[connID]; ok {
		name = user.Name
	}
	g.net.ToRoom(roomID, PlayerLeftMessage{Type: "player left", Name: name})

	count := g.net.RoomSize(roomID)
	if count == 0 {
		g.deleteGameroom(roomID)
		return
	}
	g.net.ToAll(PlayerCountMessage{Type: "gameroom player count", GameroomID: roomID, Count: count})
}

// assignInitialPositions seats the first two members (lexicographic
// order of connection ids) and acks the seat map to the requester. With
// fewer than two members there are no seats to hand out. Caller holds
// g.mu.
func (g *Game) assignInitialPositions(roomID, connID string) {
	members := g.net.RoomMembers(roomID)
	if len(members) < 2 {
		return
	}

	seated := make(map[string]*Player, len(startSeats))
	for i, seat := range startSeats {
		player, ok := g.players[members[i]]
		if !ok {
			continue
		}
		position := seat.position
		player.Position = &position
		player.Orientation = seat.orientation
		player.Seat = i + 1
		seated[members[i]] = player
	}

	g.net.ToConn(connID, InitialPositionsMessage{Type: "initial positions", Players: seated})
}

// movePlayer relays a position update to everyone in the room except the
// sender. Unseated players (nil position) are ignored.
func (g *Game) movePlayer(roomID, playerID, senderID string, position *Position) {
	player, ok := g.players[playerID]
	if !ok || player.Position == nil || position == nil {
		return
	}

	player.Position = position
	g.net.ToRoomExcept(roomID, senderID, PlayerMovedMessage{Type: "player moved", Player: player})
}

// reportDefeat broadcasts a defeat claim, accepted only when the
// reporting connection is the claimed winner (self-attestation).
func (g *Game) reportDefeat(roomID, winnerID, defeatedID, reportingID string) {
	if reportingID != winnerID {
		return
	}

	logf(g.cfg, "GAME: Player %s defeated %s in gameroom %s", winnerID, defeatedID, roomID)
	g.net.ToRoom(roomID, PlayerDefeatedMessage{Type: "player defeated", WinnerID: winnerID, DefeatedID: defeatedID})
}

// grantPower powers a player up and schedules the timed return to
// normal. A re-grant while already powered schedules a second,
// independent timer; whichever fires first clears the flag.
func (g *Game) grantPower(roomID, targetID, requestingID string) {
	if requestingID != targetID {
		return
	}

	player, ok := g.players[targetID]
	if !ok {
		return
	}

	player.GainedPower = true
	g.net.ToRoom(roomID, PowerUpMessage{Type: "player power up", PlayerID: targetID})

	time.AfterFunc(g.cfg.powerDuration, func() {
		g.mu.Lock()
		defer g.mu.Unlock()

		player, ok := g.players[targetID]
		if !ok {
			return
		}
		player.GainedPower = false
		g.net.ToRoom(roomID, ReturnToNormalMessage{Type: "player return to normal", PlayerID: targetID})
	})
}

// reportWin bumps the winner's score. Self-attested; no broadcast, the
// round advance is what surfaces scores.
func (g *Game) reportWin(winnerID, reportingID string) {
	if reportingID != winnerID {
		return
	}

	if player, ok := g.players[winnerID]; ok {
		player.Score++
	}
}

// unusedColor picks the first palette color not held by any of the given
// room members.
func (g *Game) unusedColor(members []string) (string, bool) {
	used := make(map[string]bool, len(members))
	for _, id := range members {
		if player, ok := g.players[id]; ok {
			used[player.Color] = true
		}
	}

	for _, color := range paletteColors {
		if !used[color] {
			return color, true
		}
	}
	return "", false
}

// roomPlayers resolves the Players for a room's current members, in
// lexicographic member order.
func (g *Game) roomPlayers(roomID string) []*Player {
	members := g.net.RoomMembers(roomID)
	players := make([]*Player, 0, len(members))
	for _, id := range members {
		if player, ok := g.players[id]; ok {
			players = append(players, player)
		}
	}
	return players
}
