package main

import (
	"sort"
	"strconv"
)

// Gameroom registry. Room ids come from a monotonically increasing
// counter in string form, for compatibility with the legacy wire
// protocol. The host is fixed at creation and never reassigned.

type Gameroom struct {
	ID             string `json:"id"`
	MaxPlayerCount int    `json:"maxPlayerCount"`
	HostID         string `json:"hostId"`
	RoundCount     int    `json:"roundCount"`

	fruitPlaced bool
}

// GameroomSummary is the room-list view. CurrentPlayerCount is read live
// from the transport's membership, never from a cached counter.
type GameroomSummary struct {
	ID                 string `json:"id"`
	MaxPlayerCount     int    `json:"maxPlayerCount"`
	CurrentPlayerCount int    `json:"currentPlayerCount"`
}

// createGameroom allocates a room and announces it globally. A zero or
// negative maxPlayerCount falls back to 1; legacy clients rely on that
// default.
func (g *Game) createGameroom(maxPlayerCount int, hostID string) *Gameroom {
	g.mu.Lock()
	defer g.mu.Unlock()

	if maxPlayerCount <= 0 {
		maxPlayerCount = 1
	}

	room := &Gameroom{
		ID:             strconv.Itoa(g.nextRoomID),
		MaxPlayerCount: maxPlayerCount,
		HostID:         hostID,
		RoundCount:     0,
	}
	g.nextRoomID++
	g.gamerooms[room.ID] = room

	logf(g.cfg, "ROOMS: Created gameroom %s (max %d players, host %s)", room.ID, maxPlayerCount, hostID)

	g.net.ToAll(GameroomCreatedMessage{
		Type:           "gameroom created",
		GameroomID:     room.ID,
		MaxPlayerCount: maxPlayerCount,
	})

	return room
}

// gameroomExists reports whether a room id is live, for callers outside
// the dispatcher.
func (g *Game) gameroomExists(roomID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, ok := g.gamerooms[roomID]
	return ok
}

// listGamerooms returns all rooms with live player counts, ordered by
// creation (ascending numeric id).
func (g *Game) listGamerooms() []GameroomSummary {
	g.mu.Lock()
	defer g.mu.Unlock()

	summaries := make([]GameroomSummary, 0, len(g.gamerooms))
	for _, room := range g.gamerooms {
		summaries = append(summaries, GameroomSummary{
			ID:                 room.ID,
			MaxPlayerCount:     room.MaxPlayerCount,
			CurrentPlayerCount: g.net.RoomSize(room.ID),
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		a, _ := strconv.Atoi(summaries[i].ID)
		b, _ := strconv.Atoi(summaries[j].ID)
		return a < b
	})

	return summaries
}

// deleteGameroom removes the room and every Player whose entry still
// references it, clears transport membership, and announces the
// deletion. Caller holds g.mu.
func (g *Game) deleteGameroom(roomID string) {
	for id, player := range g.players {
		if player.GameroomID == roomID {
			delete(g.players, id)
		}
	}
	g.net.ClearRoom(roomID)
	delete(g.gamerooms, roomID)

	logf(g.cfg, "ROOMS: Deleted gameroom %s", roomID)

	g.net.ToAll(GameroomDeletedMessage{Type: "gameroom deleted", GameroomID: roomID})
}
