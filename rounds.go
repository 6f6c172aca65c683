package main

// Fixed-round scoring: the host drives round advancement, and the match
// ends after maxRounds or early once someone pulls ahead.

const (
	maxRounds     = 3
	expectedSeats = 2
)

// startGame broadcasts the start signal to the room. No host check, to
// stay compatible with legacy clients that let either player kick off.
func (g *Game) startGame(roomID string) {
	if _, ok := g.gamerooms[roomID]; !ok {
		return
	}
	g.net.ToRoom(roomID, StartGameMessage{Type: "start game"})
}

// advanceRound tallies the round just played. Host-only; a request from
// anyone else is a silent no-op. Scoring only considers players when the
// room holds exactly its two expected seats. Caller holds g.mu.
func (g *Game) advanceRound(roomID, requesterID string) {
	room, ok := g.gamerooms[roomID]
	if !ok || room.HostID != requesterID {
		return
	}

	room.RoundCount++

	var players []*Player
	if g.net.RoomSize(roomID) == expectedSeats {
		players = g.roomPlayers(roomID)
	}

	if (room.RoundCount > 2 && anyScoreAbove(players, 1)) || room.RoundCount > maxRounds {
		winnerID := highestScorer(players)
		logf(g.cfg, "GAME: Gameroom %s over after round %d, winner %q", roomID, room.RoundCount, winnerID)
		g.net.ToRoom(roomID, GameOverMessage{Type: "game over", WinnerID: winnerID})
		return
	}

	g.net.ToRoom(roomID, NextRoundMessage{
		Type:       "go to next round",
		RoundCount: room.RoundCount,
		Players:    players,
		GameroomID: roomID,
	})
}

func anyScoreAbove(players []*Player, threshold int) bool {
	for _, player := range players {
		if player.Score > threshold {
			return true
		}
	}
	return false
}

// highestScorer walks players in seat order (roomPlayers returns
// lexicographic member order) and replaces the candidate only on a
// strictly greater score, so ties resolve to the first-seated player.
// An empty slice yields an empty winner id.
func highestScorer(players []*Player) string {
	winnerID := ""
	best := -1
	for _, player := range players {
		if player.Score > best {
			winnerID = player.ID
			best = player.Score
		}
	}
	return winnerID
}
