package main

import "time"

// Fruit spawn bounds, matching the legacy playfield.
const (
	fruitMinX = 50
	fruitMaxX = 550
	fruitMinY = 50
	fruitMaxY = 350
)

// scheduleFruit picks one random position now and defers the placement
// by delayMillis. The fruitPlaced flag is a debounce checked at fire
// time, not at schedule time: overlapping schedules each compute a
// position, but only the first to fire lands; later callbacks see the
// flag set and drop out. Caller holds g.mu.
func (g *Game) scheduleFruit(roomID string, delayMillis int) {
	x := randRange(fruitMinX, fruitMaxX)
	y := randRange(fruitMinY, fruitMaxY)

	time.AfterFunc(time.Duration(delayMillis)*time.Millisecond, func() {
		g.mu.Lock()
		defer g.mu.Unlock()

		room, ok := g.gamerooms[roomID]
		if !ok || room.fruitPlaced {
			return
		}

		g.net.ToRoom(roomID, FruitLocationMessage{Type: "fruit location", X: x, Y: y})
		room.fruitPlaced = true
	})
}

// resetFruit re-arms placement for the next round. No-op when the room
// is already gone. Caller holds g.mu.
func (g *Game) resetFruit(roomID string) {
	room, ok := g.gamerooms[roomID]
	if !ok {
		return
	}
	room.fruitPlaced = false
}
