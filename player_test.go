package main

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinGameroomSequence(t *testing.T) {
	g, net := newTestGame(t)
	room := g.createGameroom(2, "a")

	joinRoomAs(t, g, room.ID, "a")

	joined := sentOfType[PlayersJoinedMessage](net)
	require.Len(t, joined, 1)
	require.Len(t, joined[0].Players, 1)
	assert.Equal(t, "a", joined[0].Players[0].ID)
	assert.Equal(t, "a", joined[0].HostID)

	joinRoomAs(t, g, room.ID, "b")

	joined = sentOfType[PlayersJoinedMessage](net)
	require.Len(t, joined, 2)
	require.Len(t, joined[1].Players, 2)
	assert.Equal(t, "a", joined[1].HostID)

	counts := sentOfType[PlayerCountMessage](net)
	require.Len(t, counts, 2)
	assert.Equal(t, 2, counts[1].Count)

	// Third connection bounces off the full room.
	joinRoomAs(t, g, room.ID, "c")

	joinErrors := sentOfType[JoinErrorMessage](net)
	require.Len(t, joinErrors, 1)
	assert.Equal(t, errRoomFull.Error(), joinErrors[0].Message)
	assert.Equal(t, 2, net.RoomSize(room.ID))
}

func TestJoinGameroomUnknownRoom(t *testing.T) {
	g, net := newTestGame(t)

	joinRoomAs(t, g, "42", "a")

	joinErrors := sentOfType[JoinErrorMessage](net)
	require.Len(t, joinErrors, 1)
	assert.Equal(t, errRoomNotFound.Error(), joinErrors[0].Message)
}

func TestJoinGameroomRejoinTolerated(t *testing.T) {
	g, net := newTestGame(t)
	room := g.createGameroom(1, "a")

	joinRoomAs(t, g, room.ID, "a")
	net.reset()

	// Already a member, so the capacity check does not apply.
	g.dispatch(inboundEvent{kind: evJoinGameroom, conn: "a", msg: ClientMessage{GameroomID: room.ID}})

	assert.Empty(t, sentOfType[JoinErrorMessage](net))
	assert.Equal(t, 1, net.RoomSize(room.ID))
}

func TestJoinedPlayersHaveDistinctColors(t *testing.T) {
	g, _ := newTestGame(t)
	room := g.createGameroom(2, "a")

	joinRoomAs(t, g, room.ID, "a")
	joinRoomAs(t, g, room.ID, "b")

	g.mu.Lock()
	defer g.mu.Unlock()

	first := g.players["a"]
	second := g.players["b"]
	require.NotNil(t, first)
	require.NotNil(t, second)

	assert.Equal(t, paletteColors[0], first.Color)
	assert.Equal(t, paletteColors[1], second.Color)
	assert.NotEqual(t, first.Color, second.Color)

	assert.Nil(t, first.Position)
	assert.Equal(t, 0, first.Score)
	assert.False(t, first.GainedPower)
	assert.Equal(t, room.ID, first.GameroomID)
}

func TestJoinGameroomPaletteExhausted(t *testing.T) {
	g, net := newTestGame(t)
	room := g.createGameroom(len(paletteColors)+1, "a")

	for i := range paletteColors {
		joinRoomAs(t, g, room.ID, fmt.Sprintf("conn-%d", i))
	}
	net.reset()

	joinRoomAs(t, g, room.ID, "late")

	joinErrors := sentOfType[JoinErrorMessage](net)
	require.Len(t, joinErrors, 1)
	assert.Equal(t, errPaletteExhausted.Error(), joinErrors[0].Message)
	assert.Equal(t, len(paletteColors), net.RoomSize(room.ID))

	g.mu.Lock()
	_, ok := g.players["late"]
	g.mu.Unlock()
	assert.False(t, ok)
}

func TestHostLeaveDeletesRoom(t *testing.T) {
	g, net := newTestGame(t)
	room := g.createGameroom(2, "a")

	joinRoomAs(t, g, room.ID, "a")
	joinRoomAs(t, g, room.ID, "b")
	net.reset()

	g.dispatch(inboundEvent{kind: evLeaveGameroom, conn: "a", msg: ClientMessage{GameroomID: room.ID}})

	require.Len(t, sentOfType[HostLeftMessage](net), 1)

	deleted := sentOfType[GameroomDeletedMessage](net)
	require.Len(t, deleted, 1)
	assert.Equal(t, room.ID, deleted[0].GameroomID)

	assert.False(t, g.gameroomExists(room.ID))
	assert.Empty(t, net.RoomMembers(room.ID))

	g.mu.Lock()
	assert.Empty(t, g.players)
	g.mu.Unlock()
}

func TestNonHostLeaveKeepsRoom(t *testing.T) {
	g, net := newTestGame(t)
	room := g.createGameroom(2, "a")

	joinRoomAs(t, g, room.ID, "a")
	joinRoomAs(t, g, room.ID, "b")
	net.reset()

	g.dispatch(inboundEvent{kind: evLeaveGameroom, conn: "b", msg: ClientMessage{GameroomID: room.ID}})

	left := sentOfType[PlayerLeftMessage](net)
	require.Len(t, left, 1)
	assert.NotEmpty(t, left[0].Name)

	counts := sentOfType[PlayerCountMessage](net)
	require.Len(t, counts, 1)
	assert.Equal(t, 1, counts[0].Count)

	assert.True(t, g.gameroomExists(room.ID))
	assert.Empty(t, sentOfType[GameroomDeletedMessage](net))
}

func TestLastLeaveDeletesEmptyRoom(t *testing.T) {
	g, net := newTestGame(t)

	// Host never joined its own room, so the leaver is a regular member.
	room := g.createGameroom(2, "absent-host")
	joinRoomAs(t, g, room.ID, "a")
	net.reset()

	g.dispatch(inboundEvent{kind: evLeaveGameroom, conn: "a", msg: ClientMessage{GameroomID: room.ID}})

	deleted := sentOfType[GameroomDeletedMessage](net)
	require.Len(t, deleted, 1)
	assert.Equal(t, room.ID, deleted[0].GameroomID)
	assert.False(t, g.gameroomExists(room.ID))
}

func TestLeaveUnknownRoomIsNoop(t *testing.T) {
	g, net := newTestGame(t)
	g.connect("a")
	net.reset()

	g.dispatch(inboundEvent{kind: evLeaveGameroom, conn: "a", msg: ClientMessage{GameroomID: "42"}})

	assert.Empty(t, net.deliveries())
}

func TestAssignInitialPositions(t *testing.T) {
	g, net := newTestGame(t)
	room := g.createGameroom(2, "a")

	joinRoomAs(t, g, room.ID, "b")
	joinRoomAs(t, g, room.ID, "a")
	net.reset()

	g.dispatch(inboundEvent{kind: evInitialPositions, conn: "a", msg: ClientMessage{GameroomID: room.ID}})

	acks := sentOfType[InitialPositionsMessage](net)
	require.Len(t, acks, 1)
	require.Len(t, acks[0].Players, 2)

	// Seats follow lexicographic connection id order regardless of who
	// joined first.
	first := acks[0].Players["a"]
	second := acks[0].Players["b"]
	require.NotNil(t, first)
	require.NotNil(t, second)

	assert.Equal(t, &Position{X: 100, Y: 300}, first.Position)
	assert.Equal(t, "right", first.Orientation)
	assert.Equal(t, 1, first.Seat)

	assert.Equal(t, &Position{X: 500, Y: 100}, second.Position)
	assert.Equal(t, "left", second.Orientation)
	assert.Equal(t, 2, second.Seat)
}

func TestAssignInitialPositionsNeedsTwoMembers(t *testing.T) {
	g, net := newTestGame(t)
	room := g.createGameroom(2, "a")

	joinRoomAs(t, g, room.ID, "a")
	net.reset()

	g.dispatch(inboundEvent{kind: evInitialPositions, conn: "a", msg: ClientMessage{GameroomID: room.ID}})

	assert.Empty(t, sentOfType[InitialPositionsMessage](net))
}

func seatPlayers(t *testing.T, g *Game, roomID string) {
	t.Helper()

	g.dispatch(inboundEvent{kind: evInitialPositions, conn: "a", msg: ClientMessage{GameroomID: roomID}})
}

func TestMovePlayer(t *testing.T) {
	g, net := newTestGame(t)
	room := g.createGameroom(2, "a")

	joinRoomAs(t, g, room.ID, "a")
	joinRoomAs(t, g, room.ID, "b")
	net.reset()

	// Unseated players do not move.
	g.dispatch(inboundEvent{
		kind: evPlayerMovement,
		conn: "a",
		msg:  ClientMessage{GameroomID: room.ID, PlayerID: "a", Position: &Position{X: 200, Y: 200}},
	})
	assert.Empty(t, sentOfType[PlayerMovedMessage](net))

	seatPlayers(t, g, room.ID)
	net.reset()

	g.dispatch(inboundEvent{
		kind: evPlayerMovement,
		conn: "a",
		msg:  ClientMessage{GameroomID: room.ID, PlayerID: "a", Position: &Position{X: 200, Y: 200}},
	})

	moved := sentOfType[PlayerMovedMessage](net)
	require.Len(t, moved, 1)
	assert.Equal(t, &Position{X: 200, Y: 200}, moved[0].Player.Position)

	// The sender is excluded from the relay.
	deliveries := net.deliveries()
	require.Len(t, deliveries, 1)
	assert.Equal(t, "roomExcept", deliveries[0].scope)
	assert.Equal(t, "a", deliveries[0].skip)
}

func TestReportDefeatSelfAttested(t *testing.T) {
	g, net := newTestGame(t)
	room := g.createGameroom(2, "a")

	joinRoomAs(t, g, room.ID, "a")
	joinRoomAs(t, g, room.ID, "b")
	net.reset()

	// Claim from a connection other than the winner is dropped.
	g.dispatch(inboundEvent{
		kind: evPlayerDefeat,
		conn: "b",
		msg:  ClientMessage{GameroomID: room.ID, WinnerID: "a", DefeatedID: "b"},
	})
	assert.Empty(t, sentOfType[PlayerDefeatedMessage](net))

	g.dispatch(inboundEvent{
		kind: evPlayerDefeat,
		conn: "a",
		msg:  ClientMessage{GameroomID: room.ID, WinnerID: "a", DefeatedID: "b"},
	})

	defeats := sentOfType[PlayerDefeatedMessage](net)
	require.Len(t, defeats, 1)
	assert.Equal(t, "a", defeats[0].WinnerID)
	assert.Equal(t, "b", defeats[0].DefeatedID)
}

func TestReportWinSelfAttested(t *testing.T) {
	g, _ := newTestGame(t)
	room := g.createGameroom(2, "a")

	joinRoomAs(t, g, room.ID, "a")
	joinRoomAs(t, g, room.ID, "b")

	// Claim for someone else is ignored.
	g.dispatch(inboundEvent{kind: evWinRound, conn: "b", msg: ClientMessage{WinnerID: "a"}})

	g.mu.Lock()
	assert.Equal(t, 0, g.players["a"].Score)
	g.mu.Unlock()

	g.dispatch(inboundEvent{kind: evWinRound, conn: "a", msg: ClientMessage{WinnerID: "a"}})

	g.mu.Lock()
	assert.Equal(t, 1, g.players["a"].Score)
	g.mu.Unlock()
}

func TestGrantPowerTimedReset(t *testing.T) {
	g, net := newTestGame(t)
	room := g.createGameroom(2, "a")

	joinRoomAs(t, g, room.ID, "a")
	joinRoomAs(t, g, room.ID, "b")
	net.reset()

	// Claim for someone else is ignored.
	g.dispatch(inboundEvent{kind: evGotCherry, conn: "b", msg: ClientMessage{GameroomID: room.ID, PlayerID: "a"}})
	assert.Empty(t, sentOfType[PowerUpMessage](net))

	g.dispatch(inboundEvent{kind: evGotCherry, conn: "a", msg: ClientMessage{GameroomID: room.ID, PlayerID: "a"}})

	require.Len(t, sentOfType[PowerUpMessage](net), 1)

	g.mu.Lock()
	assert.True(t, g.players["a"].GainedPower)
	g.mu.Unlock()

	assert.Eventually(t, func() bool {
		g.mu.Lock()
		defer g.mu.Unlock()
		return !g.players["a"].GainedPower
	}, time.Second, 5*time.Millisecond)

	require.Len(t, sentOfType[ReturnToNormalMessage](net), 1)
}

func TestGrantPowerResetSkipsDepartedPlayer(t *testing.T) {
	g, net := newTestGame(t)
	room := g.createGameroom(2, "a")

	joinRoomAs(t, g, room.ID, "a")
	joinRoomAs(t, g, room.ID, "b")

	g.dispatch(inboundEvent{kind: evGotCherry, conn: "b", msg: ClientMessage{GameroomID: room.ID, PlayerID: "b"}})
	g.dispatch(inboundEvent{kind: evLeaveGameroom, conn: "b", msg: ClientMessage{GameroomID: room.ID}})
	net.reset()

	time.Sleep(60 * time.Millisecond)

	assert.Empty(t, sentOfType[ReturnToNormalMessage](net))
}
