package main

// Wire names match the legacy client protocol, so field casing follows
// its payloads (camelCase) rather than the usual snake_case.

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ClientMessage is the single inbound envelope. Which fields are meaningful
// depends on Type; unused fields are left at their zero values.
type ClientMessage struct {
	Type       string    `json:"type"`
	GameroomID string    `json:"gameroomId,omitempty"`
	Message    string    `json:"message,omitempty"`
	Username   string    `json:"username,omitempty"`
	PlayerID   string    `json:"playerId,omitempty"`
	WinnerID   string    `json:"winnerId,omitempty"`
	DefeatedID string    `json:"defeatedId,omitempty"`
	Position   *Position `json:"position,omitempty"`
	Duration   int       `json:"duration,omitempty"` // milliseconds
}

// eventKind is the closed set of inbound event types. Unknown wire names
// never reach the dispatcher.
type eventKind int

const (
	evJoinLobby eventKind = iota
	evChatMessage
	evJoinGameroom
	evLeaveGameroom
	evGameStart
	evInitialPositions
	evPlayerMovement
	evPlayerDefeat
	evFruitTimer
	evResetFruit
	evGotCherry
	evWinRound
	evUpdateRoundCount
)

var eventKinds = map[string]eventKind{
	"join lobby":            evJoinLobby,
	"new chat message":      evChatMessage,
	"join gameroom":         evJoinGameroom,
	"leave gameroom":        evLeaveGameroom,
	"game start":            evGameStart,
	"get initial positions": evInitialPositions,
	"player movement":       evPlayerMovement,
	"player defeat":         evPlayerDefeat,
	"fruit timer":           evFruitTimer,
	"reset fruit":           evResetFruit,
	"got cherry":            evGotCherry,
	"win round":             evWinRound,
	"update round count":    evUpdateRoundCount,
}

func parseEventKind(name string) (eventKind, bool) {
	kind, ok := eventKinds[name]
	return kind, ok
}

// inboundEvent pairs a decoded message with the connection that sent it.
type inboundEvent struct {
	kind eventKind
	conn string
	msg  ClientMessage
}

// Outbound messages, one struct per wire name.

type UserDataMessage struct {
	Type string `json:"type"` // "current user data"
	User *User  `json:"user"`
}

type UserConnectedMessage struct {
	Type string `json:"type"` // "user connected"
	Name string `json:"name"`
}

type UserDisconnectedMessage struct {
	Type string `json:"type"` // "user disconnected"
	Name string `json:"name"`
}

type UserListMessage struct {
	Type  string  `json:"type"` // "update user list"
	Users []*User `json:"users"`
}

type ChatMessage struct {
	Type     string `json:"type"` // "chat messages"
	Message  string `json:"message"`
	Username string `json:"username"`
}

type GameroomCreatedMessage struct {
	Type           string `json:"type"` // "gameroom created"
	GameroomID     string `json:"gameroomId"`
	MaxPlayerCount int    `json:"maxPlayerCount"`
}

type GameroomDeletedMessage struct {
	Type       string `json:"type"` // "gameroom deleted"
	GameroomID string `json:"gameroomId"`
}

type PlayerCountMessage struct {
	Type       string `json:"type"` // "gameroom player count"
	GameroomID string `json:"gameroomId"`
	Count      int    `json:"count"`
}

type PlayersJoinedMessage struct {
	Type    string    `json:"type"` // "players joined"
	Players []*Player `json:"players"`
	HostID  string    `json:"hostId"`
}

type JoinErrorMessage struct {
	Type    string `json:"type"` // "join error"
	Message string `json:"message"`
}

type PlayerLeftMessage struct {
	Type string `json:"type"` // "player left"
	Name string `json:"name"`
}

type HostLeftMessage struct {
	Type string `json:"type"` // "host left"
}

type StartGameMessage struct {
	Type string `json:"type"` // "start game"
}

type NextRoundMessage struct {
	Type       string    `json:"type"` // "go to next round"
	RoundCount int       `json:"roundCount"`
	Players    []*Player `json:"players"`
	GameroomID string    `json:"gameroomId"`
}

type GameOverMessage struct {
	Type     string `json:"type"` // "game over"
	WinnerID string `json:"winnerId"`
}

type InitialPositionsMessage struct {
	Type    string             `json:"type"` // "initial positions"
	Players map[string]*Player `json:"players"`
}

type PlayerMovedMessage struct {
	Type   string  `json:"type"` // "player moved"
	Player *Player `json:"player"`
}

type PlayerDefeatedMessage struct {
	Type       string `json:"type"` // "player defeated"
	WinnerID   string `json:"winnerId"`
	DefeatedID string `json:"defeatedId"`
}

type PowerUpMessage struct {
	Type     string `json:"type"` // "player power up"
	PlayerID string `json:"playerId"`
}

type ReturnToNormalMessage struct {
	Type     string `json:"type"` // "player return to normal"
	PlayerID string `json:"playerId"`
}

type FruitLocationMessage struct {
	Type string `json:"type"` // "fruit location"
	X    int    `json:"x"`
	Y    int    `json:"y"`
}
