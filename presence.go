package main

// Presence registry: one User per live connection, keyed by the
// transport-assigned connection id. Display names are generated
// adjective_animal pairs; collisions are tolerated.

type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

var nameAdjectives = []string{
	"amber", "brave", "calm", "clever", "crimson", "daring", "dusty",
	"eager", "fuzzy", "gentle", "golden", "hasty", "hungry", "jolly",
	"lucky", "mellow", "nimble", "plucky", "quiet", "rusty", "sleepy",
	"sly", "swift", "witty",
}

var nameAnimals = []string{
	"badger", "beaver", "bison", "crane", "donkey", "falcon", "ferret",
	"gecko", "heron", "ibex", "jackal", "lemur", "marmot", "mole",
	"otter", "panda", "quail", "raccoon", "shrew", "stoat", "tapir",
	"toucan", "walrus", "wombat",
}

func randomUsername() string {
	adjective := nameAdjectives[randRange(0, len(nameAdjectives)-1)]
	animal := nameAnimals[randRange(0, len(nameAnimals)-1)]
	return adjective + "_" + animal
}

// registerUser stores and returns a fresh User for connID. Caller holds
// g.mu and is expected to broadcast the presence delta.
func (g *Game) registerUser(connID string) *User {
	user := &User{
		ID:   connID,
		Name: randomUsername(),
	}
	g.users[connID] = user
	return user
}

// removeUser deletes the User for connID. Absence is not an error.
func (g *Game) removeUser(connID string) (*User, bool) {
	user, ok := g.users[connID]
	if !ok {
		return nil, false
	}
	delete(g.users, connID)
	return user, true
}

func (g *Game) userList() []*User {
	users := make([]*User, 0, len(g.users))
	for _, user := range g.users {
		users = append(users, user)
	}
	return users
}

// joinLobby replies with the caller's own identity and refreshes the
// global user list.
func (g *Game) joinLobby(connID string) {
	user, ok := g.users[connID]
	if !ok {
		return
	}

	g.net.ToConn(connID, UserDataMessage{Type: "current user data", User: user})
	g.net.ToAll(UserListMessage{Type: "update user list", Users: g.userList()})
}

// relayChat fans a chat message out to everyone.
func (g *Game) relayChat(message, username string) {
	g.net.ToAll(ChatMessage{Type: "chat messages", Message: message, Username: username})
}
