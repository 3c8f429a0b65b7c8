package game

import (
	"errors"
	"sync"
	"time"
)

// Registry errors surfaced to the dispatcher. They map one-to-one onto the
// error messages clients see.
var (
	ErrLobbyNotFound  = errors.New("lobby not found")
	ErrPlayerNotFound = errors.New("player not found")
	ErrLobbyFull      = errors.New("lobby is full")
	ErrRoleCapacity   = errors.New("no slots left for that role")
	ErrNotInLobby     = errors.New("player is not in a lobby")
)

type Role string

const (
	RoleCommander Role = "commander"
	RolePawn      Role = "pawn"
)

// Player is a live player identity. LobbyID is empty while the player is
// not inside a lobby.
type Player struct {
	ID      string
	Name    string
	Role    Role
	LobbyID string
}

// Session is one live lobby. The players map is only ever touched while the
// owning State's mutex is held.
type Session struct {
	ID            string
	Name          string
	MaxCommanders int
	MaxPawns      int
	IsActive      bool
	CreatedAt     time.Time

	players map[string]*Player
}

func (s *Session) commanderCount() int {
	n := 0
	for _, p := range s.players {
		if p.Role == RoleCommander {
			n++
		}
	}
	return n
}

func (s *Session) pawnCount() int {
	n := 0
	for _, p := range s.players {
		if p.Role == RolePawn {
			n++
		}
	}
	return n
}

func (s *Session) canJoinCommander() bool {
	return s.commanderCount() < s.MaxCommanders
}

func (s *Session) canJoinPawn() bool {
	return s.pawnCount() < s.MaxPawns
}

func (s *Session) isFull() bool {
	return !s.canJoinCommander() && !s.canJoinPawn()
}

// LobbyView is an immutable snapshot of a session, safe to hand to response
// shaping and fan-out code after the registry lock is released.
type LobbyView struct {
	ID            string
	Name          string
	Commanders    []string
	Pawns         []string
	MaxCommanders int
	MaxPawns      int
	Status        string
	CreatedAt     time.Time
}

/*
 * 'State' is the in-memory authoritative registry of lobbies and players.
 * Every connection goroutine shares one instance, so all map access happens
 * under a single mutex. The lock is never held across network or database
 * I/O: callers persist first, then mutate here.
 */
type State struct {
	mu       sync.Mutex
	sessions map[string]*Session
	players  map[string]*Player
}

func NewState() *State {
	return &State{
		sessions: make(map[string]*Session),
		players:  make(map[string]*Player),
	}
}

// CreateSession registers a lobby whose durable row already exists. The
// caller supplies the identity so both stores agree on it.
func (st *State) CreateSession(id, name string, maxCommanders, maxPawns int, createdAt time.Time) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[id] = &Session{
		ID:            id,
		Name:          name,
		MaxCommanders: maxCommanders,
		MaxPawns:      maxPawns,
		CreatedAt:     createdAt,
		players:       make(map[string]*Player),
	}
}

// CreatePlayer registers a player identity, unassociated with any lobby.
func (st *State) CreatePlayer(id, name string, role Role) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.players[id] = &Player{ID: id, Name: name, Role: role}
}

// RemovePlayer drops a player from the registry entirely, detaching it from
// its lobby first. Used to compensate a failed join.
func (st *State) RemovePlayer(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if p, ok := st.players[id]; ok && p.LobbyID != "" {
		if sess, ok := st.sessions[p.LobbyID]; ok {
			delete(sess.players, id)
		}
	}
	delete(st.players, id)
}

// JoinSession runs the capacity check and the membership mutation as one
// locked step, so two racing joins for the last slot cannot both pass the
// check. The role sub-limit is authoritative: a commander is rejected when
// commander slots are gone even if pawn slots remain, and vice versa.
func (st *State) JoinSession(playerID, lobbyID string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	player, ok := st.players[playerID]
	if !ok {
		return ErrPlayerNotFound
	}
	sess, ok := st.sessions[lobbyID]
	if !ok {
		return ErrLobbyNotFound
	}
	if _, ok := sess.players[playerID]; ok {
		return ErrLobbyFull // already holding a slot; never double-count
	}
	if sess.isFull() {
		return ErrLobbyFull
	}
	if player.Role == RoleCommander && !sess.canJoinCommander() {
		return ErrRoleCapacity
	}
	if player.Role == RolePawn && !sess.canJoinPawn() {
		return ErrRoleCapacity
	}

	player.LobbyID = lobbyID
	sess.players[playerID] = player
	return nil
}

// LeaveSession detaches a player from its current lobby and reports which
// lobby it left. Unknown players and players that never joined fail without
// touching any state.
func (st *State) LeaveSession(playerID string) (string, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	player, ok := st.players[playerID]
	if !ok {
		return "", ErrPlayerNotFound
	}
	if player.LobbyID == "" {
		return "", ErrNotInLobby
	}
	lobbyID := player.LobbyID
	if sess, ok := st.sessions[lobbyID]; ok {
		delete(sess.players, playerID)
	}
	player.LobbyID = ""
	return lobbyID, nil
}

// View returns a snapshot of one lobby.
func (st *State) View(lobbyID string) (LobbyView, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	sess, ok := st.sessions[lobbyID]
	if !ok {
		return LobbyView{}, false
	}
	return snapshot(sess), true
}

// ListViews returns a snapshot of every lobby, in no particular order.
func (st *State) ListViews() []LobbyView {
	st.mu.Lock()
	defer st.mu.Unlock()
	views := make([]LobbyView, 0, len(st.sessions))
	for _, sess := range st.sessions {
		views = append(views, snapshot(sess))
	}
	return views
}

// MemberIDs returns the ids of every player currently in the lobby. Used by
// chat fan-out, which must not hold the registry lock while delivering.
func (st *State) MemberIDs(lobbyID string) ([]string, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	sess, ok := st.sessions[lobbyID]
	if !ok {
		return nil, false
	}
	ids := make([]string, 0, len(sess.players))
	for id := range sess.players {
		ids = append(ids, id)
	}
	return ids, true
}

func snapshot(sess *Session) LobbyView {
	view := LobbyView{
		ID:            sess.ID,
		Name:          sess.Name,
		Commanders:    make([]string, 0, sess.MaxCommanders),
		Pawns:         make([]string, 0, sess.MaxPawns),
		MaxCommanders: sess.MaxCommanders,
		MaxPawns:      sess.MaxPawns,
		Status:        "waiting",
		CreatedAt:     sess.CreatedAt,
	}
	if sess.IsActive {
		view.Status = "in_progress"
	}
	for id, p := range sess.players {
		if p.Role == RoleCommander {
			view.Commanders = append(view.Commanders, id)
		} else {
			view.Pawns = append(view.Pawns, id)
		}
	}
	return view
}
