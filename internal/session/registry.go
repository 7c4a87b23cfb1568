package session

import (
	"sync"
)

// Subscriber is an opaque handle to one live connection. The registry never
// touches the network; delivery goes through this interface so fan-out is
// testable without a transport.
type Subscriber interface {
	// ID returns the unique connection id.
	ID() string
	// Deliver enqueues a payload for the connection. Delivery is best-effort;
	// a slow connection may drop payloads rather than block the caller.
	Deliver(payload []byte)
}

type entry struct {
	sub    Subscriber
	userID string
	rooms  map[string]bool
}

// Registry tracks which users currently have live connections, through which
// handles, and which rooms each connection has joined. A user may hold
// multiple simultaneous connections; every authenticated connection is also
// a member of the user's personal room (the room named by their user id).
//
// All mutation is an atomic single-key update under one lock; lookups for
// unknown users or rooms return empty sets, never errors.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]*entry          // connID -> entry
	users map[string]map[string]bool // userID -> set of connIDs
	rooms map[string]map[string]bool // roomID -> set of connIDs
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[string]*entry),
		users: make(map[string]map[string]bool),
		rooms: make(map[string]map[string]bool),
	}
}

// Add registers a new, not-yet-authenticated connection.
func (r *Registry) Add(sub Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.conns[sub.ID()] = &entry{
		sub:   sub,
		rooms: make(map[string]bool),
	}
}

// Authenticate binds a connection to a user and joins the connection to the
// user's personal room. It reports whether this is the user's first live
// connection, which is the signal for a "user online" presence broadcast.
func (r *Registry) Authenticate(connID, userID string) (first bool, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, exists := r.conns[connID]
	if !exists || userID == "" {
		return false, false
	}

	// Re-authentication on the same connection moves the binding.
	if e.userID != "" && e.userID != userID {
		r.detachUserLocked(connID, e)
	}
	e.userID = userID

	if _, ok := r.users[userID]; !ok {
		r.users[userID] = make(map[string]bool)
	}
	first = len(r.users[userID]) == 0
	r.users[userID][connID] = true

	r.joinRoomLocked(connID, e, userID)
	return first, true
}

// Remove unregisters a connection, leaving all its rooms. It returns the
// bound user id (empty if never authenticated) and whether the user now has
// zero live connections, which is the signal for a "user offline" broadcast.
func (r *Registry) Remove(connID string) (userID string, wentOffline bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, exists := r.conns[connID]
	if !exists {
		return "", false
	}
	delete(r.conns, connID)

	for roomID := range e.rooms {
		r.leaveRoomLocked(connID, roomID)
	}

	userID = e.userID
	if userID != "" {
		delete(r.users[userID], connID)
		if len(r.users[userID]) == 0 {
			delete(r.users, userID)
			wentOffline = true
		}
	}
	return userID, wentOffline
}

// JoinRoom adds a connection to a room. Rooms are opaque ids; group
// authorization is the caller's concern, not the registry's.
func (r *Registry) JoinRoom(connID, roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, exists := r.conns[connID]
	if !exists || roomID == "" {
		return
	}
	r.joinRoomLocked(connID, e, roomID)
}

// LeaveRoom removes a connection from a room.
func (r *Registry) LeaveRoom(connID, roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, exists := r.conns[connID]
	if !exists {
		return
	}
	delete(e.rooms, roomID)
	r.leaveRoomLocked(connID, roomID)
}

func (r *Registry) joinRoomLocked(connID string, e *entry, roomID string) {
	e.rooms[roomID] = true
	if _, ok := r.rooms[roomID]; !ok {
		r.rooms[roomID] = make(map[string]bool)
	}
	r.rooms[roomID][connID] = true
}

func (r *Registry) leaveRoomLocked(connID, roomID string) {
	if members, ok := r.rooms[roomID]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(r.rooms, roomID)
		}
	}
}

func (r *Registry) detachUserLocked(connID string, e *entry) {
	delete(r.users[e.userID], connID)
	if len(r.users[e.userID]) == 0 {
		delete(r.users, e.userID)
	}
	delete(e.rooms, e.userID)
	r.leaveRoomLocked(connID, e.userID)
}

// UserFor returns the user id a connection is bound to, if any.
func (r *Registry) UserFor(connID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, exists := r.conns[connID]
	if !exists || e.userID == "" {
		return "", false
	}
	return e.userID, true
}

// ConnsFor returns all live handles for a user. An unknown user yields an
// empty slice; absence is a normal state, not a fault.
func (r *Registry) ConnsFor(userID string) []Subscriber {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var subs []Subscriber
	for connID := range r.users[userID] {
		if e, ok := r.conns[connID]; ok {
			subs = append(subs, e.sub)
		}
	}
	return subs
}

// RoomMembers returns the connection ids currently joined to a room.
func (r *Registry) RoomMembers(roomID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := make([]string, 0, len(r.rooms[roomID]))
	for connID := range r.rooms[roomID] {
		members = append(members, connID)
	}
	return members
}

// IsOnline reports whether the user has at least one live connection.
func (r *Registry) IsOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.users[userID]) > 0
}

// OnlineUsers returns the ids of all users with at least one live connection.
func (r *Registry) OnlineUsers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]string, 0, len(r.users))
	for userID := range r.users {
		users = append(users, userID)
	}
	return users
}

// SendToConn delivers a payload to a single connection.
func (r *Registry) SendToConn(connID string, payload []byte) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if e, ok := r.conns[connID]; ok {
		e.sub.Deliver(payload)
	}
}

// SendToUser delivers a payload to every connection of a user. This is the
// personal-room emit used for direct-message delivery.
func (r *Registry) SendToUser(userID string, payload []byte) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for connID := range r.users[userID] {
		if e, ok := r.conns[connID]; ok {
			e.sub.Deliver(payload)
		}
	}
}

// BroadcastRoom delivers a payload to every connection in a room, skipping
// any excluded connection ids.
func (r *Registry) BroadcastRoom(roomID string, payload []byte, exclude ...string) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	skip := toSet(exclude)
	for connID := range r.rooms[roomID] {
		if skip[connID] {
			continue
		}
		if e, ok := r.conns[connID]; ok {
			e.sub.Deliver(payload)
		}
	}
}

// BroadcastAll delivers a payload to every live connection, skipping any
// excluded connection ids. Used for presence events.
func (r *Registry) BroadcastAll(payload []byte, exclude ...string) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	skip := toSet(exclude)
	for connID, e := range r.conns {
		if skip[connID] {
			continue
		}
		e.sub.Deliver(payload)
	}
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
