package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// fakeConn implements Subscriber and records delivered payloads.
type fakeConn struct {
	id       string
	mu       sync.Mutex
	payloads [][]byte
}

func (f *fakeConn) ID() string { return f.id }

func (f *fakeConn) Deliver(payload []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, payload)
}

func (f *fakeConn) delivered() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([][]byte, len(f.payloads))
	copy(result, f.payloads)
	return result
}

func TestRegistry_AuthenticateFirstConnection(t *testing.T) {
	r := NewRegistry()
	conn := &fakeConn{id: "c1"}
	r.Add(conn)

	first, ok := r.Authenticate("c1", "user1")
	assert.True(t, ok)
	assert.True(t, first)
	assert.True(t, r.IsOnline("user1"))

	// A second connection for the same user is not "first".
	conn2 := &fakeConn{id: "c2"}
	r.Add(conn2)
	first, ok = r.Authenticate("c2", "user1")
	assert.True(t, ok)
	assert.False(t, first)
}

func TestRegistry_AuthenticateUnknownConnection(t *testing.T) {
	r := NewRegistry()

	_, ok := r.Authenticate("missing", "user1")
	assert.False(t, ok)
	assert.False(t, r.IsOnline("user1"))
}

func TestRegistry_PersonalRoomJoinedOnAuthenticate(t *testing.T) {
	r := NewRegistry()
	conn := &fakeConn{id: "c1"}
	r.Add(conn)
	r.Authenticate("c1", "user1")

	// The personal room is the room named by the user id.
	r.BroadcastRoom("user1", []byte("hello"))
	assert.Len(t, conn.delivered(), 1)
}

func TestRegistry_RemoveReportsOfflineOnlyOnLastConnection(t *testing.T) {
	r := NewRegistry()
	for _, id := range []string{"c1", "c2"} {
		r.Add(&fakeConn{id: id})
		r.Authenticate(id, "user1")
	}

	userID, wentOffline := r.Remove("c1")
	assert.Equal(t, "user1", userID)
	assert.False(t, wentOffline)
	assert.True(t, r.IsOnline("user1"))

	userID, wentOffline = r.Remove("c2")
	assert.Equal(t, "user1", userID)
	assert.True(t, wentOffline)
	assert.False(t, r.IsOnline("user1"))
}

func TestRegistry_RemoveUnauthenticatedConnection(t *testing.T) {
	r := NewRegistry()
	r.Add(&fakeConn{id: "c1"})

	userID, wentOffline := r.Remove("c1")
	assert.Empty(t, userID)
	assert.False(t, wentOffline)
}

func TestRegistry_SendToUserReachesAllConnections(t *testing.T) {
	r := NewRegistry()
	conn1 := &fakeConn{id: "c1"}
	conn2 := &fakeConn{id: "c2"}
	other := &fakeConn{id: "c3"}
	r.Add(conn1)
	r.Add(conn2)
	r.Add(other)
	r.Authenticate("c1", "user1")
	r.Authenticate("c2", "user1")
	r.Authenticate("c3", "user2")

	r.SendToUser("user1", []byte("dm"))

	assert.Len(t, conn1.delivered(), 1)
	assert.Len(t, conn2.delivered(), 1)
	assert.Empty(t, other.delivered())
}

func TestRegistry_BroadcastRoomWithExclusion(t *testing.T) {
	r := NewRegistry()
	sender := &fakeConn{id: "c1"}
	member := &fakeConn{id: "c2"}
	outsider := &fakeConn{id: "c3"}
	for _, c := range []*fakeConn{sender, member, outsider} {
		r.Add(c)
	}
	r.JoinRoom("c1", "group1")
	r.JoinRoom("c2", "group1")

	r.BroadcastRoom("group1", []byte("typing"), "c1")

	assert.Empty(t, sender.delivered())
	assert.Len(t, member.delivered(), 1)
	assert.Empty(t, outsider.delivered())
}

func TestRegistry_BroadcastAllSkipsExcluded(t *testing.T) {
	r := NewRegistry()
	origin := &fakeConn{id: "c1"}
	other := &fakeConn{id: "c2"}
	r.Add(origin)
	r.Add(other)

	r.BroadcastAll([]byte("userOnline"), "c1")

	assert.Empty(t, origin.delivered())
	assert.Len(t, other.delivered(), 1)
}

func TestRegistry_LeaveRoomStopsDelivery(t *testing.T) {
	r := NewRegistry()
	conn := &fakeConn{id: "c1"}
	r.Add(conn)
	r.JoinRoom("c1", "group1")
	r.LeaveRoom("c1", "group1")

	r.BroadcastRoom("group1", []byte("msg"))
	assert.Empty(t, conn.delivered())
}

func TestRegistry_RoomMembers(t *testing.T) {
	r := NewRegistry()
	r.Add(&fakeConn{id: "c1"})
	r.Add(&fakeConn{id: "c2"})
	r.JoinRoom("c1", "group1")
	r.JoinRoom("c2", "group1")

	assert.ElementsMatch(t, []string{"c1", "c2"}, r.RoomMembers("group1"))
	assert.Empty(t, r.RoomMembers("ghost"))
}

func TestRegistry_RemoveCleansRooms(t *testing.T) {
	r := NewRegistry()
	conn := &fakeConn{id: "c1"}
	stay := &fakeConn{id: "c2"}
	r.Add(conn)
	r.Add(stay)
	r.JoinRoom("c1", "group1")
	r.JoinRoom("c2", "group1")

	r.Remove("c1")
	r.BroadcastRoom("group1", []byte("msg"))

	assert.Empty(t, conn.delivered())
	assert.Len(t, stay.delivered(), 1)
}

func TestRegistry_OnlineUsers(t *testing.T) {
	r := NewRegistry()
	r.Add(&fakeConn{id: "c1"})
	r.Add(&fakeConn{id: "c2"})
	r.Authenticate("c1", "user1")
	r.Authenticate("c2", "user2")

	users := r.OnlineUsers()
	assert.ElementsMatch(t, []string{"user1", "user2"}, users)
}

func TestRegistry_ReauthenticateMovesBinding(t *testing.T) {
	r := NewRegistry()
	conn := &fakeConn{id: "c1"}
	r.Add(conn)
	r.Authenticate("c1", "user1")

	first, ok := r.Authenticate("c1", "user2")
	assert.True(t, ok)
	assert.True(t, first)
	assert.False(t, r.IsOnline("user1"))
	assert.True(t, r.IsOnline("user2"))

	// The old personal room no longer reaches the connection.
	r.BroadcastRoom("user1", []byte("stale"))
	assert.Empty(t, conn.delivered())
}
