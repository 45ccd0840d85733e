package app

import "sync"

type roomMember struct {
	sessionID string
	playerID  string
}

// RoomManager tracks which session each transport connection belongs to,
// so disconnects can be routed back to the right room. Connection ids are
// transport-assigned and opaque here beyond equality.
type RoomManager struct {
	mu      sync.RWMutex
	members map[string]roomMember
}

func NewRoomManager() *RoomManager {
	return &RoomManager{members: make(map[string]roomMember)}
}

// Track records a connection's membership, replacing any previous one for
// the same connection id.
func (r *RoomManager) Track(connID, sessionID, playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[connID] = roomMember{sessionID: sessionID, playerID: playerID}
}

// Lookup returns the membership for a connection.
func (r *RoomManager) Lookup(connID string) (sessionID, playerID string, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	member, ok := r.members[connID]
	return member.sessionID, member.playerID, ok
}

// Forget removes a connection's membership and reports what it was.
// No-op when the connection was never tracked.
func (r *RoomManager) Forget(connID string) (sessionID, playerID string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	member, ok := r.members[connID]
	if ok {
		delete(r.members, connID)
	}
	return member.sessionID, member.playerID, ok
}
