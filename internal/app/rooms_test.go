package app

import "testing"

func TestRoomManagerLifecycle(t *testing.T) {
	rooms := NewRoomManager()

	rooms.Track("conn-1", "session-1", "alice")
	sessionID, playerID, ok := rooms.Lookup("conn-1")
	if !ok || sessionID != "session-1" || playerID != "alice" {
		t.Fatalf("unexpected membership: %s/%s ok=%v", sessionID, playerID, ok)
	}

	// Rejoining replaces the prior membership for that connection.
	rooms.Track("conn-1", "session-2", "alice")
	sessionID, _, _ = rooms.Lookup("conn-1")
	if sessionID != "session-2" {
		t.Fatalf("expected rejoin to replace membership, got %s", sessionID)
	}

	sessionID, playerID, ok = rooms.Forget("conn-1")
	if !ok || sessionID != "session-2" || playerID != "alice" {
		t.Fatalf("unexpected forget result: %s/%s ok=%v", sessionID, playerID, ok)
	}

	// Forgetting an unknown connection is a no-op.
	if _, _, ok := rooms.Forget("conn-1"); ok {
		t.Fatalf("expected no-op for unknown connection")
	}
}
