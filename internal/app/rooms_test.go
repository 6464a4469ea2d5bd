package app

import (
	"errors"
	"testing"

	"github.com/vkotov/roulette/internal/core"
	"github.com/vkotov/roulette/internal/domain"
)

func TestJoinCreatesRoomLazily(t *testing.T) {
	m := NewRoomManager()

	prev, peers := m.Join("a", "r1")
	if prev != "" {
		t.Fatalf("fresh connection has no prior room, got %q", prev)
	}
	if len(peers) != 0 {
		t.Fatalf("first member has no peers, got %v", peers)
	}
	if m.RoomCount() != 1 {
		t.Fatalf("expected one room, got %d", m.RoomCount())
	}

	_, peers = m.Join("b", "r1")
	if len(peers) != 1 || peers[0] != "a" {
		t.Fatalf("second member should see the first, got %v", peers)
	}
}

func TestJoinSwitchesRooms(t *testing.T) {
	m := NewRoomManager()
	m.Join("a", "r1")
	m.Join("b", "r1")

	prev, _ := m.Join("a", "r2")
	if prev != "r1" {
		t.Fatalf("expected implicit leave of r1, got %q", prev)
	}
	if room, _ := m.RoomOf("a"); room != "r2" {
		t.Fatalf("a should be in r2, got %q", room)
	}

	_, peers, err := m.Peers("b")
	if err != nil {
		t.Fatalf("peers: %v", err)
	}
	if len(peers) != 0 {
		t.Fatalf("r1 should only contain b now, peers=%v", peers)
	}
}

func TestLeaveGarbageCollectsEmptyRoom(t *testing.T) {
	m := NewRoomManager()
	m.Join("a", "r1")
	m.Join("b", "r1")

	room, remaining, ok := m.Leave("a")
	if !ok || room != "r1" {
		t.Fatalf("expected leave of r1, got %q ok=%v", room, ok)
	}
	if len(remaining) != 1 || remaining[0] != "b" {
		t.Fatalf("b should remain, got %v", remaining)
	}
	if m.RoomCount() != 1 {
		t.Fatalf("room still has a member, must survive")
	}

	m.Leave("b")
	if m.RoomCount() != 0 {
		t.Fatalf("empty room must be garbage-collected")
	}

	if _, _, ok := m.Leave("b"); ok {
		t.Fatalf("leave must be idempotent")
	}
}

func TestPeersRequiresMembership(t *testing.T) {
	m := NewRoomManager()
	if _, _, err := m.Peers("ghost"); !errors.Is(err, core.ErrNotInRoom) {
		t.Fatalf("expected NotInRoom, got %v", err)
	}
}

func TestRejoiningSameRoomKeepsMembership(t *testing.T) {
	m := NewRoomManager()
	m.Join("a", "r1")
	m.Join("b", "r1")

	prev, peers := m.Join("a", "r1")
	if prev != "r1" {
		t.Fatalf("rejoin should report the same room, got %q", prev)
	}
	if len(peers) != 1 || peers[0] != domain.ConnID("b") {
		t.Fatalf("rejoin should still see b, got %v", peers)
	}
	if m.RoomCount() != 1 {
		t.Fatalf("rejoin must not duplicate the room")
	}
}
