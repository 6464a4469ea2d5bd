package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/vkotov/roulette/internal/core"
	"github.com/vkotov/roulette/internal/domain"
)

// RoomManager owns the chat-room membership sets. Rooms are created lazily
// on first join and garbage-collected when empty. A connection belongs to
// at most one room; joining a new room implicitly leaves the previous one.
// Chat rooms are independent of video sessions, so dissolving a pairing
// never touches room membership.
type RoomManager struct {
	mu     sync.RWMutex
	rooms  map[domain.RoomID]map[domain.ConnID]struct{}
	byConn map[domain.ConnID]domain.RoomID
}

func NewRoomManager() *RoomManager {
	return &RoomManager{
		rooms:  make(map[domain.RoomID]map[domain.ConnID]struct{}),
		byConn: make(map[domain.ConnID]domain.RoomID),
	}
}

// Join adds id to roomID, leaving any prior room first. It returns the
// prior room ("" if none) and the other current members of the joined room
// so the caller can broadcast the joined notice.
func (m *RoomManager) Join(id domain.ConnID, roomID domain.RoomID) (domain.RoomID, []domain.ConnID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev := m.byConn[id]
	if prev == roomID {
		return prev, m.peersLocked(roomID, id)
	}
	if prev != "" {
		m.removeLocked(id, prev)
	}

	members, ok := m.rooms[roomID]
	if !ok {
		members = make(map[domain.ConnID]struct{})
		m.rooms[roomID] = members
		log.Debug().Str("module", "app.rooms").Str("room", string(roomID)).Msg("room created")
	}
	members[id] = struct{}{}
	m.byConn[id] = roomID
	log.Info().Str("module", "app.rooms").Str("conn", string(id)).Str("room", string(roomID)).Msg("joined room")

	return prev, m.peersLocked(roomID, id)
}

// Leave removes id's room membership. Returns the room it left and its
// remaining members. Idempotent: ok is false when id had no room.
func (m *RoomManager) Leave(id domain.ConnID) (domain.RoomID, []domain.ConnID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	roomID, ok := m.byConn[id]
	if !ok {
		return "", nil, false
	}
	m.removeLocked(id, roomID)
	log.Info().Str("module", "app.rooms").Str("conn", string(id)).Str("room", string(roomID)).Msg("left room")
	return roomID, m.peersLocked(roomID, id), true
}

// Peers returns the other members of id's room, or ErrNotInRoom.
func (m *RoomManager) Peers(id domain.ConnID) (domain.RoomID, []domain.ConnID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	roomID, ok := m.byConn[id]
	if !ok {
		return "", nil, core.ErrNotInRoom
	}
	return roomID, m.peersLocked(roomID, id), nil
}

func (m *RoomManager) RoomOf(id domain.ConnID) (domain.RoomID, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	roomID, ok := m.byConn[id]
	return roomID, ok
}

func (m *RoomManager) RoomCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

func (m *RoomManager) removeLocked(id domain.ConnID, roomID domain.RoomID) {
	if members, ok := m.rooms[roomID]; ok {
		delete(members, id)
		if len(members) == 0 {
			delete(m.rooms, roomID)
			log.Debug().Str("module", "app.rooms").Str("room", string(roomID)).Msg("room garbage-collected")
		}
	}
	delete(m.byConn, id)
}

func (m *RoomManager) peersLocked(roomID domain.RoomID, exclude domain.ConnID) []domain.ConnID {
	members := m.rooms[roomID]
	out := make([]domain.ConnID, 0, len(members))
	for id := range members {
		if id != exclude {
			out = append(out, id)
		}
	}
	return out
}
