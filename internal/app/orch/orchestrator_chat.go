package orch

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vkotov/roulette/internal/app"
	"github.com/vkotov/roulette/internal/core"
	"github.com/vkotov/roulette/internal/domain"
)

// JoinRoom puts the connection into a chat room, implicitly leaving the
// previous one, and tells the other members.
func (o *Orchestrator) JoinRoom(id domain.ConnID, roomID domain.RoomID, name string) {
	if name != "" {
		if err := o.Registry.UpdateMeta(id, app.MetaPatch{Name: &name}); err != nil {
			log.Warn().Err(err).Str("module", "orch").Str("conn", string(id)).Msg("chat join rename rejected")
		}
	}

	prev, peers := o.Rooms.Join(id, roomID)
	if prev == roomID {
		// Rejoining the current room: a rename at most, no membership change
		// and no repeated joined notice.
		return
	}
	if prev != "" {
		o.publish(core.BusEvent{Kind: core.BusRoomLeft, ConnID: id, RoomID: prev})
	}
	o.publish(core.BusEvent{Kind: core.BusRoomJoined, ConnID: id, RoomID: roomID})

	conn, _ := o.Registry.Lookup(id)
	o.systemNotice(roomID, peers, fmt.Sprintf("%s joined the chat", conn.Name))
}

// LeaveRoom drops the room membership and notifies whoever stays behind.
func (o *Orchestrator) LeaveRoom(id domain.ConnID) {
	conn, _ := o.Registry.Lookup(id)
	roomID, remaining, ok := o.Rooms.Leave(id)
	if !ok {
		return
	}
	o.publish(core.BusEvent{Kind: core.BusRoomLeft, ConnID: id, RoomID: roomID})
	name := conn.Name
	if name == "" {
		name = domain.DefaultDisplayName
	}
	o.systemNotice(roomID, remaining, fmt.Sprintf("%s left the chat", name))
}

// SendChat broadcasts a text message to the sender's room. A sender without
// a room is an expected race, not an error worth surfacing to the client.
func (o *Orchestrator) SendChat(from domain.ConnID, text string) {
	roomID, peers, err := o.Rooms.Peers(from)
	if err != nil {
		log.Warn().Str("module", "orch").Str("conn", string(from)).Msg("chat message without room, dropped")
		return
	}
	conn, ok := o.Registry.Lookup(from)
	if !ok {
		return
	}
	o.broadcast(roomID, peers, map[string]any{
		"type": "chat:message",
		"from": conn.ID,
		"name": conn.Name,
		"text": text,
		"ts":   time.Now().UnixMilli(),
	})
}

// Typing relays an ephemeral typing indicator; nothing is retained.
func (o *Orchestrator) Typing(from domain.ConnID, isTyping bool) {
	roomID, peers, err := o.Rooms.Peers(from)
	if err != nil {
		return
	}
	conn, _ := o.Registry.Lookup(from)
	o.broadcast(roomID, peers, map[string]any{
		"type":     "chat:typing",
		"name":     conn.Name,
		"isTyping": isTyping,
	})
}

func (o *Orchestrator) systemNotice(roomID domain.RoomID, to []domain.ConnID, text string) {
	o.broadcast(roomID, to, map[string]any{
		"type": "chat:system",
		"text": text,
		"ts":   time.Now().UnixMilli(),
	})
}

// broadcast fans a frame out to the given members, applying the
// backpressure policy to anyone whose send buffer is full.
func (o *Orchestrator) broadcast(roomID domain.RoomID, to []domain.ConnID, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("broadcast marshal")
		return
	}
	for _, id := range to {
		sig, ok := o.Registry.Signal(id)
		if !ok {
			continue
		}
		if err := sig.TrySend(b); err == nil {
			continue
		}
		if o.Policy == nil {
			continue
		}
		switch o.Policy.OnBackpressure(roomID, id) {
		case app.KickConnection:
			log.Warn().Str("module", "orch").Str("conn", string(id)).Str("room", string(roomID)).Msg("kicking slow receiver")
			o.Registry.Cancel(id)
		case app.NoAction, app.DropFrame:
		}
	}
}
