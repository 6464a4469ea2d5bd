package core

import (
	"time"

	"github.com/vkotov/roulette/internal/domain"
)

// BusEvent is a connection lifecycle notice published to the broadcast bus
// so sibling server instances can observe it. The core only ever writes to
// the bus; it never reads back synchronously.
type BusEvent struct {
	Kind      string           `json:"kind"`
	ConnID    domain.ConnID    `json:"connId,omitempty"`
	SessionID domain.SessionID `json:"sessionId,omitempty"`
	RoomID    domain.RoomID    `json:"roomId,omitempty"`
	At        time.Time        `json:"at"`
}

const (
	BusConnUp        = "conn:up"
	BusConnDown      = "conn:down"
	BusPairFormed    = "pair:formed"
	BusPairDissolved = "pair:dissolved"
	BusRoomJoined    = "room:joined"
	BusRoomLeft      = "room:left"
)

// EventBus fans connection events out to other server instances. Publish is
// best-effort append-only; failures are the adapter's problem to log, never
// the caller's to retry.
type EventBus interface {
	Publish(e BusEvent)
	Close()
}
