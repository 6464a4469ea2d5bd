package core

import "github.com/vkotov/roulette/internal/domain"

// Frame is a raw wire payload, already encoded for the transport.
type Frame []byte

// SignalConnection abstracts the outbound half of a signaling transport.
// Owned by the adapter; the adapter must Close() it. TrySend never blocks:
// a full buffer is reported as backpressure, so core code may call it while
// holding locks.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// MatchEvents receives pairing engine outcomes. Implementations must not
// block: the matcher invokes them inside its serialization point so that
// events reach each connection's send queue in state-machine order.
type MatchEvents interface {
	// Searching fires when a connection enters the waiting pool.
	Searching(id domain.ConnID)
	// Paired fires once per formed session, after both sides are bound.
	Paired(s *domain.Session)
	// PartnerLeft fires for the participant left behind by a dissolution.
	PartnerLeft(id domain.ConnID, sessionID domain.SessionID)
}

// ConnectionDTO is a read-only view for APIs (no transport fields).
type ConnectionDTO struct {
	ID    domain.ConnID     `json:"id"`
	Name  string            `json:"name"`
	Media domain.MediaFlags `json:"media"`
}
