package app

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/vkotov/roulette/internal/core"
	"github.com/vkotov/roulette/internal/domain"
)

// Relay forwards signaling frames between the two members of a session.
// It is payload-agnostic: the frame reaches the partner byte-for-byte as
// submitted. Ordering per directed pair comes from the partner's single
// buffered send channel.
type Relay struct {
	matcher  *Matcher
	registry *Registry
}

func NewRelay(m *Matcher, r *Registry) *Relay {
	return &Relay{matcher: m, registry: r}
}

// Forward sends frame to the other member of the sender's session. Partner
// lookup and delivery happen inside the matcher's critical section, so a
// dissolved session is never relayed to again. A sender without an active
// session is an expected race (the peer may have just left), so the frame
// is dropped with ErrNoActiveSession rather than treated as fatal.
func (rl *Relay) Forward(from domain.ConnID, kind string, frame core.Frame) error {
	err := rl.matcher.Deliver(from, kind, func(partner domain.ConnID, sid domain.SessionID) error {
		sig, ok := rl.registry.Signal(partner)
		if !ok {
			// Partner disconnected between dissolution and registry cleanup.
			log.Warn().Str("module", "app.relay").
				Str("session", string(sid)).
				Str("partner", string(partner)).
				Msg("dropping signal, partner gone")
			return core.ErrNotFound
		}
		if err := sig.TrySend(frame); err != nil {
			log.Warn().Err(err).Str("module", "app.relay").
				Str("session", string(sid)).
				Str("partner", string(partner)).
				Str("kind", kind).
				Msg("signal delivery failed")
			return err
		}
		log.Debug().Str("module", "app.relay").
			Str("session", string(sid)).
			Str("from", string(from)).
			Str("kind", kind).
			Msg("relayed signal")
		return nil
	})
	if errors.Is(err, core.ErrNoActiveSession) {
		log.Warn().Str("module", "app.relay").
			Str("conn", string(from)).
			Str("kind", kind).
			Msg("dropping signal, no active session")
	}
	return err
}
