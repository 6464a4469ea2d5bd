package orch

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vkotov/roulette/internal/app"
	"github.com/vkotov/roulette/internal/core"
	"github.com/vkotov/roulette/internal/domain"
)

// Orchestrator routes connection events into the matchmaking core and owns
// the ordered teardown sequence. It also implements core.MatchEvents, so
// pairing outcomes are turned into wire frames while the matcher still
// holds its serialization point; TrySend is non-blocking, which keeps the
// engine from ever waiting on a slow client.
type Orchestrator struct {
	Registry *app.Registry
	Matcher  *app.Matcher
	Relay    *app.Relay
	Rooms    *app.RoomManager
	Policy   app.Policy
	Bus      core.EventBus
}

// OnConnect registers the transport and auto-enqueues the newcomer, which
// is the implicit queue:join of the protocol. Fatal on a duplicate
// identifier; the adapter must close the transport then.
func (o *Orchestrator) OnConnect(
	id domain.ConnID,
	name string,
	sig core.SignalConnection,
	cancel context.CancelFunc,
) error {
	if _, err := o.Registry.Register(id, name, sig, cancel); err != nil {
		return err
	}
	o.Matcher.Track(id)
	o.publish(core.BusEvent{Kind: core.BusConnUp, ConnID: id})

	o.sendTo(id, map[string]any{"type": "lobby"})
	if err := o.Matcher.Enqueue(id); err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("conn", string(id)).Msg("auto-enqueue rejected")
	}
	return nil
}

// OnDisconnect runs the full teardown in a fixed order: session, queue,
// room, registry. No grace period; the transport is already gone.
func (o *Orchestrator) OnDisconnect(id domain.ConnID) {
	o.Matcher.LeaveSession(id, domain.LeaveDisconnect)
	o.Matcher.LeaveQueue(id)
	o.LeaveRoom(id)
	o.Matcher.Forget(id)
	o.Registry.Remove(id)
	o.publish(core.BusEvent{Kind: core.BusConnDown, ConnID: id})
	log.Info().Str("module", "orch").Str("conn", string(id)).Msg("disconnect teardown complete")
}

// Next dissolves the current session and re-enqueues only the caller; the
// abandoned partner goes idle with a partner:left notice.
func (o *Orchestrator) Next(id domain.ConnID) {
	if _, ok := o.Matcher.LeaveSession(id, domain.LeaveSkip); ok {
		return
	}
	// Not in a session: treat next as a plain (re-)enqueue.
	if err := o.Matcher.Enqueue(id); err != nil {
		log.Debug().Err(err).Str("module", "orch").Str("conn", string(id)).Msg("next without session")
	}
}

// Leave dissolves the session if any, leaves the pool and goes idle. Chat
// room membership is untouched: only disconnect or chat-level leave drops
// it.
func (o *Orchestrator) Leave(id domain.ConnID) {
	o.Matcher.LeaveSession(id, domain.LeaveVoluntary)
	o.Matcher.LeaveQueue(id)
}

// RelaySignal forwards a session-scoped frame verbatim to the partner.
func (o *Orchestrator) RelaySignal(from domain.ConnID, kind string, frame core.Frame) {
	_ = o.Relay.Forward(from, kind, frame)
}

func (o *Orchestrator) Online() int { return o.Registry.Count() }

// --- core.MatchEvents ---

func (o *Orchestrator) Searching(id domain.ConnID) {
	o.sendTo(id, map[string]any{"type": "queue:waiting"})
}

func (o *Orchestrator) Paired(s *domain.Session) {
	// Only the initiator is told to go first; the responder learns of the
	// pairing from the relayed offer.
	o.sendTo(s.Initiator, map[string]any{
		"type":      "send-offer",
		"sessionId": s.ID,
	})
	o.publish(core.BusEvent{Kind: core.BusPairFormed, SessionID: s.ID})
}

func (o *Orchestrator) PartnerLeft(id domain.ConnID, sessionID domain.SessionID) {
	o.sendTo(id, map[string]any{"type": "partner:left"})
	o.publish(core.BusEvent{Kind: core.BusPairDissolved, ConnID: id, SessionID: sessionID})
}

// --- helpers ---

func (o *Orchestrator) sendTo(id domain.ConnID, v any) {
	sig, ok := o.Registry.Signal(id)
	if !ok {
		log.Warn().Str("module", "orch").Str("conn", string(id)).Msg("send: unknown connection")
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("send marshal")
		return
	}
	if err := sig.TrySend(b); err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("conn", string(id)).Msg("send dropped")
	}
}

func (o *Orchestrator) publish(e core.BusEvent) {
	if o.Bus == nil {
		return
	}
	e.At = time.Now()
	o.Bus.Publish(e)
}
