package app

import (
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog/log"

	"github.com/vkotov/roulette/internal/core"
	"github.com/vkotov/roulette/internal/domain"
)

// ConnState is the per-connection pairing state. The transient "pairing"
// step of dequeue-and-bind happens entirely inside the Matcher's mutex, so
// externally a connection is only ever idle, queued or in-session.
type ConnState int

const (
	StateIdle ConnState = iota
	StateQueued
	StateInSession
)

func (s ConnState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateQueued:
		return "queued"
	case StateInSession:
		return "in-session"
	}
	return "unknown"
}

type matchSession struct {
	domain.Session
	sawOffer  bool
	sawAnswer bool
}

// Matcher is the pairing engine. One mutex owns the waiting pool, the
// per-connection states and the session map, so "check pool, dequeue, bind
// two connections" is a single atomic unit and double-booking cannot
// happen. Match events are emitted while the mutex is held through the
// non-blocking MatchEvents sink, which keeps them in state-machine order
// per connection.
type Matcher struct {
	mu       sync.Mutex
	states   map[domain.ConnID]ConnState
	pool     waitingPool
	sessions map[domain.SessionID]*matchSession
	byConn   map[domain.ConnID]domain.SessionID

	events core.MatchEvents

	now   func() time.Time
	newID func() domain.SessionID
}

func NewMatcher(events core.MatchEvents) *Matcher {
	return &Matcher{
		states:   make(map[domain.ConnID]ConnState),
		sessions: make(map[domain.SessionID]*matchSession),
		byConn:   make(map[domain.ConnID]domain.SessionID),
		events:   events,
		now:      time.Now,
		newID:    func() domain.SessionID { return domain.SessionID(gonanoid.Must()) },
	}
}

// Track starts following a freshly registered connection in state idle.
func (m *Matcher) Track(id domain.ConnID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.states[id]; !ok {
		m.states[id] = StateIdle
	}
}

// Forget drops all pairing state for id. The caller must already have run
// LeaveSession and LeaveQueue; Forget only clears the state entry.
func (m *Matcher) Forget(id domain.ConnID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, id)
}

// Enqueue puts id into the waiting pool or, if someone is already waiting,
// atomically pairs it with the oldest waiter. The longer waiter becomes the
// initiator and receives the send-offer event.
func (m *Matcher) Enqueue(id domain.ConnID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enqueueLocked(id)
}

func (m *Matcher) enqueueLocked(id domain.ConnID) error {
	switch m.states[id] {
	case StateQueued:
		return core.ErrAlreadyQueued
	case StateInSession:
		return core.ErrAlreadyInSession
	}

	waiter, ok := m.pool.popOldest(id)
	if !ok {
		m.pool.push(id, m.now())
		m.states[id] = StateQueued
		log.Debug().Str("module", "app.matcher").Str("conn", string(id)).Msg("queued, pool was empty")
		m.events.Searching(id)
		return nil
	}

	s := &matchSession{Session: domain.Session{
		ID:        m.newID(),
		Initiator: waiter.ID,
		Responder: id,
		CreatedAt: m.now(),
		State:     domain.SessionForming,
	}}
	m.sessions[s.ID] = s
	m.byConn[waiter.ID] = s.ID
	m.byConn[id] = s.ID
	m.states[waiter.ID] = StateInSession
	m.states[id] = StateInSession

	log.Info().Str("module", "app.matcher").
		Str("session", string(s.ID)).
		Str("initiator", string(s.Initiator)).
		Str("responder", string(s.Responder)).
		Msg("session formed")

	snap := s.Session
	m.events.Paired(&snap)
	return nil
}

// LeaveQueue removes id from the waiting pool. Idempotent.
func (m *Matcher) LeaveQueue(id domain.ConnID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pool.remove(id) {
		m.states[id] = StateIdle
		log.Debug().Str("module", "app.matcher").Str("conn", string(id)).Msg("left queue")
	}
}

// LeaveSession dissolves id's session, if any. The partner always goes idle
// and gets exactly one partner-left event; only a skipping caller re-enters
// the pool.
func (m *Matcher) LeaveSession(id domain.ConnID, reason domain.LeaveReason) (domain.ConnID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sid, ok := m.byConn[id]
	if !ok {
		return "", false
	}
	s := m.sessions[sid]
	partner := s.Partner(id)

	s.State = domain.SessionDissolved
	delete(m.sessions, sid)
	delete(m.byConn, id)
	delete(m.byConn, partner)
	m.states[id] = StateIdle
	m.states[partner] = StateIdle

	log.Info().Str("module", "app.matcher").
		Str("session", string(sid)).
		Str("conn", string(id)).
		Str("reason", string(reason)).
		Msg("session dissolved")

	m.events.PartnerLeft(partner, sid)

	if reason == domain.LeaveSkip {
		// Re-enqueue inside the same critical section: the skipper must not
		// observe an intermediate idle state from outside.
		if err := m.enqueueLocked(id); err != nil {
			log.Warn().Err(err).Str("module", "app.matcher").Str("conn", string(id)).Msg("skip requeue failed")
		}
	}
	return partner, true
}

// SessionOf returns a copy of id's active session.
func (m *Matcher) SessionOf(id domain.ConnID) (domain.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sid, ok := m.byConn[id]
	if !ok {
		return domain.Session{}, false
	}
	return m.sessions[sid].Session, true
}

// Deliver resolves id's partner and runs send while the engine's mutex is
// still held, so a concurrent dissolution can never slip a frame to an
// ex-partner after its partner-left notice. send must not block; outbound
// transports only buffer.
func (m *Matcher) Deliver(id domain.ConnID, kind string, send func(partner domain.ConnID, sid domain.SessionID) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sid, ok := m.byConn[id]
	if !ok {
		return core.ErrNoActiveSession
	}
	s := m.sessions[sid]
	m.markSignalLocked(s, kind)
	return send(s.Partner(id), sid)
}

// MarkSignal records an offer or answer sighting. Once both were seen the
// session is considered active. Diagnostics only: the relay never blocks
// on this.
func (m *Matcher) MarkSignal(id domain.ConnID, kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sid, ok := m.byConn[id]
	if !ok {
		return
	}
	m.markSignalLocked(m.sessions[sid], kind)
}

func (m *Matcher) markSignalLocked(s *matchSession, kind string) {
	switch kind {
	case "offer":
		s.sawOffer = true
	case "answer":
		s.sawAnswer = true
	default:
		return
	}
	if s.sawOffer && s.sawAnswer && s.State == domain.SessionForming {
		s.State = domain.SessionActive
		log.Info().Str("module", "app.matcher").Str("session", string(s.ID)).Msg("session active")
	}
}

func (m *Matcher) StateOf(id domain.ConnID) ConnState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.states[id]
}

func (m *Matcher) QueueLen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pool.len()
}

func (m *Matcher) SessionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
