package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/vkotov/roulette/internal/core"
	"github.com/vkotov/roulette/internal/domain"
)

type regEntry struct {
	Conn   *domain.Connection
	Signal core.SignalConnection
	Cancel context.CancelFunc
}

// Registry tracks every live connection and its metadata. It is the only
// owner of Connection records; all lookups go through it by identifier.
// It never cascades into sessions or rooms: teardown ordering is owned by
// the orchestrator so each step stays testable.
type Registry struct {
	mu    sync.RWMutex
	conns map[domain.ConnID]*regEntry
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[domain.ConnID]*regEntry)}
}

// Register creates a record for a new connection. Registering an identifier
// twice is a protocol violation and is rejected with ErrDuplicateConnection.
func (r *Registry) Register(
	id domain.ConnID,
	name string,
	sig core.SignalConnection,
	cancel context.CancelFunc,
) (*domain.Connection, error) {
	conn := domain.NewConnection(id, name)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conns[id]; ok {
		return nil, core.ErrDuplicateConnection
	}
	r.conns[id] = &regEntry{Conn: conn, Signal: sig, Cancel: cancel}
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Str("name", conn.Name).Msg("registered connection")
	return conn, nil
}

// Lookup returns a copy of the connection record so callers never share
// mutable state with the registry.
func (r *Registry) Lookup(id domain.ConnID) (domain.Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.conns[id]
	if !ok {
		return domain.Connection{}, false
	}
	return *e.Conn, true
}

// Signal returns the bound transport endpoint for id.
func (r *Registry) Signal(id domain.ConnID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.conns[id]
	if !ok {
		return nil, false
	}
	return e.Signal, true
}

// MetaPatch carries the optional fields of UpdateMeta. Nil fields are left
// unchanged.
type MetaPatch struct {
	Name  *string
	MicOn *bool
	CamOn *bool
}

func (r *Registry) UpdateMeta(id domain.ConnID, patch MetaPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[id]
	if !ok {
		return core.ErrNotFound
	}
	if patch.Name != nil {
		if err := e.Conn.SetName(*patch.Name); err != nil {
			return err
		}
	}
	if patch.MicOn != nil {
		e.Conn.Media.MicOn = *patch.MicOn
	}
	if patch.CamOn != nil {
		e.Conn.Media.CamOn = *patch.CamOn
	}
	log.Debug().Str("module", "app.registry").Str("conn", string(id)).Msg("updated meta")
	return nil
}

// Remove deletes the record. The disconnect handler must have already told
// the pairing engine and room messaging to release the connection.
func (r *Registry) Remove(id domain.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, id)
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("removed connection")
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Cancel fires the context cancel bound to id, forcing its transport down.
func (r *Registry) Cancel(id domain.ConnID) bool {
	r.mu.RLock()
	e, ok := r.conns[id]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("canceled connection")
	return true
}

func (r *Registry) Snapshot() []core.ConnectionDTO {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.ConnectionDTO, 0, len(r.conns))
	for _, e := range r.conns {
		out = append(out, core.ConnectionDTO{ID: e.Conn.ID, Name: e.Conn.Name, Media: e.Conn.Media})
	}
	return out
}
