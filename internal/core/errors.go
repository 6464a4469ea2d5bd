package core

import "errors"

// Error taxonomy of the matchmaking core. Only ErrDuplicateConnection is
// fatal for its connection; the rest are expected under normal concurrent
// use (stale events, protocol races) and are logged and dropped.
var (
	ErrDuplicateConnection = errors.New("duplicate connection")
	ErrNotFound            = errors.New("not found")
	ErrAlreadyQueued       = errors.New("already queued")
	ErrAlreadyInSession    = errors.New("already in session")
	ErrNoActiveSession     = errors.New("no active session")
	ErrNotInRoom           = errors.New("not in room")
	ErrBackpressure        = errors.New("backpressure")
)
