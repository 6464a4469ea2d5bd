package app

import "github.com/vkotov/roulette/internal/domain"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	DropFrame
	KickConnection
)

// Policy decides what to do with a connection whose send buffer is full
// during a room broadcast.
type Policy interface {
	OnBackpressure(room domain.RoomID, id domain.ConnID) BackpressureAction
}

type SimplePolicy struct{}

func (SimplePolicy) OnBackpressure(room domain.RoomID, id domain.ConnID) BackpressureAction {
	return KickConnection
}
