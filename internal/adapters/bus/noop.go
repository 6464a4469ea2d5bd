package bus

import "github.com/vkotov/roulette/internal/core"

// NoopBus is the single-instance mode bus: events go nowhere and the core
// works exactly the same.
type NoopBus struct{}

func (NoopBus) Publish(core.BusEvent) {}
func (NoopBus) Close()                {}
