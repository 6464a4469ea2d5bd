package signal

import (
	"github.com/rs/zerolog/log"

	"github.com/vkotov/roulette/internal/domain"
)

// handleNext — dissolve the current pairing and put only the caller back
// into the waiting pool.
func (ctl *Controller) handleNext(id domain.ConnID) {
	log.Info().Str("module", "signal").Str("conn", string(id)).Msg("queue:next")
	ctl.Orch.Next(id)
}

// handleLeave — dissolve and go idle; the websocket stays open.
func (ctl *Controller) handleLeave(id domain.ConnID) {
	log.Info().Str("module", "signal").Str("conn", string(id)).Msg("queue:leave")
	ctl.Orch.Leave(id)
}
