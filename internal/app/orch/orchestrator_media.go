package orch

import (
	"github.com/rs/zerolog/log"

	"github.com/vkotov/roulette/internal/app"
	"github.com/vkotov/roulette/internal/core"
	"github.com/vkotov/roulette/internal/domain"
)

// UpdateMedia records the display-only mic/cam flags and relays the raw
// frame to the session partner. The flags are never enforced; they exist so
// the peer can render a muted badge or an avatar placeholder.
func (o *Orchestrator) UpdateMedia(from domain.ConnID, kind string, micOn, camOn *bool, frame core.Frame) {
	if err := o.Registry.UpdateMeta(from, app.MetaPatch{MicOn: micOn, CamOn: camOn}); err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("conn", string(from)).Msg("media flags update failed")
	}
	o.RelaySignal(from, kind, frame)
}
