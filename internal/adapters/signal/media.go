package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/vkotov/roulette/internal/domain"
)

// handleMediaState — bundled mic/cam flags, relayed for display only.
func (ctl *Controller) handleMediaState(id domain.ConnID, data []byte) {
	var p struct {
		Type  string `json:"type"`
		State struct {
			MicOn *bool `json:"micOn"`
			CamOn *bool `json:"camOn"`
		} `json:"state"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad media state payload")
		return
	}
	ctl.Orch.UpdateMedia(id, "media:state", p.State.MicOn, p.State.CamOn, data)
}

// handleMediaToggle — single-flag media:mic / media:cam notice.
func (ctl *Controller) handleMediaToggle(id domain.ConnID, kind string, data []byte) {
	var p struct {
		Type string `json:"type"`
		On   bool   `json:"on"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad media toggle payload")
		return
	}
	var micOn, camOn *bool
	if kind == "media:mic" {
		micOn = &p.On
	} else {
		camOn = &p.On
	}
	ctl.Orch.UpdateMedia(id, kind, micOn, camOn, data)
}
