package signal

import (
	"encoding/json"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/vkotov/roulette/internal/domain"
)

// handleDescription relays an offer or answer. The SDP is decoded only to
// reject obviously empty payloads and to log the negotiation progress; the
// frame the partner receives is the sender's bytes untouched.
func (ctl *Controller) handleDescription(id domain.ConnID, kind string, data []byte) {
	var p struct {
		Type      string                    `json:"type"`
		SessionID domain.SessionID          `json:"sessionId"`
		SDP       webrtc.SessionDescription `json:"sdp"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("kind", kind).Msg("bad description payload")
		return
	}
	if p.SDP.SDP == "" {
		log.Warn().Str("module", "signal").Str("conn", string(id)).Str("kind", kind).Msg("empty sdp, dropped")
		return
	}

	log.Debug().Str("module", "signal").
		Str("conn", string(id)).
		Str("kind", kind).
		Str("sdp_type", p.SDP.Type.String()).
		Msg("relaying session description")
	ctl.Orch.RelaySignal(id, kind, data)
}

// handleCandidate relays a trickled ICE candidate. The role tag tells the
// receiver which local peer object the candidate belongs to; the relay does
// not interpret it.
func (ctl *Controller) handleCandidate(id domain.ConnID, data []byte) {
	var p struct {
		Type      string                  `json:"type"`
		Candidate webrtc.ICECandidateInit `json:"candidate"`
		Role      string                  `json:"role"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad candidate payload")
		return
	}
	if p.Candidate.Candidate == "" {
		log.Warn().Str("module", "signal").Str("conn", string(id)).Msg("empty candidate, dropped")
		return
	}
	ctl.Orch.RelaySignal(id, "add-ice-candidate", data)
}
