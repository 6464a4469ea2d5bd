package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/vkotov/roulette/internal/domain"
)

func (ctl *Controller) handleChatJoin(id domain.ConnID, conn *WsConn, data []byte) {
	var p struct {
		Type   string `json:"type"`
		RoomID string `json:"roomId"`
		Name   string `json:"name"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad chat join payload")
		ctl.sendJSON(conn, map[string]any{"type": "error", "error": "bad_payload"})
		return
	}
	if p.RoomID == "" {
		ctl.sendJSON(conn, map[string]any{"type": "error", "error": "empty room"})
		return
	}

	log.Info().Str("module", "signal").Str("conn", string(id)).Str("room", p.RoomID).Msg("chat:join")
	ctl.Orch.JoinRoom(id, domain.RoomID(p.RoomID), p.Name)
}

func (ctl *Controller) handleChatMessage(id domain.ConnID, conn *WsConn, data []byte) {
	var p struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad chat message payload")
		return
	}
	if p.Text == "" {
		return
	}
	if !ctl.limiter.Allow(id) {
		log.Warn().Str("module", "signal").Str("conn", string(id)).Msg("chat message rate limited")
		ctl.sendJSON(conn, map[string]any{"type": "error", "error": "slow down"})
		return
	}
	ctl.Orch.SendChat(id, p.Text)
}

func (ctl *Controller) handleChatTyping(id domain.ConnID, data []byte) {
	var p struct {
		Type     string `json:"type"`
		IsTyping bool   `json:"isTyping"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad typing payload")
		return
	}
	ctl.Orch.Typing(id, p.IsTyping)
}
