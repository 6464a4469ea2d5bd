package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/vkotov/roulette/internal/core"
	"github.com/vkotov/roulette/internal/domain"
)

func (ctl *Controller) writePump(ctx context.Context, c *WsConn) {
	// Closing here on every exit unblocks the reader, so a cancel (kick) or
	// a write failure always funnels into readPump's disconnect teardown.
	defer c.Close()

	var keepalive <-chan time.Time
	if ctl.Cfg.PingPeriod > 0 {
		ticker := time.NewTicker(ctl.Cfg.PingPeriod)
		defer ticker.Stop()
		keepalive = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("writePump ctx done")
			return
		case <-keepalive:
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Warn().Err(err).Str("module", "signal").Msg("writePump keepalive ping failed")
				return
			}
		case data, ok := <-c.send:
			if !ok {
				log.Warn().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, id domain.ConnID, c *WsConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("conn", string(id)).Msg("readPump closing")
		ctl.Orch.OnDisconnect(id)
		ctl.limiter.Forget(id)
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("conn", string(id)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Error().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("readPump read error")
				return
			}
			ctl.handleSignal(id, c, data)
		}
	}
}

func (ctl *Controller) handleSignal(id domain.ConnID, c *WsConn, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		return
	}

	switch env.Type {
	case "offer", "answer":
		ctl.handleDescription(id, env.Type, data)
	case "add-ice-candidate":
		ctl.handleCandidate(id, data)
	case "queue:next":
		ctl.handleNext(id)
	case "queue:leave":
		ctl.handleLeave(id)
	case "media:state":
		ctl.handleMediaState(id, data)
	case "media:mic", "media:cam":
		ctl.handleMediaToggle(id, env.Type, data)
	case "chat:join":
		ctl.handleChatJoin(id, c, data)
	case "chat:message":
		ctl.handleChatMessage(id, c, data)
	case "chat:typing":
		ctl.handleChatTyping(id, data)
	case "ping":
		ctl.handlePing(c)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown signal")
	}
}

func (ctl *Controller) sendJSON(c *WsConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(core.Frame(b))
}
