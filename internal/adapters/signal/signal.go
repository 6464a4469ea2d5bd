package signal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/vkotov/roulette/internal/app/orch"
	"github.com/vkotov/roulette/internal/config"
	"github.com/vkotov/roulette/internal/core"
	"github.com/vkotov/roulette/internal/domain"
)

type Controller struct {
	Orch    *orch.Orchestrator
	Cfg     *config.Config
	limiter *ChatRateLimiter
}

func NewController(o *orch.Orchestrator, cfg *config.Config) *Controller {
	return &Controller{
		Orch:    o,
		Cfg:     cfg,
		limiter: NewChatRateLimiter(cfg.ChatMsgLimit, cfg.ChatMsgWindow),
	}
}

// WsConn wraps a websocket with a buffered outbound queue. The queue is the
// per-connection ordering point: everything the server says to this client
// goes through it, so relayed frames arrive in submission order.
type WsConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return core.ErrBackpressure
	}
	return nil
}

func (c *WsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the request and plugs the connection into the
// matchmaking core. The client is auto-enqueued on connect.
func (ctl *Controller) HandleSignal(ctx context.Context, c *gin.Context) {
	id := domain.ConnID(c.GetString("client_token"))
	name := c.Query("name")
	log.Info().Str("module", "signal").Str("conn", string(id)).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	ws.SetReadLimit(ctl.Cfg.ReadLimit)
	if ctl.Cfg.PingPeriod > 0 {
		wait := ctl.Cfg.PingPeriod * 10 / 9
		_ = ws.SetReadDeadline(time.Now().Add(wait))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(wait))
		})
	}

	conn := &WsConn{
		conn: ws,
		send: make(chan core.Frame, 32),
	}

	ctx, cancel := context.WithCancel(ctx)
	if err := ctl.Orch.OnConnect(id, name, conn, cancel); err != nil {
		// Duplicate identifier is fatal for this registration. The pumps
		// never start, so the error frame goes out directly.
		log.Error().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("registration rejected")
		if b, merr := json.Marshal(map[string]any{"type": "error", "error": err.Error()}); merr == nil {
			_ = ws.WriteMessage(websocket.TextMessage, b)
		}
		cancel()
		conn.Close()
		return
	}

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, id, conn)
}
