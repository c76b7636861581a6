package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/dkeye/Estimate/internal/app/orch"
	"github.com/dkeye/Estimate/internal/core"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

// Options are the per-connection limits, usually taken from config.
type Options struct {
	ReadLimit        int64
	PingPeriod       time.Duration
	PongWait         time.Duration
	WriteWait        time.Duration
	SendBuffer       int
	ReactionLimit    int
	ReactionInterval time.Duration
}

func DefaultOptions() Options {
	return Options{
		ReadLimit:        32768,
		PingPeriod:       54 * time.Second,
		PongWait:         60 * time.Second,
		WriteWait:        10 * time.Second,
		SendBuffer:       64,
		ReactionLimit:    5,
		ReactionInterval: 10 * time.Second,
	}
}

type SignalWSController struct {
	Orch      *orch.Orchestrator
	Reactions *RoomRateLimiter
	opts      Options
}

func NewSignalWSController(o *orch.Orchestrator, opts Options) *SignalWSController {
	def := DefaultOptions()
	if opts.ReadLimit <= 0 {
		opts.ReadLimit = def.ReadLimit
	}
	if opts.PongWait <= 0 {
		opts.PongWait = def.PongWait
	}
	if opts.PingPeriod <= 0 || opts.PingPeriod >= opts.PongWait {
		opts.PingPeriod = opts.PongWait * 9 / 10
	}
	if opts.WriteWait <= 0 {
		opts.WriteWait = def.WriteWait
	}
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = def.SendBuffer
	}
	if opts.ReactionLimit <= 0 {
		opts.ReactionLimit = def.ReactionLimit
	}
	if opts.ReactionInterval <= 0 {
		opts.ReactionInterval = def.ReactionInterval
	}
	return &SignalWSController{
		Orch:      o,
		Reactions: NewRoomRateLimiter(opts.ReactionLimit, opts.ReactionInterval),
		opts:      opts,
	}
}

// WsSignalConn is the core.SignalConnection over one websocket. Frames are
// queued on a bounded channel drained by writePump.
type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
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

// HandleSignal upgrades the request and starts both pumps. Every connection
// gets its own session id; the cookie client token only identifies the device.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	device := core.DeviceToken(c.GetString("client_token"))
	sid := core.SessionID(uuid.NewString())
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("device", string(device)).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	ws.SetReadLimit(ctl.opts.ReadLimit)

	conn := &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, ctl.opts.SendBuffer),
	}

	sess := core.NewSession(sid, device, conn)
	ctx, cancel := context.WithCancel(ctx)
	ctl.Orch.Registry.BindSignal(sess, cancel)

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, sid, conn)
}
