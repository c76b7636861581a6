package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dkeye/Estimate/internal/core"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.opts.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.opts.WriteWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.opts.WriteWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Warn().Err(err).Str("module", "signal").Msg("writePump ping failed")
				return
			}
		}
	}
}

func (ctl *SignalWSController) readPump(ctx context.Context, cancel context.CancelFunc, sid core.SessionID, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump closing")
		cancel()
		ctl.Orch.OnDisconnect(sid)
		c.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(ctl.opts.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(ctl.opts.PongWait))
	})

	for {
		if ctx.Err() != nil {
			return
		}
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("readPump read error")
			}
			return
		}
		ctl.handleSignal(sid, c, data)
	}
}

type envelope struct {
	Type string `json:"type"`
}

func (ctl *SignalWSController) handleSignal(sid core.SessionID, c core.SignalConnection, data []byte) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		ctl.sendError(c, "", errBadPayload)
		return
	}

	switch env.Type {
	case "check_room":
		ctl.handleCheckRoom(c, data)
	case "create_room":
		ctl.handleCreateRoom(sid, c, data)
	case "join_room":
		ctl.handleJoin(sid, c, data)
	case "leave_room":
		ctl.handleLeave(sid, c)
	case "start_vote":
		ctl.handleStartVote(sid, c, data)
	case "cast_vote":
		ctl.handleCastVote(sid, c, data)
	case "reveal":
		ctl.handleReveal(sid, c, data)
	case "reset":
		ctl.handleReset(sid, c, data)
	case "revote_partial":
		ctl.handleRevotePartial(sid, c, data)
	case "update_room_settings":
		ctl.handleUpdateSettings(sid, c, data)
	case "send_reaction":
		ctl.handleReaction(sid, c, data)
	case "update_avatar":
		ctl.handleUpdateAvatar(sid, c, data)
	case "end_session":
		ctl.handleEndSession(sid, c, data)
	case "whoami":
		ctl.handleWhoAmI(sid, c)
	case "ping":
		ctl.handlePing(c)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown signal")
		ctl.sendError(c, env.Type, errUnknownCommand)
	}
}

func (ctl *SignalWSController) sendJSON(c core.SignalConnection, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	if err := c.TrySend(b); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("sendJSON dropped reply")
	}
}

// decode unmarshals a command payload, replying bad_payload on failure.
func (ctl *SignalWSController) decode(c core.SignalConnection, command string, data []byte, v any) bool {
	if err := json.Unmarshal(data, v); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("command", command).Msg("bad payload")
		ctl.sendError(c, command, errBadPayload)
		return false
	}
	return true
}

type ackResp struct {
	Type    string `json:"type"`
	Command string `json:"command"`
}

// reply sends ack on success or the mapped error frame.
func (ctl *SignalWSController) reply(c core.SignalConnection, command string, err error) {
	if err != nil {
		ctl.sendError(c, command, err)
		return
	}
	ctl.sendJSON(c, ackResp{Type: "ack", Command: command})
}
