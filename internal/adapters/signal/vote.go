package signal

import (
	"github.com/dkeye/Estimate/internal/core"
	"github.com/dkeye/Estimate/internal/domain"
)

func (ctl *SignalWSController) handleStartVote(sid core.SessionID, conn core.SignalConnection, data []byte) {
	var p roomRef
	if !ctl.decode(conn, "start_vote", data, &p) {
		return
	}
	ctl.reply(conn, "start_vote", ctl.Orch.StartVote(sid, domain.RoomID(p.RoomID)))
}

func (ctl *SignalWSController) handleCastVote(sid core.SessionID, conn core.SignalConnection, data []byte) {
	var p struct {
		RoomID string `json:"roomId"`
		Value  string `json:"value"`
	}
	if !ctl.decode(conn, "cast_vote", data, &p) {
		return
	}
	ctl.reply(conn, "cast_vote", ctl.Orch.CastVote(sid, domain.RoomID(p.RoomID), p.Value))
}

func (ctl *SignalWSController) handleReveal(sid core.SessionID, conn core.SignalConnection, data []byte) {
	var p roomRef
	if !ctl.decode(conn, "reveal", data, &p) {
		return
	}
	ctl.reply(conn, "reveal", ctl.Orch.Reveal(sid, domain.RoomID(p.RoomID)))
}

func (ctl *SignalWSController) handleReset(sid core.SessionID, conn core.SignalConnection, data []byte) {
	var p roomRef
	if !ctl.decode(conn, "reset", data, &p) {
		return
	}
	ctl.reply(conn, "reset", ctl.Orch.Reset(sid, domain.RoomID(p.RoomID)))
}

func (ctl *SignalWSController) handleRevotePartial(sid core.SessionID, conn core.SignalConnection, data []byte) {
	var p struct {
		RoomID      string `json:"roomId"`
		TargetGroup string `json:"targetGroup"`
	}
	if !ctl.decode(conn, "revote_partial", data, &p) {
		return
	}
	ctl.reply(conn, "revote_partial", ctl.Orch.PartialRevote(sid, domain.RoomID(p.RoomID), p.TargetGroup))
}
