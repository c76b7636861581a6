package signal

import (
	"github.com/dkeye/Estimate/internal/core"
	"github.com/dkeye/Estimate/internal/domain"
)

func (ctl *SignalWSController) handlePing(conn core.SignalConnection) {
	ctl.sendJSON(conn, struct {
		Type string `json:"type"`
	}{Type: "pong"})
}

func (ctl *SignalWSController) handleUpdateSettings(sid core.SessionID, conn core.SignalConnection, data []byte) {
	var p struct {
		RoomID   string                `json:"roomId"`
		Settings *domain.SettingsPatch `json:"settings"`
	}
	if !ctl.decode(conn, "update_room_settings", data, &p) {
		return
	}
	if p.Settings == nil {
		ctl.sendError(conn, "update_room_settings", errBadPayload)
		return
	}
	ctl.reply(conn, "update_room_settings", ctl.Orch.UpdateSettings(sid, domain.RoomID(p.RoomID), *p.Settings))
}

func (ctl *SignalWSController) handleReaction(sid core.SessionID, conn core.SignalConnection, data []byte) {
	var p struct {
		RoomID     string `json:"roomId"`
		ReactionID string `json:"reactionId"`
	}
	if !ctl.decode(conn, "send_reaction", data, &p) {
		return
	}
	if room, pid, ok := ctl.Orch.Registry.RoomOf(sid); ok && room == domain.NormalizeRoomID(p.RoomID) {
		if !ctl.Reactions.Allow(room, pid) {
			ctl.sendError(conn, "send_reaction", domain.ErrRateLimited)
			return
		}
	}
	ctl.reply(conn, "send_reaction", ctl.Orch.SendReaction(sid, domain.RoomID(p.RoomID), p.ReactionID))
}

func (ctl *SignalWSController) handleUpdateAvatar(sid core.SessionID, conn core.SignalConnection, data []byte) {
	var p roomRef
	if !ctl.decode(conn, "update_avatar", data, &p) {
		return
	}
	ctl.reply(conn, "update_avatar", ctl.Orch.UpdateAvatar(sid, domain.RoomID(p.RoomID)))
}
