package signal

import (
	"github.com/dkeye/Estimate/internal/core"
	"github.com/dkeye/Estimate/internal/domain"
	"github.com/rs/zerolog/log"
)

type roomRef struct {
	RoomID string `json:"roomId"`
}

type roomStatusResp struct {
	Type   string        `json:"type"`
	RoomID domain.RoomID `json:"roomId"`
	Exists bool          `json:"exists"`
	Mode   domain.Mode   `json:"mode,omitempty"`
}

type roomJoinedResp struct {
	Type string `json:"type"`
	core.State
}

func (ctl *SignalWSController) handleCheckRoom(conn core.SignalConnection, data []byte) {
	var p roomRef
	if !ctl.decode(conn, "check_room", data, &p) {
		return
	}
	id := domain.NormalizeRoomID(p.RoomID)
	resp := roomStatusResp{Type: "room_status", RoomID: id}
	if info, err := ctl.Orch.CheckRoom(id); err == nil {
		resp.Exists = true
		resp.Mode = info.Mode
	}
	ctl.sendJSON(conn, resp)
}

func (ctl *SignalWSController) handleCreateRoom(sid core.SessionID, conn core.SignalConnection, data []byte) {
	var p struct {
		Name string `json:"name"`
		Role string `json:"role"`
		Mode string `json:"mode"`
	}
	if !ctl.decode(conn, "create_room", data, &p) {
		return
	}
	roomID, host, err := ctl.Orch.CreateRoom(p.Name, p.Role, p.Mode)
	if err != nil {
		ctl.sendError(conn, "create_room", err)
		return
	}
	st, err := ctl.Orch.JoinRoom(sid, roomID, host.ID, host.DisplayName, "")
	if err != nil {
		ctl.sendError(conn, "create_room", err)
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", string(roomID)).Msg("room created")
	ctl.sendJSON(conn, roomJoinedResp{Type: "room_joined", State: st})
}

func (ctl *SignalWSController) handleJoin(sid core.SessionID, conn core.SignalConnection, data []byte) {
	var p struct {
		RoomID        string `json:"roomId"`
		Name          string `json:"name"`
		Role          string `json:"role"`
		ParticipantID string `json:"participantId"`
	}
	if !ctl.decode(conn, "join_room", data, &p) {
		return
	}
	if len(p.ParticipantID) > domain.MaxParticipantIDLen {
		ctl.sendError(conn, "join_room", errBadPayload)
		return
	}
	st, err := ctl.Orch.JoinRoom(sid, domain.NormalizeRoomID(p.RoomID), domain.ParticipantID(p.ParticipantID), p.Name, p.Role)
	if err != nil {
		ctl.sendError(conn, "join_room", err)
		return
	}
	ctl.sendJSON(conn, roomJoinedResp{Type: "room_joined", State: st})
}

// handleLeave detaches from the current room; the connection stays open.
func (ctl *SignalWSController) handleLeave(sid core.SessionID, conn core.SignalConnection) {
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("leave")
	if err := ctl.Orch.LeaveRoom(sid); err != nil {
		ctl.sendError(conn, "leave_room", err)
		return
	}
	ctl.sendJSON(conn, map[string]any{"type": "left"})
}

func (ctl *SignalWSController) handleEndSession(sid core.SessionID, conn core.SignalConnection, data []byte) {
	var p roomRef
	if !ctl.decode(conn, "end_session", data, &p) {
		return
	}
	err := ctl.Orch.EndSession(sid, domain.RoomID(p.RoomID))
	if err == nil {
		ctl.Reactions.Forget(domain.NormalizeRoomID(p.RoomID))
	}
	ctl.reply(conn, "end_session", err)
}
