package signal

import (
	"github.com/dkeye/Estimate/internal/core"
	"github.com/dkeye/Estimate/internal/domain"
)

type whoamiResp struct {
	Type          string               `json:"type"`
	SessionID     core.SessionID       `json:"sessionId"`
	RoomID        domain.RoomID        `json:"roomId,omitempty"`
	ParticipantID domain.ParticipantID `json:"participantId,omitempty"`
}

func (ctl *SignalWSController) handleWhoAmI(sid core.SessionID, conn core.SignalConnection) {
	resp := whoamiResp{Type: "whoami", SessionID: sid}
	if room, pid, ok := ctl.Orch.Whoami(sid); ok {
		resp.RoomID = room
		resp.ParticipantID = pid
	}
	ctl.sendJSON(conn, resp)
}
