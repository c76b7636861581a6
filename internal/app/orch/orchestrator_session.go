package orch

import (
	"github.com/dkeye/Estimate/internal/core"
	"github.com/dkeye/Estimate/internal/domain"
)

func (o *Orchestrator) UpdateSettings(sid core.SessionID, roomID domain.RoomID, patch domain.SettingsPatch) error {
	return o.act(sid, roomID, func(room *core.Room, pid domain.ParticipantID) ([]core.Event, error) {
		return room.UpdateSettings(pid, patch)
	})
}

func (o *Orchestrator) SendReaction(sid core.SessionID, roomID domain.RoomID, raw string) error {
	reaction, err := domain.ParseReaction(raw)
	if err != nil {
		return err
	}
	return o.act(sid, roomID, func(room *core.Room, pid domain.ParticipantID) ([]core.Event, error) {
		return room.SendReaction(pid, reaction)
	})
}

func (o *Orchestrator) UpdateAvatar(sid core.SessionID, roomID domain.RoomID) error {
	return o.act(sid, roomID, func(room *core.Room, pid domain.ParticipantID) ([]core.Event, error) {
		return room.RegenerateAvatar(pid)
	})
}

// Whoami reports the seat a session is bound to, if any.
func (o *Orchestrator) Whoami(sid core.SessionID) (domain.RoomID, domain.ParticipantID, bool) {
	return o.Registry.RoomOf(sid)
}
