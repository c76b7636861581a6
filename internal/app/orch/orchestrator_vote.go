package orch

import (
	"github.com/dkeye/Estimate/internal/core"
	"github.com/dkeye/Estimate/internal/domain"
)

func (o *Orchestrator) StartVote(sid core.SessionID, roomID domain.RoomID) error {
	return o.act(sid, roomID, func(room *core.Room, pid domain.ParticipantID) ([]core.Event, error) {
		return room.StartVote(pid)
	})
}

func (o *Orchestrator) CastVote(sid core.SessionID, roomID domain.RoomID, value string) error {
	return o.act(sid, roomID, func(room *core.Room, pid domain.ParticipantID) ([]core.Event, error) {
		return room.CastVote(pid, value)
	})
}

func (o *Orchestrator) Reveal(sid core.SessionID, roomID domain.RoomID) error {
	return o.act(sid, roomID, func(room *core.Room, pid domain.ParticipantID) ([]core.Event, error) {
		return room.Reveal(pid)
	})
}

func (o *Orchestrator) Reset(sid core.SessionID, roomID domain.RoomID) error {
	return o.act(sid, roomID, func(room *core.Room, pid domain.ParticipantID) ([]core.Event, error) {
		return room.Reset(pid)
	})
}

// PartialRevote accepts GROUP_A/GROUP_B or the DEV/QA aliases.
func (o *Orchestrator) PartialRevote(sid core.SessionID, roomID domain.RoomID, group string) error {
	return o.act(sid, roomID, func(room *core.Room, pid domain.ParticipantID) ([]core.Event, error) {
		target, ok := domain.ParseGroup(group)
		if !ok {
			target = domain.Role(group)
		}
		return room.PartialRevote(pid, target)
	})
}
