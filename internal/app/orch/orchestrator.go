package orch

import (
	"github.com/dkeye/Estimate/internal/app"
	"github.com/dkeye/Estimate/internal/core"
	"github.com/dkeye/Estimate/internal/domain"
	"github.com/rs/zerolog/log"
)

// Orchestrator is the single entry point for room commands. Each command
// runs under the room lock and enqueues its events before the lock is
// released, so every connection sees a room's events in commit order.
type Orchestrator struct {
	Registry *app.Registry
	Rooms    *app.RoomManager
	Policy   app.Policy
	Events   core.Broadcaster
}

func New(reg *app.Registry, rooms *app.RoomManager, events core.Broadcaster, policy app.Policy) *Orchestrator {
	return &Orchestrator{Registry: reg, Rooms: rooms, Events: events, Policy: policy}
}

// act resolves the caller's seat in roomID and applies fn under the room lock.
func (o *Orchestrator) act(sid core.SessionID, roomID domain.RoomID, fn func(room *core.Room, pid domain.ParticipantID) ([]core.Event, error)) error {
	roomID = domain.NormalizeRoomID(string(roomID))
	return o.Rooms.With(roomID, func(room *core.Room) error {
		pid, err := o.seatIn(sid, roomID)
		if err != nil {
			return err
		}
		events, err := fn(room, pid)
		if err != nil {
			return err
		}
		o.publish(roomID, events...)
		return nil
	})
}

func (o *Orchestrator) seatIn(sid core.SessionID, roomID domain.RoomID) (domain.ParticipantID, error) {
	bound, pid, ok := o.Registry.RoomOf(sid)
	if !ok || bound != roomID {
		return "", domain.ErrNotInRoom
	}
	return pid, nil
}

// publish must be called with the room lock held.
func (o *Orchestrator) publish(roomID domain.RoomID, events ...core.Event) {
	if o.Events == nil {
		return
	}
	for _, ev := range events {
		res := o.Events.Publish(roomID, ev)
		o.onDropped(roomID, res.Dropped)
	}
}

func (o *Orchestrator) onDropped(roomID domain.RoomID, dropped []core.SessionID) {
	if o.Policy == nil {
		return
	}
	for _, sid := range dropped {
		switch o.Policy.OnBackPressure(roomID, sid) {
		case app.KickMember:
			log.Warn().Str("module", "orch").Str("room", string(roomID)).Str("sid", string(sid)).Msg("send buffer full, dropping connection")
			o.Registry.Cancel(sid)
		case app.NoAction:
		}
	}
}
