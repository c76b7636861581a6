package orch

import (
	"errors"
	"strings"

	"github.com/dkeye/Estimate/internal/core"
	"github.com/dkeye/Estimate/internal/domain"
	"github.com/rs/zerolog/log"
)

// DefaultHostName is used when a room is created without a name.
const DefaultHostName = "Host"

// CheckRoom is the read-only existence probe; it never creates anything.
func (o *Orchestrator) CheckRoom(roomID domain.RoomID) (core.RoomInfo, error) {
	return o.Rooms.Lookup(domain.NormalizeRoomID(string(roomID)))
}

func (o *Orchestrator) ListRooms() []core.RoomInfo {
	return o.Rooms.List()
}

// CreateRoom registers a room whose host seat is not yet connected. The
// caller attaches a transport with JoinRoom using the returned participant.
func (o *Orchestrator) CreateRoom(name, rawRole, rawMode string) (domain.RoomID, domain.Participant, error) {
	mode := domain.ParseMode(rawMode)
	if strings.TrimSpace(name) == "" {
		name = DefaultHostName
	}
	host, err := domain.NewParticipant(name, domain.ParseRole(rawRole, mode), true)
	if err != nil {
		return "", domain.Participant{}, err
	}
	room, err := o.Rooms.Create(mode, host)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("create room")
		return "", domain.Participant{}, err
	}
	log.Info().Str("module", "orch").Str("room", string(room.ID())).Str("host", string(host.ID)).Msg("room created")
	return room.ID(), *host, nil
}

// JoinRoom attaches the session to a seat in roomID. A known participant id,
// or the seat this device held before, resumes that participant. A rejected
// join leaves the session in its previous room.
func (o *Orchestrator) JoinRoom(sid core.SessionID, roomID domain.RoomID, supplied domain.ParticipantID, name, rawRole string) (core.State, error) {
	roomID = domain.NormalizeRoomID(string(roomID))
	sess, ok := o.Registry.GetSession(sid)
	if !ok {
		return core.State{}, domain.ErrNotInRoom
	}
	if supplied == "" {
		supplied, _ = o.Registry.RememberedSeat(roomID, sess.Device())
	}
	if err := o.Rooms.With(roomID, func(room *core.Room) error {
		return canAttach(room, supplied, name)
	}); err != nil {
		return core.State{}, err
	}

	from, prev, bound := o.Registry.RoomOf(sid)
	if bound && from != roomID {
		if err := o.LeaveRoom(sid); err != nil && !errors.Is(err, domain.ErrRoomNotFound) {
			return core.State{}, err
		}
		log.Info().Str("module", "orch").Str("sid", string(sid)).Str("from_room", string(from)).Msg("left previous room")
	}

	var st core.State
	err := o.Rooms.With(roomID, func(room *core.Room) error {
		p, reconnected, events, err := room.Attach(supplied, name, domain.ParseRole(rawRole, room.Mode()))
		if err != nil {
			return err
		}
		if bound && from == roomID && prev != p.ID && !o.Registry.SeatHeldElsewhere(roomID, prev, sid) {
			// The later presence already lists the new seat.
			if left, err := room.MarkDisconnected(prev); err == nil && len(left) > 0 {
				events = left
			}
		}
		o.publish(roomID, events...)
		o.Registry.Attach(sid, roomID, p.ID)
		st = room.Snapshot(p.ID)
		st.Reconnected = reconnected
		return nil
	})
	if err != nil {
		return core.State{}, err
	}
	log.Info().Str("module", "orch").Str("sid", string(sid)).Str("room", string(roomID)).Str("participant", string(st.ParticipantID)).Bool("reconnected", st.Reconnected).Msg("joined room")
	return st, nil
}

// canAttach runs the checks Attach would fail on, without mutating the room.
func canAttach(room *core.Room, supplied domain.ParticipantID, name string) error {
	_, known := room.Participant(supplied)
	if known && supplied != "" && name == "" {
		return nil
	}
	_, err := domain.NormalizeDisplayName(name)
	return err
}

// LeaveRoom detaches the session. The participant is only marked
// disconnected when no other live session holds the same seat.
func (o *Orchestrator) LeaveRoom(sid core.SessionID) error {
	roomID, pid, ok := o.Registry.RoomOf(sid)
	if !ok {
		return domain.ErrNotInRoom
	}
	return o.Rooms.With(roomID, func(room *core.Room) error {
		o.Registry.Detach(sid)
		if o.Registry.SeatHeldElsewhere(roomID, pid, sid) {
			return nil
		}
		events, err := room.MarkDisconnected(pid)
		if err != nil {
			return err
		}
		o.publish(roomID, events...)
		return nil
	})
}

// OnDisconnect is called by the transport once a connection is gone.
func (o *Orchestrator) OnDisconnect(sid core.SessionID) {
	if err := o.LeaveRoom(sid); err != nil && !errors.Is(err, domain.ErrNotInRoom) && !errors.Is(err, domain.ErrRoomNotFound) {
		log.Warn().Err(err).Str("module", "orch").Str("sid", string(sid)).Msg("disconnect cleanup")
	}
	o.Registry.Unbind(sid)
}

// EndSession lets the host close the room for everybody. Connections stay
// open but are no longer attached to any room.
func (o *Orchestrator) EndSession(sid core.SessionID, roomID domain.RoomID) error {
	roomID = domain.NormalizeRoomID(string(roomID))
	return o.Rooms.Update(roomID, func(room *core.Room) (bool, error) {
		pid, err := o.seatIn(sid, roomID)
		if err != nil {
			return false, err
		}
		events, err := room.EndSession(pid)
		if err != nil {
			return false, err
		}
		o.publish(roomID, events...)
		o.Registry.ForgetRoom(roomID)
		log.Info().Str("module", "orch").Str("room", string(roomID)).Msg("session ended by host")
		return true, nil
	})
}
