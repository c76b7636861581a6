package app

import (
	"context"
	"sync"

	"github.com/dkeye/Estimate/internal/core"
	"github.com/dkeye/Estimate/internal/domain"
	"github.com/rs/zerolog/log"
)

type sessionEntry struct {
	RoomID        domain.RoomID
	ParticipantID domain.ParticipantID
	Session       core.Session
	Cancel        context.CancelFunc
}

type seatKey struct {
	room   domain.RoomID
	device core.DeviceToken
}

// Registry tracks live transport sessions, the room seat each one is bound to,
// and which seat a device last held in each room.
type Registry struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*sessionEntry
	seats    map[seatKey]domain.ParticipantID
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[core.SessionID]*sessionEntry),
		seats:    make(map[seatKey]domain.ParticipantID),
	}
}

func (r *Registry) BindSignal(sess core.Session, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sess.ID()] = &sessionEntry{Session: sess, Cancel: cancel}
	log.Info().Str("module", "app.registry").Str("sid", string(sess.ID())).Msg("bound signal")
}

func (r *Registry) GetSession(sid core.SessionID) (core.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.sessions[sid]; ok {
		return e.Session, true
	}
	return nil, false
}

func (r *Registry) Unbind(sid core.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sid)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("unbind session")
}

// RoomOf returns the room and seat a session is attached to.
func (r *Registry) RoomOf(sid core.SessionID) (domain.RoomID, domain.ParticipantID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.sessions[sid]
	if !ok || entry.RoomID == "" {
		return "", "", false
	}
	return entry.RoomID, entry.ParticipantID, true
}

// Attach binds a session to a seat and remembers the seat for its device.
func (r *Registry) Attach(sid core.SessionID, room domain.RoomID, pid domain.ParticipantID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.sessions[sid]
	if !ok {
		return false
	}
	entry.RoomID = room
	entry.ParticipantID = pid
	if dev := entry.Session.Device(); dev != "" {
		r.seats[seatKey{room: room, device: dev}] = pid
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("room", string(room)).Str("participant", string(pid)).Msg("attached session")
	return true
}

// Detach clears the room association; the connection stays open.
func (r *Registry) Detach(sid core.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.sessions[sid]; ok {
		entry.RoomID = ""
		entry.ParticipantID = ""
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("removed room association")
}

// RememberedSeat returns the participant a device last held in room.
func (r *Registry) RememberedSeat(room domain.RoomID, dev core.DeviceToken) (domain.ParticipantID, bool) {
	if dev == "" {
		return "", false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	pid, ok := r.seats[seatKey{room: room, device: dev}]
	return pid, ok
}

// SeatHeldElsewhere reports whether pid is still attached through a session
// other than except.
func (r *Registry) SeatHeldElsewhere(room domain.RoomID, pid domain.ParticipantID, except core.SessionID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for sid, e := range r.sessions {
		if sid != except && e.RoomID == room && e.ParticipantID == pid {
			return true
		}
	}
	return false
}

type regSnap struct {
	SID           core.SessionID
	ParticipantID domain.ParticipantID
	Session       core.Session
}

func (r *Registry) MembersOfRoom(room domain.RoomID) []regSnap {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]regSnap, 0, len(r.sessions))
	for sid, e := range r.sessions {
		if e.RoomID == room {
			out = append(out, regSnap{SID: sid, ParticipantID: e.ParticipantID, Session: e.Session})
		}
	}
	return out
}

// ForgetRoom detaches every session from room and drops its remembered seats.
func (r *Registry) ForgetRoom(room domain.RoomID) []core.SessionID {
	r.mu.Lock()
	defer r.mu.Unlock()
	var detached []core.SessionID
	for sid, e := range r.sessions {
		if e.RoomID == room {
			e.RoomID = ""
			e.ParticipantID = ""
			detached = append(detached, sid)
		}
	}
	for k := range r.seats {
		if k.room == room {
			delete(r.seats, k)
		}
	}
	log.Info().Str("module", "app.registry").Str("room", string(room)).Int("detached", len(detached)).Msg("forgot room")
	return detached
}

// Cancel stops the pumps of a session; the adapter then runs its normal
// disconnect path.
func (r *Registry) Cancel(sid core.SessionID) bool {
	r.mu.RLock()
	e, ok := r.sessions[sid]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("canceled session")
	return true
}
