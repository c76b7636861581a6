package app

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/dkeye/Estimate/internal/core"
	"github.com/dkeye/Estimate/internal/domain"
	"github.com/rs/zerolog/log"
)

const (
	codeAlphabet        = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeLength          = 6
	DefaultCodeAttempts = 32
)

// roomEntry is the single-writer lock around one room.
type roomEntry struct {
	mu     sync.Mutex
	room   *core.Room
	closed bool
}

// RoomManager owns every live room. main creates one and hands it to the
// orchestrator.
type RoomManager struct {
	mu           sync.RWMutex
	rooms        map[domain.RoomID]*roomEntry
	codeAttempts int
	newCode      func() domain.RoomID
}

type RoomManagerOption func(*RoomManager)

func WithCodeAttempts(n int) RoomManagerOption {
	return func(m *RoomManager) {
		if n > 0 {
			m.codeAttempts = n
		}
	}
}

// WithCodeSource replaces the random code generator (tests).
func WithCodeSource(fn func() domain.RoomID) RoomManagerOption {
	return func(m *RoomManager) { m.newCode = fn }
}

func NewRoomManager(opts ...RoomManagerOption) *RoomManager {
	m := &RoomManager{
		rooms:        make(map[domain.RoomID]*roomEntry),
		codeAttempts: DefaultCodeAttempts,
		newCode:      NewRoomCode,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewRoomCode draws a human-typeable code without ambiguous characters.
func NewRoomCode() domain.RoomID {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	for i := range buf {
		buf[i] = codeAlphabet[int(buf[i])%len(codeAlphabet)]
	}
	return domain.RoomID(buf)
}

// Create registers a new idle room owned by host. Colliding codes are redrawn.
func (m *RoomManager) Create(mode domain.Mode, host *domain.Participant) (*core.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for attempt := 0; attempt < m.codeAttempts; attempt++ {
		code := m.newCode()
		if _, taken := m.rooms[code]; taken {
			log.Debug().Str("module", "app.rooms").Str("room", string(code)).Int("attempt", attempt).Msg("room code collision")
			continue
		}
		room := core.NewRoom(code, mode, host)
		m.rooms[code] = &roomEntry{room: room}
		log.Info().Str("module", "app.rooms").Str("room", string(code)).Str("mode", string(mode)).Msg("room created")
		return room, nil
	}
	return nil, domain.ErrCodeSpaceExhausted
}

// Lookup is the read-only existence check.
func (m *RoomManager) Lookup(id domain.RoomID) (core.RoomInfo, error) {
	var info core.RoomInfo
	err := m.With(id, func(room *core.Room) error {
		info = room.Info()
		return nil
	})
	return info, err
}

// With runs fn with exclusive access to the room.
func (m *RoomManager) With(id domain.RoomID, fn func(room *core.Room) error) error {
	return m.Update(id, func(room *core.Room) (bool, error) {
		return false, fn(room)
	})
}

// Update runs fn with exclusive access to the room; when fn reports drop the
// room is removed before the lock is released, so no later command sees it.
func (m *RoomManager) Update(id domain.RoomID, fn func(room *core.Room) (drop bool, err error)) error {
	m.mu.RLock()
	entry, ok := m.rooms[id]
	m.mu.RUnlock()
	if !ok {
		return domain.ErrRoomNotFound
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.closed {
		return domain.ErrRoomNotFound
	}
	drop, err := fn(entry.room)
	if err != nil {
		return err
	}
	if drop {
		entry.closed = true
		m.mu.Lock()
		delete(m.rooms, id)
		m.mu.Unlock()
		log.Info().Str("module", "app.rooms").Str("room", string(id)).Msg("room deleted")
	}
	return nil
}

// List copies the entries first so no room lock is taken under m.mu.
func (m *RoomManager) List() []core.RoomInfo {
	m.mu.RLock()
	entries := make([]*roomEntry, 0, len(m.rooms))
	for _, e := range m.rooms {
		entries = append(entries, e)
	}
	m.mu.RUnlock()

	out := make([]core.RoomInfo, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		if !e.closed {
			out = append(out, e.room.Info())
		}
		e.mu.Unlock()
	}
	return out
}

func (m *RoomManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

// IdleCandidates lists rooms whose last activity is before cutoff. The
// caller must recheck under the room lock.
func (m *RoomManager) IdleCandidates(cutoff time.Time) []domain.RoomID {
	m.mu.RLock()
	entries := make(map[domain.RoomID]*roomEntry, len(m.rooms))
	for id, e := range m.rooms {
		entries[id] = e
	}
	m.mu.RUnlock()

	var out []domain.RoomID
	for id, e := range entries {
		e.mu.Lock()
		if !e.closed && e.room.LastActivity().Before(cutoff) {
			out = append(out, id)
		}
		e.mu.Unlock()
	}
	return out
}
