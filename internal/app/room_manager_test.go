package app

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dkeye/Estimate/internal/core"
	"github.com/dkeye/Estimate/internal/domain"
)

func newHost(t *testing.T) *domain.Participant {
	t.Helper()
	p, err := domain.NewParticipant("Host", domain.RoleGroupA, true)
	if err != nil {
		t.Fatalf("new host: %v", err)
	}
	return p
}

func TestNewRoomCodeAlphabet(t *testing.T) {
	for i := 0; i < 200; i++ {
		code := string(NewRoomCode())
		if len(code) != codeLength {
			t.Fatalf("code %q has length %d", code, len(code))
		}
		for _, r := range code {
			if !strings.ContainsRune(codeAlphabet, r) {
				t.Fatalf("code %q contains %q", code, r)
			}
		}
	}
}

func TestCreateRetriesOnCollision(t *testing.T) {
	codes := []domain.RoomID{"AAAAAA", "AAAAAA", "BBBBBB"}
	var mu sync.Mutex
	next := func() domain.RoomID {
		mu.Lock()
		defer mu.Unlock()
		c := codes[0]
		codes = codes[1:]
		return c
	}
	m := NewRoomManager(WithCodeSource(next))

	first, err := m.Create(domain.ModeUnified, newHost(t))
	if err != nil || first.ID() != "AAAAAA" {
		t.Fatalf("first room: %v %v", first, err)
	}
	second, err := m.Create(domain.ModeSplit, newHost(t))
	if err != nil {
		t.Fatalf("second room: %v", err)
	}
	if second.ID() != "BBBBBB" {
		t.Fatalf("expected collision to be redrawn, got %s", second.ID())
	}
}

func TestCreateCodeSpaceExhausted(t *testing.T) {
	m := NewRoomManager(WithCodeAttempts(3), WithCodeSource(func() domain.RoomID { return "SAME22" }))
	if _, err := m.Create(domain.ModeUnified, newHost(t)); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := m.Create(domain.ModeUnified, newHost(t)); !errors.Is(err, domain.ErrCodeSpaceExhausted) {
		t.Fatalf("expected ErrCodeSpaceExhausted, got %v", err)
	}
}

func TestLookupAndUpdateDrop(t *testing.T) {
	m := NewRoomManager()
	room, err := m.Create(domain.ModeSplit, newHost(t))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	info, err := m.Lookup(room.ID())
	if err != nil || info.Mode != domain.ModeSplit || info.Participants != 1 {
		t.Fatalf("lookup: %+v %v", info, err)
	}
	if _, err := m.Lookup("NOPE22"); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}

	if err := m.Update(room.ID(), func(*core.Room) (bool, error) { return true, nil }); err != nil {
		t.Fatalf("drop: %v", err)
	}
	if m.Count() != 0 {
		t.Fatalf("room not removed")
	}
	if err := m.With(room.ID(), func(*core.Room) error { return nil }); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound after drop, got %v", err)
	}
}

func TestUpdateErrorKeepsRoom(t *testing.T) {
	m := NewRoomManager()
	room, _ := m.Create(domain.ModeUnified, newHost(t))
	boom := errors.New("boom")
	if err := m.Update(room.ID(), func(*core.Room) (bool, error) { return true, boom }); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if m.Count() != 1 {
		t.Fatalf("failed update must not drop the room")
	}
}

func TestListAndIdleCandidates(t *testing.T) {
	m := NewRoomManager()
	a, _ := m.Create(domain.ModeUnified, newHost(t))
	b, _ := m.Create(domain.ModeSplit, newHost(t))

	if got := len(m.List()); got != 2 {
		t.Fatalf("expected 2 rooms, got %d", got)
	}
	if got := m.IdleCandidates(time.Now().Add(-time.Hour)); len(got) != 0 {
		t.Fatalf("fresh rooms are not idle: %v", got)
	}
	got := m.IdleCandidates(time.Now().Add(time.Hour))
	if len(got) != 2 {
		t.Fatalf("expected both rooms idle, got %v", got)
	}
	seen := map[domain.RoomID]bool{}
	for _, id := range got {
		seen[id] = true
	}
	if !seen[a.ID()] || !seen[b.ID()] {
		t.Fatalf("unexpected candidates %v", got)
	}
}

func TestWithSerializesAccess(t *testing.T) {
	m := NewRoomManager()
	room, _ := m.Create(domain.ModeUnified, newHost(t))

	var wg sync.WaitGroup
	inside := 0
	maxInside := 0
	var counter sync.Mutex
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.With(room.ID(), func(*core.Room) error {
				counter.Lock()
				inside++
				if inside > maxInside {
					maxInside = inside
				}
				counter.Unlock()
				time.Sleep(time.Millisecond)
				counter.Lock()
				inside--
				counter.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()
	if maxInside != 1 {
		t.Fatalf("expected one writer at a time, saw %d", maxInside)
	}
}
