package signal

import (
	"sync"
	"time"

	"github.com/dkeye/Estimate/internal/domain"
)

type limiterKey struct {
	room domain.RoomID
	pid  domain.ParticipantID
}

// RoomRateLimiter is a sliding window limiter per participant and room.
// Keys whose window has emptied are pruned at most once per interval.
type RoomRateLimiter struct {
	mu        sync.Mutex
	history   map[limiterKey][]time.Time
	limit     int
	interval  time.Duration
	lastPrune time.Time
	now       func() time.Time
}

func NewRoomRateLimiter(limit int, interval time.Duration) *RoomRateLimiter {
	return &RoomRateLimiter{
		history:  make(map[limiterKey][]time.Time),
		limit:    limit,
		interval: interval,
		now:      time.Now,
	}
}

func (rl *RoomRateLimiter) Allow(room domain.RoomID, pid domain.ParticipantID) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	windowStart := now.Add(-rl.interval)
	if now.Sub(rl.lastPrune) >= rl.interval {
		rl.prune(windowStart)
		rl.lastPrune = now
	}
	key := limiterKey{room: room, pid: pid}

	attempts := rl.history[key]
	fresh := make([]time.Time, 0, len(attempts)+1)
	for _, t := range attempts {
		if t.After(windowStart) {
			fresh = append(fresh, t)
		}
	}
	if len(fresh) >= rl.limit {
		rl.history[key] = fresh
		return false
	}
	rl.history[key] = append(fresh, now)
	return true
}

// Forget drops every key of room, used once the room is gone.
func (rl *RoomRateLimiter) Forget(room domain.RoomID) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for k := range rl.history {
		if k.room == room {
			delete(rl.history, k)
		}
	}
}

// Len reports how many keys are tracked.
func (rl *RoomRateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.history)
}

func (rl *RoomRateLimiter) prune(windowStart time.Time) {
	for k, attempts := range rl.history {
		if len(attempts) == 0 || !attempts[len(attempts)-1].After(windowStart) {
			delete(rl.history, k)
		}
	}
}
