package core

//go:generate mockgen -destination=mocks/mock_core.go -package=mocks github.com/dkeye/Estimate/internal/core Broadcaster,SignalConnection

import "github.com/dkeye/Estimate/internal/domain"

// PublishResult reports delivery stats/backpressure to the orchestrator.
type PublishResult struct {
	SendTo  int
	Dropped []SessionID
}

// Broadcaster fans an event out to every transport attached to a room.
// Implementations must enqueue synchronously so that callers holding the
// room lock preserve per-room ordering.
type Broadcaster interface {
	Publish(room domain.RoomID, ev Event) PublishResult
}

// RoomInfo is a read-only summary for listings.
type RoomInfo struct {
	ID           domain.RoomID `json:"id"`
	Mode         domain.Mode   `json:"mode"`
	Phase        domain.Phase  `json:"phase"`
	Participants int           `json:"participants"`
	Connected    int           `json:"connected"`
}
