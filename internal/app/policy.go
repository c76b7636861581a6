package app

import (
	"github.com/dkeye/Estimate/internal/core"
	"github.com/dkeye/Estimate/internal/domain"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	KickMember
)

// Policy decides what happens to a session whose send buffer is full.
type Policy interface {
	OnBackPressure(room domain.RoomID, sid core.SessionID) BackpressureAction
}

// SimplePolicy drops the slow connection. The client resumes its seat on
// reconnect and gets a fresh snapshot.
type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(domain.RoomID, core.SessionID) BackpressureAction {
	return KickMember
}
