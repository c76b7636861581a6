package core

type SessionID string

// DeviceToken identifies a browser across connections (cookie backed).
type DeviceToken string

// Session binds one transport endpoint to the device that opened it.
// Rooms never see it; the registry fans out to it.
type Session interface {
	ID() SessionID
	Device() DeviceToken
	Signal() SignalConnection
}
