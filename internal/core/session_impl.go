package core

// session implements Session by pairing identity + transport.
type session struct {
	id     SessionID
	device DeviceToken
	signal SignalConnection
}

func NewSession(id SessionID, device DeviceToken, signal SignalConnection) Session {
	return &session{id: id, device: device, signal: signal}
}

func (s *session) ID() SessionID            { return s.id }
func (s *session) Device() DeviceToken      { return s.device }
func (s *session) Signal() SignalConnection { return s.signal }
