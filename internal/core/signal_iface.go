package core

// Frame is a raw encoded payload (one JSON message).
type Frame []byte

// SignalConnection abstracts the messaging transport of one client.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	// TrySend must not block; a full buffer is reported as an error.
	TrySend(Frame) error
	Close()
}
