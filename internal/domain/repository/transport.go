package repository

// Transport identifies a live-event transport.
type Transport string

const (
	TransportWebSocket Transport = "websocket"
	TransportSSE       Transport = "sse"
)

// IsValidTransport returns true if t is a supported transport.
func IsValidTransport(t Transport) bool {
	switch t {
	case TransportWebSocket, TransportSSE:
		return true
	default:
		return false
	}
}

// DefaultTransport returns the transport tried first.
func DefaultTransport() Transport { return TransportWebSocket }

// NormalizeTransport converts raw string to a valid transport (or default).
func NormalizeTransport(s string) Transport {
	if s == "" {
		return DefaultTransport()
	}
	t := Transport(s)
	if IsValidTransport(t) {
		return t
	}
	return DefaultTransport()
}
