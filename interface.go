package wfbtx

import (
	"time"

	"github.com/ddritzenhoff/wfbtx/internal/protocol"
)

// LinkSender transmits one raw link-layer frame.
type LinkSender interface {
	// Inject sends frame. The frame is only valid for the duration of the call.
	// It returns ErrInjectionFailed if the device did not take the whole frame.
	Inject(frame []byte) error
}

// DatagramSource delivers application datagrams.
type DatagramSource interface {
	// Receive blocks until a datagram is available and copies it into b.
	Receive(b []byte) (int, error)
	// TryReceive copies a pending datagram into b. It returns ErrWouldBlock if there is none.
	TryReceive(b []byte) (int, error)
	// WaitReadable blocks until a datagram is pending or the timeout expires.
	// It reports false on timeout. ErrInterrupted is transient.
	WaitReadable(timeout time.Duration) (bool, error)
}

// An Acceptor consumes datagrams. The Transmitter is the Acceptor used in production.
type Acceptor interface {
	Accept(payload []byte) error
}

// MaxPayloadSize is the largest datagram that fits into a single fragment.
const MaxPayloadSize = protocol.MaxPayloadSize
