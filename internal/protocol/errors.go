package protocol

import "errors"

var (
	// ErrPayloadTooLarge is returned for a datagram that does not fit into a single fragment.
	ErrPayloadTooLarge = errors.New("payload exceeds fragment capacity")
	// ErrInjectionFailed is returned when the link accepted fewer bytes than the frame holds.
	ErrInjectionFailed = errors.New("unable to inject packet")
	// ErrWouldBlock reports that a non-blocking read found no pending datagram.
	ErrWouldBlock = errors.New("no datagram available")
	// ErrInterrupted reports an interrupted system call. The caller retries.
	ErrInterrupted = errors.New("interrupted system call")
)
