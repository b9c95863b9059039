package wfbtx

import (
	"errors"
	"fmt"

	"github.com/ddritzenhoff/wfbtx/internal/protocol"
)

// RunPassThrough forwards every datagram from src to dst as it arrives.
// It only returns on a fatal error.
func RunPassThrough(src DatagramSource, dst Acceptor) error {
	buf := make([]byte, protocol.MaxDatagramSize)
	for {
		n, err := src.Receive(buf)
		if err != nil {
			if errors.Is(err, protocol.ErrInterrupted) || errors.Is(err, protocol.ErrWouldBlock) {
				continue
			}
			return fmt.Errorf("error receiving packet: %w", err)
		}
		if err := dst.Accept(buf[:n]); err != nil {
			return err
		}
	}
}
