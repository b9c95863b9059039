package wfbtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/ddritzenhoff/wfbtx/internal/protocol"
)

// An Aggregator coalesces small datagrams into units of at most MaxPayloadSize bytes.
// A datagram waits at most the aggregation latency before it is handed on.
type Aggregator struct {
	src     DatagramSource
	dst     Acceptor
	latency time.Duration
	now     func() time.Time

	buf      [protocol.MaxPayloadSize]byte
	size     int
	deadline time.Time

	scratch []byte
}

func NewAggregator(src DatagramSource, dst Acceptor, latency time.Duration) *Aggregator {
	return &Aggregator{
		src:     src,
		dst:     dst,
		latency: latency,
		now:     time.Now,
		scratch: make([]byte, protocol.MaxDatagramSize),
	}
}

// Run executes the event loop. It only returns on a fatal error.
func (a *Aggregator) Run() error {
	a.deadline = a.now().Add(a.latency)
	for {
		timeout := a.deadline.Sub(a.now())
		if timeout < 0 {
			timeout = 0
		}
		readable, err := a.src.WaitReadable(timeout)
		if err != nil {
			if errors.Is(err, protocol.ErrInterrupted) {
				continue
			}
			return fmt.Errorf("poll error: %w", err)
		}
		if !readable {
			if err := a.flush(); err != nil {
				return err
			}
			a.deadline = a.now().Add(a.latency)
			continue
		}
		if err := a.drain(); err != nil {
			return err
		}
	}
}

// drain reads until no datagram is pending.
func (a *Aggregator) drain() error {
	for {
		n, err := a.src.TryReceive(a.scratch)
		switch {
		case errors.Is(err, protocol.ErrWouldBlock):
			return nil
		case errors.Is(err, protocol.ErrInterrupted):
			continue
		case err != nil:
			return fmt.Errorf("error receiving packet: %w", err)
		}
		if err := a.add(a.scratch[:n]); err != nil {
			return err
		}
	}
}

func (a *Aggregator) add(datagram []byte) error {
	if len(datagram) > len(a.buf) {
		return fmt.Errorf("%w: datagram of %d bytes, aggregation buffer holds %d", protocol.ErrPayloadTooLarge, len(datagram), len(a.buf))
	}
	if a.size+len(datagram) > len(a.buf) {
		if err := a.flush(); err != nil {
			return err
		}
		a.deadline = a.now().Add(a.latency)
	}
	a.size += copy(a.buf[a.size:], datagram)
	return nil
}

func (a *Aggregator) flush() error {
	if a.size == 0 {
		return nil
	}
	payload := a.buf[:a.size]
	a.size = 0
	return a.dst.Accept(payload)
}
