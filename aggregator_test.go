package wfbtx

import (
	"bytes"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ddritzenhoff/wfbtx/internal/protocol"
)

var errScriptDone = errors.New("script done")

type arrival struct {
	at   time.Duration
	data []byte
}

// scriptedSource replays arrivals on a simulated clock. Waiting advances the clock.
// Once the script is exhausted it lets one more timeout expire and then fails with errScriptDone.
type scriptedSource struct {
	start    time.Time
	now      time.Time
	script   []arrival
	pending  [][]byte
	finished bool

	waitErrs []error
	recvErrs []error
}

func newScriptedSource(script ...arrival) *scriptedSource {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	return &scriptedSource{start: start, now: start, script: script}
}

func (s *scriptedSource) clock() time.Time { return s.now }

func (s *scriptedSource) elapsed() time.Duration { return s.now.Sub(s.start) }

func (s *scriptedSource) Receive([]byte) (int, error) {
	panic("the aggregator never blocks in Receive")
}

func (s *scriptedSource) WaitReadable(timeout time.Duration) (bool, error) {
	Expect(timeout).To(BeNumerically(">=", 0))
	if len(s.waitErrs) > 0 {
		err := s.waitErrs[0]
		s.waitErrs = s.waitErrs[1:]
		return false, err
	}
	if len(s.pending) > 0 {
		return true, nil
	}
	if len(s.script) == 0 {
		if s.finished {
			return false, errScriptDone
		}
		s.finished = true
		s.now = s.now.Add(timeout)
		return false, nil
	}
	next := s.start.Add(s.script[0].at)
	if deadline := s.now.Add(timeout); next.After(deadline) {
		s.now = deadline
		return false, nil
	}
	if next.After(s.now) {
		s.now = next
	}
	for len(s.script) > 0 && !s.start.Add(s.script[0].at).After(s.now) {
		s.pending = append(s.pending, s.script[0].data)
		s.script = s.script[1:]
	}
	return true, nil
}

func (s *scriptedSource) TryReceive(b []byte) (int, error) {
	if len(s.recvErrs) > 0 {
		err := s.recvErrs[0]
		s.recvErrs = s.recvErrs[1:]
		return 0, err
	}
	if len(s.pending) == 0 {
		return 0, ErrWouldBlock
	}
	d := s.pending[0]
	s.pending = s.pending[1:]
	return copy(b, d), nil
}

type flush struct {
	at   time.Duration
	unit []byte
}

type timedAcceptor struct {
	src     *scriptedSource
	flushes []flush
	err     error
}

func (a *timedAcceptor) Accept(payload []byte) error {
	if a.err != nil {
		return a.err
	}
	unit := make([]byte, len(payload))
	copy(unit, payload)
	a.flushes = append(a.flushes, flush{at: a.src.elapsed(), unit: unit})
	return nil
}

var _ = Describe("Aggregator", func() {
	run := func(src *scriptedSource, latency time.Duration) (*timedAcceptor, error) {
		dst := &timedAcceptor{src: src}
		agg := NewAggregator(src, dst, latency)
		agg.now = src.clock
		return dst, agg.Run()
	}

	It("hands on every datagram separately if they arrive slower than the latency", func() {
		var script []arrival
		for i := 1; i <= 4; i++ {
			script = append(script, arrival{at: time.Duration(i) * 15 * time.Millisecond, data: bytes.Repeat([]byte{byte(i)}, 100)})
		}
		dst, err := run(newScriptedSource(script...), 10*time.Millisecond)
		Expect(err).To(MatchError(errScriptDone))
		Expect(dst.flushes).To(HaveLen(4))
		for i, f := range dst.flushes {
			Expect(f.unit).To(Equal(script[i].data))
			Expect(f.at).To(BeNumerically(">=", script[i].at))
			Expect(f.at - script[i].at).To(BeNumerically("<=", 10*time.Millisecond))
		}
	})

	It("batches datagrams that arrive within the latency", func() {
		src := newScriptedSource(
			arrival{at: time.Millisecond, data: []byte("foo")},
			arrival{at: 2 * time.Millisecond, data: []byte("bar")},
			arrival{at: 3 * time.Millisecond, data: []byte("baz")},
		)
		dst, err := run(src, 50*time.Millisecond)
		Expect(err).To(MatchError(errScriptDone))
		Expect(dst.flushes).To(Equal([]flush{{at: 50 * time.Millisecond, unit: []byte("foobarbaz")}}))
	})

	It("flushes before the buffer overflows", func() {
		var script []arrival
		var input []byte
		for i := 0; i < 20; i++ {
			d := bytes.Repeat([]byte{byte(i)}, 200)
			input = append(input, d...)
			script = append(script, arrival{at: 5 * time.Millisecond, data: d})
		}
		dst, err := run(newScriptedSource(script...), time.Second)
		Expect(err).To(MatchError(errScriptDone))

		var output []byte
		var sizes []int
		for _, f := range dst.flushes {
			Expect(len(f.unit)).To(BeNumerically("<=", int(protocol.MaxPayloadSize)))
			sizes = append(sizes, len(f.unit))
			output = append(output, f.unit...)
		}
		Expect(sizes).To(Equal([]int{1400, 1400, 1200}))
		Expect(output).To(Equal(input))
		// an overflow flush restarts the deadline
		Expect(dst.flushes[0].at).To(Equal(5 * time.Millisecond))
		Expect(dst.flushes[2].at).To(Equal(time.Second + 5*time.Millisecond))
	})

	It("accepts a datagram that fills the buffer exactly", func() {
		d := bytes.Repeat([]byte{0xab}, int(protocol.MaxPayloadSize))
		dst, err := run(newScriptedSource(arrival{at: time.Millisecond, data: d}), 10*time.Millisecond)
		Expect(err).To(MatchError(errScriptDone))
		Expect(dst.flushes).To(HaveLen(1))
		Expect(dst.flushes[0].unit).To(Equal(d))
	})

	It("rejects a datagram larger than the buffer", func() {
		src := newScriptedSource(
			arrival{at: time.Millisecond, data: []byte("small")},
			arrival{at: time.Millisecond, data: make([]byte, protocol.MaxPayloadSize+1)},
		)
		_, err := run(src, 10*time.Millisecond)
		Expect(err).To(MatchError(ErrPayloadTooLarge))
	})

	It("continues after interrupted system calls", func() {
		src := newScriptedSource(arrival{at: time.Millisecond, data: []byte("foo")})
		src.waitErrs = []error{ErrInterrupted, ErrInterrupted}
		src.recvErrs = []error{ErrInterrupted}
		dst, err := run(src, 10*time.Millisecond)
		Expect(err).To(MatchError(errScriptDone))
		Expect(dst.flushes).To(HaveLen(1))
		Expect(dst.flushes[0].unit).To(Equal([]byte("foo")))
	})

	It("fails when waiting fails", func() {
		testErr := errors.New("POLLERR")
		src := newScriptedSource()
		src.waitErrs = []error{testErr}
		_, err := run(src, 10*time.Millisecond)
		Expect(err).To(MatchError(testErr))
	})

	It("fails when reading fails", func() {
		testErr := errors.New("connection refused")
		src := newScriptedSource(arrival{at: time.Millisecond, data: []byte("foo")})
		src.recvErrs = []error{testErr}
		_, err := run(src, 10*time.Millisecond)
		Expect(err).To(MatchError(testErr))
	})

	It("fails when the acceptor fails", func() {
		testErr := errors.New("injection failed")
		src := newScriptedSource(arrival{at: time.Millisecond, data: []byte("foo")})
		dst := &timedAcceptor{src: src, err: testErr}
		agg := NewAggregator(src, dst, 10*time.Millisecond)
		agg.now = src.clock
		Expect(agg.Run()).To(MatchError(testErr))
	})

	It("does not flush an empty buffer", func() {
		src := newScriptedSource(arrival{at: 100 * time.Millisecond, data: []byte("late")})
		dst, err := run(src, 10*time.Millisecond)
		Expect(err).To(MatchError(errScriptDone))
		Expect(dst.flushes).To(HaveLen(1))
		Expect(dst.flushes[0].at).To(Equal(100 * time.Millisecond))
	})
})
