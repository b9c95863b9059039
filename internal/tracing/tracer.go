// Package tracing records transmitter events as newline-delimited JSON.
package tracing

import (
	"bufio"
	"io"
	"sync"
	"time"

	"github.com/francoispqt/gojay"

	"github.com/ddritzenhoff/wfbtx/internal/protocol"
)

// A Tracer is notified about accepted datagrams and completed blocks.
type Tracer interface {
	DatagramAccepted(seq protocol.PacketNumber, size protocol.ByteCount, block protocol.BlockIndex, fragment protocol.FragmentIndex)
	BlockCompleted(block protocol.BlockIndex, fragmentLen protocol.ByteCount, numFragments int)
	Close() error
}

type eventDatagram struct {
	seq      protocol.PacketNumber
	size     protocol.ByteCount
	block    protocol.BlockIndex
	fragment protocol.FragmentIndex
}

func (e eventDatagram) name() string { return "datagram_accepted" }

func (e eventDatagram) MarshalJSONObject(enc *gojay.Encoder) {
	enc.Uint32Key("seq", uint32(e.seq))
	enc.IntKey("size", int(e.size))
	enc.Uint64Key("block", uint64(e.block))
	enc.Uint8Key("fragment", uint8(e.fragment))
}

func (e eventDatagram) IsNil() bool { return false }

type eventBlock struct {
	block        protocol.BlockIndex
	fragmentLen  protocol.ByteCount
	numFragments int
}

func (e eventBlock) name() string { return "block_completed" }

func (e eventBlock) MarshalJSONObject(enc *gojay.Encoder) {
	enc.Uint64Key("block", uint64(e.block))
	enc.IntKey("fragment_len", int(e.fragmentLen))
	enc.IntKey("fragments", e.numFragments)
}

func (e eventBlock) IsNil() bool { return false }

type eventDetails interface {
	name() string
	gojay.MarshalerJSONObject
}

type event struct {
	relativeTime time.Duration
	details      eventDetails
}

func (e event) MarshalJSONObject(enc *gojay.Encoder) {
	enc.Float64Key("time", float64(e.relativeTime.Nanoseconds())/1e6)
	enc.StringKey("name", e.details.name())
	enc.ObjectKey("data", e.details)
}

func (e event) IsNil() bool { return false }

type jsonTracer struct {
	mx            sync.Mutex
	referenceTime time.Time
	w             *bufio.Writer
	closer        io.Closer
	enc           *gojay.Encoder
	encodeErr     error
}

var _ Tracer = &jsonTracer{}

// NewJSONTracer writes one JSON object per event to w. Times are milliseconds since creation.
func NewJSONTracer(w io.WriteCloser) Tracer {
	bw := bufio.NewWriter(w)
	return &jsonTracer{
		referenceTime: time.Now(),
		w:             bw,
		closer:        w,
		enc:           gojay.NewEncoder(bw),
	}
}

func (t *jsonTracer) record(details eventDetails) {
	t.mx.Lock()
	defer t.mx.Unlock()
	if t.encodeErr != nil {
		return
	}
	ev := event{relativeTime: time.Since(t.referenceTime), details: details}
	if err := t.enc.EncodeObject(ev); err != nil {
		t.encodeErr = err
		return
	}
	if err := t.w.WriteByte('\n'); err != nil {
		t.encodeErr = err
	}
}

func (t *jsonTracer) DatagramAccepted(seq protocol.PacketNumber, size protocol.ByteCount, block protocol.BlockIndex, fragment protocol.FragmentIndex) {
	t.record(eventDatagram{seq: seq, size: size, block: block, fragment: fragment})
}

func (t *jsonTracer) BlockCompleted(block protocol.BlockIndex, fragmentLen protocol.ByteCount, numFragments int) {
	t.record(eventBlock{block: block, fragmentLen: fragmentLen, numFragments: numFragments})
}

// Close flushes buffered events and closes the underlying writer.
func (t *jsonTracer) Close() error {
	t.mx.Lock()
	defer t.mx.Unlock()
	if err := t.w.Flush(); err != nil {
		t.closer.Close()
		return err
	}
	if err := t.closer.Close(); err != nil {
		return err
	}
	return t.encodeErr
}
