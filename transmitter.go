package wfbtx

import (
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/ddritzenhoff/wfbtx/internal/fec"
	"github.com/ddritzenhoff/wfbtx/internal/protocol"
	"github.com/ddritzenhoff/wfbtx/internal/tracing"
	"github.com/ddritzenhoff/wfbtx/internal/wire"
)

// Stats is a snapshot of the Transmitter's counters.
type Stats struct {
	DatagramsAccepted uint64
	FramesInjected    uint64
	BytesInjected     uint64
	BlocksCompleted   uint64
}

// A Transmitter packs datagrams into erasure coded blocks and injects every fragment as a frame.
// Data fragments are sent as soon as they are filled, parity fragments once the block has k data fragments.
// It is not safe for concurrent use, except for Stats.
type Transmitter struct {
	sender  LinkSender
	encoder fec.Encoder
	builder *wire.FrameBuilder
	block   *fec.Block
	params  protocol.Params

	blockIdx protocol.BlockIndex
	nextSeq  protocol.PacketNumber

	logger *zap.Logger
	tracer tracing.Tracer

	datagramsAccepted atomic.Uint64
	framesInjected    atomic.Uint64
	bytesInjected     atomic.Uint64
	blocksCompleted   atomic.Uint64
}

var _ Acceptor = &Transmitter{}

func NewTransmitter(sender LinkSender, conf *Config) (*Transmitter, error) {
	conf = populateConfig(conf)
	params := conf.params()
	encoder, err := fec.NewEncoder(conf.FECScheme, params)
	if err != nil {
		return nil, fmt.Errorf("creating %s encoder: %w", conf.FECScheme, err)
	}
	block, err := fec.NewBlock(params)
	if err != nil {
		return nil, err
	}
	return &Transmitter{
		sender:  sender,
		encoder: encoder,
		builder: wire.NewFrameBuilder(conf.ChannelTag),
		block:   block,
		params:  params,
		logger:  conf.Logger,
		tracer:  conf.Tracer,
	}, nil
}

// Accept assigns the next sequence number to payload and transmits it as a data fragment.
// If this completes the block, the parity fragments are computed and transmitted as well.
// A payload larger than MaxPayloadSize is rejected with ErrPayloadTooLarge and leaves the
// Transmitter unchanged. Any other error is a failure of the link and leaves the block in an undefined state.
func (t *Transmitter) Accept(payload []byte) error {
	seq := t.nextSeq
	idx, fragment, err := t.block.AddData(seq, payload)
	if err != nil {
		return err
	}
	t.nextSeq++
	t.datagramsAccepted.Add(1)
	if t.tracer != nil {
		t.tracer.DatagramAccepted(seq, protocol.ByteCount(len(payload)), t.blockIdx, idx)
	}

	if err := t.sendFragment(idx, fragment); err != nil {
		return err
	}
	if !t.block.IsComplete() {
		return nil
	}
	return t.finishBlock()
}

func (t *Transmitter) finishBlock() error {
	if err := t.block.EncodeParity(t.encoder); err != nil {
		return fmt.Errorf("encoding block %d: %w", t.blockIdx, err)
	}
	for i := t.params.K; i < t.params.N; i++ {
		idx := protocol.FragmentIndex(i)
		if err := t.sendFragment(idx, t.block.Fragment(idx)); err != nil {
			return err
		}
	}

	fragmentLen := protocol.ByteCount(t.block.MaxLen())
	if ce := t.logger.Check(zap.DebugLevel, "block sent"); ce != nil {
		ce.Write(
			zap.Uint64("block", uint64(t.blockIdx)),
			zap.Int("fragment_len", int(fragmentLen)),
			zap.Int("fragments", t.params.N),
		)
	}
	if t.tracer != nil {
		t.tracer.BlockCompleted(t.blockIdx, fragmentLen, t.params.N)
	}
	t.blocksCompleted.Add(1)

	t.block.Reset()
	t.blockIdx++
	return nil
}

func (t *Transmitter) sendFragment(idx protocol.FragmentIndex, payload []byte) error {
	frame := t.builder.Build(wire.BlockHeader{Block: t.blockIdx, Fragment: idx}, payload)
	if err := t.sender.Inject(frame); err != nil {
		return fmt.Errorf("injecting fragment %d of block %d: %w", idx, t.blockIdx, err)
	}
	t.framesInjected.Add(1)
	t.bytesInjected.Add(uint64(len(frame)))
	return nil
}

// Stats may be called concurrently with Accept.
func (t *Transmitter) Stats() Stats {
	return Stats{
		DatagramsAccepted: t.datagramsAccepted.Load(),
		FramesInjected:    t.framesInjected.Load(),
		BytesInjected:     t.bytesInjected.Load(),
		BlocksCompleted:   t.blocksCompleted.Load(),
	}
}

// BlockIndex returns the index of the block currently being filled.
func (t *Transmitter) BlockIndex() protocol.BlockIndex { return t.blockIdx }
