package fec

import (
	"fmt"

	"github.com/ddritzenhoff/wfbtx/internal/protocol"
	"github.com/ddritzenhoff/wfbtx/internal/wire"
)

const fragmentCap = int(protocol.MaxFECPayload)

// Block holds the fragments of the block currently being filled.
// The n fragment buffers are one contiguous allocation that is reused for every block.
type Block struct {
	params protocol.Params
	buf    []byte
	shards [][]byte
	// numData is the number of data fragments filled so far, which is also the index of the next one.
	numData int
	// biggestFragmentLenSoFar is the padded length of every fragment once the block is encoded.
	biggestFragmentLenSoFar int
}

func NewBlock(params protocol.Params) (*Block, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Block{
		params: params,
		buf:    make([]byte, params.N*fragmentCap),
		shards: make([][]byte, params.N),
	}, nil
}

func (b *Block) slot(i int) []byte {
	return b.buf[i*fragmentCap : (i+1)*fragmentCap : (i+1)*fragmentCap]
}

// AddData stores a datagram as the next data fragment and returns its index along with the
// unpadded fragment payload. The block must not be complete.
func (b *Block) AddData(seq protocol.PacketNumber, payload []byte) (protocol.FragmentIndex, []byte, error) {
	size := int(protocol.PacketHeaderLen) + len(payload)
	if size > fragmentCap {
		return 0, nil, fmt.Errorf("%w: %d bytes, max %d", protocol.ErrPayloadTooLarge, len(payload), protocol.MaxPayloadSize)
	}
	if b.IsComplete() {
		return 0, nil, fmt.Errorf("block already holds %d data fragments", b.params.K)
	}

	idx := b.numData
	s := b.slot(idx)
	clear(s)
	wire.PacketHeader{Seq: seq, Size: uint16(len(payload))}.Put(s)
	copy(s[protocol.PacketHeaderLen:], payload)

	if b.biggestFragmentLenSoFar < size {
		b.biggestFragmentLenSoFar = size
	}
	b.numData++
	return protocol.FragmentIndex(idx), s[:size], nil
}

// IsComplete indicates whether all k data fragments are filled.
func (b *Block) IsComplete() bool {
	return b.numData == b.params.K
}

func (b *Block) NumData() int { return b.numData }

// MaxLen is the length every fragment of the block is padded to.
func (b *Block) MaxLen() int { return b.biggestFragmentLenSoFar }

// EncodeParity fills the parity fragments. An error is returned if the block is not complete.
func (b *Block) EncodeParity(enc Encoder) error {
	if !b.IsComplete() {
		return fmt.Errorf("block has %d of %d data fragments", b.numData, b.params.K)
	}
	for i := range b.shards {
		b.shards[i] = b.slot(i)[:b.biggestFragmentLenSoFar]
	}
	return enc.Encode(b.shards)
}

// Fragment returns fragment i padded to the block's max length.
func (b *Block) Fragment(i protocol.FragmentIndex) []byte {
	return b.slot(int(i))[:b.biggestFragmentLenSoFar]
}

// Reset empties the block. Buffers are kept.
func (b *Block) Reset() {
	b.numData = 0
	b.biggestFragmentLenSoFar = 0
}
