package wire

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/ddritzenhoff/wfbtx/internal/protocol"
)

// BlockHeader precedes every fragment on air.
type BlockHeader struct {
	Block    protocol.BlockIndex
	Fragment protocol.FragmentIndex
}

func parseBlockHeader(r *bytes.Reader) (BlockHeader, error) {
	var b [protocol.BlockHeaderLen]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return BlockHeader{}, err
	}
	return BlockHeader{
		Block:    protocol.BlockIndex(binary.LittleEndian.Uint64(b[:8])),
		Fragment: protocol.FragmentIndex(b[8]),
	}, nil
}

// Append appends the encoded header to b.
func (h BlockHeader) Append(b []byte) []byte {
	b = binary.LittleEndian.AppendUint64(b, uint64(h.Block))
	return append(b, byte(h.Fragment))
}

// Length of a written header
func (h BlockHeader) Length() protocol.ByteCount {
	return protocol.BlockHeaderLen
}
