package wire

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/ddritzenhoff/wfbtx/internal/protocol"
)

// PacketHeader starts every data fragment payload.
type PacketHeader struct {
	// Seq is the sequence number of the datagram. Each accepted datagram gets a new one.
	Seq protocol.PacketNumber
	// Size is the length of the datagram without padding.
	Size uint16
}

func parsePacketHeader(r *bytes.Reader) (PacketHeader, error) {
	var b [protocol.PacketHeaderLen]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return PacketHeader{}, err
	}
	return PacketHeader{
		Seq:  protocol.PacketNumber(binary.LittleEndian.Uint32(b[:4])),
		Size: binary.LittleEndian.Uint16(b[4:6]),
	}, nil
}

// Put writes the header to the start of b, which must hold at least PacketHeaderLen bytes.
func (h PacketHeader) Put(b []byte) {
	binary.LittleEndian.PutUint32(b[:4], uint32(h.Seq))
	binary.LittleEndian.PutUint16(b[4:6], h.Size)
}

func (h PacketHeader) Append(b []byte) []byte {
	b = binary.LittleEndian.AppendUint32(b, uint32(h.Seq))
	return binary.LittleEndian.AppendUint16(b, h.Size)
}

// Length of a written header
func (h PacketHeader) Length() protocol.ByteCount {
	return protocol.PacketHeaderLen
}

// ParseDataFragment splits a padded data fragment payload into its header and datagram.
func ParseDataFragment(payload []byte) (PacketHeader, []byte, error) {
	r := bytes.NewReader(payload)
	hdr, err := parsePacketHeader(r)
	if err != nil {
		return PacketHeader{}, nil, err
	}
	if int(hdr.Size) > r.Len() {
		return PacketHeader{}, nil, io.ErrUnexpectedEOF
	}
	start := int(protocol.PacketHeaderLen)
	return hdr, payload[start : start+int(hdr.Size)], nil
}
