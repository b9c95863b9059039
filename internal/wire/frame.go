package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ddritzenhoff/wfbtx/internal/protocol"
)

// radiotapHeader requests a fixed legacy rate and no ACK for injected frames.
var radiotapHeader = [protocol.RadiotapHeaderLen]byte{
	0x00, 0x00, // version, pad
	0x0c, 0x00, // header length
	0x04, 0x80, 0x00, 0x00, // present: rate, tx flags
	0x0c,       // rate, 6 Mbit/s in 500 kbit/s units
	0x00,       // pad
	0x08, 0x00, // tx flags: no ack
}

// ieee80211Header is a data frame to broadcast. The last byte of addr2 and addr3 carries the channel tag.
var ieee80211Header = [protocol.IEEE80211HeaderLen]byte{
	0x08, 0x01, 0x00, 0x00, // frame control, duration
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, // addr1
	0x13, 0x22, 0x33, 0x44, 0x55, 0x66, // addr2
	0x13, 0x22, 0x33, 0x44, 0x55, 0x66, // addr3
	0x00, 0x00, // sequence control
}

const preambleLen = protocol.RadiotapHeaderLen + protocol.IEEE80211HeaderLen

// A Frame is one complete on-air packet. It aliases the builder's buffer and is only valid until the next Build.
type Frame []byte

// FrameBuilder assembles frames for one channel tag in a buffer sized for the largest frame.
// Since MaxFECPayload is derived from MaxPacketSize, any payload that fits a fragment fits the buffer.
type FrameBuilder struct {
	tag protocol.ChannelTag
	buf [protocol.MaxPacketSize]byte
}

func NewFrameBuilder(tag protocol.ChannelTag) *FrameBuilder {
	b := &FrameBuilder{tag: tag}
	n := copy(b.buf[:], radiotapHeader[:])
	copy(b.buf[n:], ieee80211Header[:])
	b.buf[n+protocol.SrcMACLastByte] = byte(tag)
	b.buf[n+protocol.DstMACLastByte] = byte(tag)
	return b
}

func (b *FrameBuilder) ChannelTag() protocol.ChannelTag { return b.tag }

// Build writes the block header and payload behind the preamble.
// It panics if the payload is larger than a fragment.
func (b *FrameBuilder) Build(hdr BlockHeader, payload []byte) Frame {
	if protocol.ByteCount(len(payload)) > protocol.MaxFECPayload {
		panic(fmt.Sprintf("wire: fragment payload of %d bytes exceeds %d", len(payload), protocol.MaxFECPayload))
	}
	p := hdr.Append(b.buf[:preambleLen])
	p = append(p, payload...)
	return Frame(p)
}

var errNotDataFrame = errors.New("not a data frame")

// ParseFrame reverses Build. The payload aliases data.
func ParseFrame(data []byte) (protocol.ChannelTag, BlockHeader, []byte, error) {
	if len(data) < 4 {
		return 0, BlockHeader{}, nil, fmt.Errorf("frame too short: %d bytes", len(data))
	}
	rtLen := int(binary.LittleEndian.Uint16(data[2:4]))
	if len(data) < rtLen+int(protocol.IEEE80211HeaderLen+protocol.BlockHeaderLen) {
		return 0, BlockHeader{}, nil, fmt.Errorf("frame too short: %d bytes", len(data))
	}
	mac := data[rtLen : rtLen+int(protocol.IEEE80211HeaderLen)]
	if mac[0] != ieee80211Header[0] {
		return 0, BlockHeader{}, nil, errNotDataFrame
	}
	tag := protocol.ChannelTag(mac[protocol.SrcMACLastByte])
	r := bytes.NewReader(data[rtLen+int(protocol.IEEE80211HeaderLen):])
	hdr, err := parseBlockHeader(r)
	if err != nil {
		return 0, BlockHeader{}, nil, err
	}
	return tag, hdr, data[len(data)-r.Len():], nil
}
