package protocol

// On-air layout of a frame:
//
//	radiotap (12) | 802.11 data header (24) | block header (9) | fragment payload (<= MaxFECPayload)
//
// and of a data fragment payload:
//
//	packet header (6) | datagram (<= MaxPayloadSize) | zero padding
const (
	// MaxPacketSize is the largest frame handed to the link, preambles included.
	MaxPacketSize ByteCount = 1510

	RadiotapHeaderLen  ByteCount = 12
	IEEE80211HeaderLen ByteCount = 24

	// BlockHeaderLen is block_idx (8) + fragment_idx (1).
	BlockHeaderLen ByteCount = 9
	// PacketHeaderLen is seq (4) + payload size (2).
	PacketHeaderLen ByteCount = 6

	// MaxFECPayload is the capacity of one fragment.
	MaxFECPayload = MaxPacketSize - RadiotapHeaderLen - IEEE80211HeaderLen - BlockHeaderLen
	// MaxPayloadSize is the largest datagram that fits into one data fragment.
	MaxPayloadSize = MaxFECPayload - PacketHeaderLen

	// MaxDatagramSize is the largest datagram a UDP socket can deliver.
	MaxDatagramSize ByteCount = 65535
)

// Offsets of the last address byte of addr2 and addr3 in the 802.11 header.
const (
	SrcMACLastByte = 15
	DstMACLastByte = 21
)

const (
	DefaultK          = 8
	DefaultN          = 12
	DefaultUDPPort    = 5600
	DefaultChannelTag = ChannelTag(1)
)
