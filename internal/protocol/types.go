package protocol

// BlockIndex identifies a block. It increases by one per completed block and wraps.
type BlockIndex uint64

// FragmentIndex is the position of a fragment within its block. Data fragments come first.
type FragmentIndex uint8

// PacketNumber is the per-datagram sequence number, independent of the block structure.
type PacketNumber uint32

// ChannelTag is patched into the 802.11 addresses so that several streams can share a channel.
type ChannelTag uint8

// ByteCount is a number of bytes.
type ByteCount int
