package wfbtx

import (
	"bytes"
	"errors"
	mrand "math/rand"

	"github.com/klauspost/reedsolomon"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/ddritzenhoff/wfbtx/internal/mocks"
	"github.com/ddritzenhoff/wfbtx/internal/protocol"
	"github.com/ddritzenhoff/wfbtx/internal/wire"
)

type sentFrame struct {
	tag     protocol.ChannelTag
	hdr     wire.BlockHeader
	payload []byte
}

type tracedBlock struct {
	block       protocol.BlockIndex
	fragmentLen protocol.ByteCount
	fragments   int
}

type recordingTracer struct {
	seqs   []protocol.PacketNumber
	blocks []tracedBlock
}

func (t *recordingTracer) DatagramAccepted(seq protocol.PacketNumber, _ protocol.ByteCount, _ protocol.BlockIndex, _ protocol.FragmentIndex) {
	t.seqs = append(t.seqs, seq)
}

func (t *recordingTracer) BlockCompleted(block protocol.BlockIndex, fragmentLen protocol.ByteCount, numFragments int) {
	t.blocks = append(t.blocks, tracedBlock{block: block, fragmentLen: fragmentLen, fragments: numFragments})
}

func (t *recordingTracer) Close() error { return nil }

var _ = Describe("Transmitter", func() {
	var (
		sender *mocks.MockLinkSender
		frames []sentFrame
	)

	BeforeEach(func() {
		sender = mocks.NewMockLinkSender(mockCtrl)
		frames = nil
	})

	recordFrames := func() {
		sender.EXPECT().Inject(gomock.Any()).DoAndReturn(func(b []byte) error {
			tag, hdr, payload, err := wire.ParseFrame(b)
			Expect(err).ToNot(HaveOccurred())
			frames = append(frames, sentFrame{tag: tag, hdr: hdr, payload: append([]byte(nil), payload...)})
			return nil
		}).AnyTimes()
	}

	newTransmitter := func(conf *Config) *Transmitter {
		t, err := NewTransmitter(sender, conf)
		Expect(err).ToNot(HaveOccurred())
		return t
	}

	It("rejects invalid block parameters", func() {
		_, err := NewTransmitter(sender, &Config{K: 8, N: 4})
		Expect(err).To(HaveOccurred())
		_, err = NewTransmitter(sender, &Config{FECScheme: protocol.XORFECScheme, K: 8, N: 12})
		Expect(err).To(HaveOccurred())
	})

	It("uses the default block parameters", func() {
		recordFrames()
		t := newTransmitter(nil)
		for i := 0; i < protocol.DefaultK; i++ {
			Expect(t.Accept([]byte{byte(i)})).To(Succeed())
		}
		Expect(frames).To(HaveLen(protocol.DefaultN))
		Expect(frames[0].tag).To(Equal(protocol.DefaultChannelTag))
	})

	It("sends k data and n-k parity fragments per block", func() {
		recordFrames()
		t := newTransmitter(&Config{K: 8, N: 12, ChannelTag: 5})
		for i := 0; i < 8; i++ {
			Expect(t.Accept(bytes.Repeat([]byte{byte(i)}, 100))).To(Succeed())
		}
		Expect(frames).To(HaveLen(12))
		for i, f := range frames {
			Expect(f.tag).To(Equal(protocol.ChannelTag(5)))
			Expect(f.hdr.Block).To(BeZero())
			Expect(f.hdr.Fragment).To(Equal(protocol.FragmentIndex(i)))
			Expect(f.payload).To(HaveLen(100 + int(protocol.PacketHeaderLen)))
		}
		Expect(t.BlockIndex()).To(Equal(protocol.BlockIndex(1)))

		Expect(t.Accept([]byte("next"))).To(Succeed())
		Expect(frames).To(HaveLen(13))
		Expect(frames[12].hdr).To(Equal(wire.BlockHeader{Block: 1, Fragment: 0}))
	})

	It("streams data fragments before the block is complete", func() {
		recordFrames()
		t := newTransmitter(&Config{K: 8, N: 12})
		Expect(t.Accept([]byte("foo"))).To(Succeed())
		Expect(frames).To(HaveLen(1))
		Expect(t.Accept([]byte("foobar"))).To(Succeed())
		Expect(frames).To(HaveLen(2))
		// data fragments go out unpadded
		Expect(frames[0].payload).To(HaveLen(9))
		Expect(frames[1].payload).To(HaveLen(12))
		hdr, data, err := wire.ParseDataFragment(frames[1].payload)
		Expect(err).ToNot(HaveOccurred())
		Expect(hdr.Seq).To(Equal(protocol.PacketNumber(1)))
		Expect(data).To(Equal([]byte("foobar")))
	})

	It("pads parity fragments to the largest fragment of the block", func() {
		recordFrames()
		t := newTransmitter(&Config{K: 3, N: 5})
		for _, size := range []int{10, 50, 20} {
			Expect(t.Accept(make([]byte, size))).To(Succeed())
		}
		Expect(frames).To(HaveLen(5))
		Expect(frames[3].payload).To(HaveLen(56))
		Expect(frames[4].payload).To(HaveLen(56))

		// the next block starts from scratch
		for _, size := range []int{1, 2, 3} {
			Expect(t.Accept(make([]byte, size))).To(Succeed())
		}
		Expect(frames).To(HaveLen(10))
		Expect(frames[8].payload).To(HaveLen(9))
		Expect(frames[9].payload).To(HaveLen(9))
	})

	It("emits n frames per complete block and the data fragments of a partial block", func() {
		recordFrames()
		const k, n = 3, 5
		t := newTransmitter(&Config{K: k, N: n})
		for count := 1; count <= 31; count++ {
			Expect(t.Accept([]byte{byte(count)})).To(Succeed())
			Expect(frames).To(HaveLen((count/k)*n + count%k))
		}
	})

	It("reconstructs the original datagrams from any k fragments", func() {
		recordFrames()
		const k, n = 4, 7
		t := newTransmitter(&Config{K: k, N: n})
		var datagrams [][]byte
		for i := 0; i < k; i++ {
			d := make([]byte, mrand.Intn(int(protocol.MaxPayloadSize)))
			mrand.Read(d)
			datagrams = append(datagrams, d)
			Expect(t.Accept(d)).To(Succeed())
		}
		Expect(frames).To(HaveLen(n))

		shardLen := len(frames[n-1].payload)
		shards := make([][]byte, n)
		for i, f := range frames {
			shards[i] = make([]byte, shardLen)
			copy(shards[i], f.payload)
		}
		for _, lost := range mrand.Perm(n)[:n-k] {
			shards[lost] = nil
		}
		dec, err := reedsolomon.New(k, n-k)
		Expect(err).ToNot(HaveOccurred())
		Expect(dec.ReconstructData(shards)).To(Succeed())

		var got []byte
		for i := 0; i < k; i++ {
			hdr, data, err := wire.ParseDataFragment(shards[i])
			Expect(err).ToNot(HaveOccurred())
			Expect(hdr.Seq).To(Equal(protocol.PacketNumber(i)))
			got = append(got, data...)
		}
		Expect(got).To(Equal(bytes.Join(datagrams, nil)))
	})

	It("computes XOR parity", func() {
		recordFrames()
		t := newTransmitter(&Config{FECScheme: protocol.XORFECScheme, K: 2, N: 3})
		Expect(t.Accept([]byte{0x01, 0x02})).To(Succeed())
		Expect(t.Accept([]byte{0x10})).To(Succeed())
		Expect(frames).To(HaveLen(3))
		// seq 0 ^ seq 1, size 2 ^ size 1, payload bytes, padding
		Expect(frames[2].payload).To(Equal([]byte{0x01, 0, 0, 0, 0x03, 0, 0x11, 0x02}))
	})

	It("sends a block without parity when k equals n", func() {
		recordFrames()
		t := newTransmitter(&Config{K: 2, N: 2})
		Expect(t.Accept([]byte("a"))).To(Succeed())
		Expect(t.Accept([]byte("b"))).To(Succeed())
		Expect(frames).To(HaveLen(2))
		Expect(t.BlockIndex()).To(Equal(protocol.BlockIndex(1)))
	})

	It("accepts a datagram of exactly the maximum size and rejects a larger one", func() {
		recordFrames()
		t := newTransmitter(&Config{K: 2, N: 3})
		Expect(t.Accept(make([]byte, protocol.MaxPayloadSize))).To(Succeed())
		Expect(frames).To(HaveLen(1))
		Expect(frames[0].payload).To(HaveLen(int(protocol.MaxFECPayload)))

		err := t.Accept(make([]byte, protocol.MaxPayloadSize+1))
		Expect(err).To(MatchError(ErrPayloadTooLarge))
		Expect(frames).To(HaveLen(1))
		Expect(t.Stats().DatagramsAccepted).To(BeEquivalentTo(1))

		// the rejected datagram did not use up a sequence number or a fragment slot
		Expect(t.Accept([]byte("ok"))).To(Succeed())
		Expect(frames).To(HaveLen(3))
		hdr, _, err := wire.ParseDataFragment(frames[1].payload)
		Expect(err).ToNot(HaveOccurred())
		Expect(hdr.Seq).To(Equal(protocol.PacketNumber(1)))
		Expect(frames[1].hdr.Fragment).To(Equal(protocol.FragmentIndex(1)))
		Expect(frames[2].payload).To(HaveLen(int(protocol.MaxFECPayload)))
	})

	It("returns injection errors", func() {
		testErr := errors.New("device gone")
		sender.EXPECT().Inject(gomock.Any()).Return(ErrInjectionFailed)
		t := newTransmitter(&Config{K: 2, N: 3})
		err := t.Accept([]byte("foo"))
		Expect(err).To(MatchError(ErrInjectionFailed))

		sender.EXPECT().Inject(gomock.Any())
		sender.EXPECT().Inject(gomock.Any()).Return(testErr)
		t = newTransmitter(&Config{K: 1, N: 2})
		Expect(t.Accept([]byte("foo"))).To(MatchError(testErr))
		Expect(t.Stats().FramesInjected).To(BeEquivalentTo(1))
	})

	It("keeps statistics", func() {
		recordFrames()
		t := newTransmitter(&Config{K: 2, N: 3})
		for i := 0; i < 5; i++ {
			Expect(t.Accept(make([]byte, 10))).To(Succeed())
		}
		stats := t.Stats()
		Expect(stats.DatagramsAccepted).To(BeEquivalentTo(5))
		Expect(stats.BlocksCompleted).To(BeEquivalentTo(2))
		Expect(stats.FramesInjected).To(BeEquivalentTo(7))
		var total uint64
		for _, f := range frames {
			total += uint64(len(f.payload)) + uint64(protocol.RadiotapHeaderLen+protocol.IEEE80211HeaderLen+protocol.BlockHeaderLen)
		}
		Expect(stats.BytesInjected).To(Equal(total))
	})

	It("traces datagrams and blocks", func() {
		recordFrames()
		tracer := &recordingTracer{}
		t := newTransmitter(&Config{K: 2, N: 4, Tracer: tracer})
		Expect(t.Accept(make([]byte, 4))).To(Succeed())
		Expect(t.Accept(make([]byte, 8))).To(Succeed())
		Expect(t.Accept(make([]byte, 1))).To(Succeed())
		Expect(tracer.seqs).To(Equal([]protocol.PacketNumber{0, 1, 2}))
		Expect(tracer.blocks).To(Equal([]tracedBlock{{block: 0, fragmentLen: 14, fragments: 4}}))
	})
})
