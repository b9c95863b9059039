package link

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/ddritzenhoff/wfbtx/internal/protocol"
)

type Sender interface {
	Inject(frame []byte) error
}

// Throttled limits the byte rate handed to the wrapped Sender.
// It blocks in Inject until the frame fits into the budget.
type Throttled struct {
	sender  Sender
	limiter *rate.Limiter
}

func NewThrottled(sender Sender, bytesPerSecond int) *Throttled {
	burst := bytesPerSecond
	if burst < int(protocol.MaxPacketSize) {
		burst = int(protocol.MaxPacketSize)
	}
	return &Throttled{
		sender:  sender,
		limiter: rate.NewLimiter(rate.Limit(bytesPerSecond), burst),
	}
}

// KbpsToBytesPerSecond converts a rate in kbit/s.
func KbpsToBytesPerSecond(kbps uint32) int {
	return int(uint64(kbps) * 1000 / 8)
}

func (t *Throttled) Inject(frame []byte) error {
	if err := t.limiter.WaitN(context.Background(), len(frame)); err != nil {
		return err
	}
	return t.sender.Inject(frame)
}
