package wfbtx

import "github.com/ddritzenhoff/wfbtx/internal/protocol"

var (
	ErrPayloadTooLarge = protocol.ErrPayloadTooLarge
	ErrInjectionFailed = protocol.ErrInjectionFailed
	ErrWouldBlock      = protocol.ErrWouldBlock
	ErrInterrupted     = protocol.ErrInterrupted
)
