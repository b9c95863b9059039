package wfbtx

import (
	"go.uber.org/zap"

	"github.com/ddritzenhoff/wfbtx/internal/protocol"
	"github.com/ddritzenhoff/wfbtx/internal/tracing"
)

// Config contains all configuration data needed for a Transmitter.
type Config struct {
	// FECScheme selects the erasure code. Reed-Solomon is the default.
	FECScheme protocol.FECSchemeID
	// K is the number of data fragments per block. Defaults to 8.
	K int
	// N is the number of fragments per block, data and parity. Defaults to 12.
	N int
	// ChannelTag is written into the link addresses of every frame.
	ChannelTag protocol.ChannelTag
	// Logger defaults to a no-op logger.
	Logger *zap.Logger
	// Tracer is optional.
	Tracer tracing.Tracer
}

func (c *Config) params() protocol.Params {
	return protocol.Params{K: c.K, N: c.N}
}

// populateConfig populates fields in the Config with their default values, if none are set.
// It may be called with nil.
func populateConfig(config *Config) *Config {
	if config == nil {
		config = &Config{ChannelTag: protocol.DefaultChannelTag}
	}
	k := config.K
	if k == 0 {
		k = protocol.DefaultK
	}
	n := config.N
	if n == 0 {
		n = protocol.DefaultN
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Config{
		FECScheme:  config.FECScheme,
		K:          k,
		N:          n,
		ChannelTag: config.ChannelTag,
		Logger:     logger,
		Tracer:     config.Tracer,
	}
}
