package fec

import (
	"fmt"

	"github.com/ddritzenhoff/wfbtx/internal/protocol"
)

// Encoder computes parity shards. shards holds the k data shards followed by the n-k parity shards,
// all of the same length. Parity shards are overwritten in place. Encode must be deterministic.
type Encoder interface {
	Encode(shards [][]byte) error
}

// NewEncoder returns the encoder for the given scheme and block parameters.
func NewEncoder(id protocol.FECSchemeID, params protocol.Params) (Encoder, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if params.NumParity() == 0 {
		return noParityScheme{}, nil
	}
	switch id {
	case protocol.ReedSolomonFECScheme:
		return NewReedSolomonScheme(params.K, params.NumParity())
	case protocol.XORFECScheme:
		if params.NumParity() != 1 {
			return nil, fmt.Errorf("the XOR scheme produces exactly one parity fragment, got n-k = %d", params.NumParity())
		}
		return &xorScheme{}, nil
	default:
		return nil, fmt.Errorf("unknown FEC scheme: %d", id)
	}
}

// noParityScheme is used when k == n.
type noParityScheme struct{}

func (noParityScheme) Encode([][]byte) error { return nil }
