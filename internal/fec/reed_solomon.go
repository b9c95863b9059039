package fec

import (
	"fmt"

	"github.com/klauspost/reedsolomon"
)

type reedSolomonScheme struct {
	enc reedsolomon.Encoder
}

var _ Encoder = &reedSolomonScheme{}

func NewReedSolomonScheme(numDataShards int, numParityShards int) (*reedSolomonScheme, error) {
	// Encoding runs inline on the relay loop.
	enc, err := reedsolomon.New(numDataShards, numParityShards, reedsolomon.WithMaxGoroutines(1))
	if err != nil {
		return nil, err
	}
	return &reedSolomonScheme{
		enc: enc,
	}, nil
}

func (s *reedSolomonScheme) Encode(shards [][]byte) error {
	if err := s.enc.Encode(shards); err != nil {
		return fmt.Errorf("unable to make parity shards: %w", err)
	}
	return nil
}
