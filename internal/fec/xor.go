package fec

import "fmt"

// xorScheme produces a single parity shard as the XOR of all data shards.
type xorScheme struct{}

func (s *xorScheme) Encode(shards [][]byte) error {
	if len(shards) < 2 {
		return fmt.Errorf("need at least one data shard and one parity shard, got %d shards", len(shards))
	}
	data := shards[:len(shards)-1]
	parity := shards[len(shards)-1]
	for i := range parity {
		parity[i] = 0
	}
	for i, shard := range data {
		if len(shard) != len(parity) {
			return fmt.Errorf("shard %d has length %d, expected %d", i, len(shard), len(parity))
		}
		for j, v := range shard {
			parity[j] ^= v
		}
	}
	return nil
}
