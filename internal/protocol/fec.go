package protocol

import "fmt"

type FECSchemeID byte

const (
	ReedSolomonFECScheme FECSchemeID = iota
	XORFECScheme
)

func (f FECSchemeID) String() string {
	switch f {
	case XORFECScheme:
		return "xor"
	case ReedSolomonFECScheme:
		return "reed_solomon"
	default:
		return "unknown"
	}
}

// ParseFECScheme maps a scheme name as used in config files to its ID.
func ParseFECScheme(s string) (FECSchemeID, error) {
	switch s {
	case "", "reed_solomon", "rs":
		return ReedSolomonFECScheme, nil
	case "xor":
		return XORFECScheme, nil
	default:
		return 0, fmt.Errorf("unknown FEC scheme: %q", s)
	}
}

// Params describes the k-of-n block structure.
type Params struct {
	// K is the number of data fragments per block.
	K int
	// N is the total number of fragments per block, data and parity.
	N int
}

// MaxFragmentsPerBlock is bounded by the width of the fragment index on the wire.
const MaxFragmentsPerBlock = 255

func (p Params) NumParity() int { return p.N - p.K }

func (p Params) Validate() error {
	if p.K <= 0 {
		return fmt.Errorf("k must be positive, got %d", p.K)
	}
	if p.N < p.K {
		return fmt.Errorf("n (%d) may not be smaller than k (%d)", p.N, p.K)
	}
	if p.N > MaxFragmentsPerBlock {
		return fmt.Errorf("n (%d) exceeds the maximum of %d fragments per block", p.N, MaxFragmentsPerBlock)
	}
	return nil
}
