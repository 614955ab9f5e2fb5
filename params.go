package csifish

import (
	"fmt"
	"math"

	"csifish/classgroup"
)

// ParamSet fixes a protocol instantiation. Changing any field changes the
// wire format: encoded sizes and the challenge derivation both depend on it.
type ParamSet struct {
	// Curves is the split-prime count of the underlying field; it must
	// equal classgroup.NumPrimes for the CSIDH-512 parameters.
	Curves int
	// Rounds is the number of independent commit/challenge/response
	// repetitions, and the Merkle leaf count.
	Rounds int
	// Hashes is the challenge branch factor per round: a round opens
	// unless its challenge residue mod Hashes is zero, so the expected
	// opened fraction is (Hashes-1)/Hashes.
	Hashes int
}

// Soundness: a cheating prover answers a round when it is unopened
// (probability 1/Hashes) or when the guessed direction matches (half the
// rest), so one round resists forgery with probability 1-(Hashes+1)/(2*Hashes)
// and the scheme provides Rounds*log2(2*Hashes/(Hashes+1)) bits. Both stock
// sets clear 128 bits: 219*log2(32/17) is about 200, 156*log2(16/9) about 129.

// ParamSet128 targets the 128-bit security level with ample margin.
var ParamSet128 = ParamSet{Curves: 74, Rounds: 219, Hashes: 16}

// ParamSetCompact trades margin for signature size while staying above
// 128 bits of soundness.
var ParamSetCompact = ParamSet{Curves: 74, Rounds: 156, Hashes: 8}

func (p ParamSet) validate() error {
	if p.Curves != classgroup.NumPrimes {
		return fmt.Errorf("csifish: parameter set wants %d curves, field has %d primes", p.Curves, classgroup.NumPrimes)
	}
	if p.Rounds < 1 || p.Rounds > 0xffff {
		return fmt.Errorf("csifish: rounds %d out of range", p.Rounds)
	}
	if p.Hashes < 2 {
		return fmt.Errorf("csifish: branch factor %d out of range", p.Hashes)
	}
	return nil
}

// soundnessBits returns the forgery resistance of the cut-and-choose in
// bits: Rounds * log2(2*Hashes / (Hashes+1)).
func (p ParamSet) soundnessBits() float64 {
	return float64(p.Rounds) * math.Log2(2*float64(p.Hashes)/(float64(p.Hashes)+1))
}

// treeSize is the padded Merkle leaf count.
func (p ParamSet) treeSize() int {
	n := 1
	for n < p.Rounds {
		n <<= 1
	}
	return n
}
