package montgomery

import (
	"math/bits"

	"csifish/classgroup"
)

// primeMask selects a subset of the 74 small primes, one bit per index.
type primeMask [2]uint64

func allPrimes() primeMask {
	var m primeMask
	m[0] = ^uint64(0)
	m[1] = (uint64(1) << (classgroup.NumPrimes - 64)) - 1
	return m
}

func (m *primeMask) bit(i int) uint64 {
	return (m[i>>6] >> (uint(i) & 63)) & 1
}

func (m *primeMask) set(i int) {
	m[i>>6] |= uint64(1) << (uint(i) & 63)
}

func (m *primeMask) clear(i int) {
	m[i>>6] &^= uint64(1) << (uint(i) & 63)
}

func (m *primeMask) isZero() bool {
	return m[0]|m[1] == 0
}

// complement flips the selection within the 74 valid bits.
func (m *primeMask) complement() primeMask {
	all := allPrimes()
	return primeMask{^m[0] & all[0], ^m[1] & all[1]}
}

// xMulVartime returns [n]P for a small odd scalar, by the usual x-only
// ladder keeping R1 - R0 = P. Variable time in n, which is public.
func (c *Curve) xMulVartime(p *Point, n uint64) Point {
	r0 := *p
	r1 := c.Double(p)
	for i := bits.Len64(n) - 2; i >= 0; i-- {
		if (n>>uint(i))&1 == 0 {
			r1 = c.DifferentialAdd(&r0, &r1, p)
			r0 = c.Double(&r0)
		} else {
			r0 = c.DifferentialAdd(&r0, &r1, p)
			r1 = c.Double(&r1)
		}
	}
	return r0
}

// mulByPrimes multiplies P by every prime selected in the mask. Clearing
// cofactors this way leaves a point whose order divides the product of the
// unselected primes.
func (c *Curve) mulByPrimes(p *Point, m *primeMask) Point {
	q := *p
	for i := 0; i < classgroup.NumPrimes; i++ {
		if m.bit(i) == 1 {
			q = c.xMulVartime(&q, classgroup.Primes[i])
		}
	}
	return q
}
