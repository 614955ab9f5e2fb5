package fp

import (
	"math/bits"

	"csifish/internal/ctutil"
)

// invIterations is a proven upper bound on the number of divsteps needed to
// drive g to zero for a 512-bit modulus: ceil((49*512 + 57) / 17).
const invIterations = 1480

// signedLimbs is the number of limbs used for the signed transition values f
// and g. One extra limb holds the sign, since |f|, |g| stay below 2^512.
const signedLimbs = Limbs + 1

type signed [signedLimbs]uint64

func (s *signed) odd() uint64 {
	return s[0] & 1
}

func (s *signed) negative() uint64 {
	return s[signedLimbs-1] >> 63
}

// negate sets s = -s in two's complement when doNeg == 1.
func (s *signed) negate(doNeg uint64) {
	m := ctutil.Mask(doNeg)
	c := doNeg
	for i := 0; i < signedLimbs; i++ {
		s[i], c = bits.Add64(s[i]^m, 0, c)
	}
}

// add sets s = s + t, wrapping in two's complement.
func (s *signed) add(t *signed) {
	var c uint64
	for i := 0; i < signedLimbs; i++ {
		s[i], c = bits.Add64(s[i], t[i], c)
	}
}

// condAdd sets s = s + t when doAdd == 1.
func (s *signed) condAdd(t *signed, doAdd uint64) {
	m := ctutil.Mask(doAdd)
	var c uint64
	for i := 0; i < signedLimbs; i++ {
		s[i], c = bits.Add64(s[i], t[i]&m, c)
	}
}

// sar shifts s right by one bit, preserving the sign.
func (s *signed) sar() {
	for i := 0; i < signedLimbs-1; i++ {
		s[i] = s[i]>>1 | s[i+1]<<63
	}
	s[signedLimbs-1] = uint64(int64(s[signedLimbs-1]) >> 1)
}

func (s *signed) isZero() bool {
	var r uint64
	for _, l := range s {
		r |= l
	}
	return r == 0
}

// negMod sets l = -l mod p.
func negMod(l *[Limbs]uint64) {
	*l = subReduce(&[Limbs]uint64{}, l)
}

// condAddMod sets l = l + t mod p when doAdd == 1.
func condAddMod(l, t *[Limbs]uint64, doAdd uint64) {
	sum := addReduce(l, t)
	ctutil.CMov(l[:], sum[:], doAdd)
}

// halveMod sets l = l / 2 mod p.
func halveMod(l *[Limbs]uint64) {
	odd := l[0] & 1
	var t [Limbs]uint64
	var c uint64
	for i := 0; i < Limbs; i++ {
		t[i], c = bits.Add64(l[i], prime[i], c)
	}
	top := c & odd
	ctutil.CMov(l[:], t[:], odd)
	for i := 0; i < Limbs-1; i++ {
		l[i] = l[i]>>1 | l[i+1]<<63
	}
	l[Limbs-1] = l[Limbs-1]>>1 | top<<63
}

// Inv sets e = x^-1 when x is invertible and reports whether it was. When
// x == 0, e is set to zero and Inv returns false. The computation is a
// constant-time binary gcd (divstep) with a fixed iteration count.
//
// Throughout, f == d*x and g == e*x mod p, with f odd. Halving g pairs with
// an exact halving of the cofactor mod p, so once g reaches zero, f holds
// +/-gcd(p, x) and the cofactor d holds +/-x^-1 directly. The input is the
// Montgomery residue of x; a final multiplication by R^3 restores Montgomery
// form of the inverse.
func (e *Element) Inv(x *Element) bool {
	var f, g signed
	copy(f[:], prime[:])
	copy(g[:], x.limbs[:])

	var d, v [Limbs]uint64 // cofactors of f and g
	v[0] = 1

	delta := int64(1)
	for i := 0; i < invIterations; i++ {
		swap := (uint64(-delta) >> 63) & g.odd()

		// (delta, f, g) <- (-delta, g, -f); (d, v) <- (v, -d)
		fNeg := f
		fNeg.negate(1)
		dNeg := d
		negMod(&dNeg)
		fSwap, gSwap := g, fNeg
		dSwap, vSwap := v, dNeg
		ctutil.CMov(f[:], fSwap[:], swap)
		ctutil.CMov(g[:], gSwap[:], swap)
		ctutil.CMov(d[:], dSwap[:], swap)
		ctutil.CMov(v[:], vSwap[:], swap)
		deltaNeg := -delta
		dm := int64(ctutil.Mask(swap))
		delta = (delta &^ dm) | (deltaNeg & dm)

		delta++
		odd := g.odd()
		g.condAdd(&f, odd)
		condAddMod(&v, &d, odd)
		g.sar()
		halveMod(&v)
	}

	// f is now +/-1; fold the sign into the cofactor.
	neg := f.negative()
	dNeg := d
	negMod(&dNeg)
	ctutil.CMov(d[:], dNeg[:], neg)

	inverse := montMul(&d, &r3Mont)
	var acc uint64
	for _, l := range x.limbs {
		acc |= l
	}
	nonZero := ctutil.IsNonZero(acc)
	var zero [Limbs]uint64
	ctutil.CMov(inverse[:], zero[:], 1-nonZero)
	e.limbs = inverse
	return nonZero == 1
}

// divstepsToZero runs the same recurrence in variable time and returns the
// step at which g first reaches zero. Test instrumentation for the
// invIterations bound.
func divstepsToZero(x *Element) int {
	var f, g signed
	copy(f[:], prime[:])
	copy(g[:], x.limbs[:])

	delta := int64(1)
	for i := 0; i < invIterations; i++ {
		if g.isZero() {
			return i
		}
		swap := (uint64(-delta) >> 63) & g.odd()
		fNeg := f
		fNeg.negate(1)
		fSwap, gSwap := g, fNeg
		ctutil.CMov(f[:], fSwap[:], swap)
		ctutil.CMov(g[:], gSwap[:], swap)
		if swap == 1 {
			delta = -delta
		}
		delta++
		g.condAdd(&f, g.odd())
		g.sar()
	}
	return invIterations
}
