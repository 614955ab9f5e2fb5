// Package fp implements constant-time arithmetic in the base field F_p of the
// CSIDH-512 parameter set. Elements are kept in Montgomery form; all
// operations run in time independent of the operand values unless their name
// carries a Vartime suffix.
package fp

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/big"
	"math/bits"

	"csifish/internal/ctutil"
)

// ElementSize is the canonical encoding size in bytes.
const ElementSize = Limbs * 8

// ErrNonCanonical is returned when decoding a value not strictly below p.
var ErrNonCanonical = errors.New("fp: encoding is not a canonical field element")

// Element is a field element in Montgomery representation. The zero value
// represents 0.
type Element struct {
	limbs [Limbs]uint64
}

// One returns the multiplicative identity.
func One() Element {
	return Element{limbs: oneMont}
}

// Zero returns the additive identity.
func Zero() Element {
	return Element{}
}

// SetUint64 sets e to the small integer v and returns e.
func (e *Element) SetUint64(v uint64) *Element {
	var l [Limbs]uint64
	l[0] = v
	e.limbs = montMul(&l, &r2Mont)
	return e
}

// Set copies x into e and returns e.
func (e *Element) Set(x *Element) *Element {
	e.limbs = x.limbs
	return e
}

// Add sets e = x + y and returns e.
func (e *Element) Add(x, y *Element) *Element {
	e.limbs = addReduce(&x.limbs, &y.limbs)
	return e
}

// Sub sets e = x - y and returns e.
func (e *Element) Sub(x, y *Element) *Element {
	e.limbs = subReduce(&x.limbs, &y.limbs)
	return e
}

// Neg sets e = -x and returns e.
func (e *Element) Neg(x *Element) *Element {
	e.limbs = subReduce(&prime, &x.limbs)
	return e
}

// Mul sets e = x * y and returns e.
func (e *Element) Mul(x, y *Element) *Element {
	e.limbs = montMul(&x.limbs, &y.limbs)
	return e
}

// Square sets e = x^2 and returns e.
func (e *Element) Square(x *Element) *Element {
	e.limbs = montMul(&x.limbs, &x.limbs)
	return e
}

// PowBounded sets e = x^pow for pow < 2^10 in constant time with respect to
// both x and pow, and returns e. The bound covers the largest isogeny degree.
func (e *Element) PowBounded(x *Element, pow uint64) *Element {
	this := *x
	tmp := One()
	res := One()
	for i := 0; i < 11; i++ {
		done := ctutil.IsNonZero(pow)
		res.CMov(1-done, &tmp)
		if i == 10 {
			break
		}
		var prod Element
		prod.Mul(&tmp, &this)
		tmp.CMov(pow&1, &prod)
		this.Square(&this)
		pow >>= 1
	}
	*e = res
	return e
}

// IsZero reports whether e == 0 in constant time.
func (e *Element) IsZero() bool {
	var r uint64
	for _, l := range e.limbs {
		r |= l
	}
	return ctutil.IsNonZero(r) == 0
}

// Equal reports whether e == x in constant time.
func (e *Element) Equal(x *Element) bool {
	return ctutil.Eq(e.limbs[:], x.limbs[:])
}

// CMov sets e = x when move == 1 and leaves e unchanged when move == 0.
func (e *Element) CMov(move uint64, x *Element) {
	ctutil.CMov(e.limbs[:], x.limbs[:], move)
}

// CSwap exchanges e and x when swap == 1.
func (e *Element) CSwap(swap uint64, x *Element) {
	ctutil.CSwap(e.limbs[:], x.limbs[:], swap)
}

// Random sets e to a uniform field element read from rng and returns e.
func (e *Element) Random(rng io.Reader) (*Element, error) {
	var buf [ElementSize]byte
	var l [Limbs]uint64
	for {
		if _, err := io.ReadFull(rng, buf[:]); err != nil {
			return nil, fmt.Errorf("fp: sampling field element: %w", err)
		}
		for i := 0; i < Limbs; i++ {
			l[i] = binary.LittleEndian.Uint64(buf[8*i:])
		}
		if ctutil.LessVartime(l[:], prime[:]) {
			e.limbs = montMul(&l, &r2Mont)
			return e, nil
		}
	}
}

// RandomBelowHalf sets e to a uniform element in [0, (p-1)/2) and returns e.
// Elligator uses it so that u and -u never both occur.
func (e *Element) RandomBelowHalf(rng io.Reader) (*Element, error) {
	var buf [ElementSize]byte
	var l [Limbs]uint64
	for {
		if _, err := io.ReadFull(rng, buf[:]); err != nil {
			return nil, fmt.Errorf("fp: sampling field element: %w", err)
		}
		for i := 0; i < Limbs; i++ {
			l[i] = binary.LittleEndian.Uint64(buf[8*i:])
		}
		l[Limbs-1] >>= 1
		if ctutil.LessVartime(l[:], halfPrime[:]) {
			e.limbs = montMul(&l, &r2Mont)
			return e, nil
		}
	}
}

// Bytes returns the canonical big-endian encoding of e (standard form).
func (e *Element) Bytes() [ElementSize]byte {
	std := fromMontgomery(&e.limbs)
	var out [ElementSize]byte
	for i := 0; i < Limbs; i++ {
		binary.BigEndian.PutUint64(out[8*i:], std[Limbs-1-i])
	}
	return out
}

// SetCanonicalBytes decodes a canonical big-endian encoding, rejecting any
// value >= p.
func (e *Element) SetCanonicalBytes(b []byte) (*Element, error) {
	if len(b) != ElementSize {
		return nil, ErrNonCanonical
	}
	var l [Limbs]uint64
	for i := 0; i < Limbs; i++ {
		l[Limbs-1-i] = binary.BigEndian.Uint64(b[8*i:])
	}
	if !ctutil.LessVartime(l[:], prime[:]) {
		return nil, ErrNonCanonical
	}
	e.limbs = montMul(&l, &r2Mont)
	return e, nil
}

// SetHex decodes a 128-character big-endian hex string. It is intended for
// fixed test vectors and panics on malformed input.
func (e *Element) SetHex(s string) *Element {
	if len(s) != 2*ElementSize {
		panic("fp: hex string is not the expected size")
	}
	var buf [ElementSize]byte
	for i := 0; i < ElementSize; i++ {
		hi := decodeNibble(s[2*i])
		lo := decodeNibble(s[2*i+1])
		buf[i] = hi<<4 | lo
	}
	out, err := e.SetCanonicalBytes(buf[:])
	if err != nil {
		panic("fp: hex string is not a canonical field element")
	}
	return out
}

func decodeNibble(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	}
	panic("fp: invalid hex digit")
}

var primeBig = func() *big.Int {
	p := new(big.Int)
	for i := Limbs - 1; i >= 0; i-- {
		p.Lsh(p, 64)
		p.Or(p, new(big.Int).SetUint64(prime[i]))
	}
	return p
}()

// JacobiVartime returns the Jacobi symbol (e/p) in {-1, 0, 1}. It operates on
// the Montgomery residue directly, which is sound because R = 2^512 is a
// square mod p. Variable time; see the call site in the Elligator sampler.
func (e *Element) JacobiVartime() int {
	x := new(big.Int)
	for i := Limbs - 1; i >= 0; i-- {
		x.Lsh(x, 64)
		x.Or(x, new(big.Int).SetUint64(e.limbs[i]))
	}
	return big.Jacobi(x, primeBig)
}

func addReduce(x, y *[Limbs]uint64) [Limbs]uint64 {
	var r, t [Limbs]uint64
	var c uint64
	for i := 0; i < Limbs; i++ {
		r[i], c = add64(x[i], y[i], c)
	}
	c = 0
	for i := 0; i < Limbs; i++ {
		t[i], c = bits.Sub64(r[i], prime[i], c)
	}
	// keep the subtracted value unless it borrowed
	ctutil.CMov(r[:], t[:], 1-c)
	return r
}

func subReduce(x, y *[Limbs]uint64) [Limbs]uint64 {
	var r [Limbs]uint64
	var c uint64
	for i := 0; i < Limbs; i++ {
		r[i], c = bits.Sub64(x[i], y[i], c)
	}
	// conditionally add p back when x < y
	m := ctutil.Mask(c)
	c = 0
	for i := 0; i < Limbs; i++ {
		r[i], c = bits.Add64(r[i], prime[i]&m, c)
	}
	return r
}

// add64 is bits.Add64 with the carry folded in; split out so the reduction
// loops read like the limb schedule they implement.
func add64(x, y, carry uint64) (uint64, uint64) {
	return bits.Add64(x, y, carry)
}

// mulAdd returns the 128-bit value a*b + c as (hi, lo).
func mulAdd(a, b, c uint64) (hi, lo uint64) {
	hi, lo = bits.Mul64(a, b)
	var cc uint64
	lo, cc = bits.Add64(lo, c, 0)
	hi += cc
	return
}

// mulAdd2 returns the 128-bit value a*b + c + d as (hi, lo).
func mulAdd2(a, b, c, d uint64) (hi, lo uint64) {
	hi, lo = bits.Mul64(a, b)
	var cc uint64
	lo, cc = bits.Add64(lo, c, 0)
	hi += cc
	lo, cc = bits.Add64(lo, d, 0)
	hi += cc
	return
}

// montMul is a word-by-word Montgomery multiplication (CIOS), interleaving
// the product accumulation with the reduction by m = t0 * inv mod 2^64.
func montMul(x, y *[Limbs]uint64) [Limbs]uint64 {
	var t [Limbs]uint64
	for i := 0; i < Limbs; i++ {
		high, lo := mulAdd(x[0], y[i], t[0])
		t[0] = lo
		m := t[0] * inv
		carry, _ := mulAdd(m, prime[0], t[0])
		for j := 1; j < Limbs; j++ {
			high, t[j] = mulAdd2(x[j], y[i], high, t[j])
			carry, t[j-1] = mulAdd2(m, prime[j], carry, t[j])
		}
		t[Limbs-1] = carry + high
	}
	var r [Limbs]uint64
	var c uint64
	for i := 0; i < Limbs; i++ {
		r[i], c = bits.Sub64(t[i], prime[i], c)
	}
	ctutil.CMov(t[:], r[:], 1-c)
	return t
}

// fromMontgomery converts aR mod p to a mod p.
func fromMontgomery(l *[Limbs]uint64) [Limbs]uint64 {
	var one [Limbs]uint64
	one[0] = 1
	return montMul(l, &one)
}
