// Package classgroup implements arithmetic in the ideal class group of the
// CSIDH-512 orientation: scalars modulo the class number N, exponent vectors
// over the ideal generators, and the reduction of scalars to short vectors
// through the relation lattice.
package classgroup

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/big"
	"math/bits"

	"csifish/internal/ctutil"
)

// scalarLimbs is the limb count of the class number N, which is 258 bits.
const scalarLimbs = 5

// ScalarSize is the canonical scalar encoding size in bytes.
const ScalarSize = 33

// ErrNonCanonicalScalar is returned when decoding a value not below N.
var ErrNonCanonicalScalar = errors.New("classgroup: encoding is not a canonical scalar")

// order is the class number N of Z[sqrt(-p)], little-endian limbs.
var order = [scalarLimbs]uint64{
	0x4291aa03cd95356f,
	0xdf68a8029b289f12,
	0x0c6dbd5a6a941df1,
	0x33002cb20d405a4f,
	0x0000000000000002,
}

// Scalar is a residue modulo the class number N. The zero value is 0.
type Scalar struct {
	limbs [scalarLimbs]uint64
}

// Add sets s = x + y mod N and returns s.
func (s *Scalar) Add(x, y *Scalar) *Scalar {
	var r, t [scalarLimbs]uint64
	var c uint64
	for i := 0; i < scalarLimbs; i++ {
		r[i], c = bits.Add64(x.limbs[i], y.limbs[i], c)
	}
	c = 0
	for i := 0; i < scalarLimbs; i++ {
		t[i], c = bits.Sub64(r[i], order[i], c)
	}
	ctutil.CMov(r[:], t[:], 1-c)
	s.limbs = r
	return s
}

// Sub sets s = x - y mod N and returns s.
func (s *Scalar) Sub(x, y *Scalar) *Scalar {
	var r [scalarLimbs]uint64
	var c uint64
	for i := 0; i < scalarLimbs; i++ {
		r[i], c = bits.Sub64(x.limbs[i], y.limbs[i], c)
	}
	m := ctutil.Mask(c)
	c = 0
	for i := 0; i < scalarLimbs; i++ {
		r[i], c = bits.Add64(r[i], order[i]&m, c)
	}
	s.limbs = r
	return s
}

// Neg sets s = -x mod N and returns s.
func (s *Scalar) Neg(x *Scalar) *Scalar {
	var zero Scalar
	return s.Sub(&zero, x)
}

// IsZero reports whether s == 0 in constant time.
func (s *Scalar) IsZero() bool {
	var r uint64
	for _, l := range s.limbs {
		r |= l
	}
	return ctutil.IsNonZero(r) == 0
}

// Equal reports whether s == x in constant time.
func (s *Scalar) Equal(x *Scalar) bool {
	return ctutil.Eq(s.limbs[:], x.limbs[:])
}

// Random sets s to a uniform scalar read from rng and returns s.
func (s *Scalar) Random(rng io.Reader) (*Scalar, error) {
	var buf [ScalarSize]byte
	var l [scalarLimbs]uint64
	for {
		if _, err := io.ReadFull(rng, buf[:]); err != nil {
			return nil, fmt.Errorf("classgroup: sampling scalar: %w", err)
		}
		buf[0] >>= 6 // N is 258 bits
		decodeLimbs(&l, buf[:])
		if ctutil.LessVartime(l[:], order[:]) {
			s.limbs = l
			return s, nil
		}
	}
}

// Bytes returns the canonical 33-byte big-endian encoding of s.
func (s *Scalar) Bytes() [ScalarSize]byte {
	var out [ScalarSize]byte
	out[0] = byte(s.limbs[4])
	for i := 0; i < 4; i++ {
		binary.BigEndian.PutUint64(out[1+8*i:], s.limbs[3-i])
	}
	return out
}

// SetBytes decodes a canonical big-endian encoding, rejecting values >= N.
func (s *Scalar) SetBytes(b []byte) (*Scalar, error) {
	if len(b) != ScalarSize {
		return nil, ErrNonCanonicalScalar
	}
	var l [scalarLimbs]uint64
	decodeLimbs(&l, b)
	if !ctutil.LessVartime(l[:], order[:]) {
		return nil, ErrNonCanonicalScalar
	}
	s.limbs = l
	return s, nil
}

// Zeroize clears the scalar.
func (s *Scalar) Zeroize() {
	for i := range s.limbs {
		s.limbs[i] = 0
	}
}

func decodeLimbs(l *[scalarLimbs]uint64, b []byte) {
	l[4] = uint64(b[0])
	for i := 0; i < 4; i++ {
		l[3-i] = binary.BigEndian.Uint64(b[1+8*i:])
	}
}

var orderBig = func() *big.Int {
	n := new(big.Int)
	for i := scalarLimbs - 1; i >= 0; i-- {
		n.Lsh(n, 64)
		n.Or(n, new(big.Int).SetUint64(order[i]))
	}
	return n
}()

// bigInt returns s as a big integer. Reduction to a short vector works on
// multiprecision values, so it leaves constant-time territory deliberately.
func (s *Scalar) bigInt() *big.Int {
	x := new(big.Int)
	for i := scalarLimbs - 1; i >= 0; i-- {
		x.Lsh(x, 64)
		x.Or(x, new(big.Int).SetUint64(s.limbs[i]))
	}
	return x
}
