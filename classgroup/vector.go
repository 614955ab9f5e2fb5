package classgroup

import (
	"encoding/binary"
	"errors"
)

// NumPrimes is the number of odd primes splitting in the CSIDH-512 order,
// and therefore the dimension of exponent vectors.
const NumPrimes = 74

// VectorSize is the encoding size of a Vector in bytes.
const VectorSize = 2 * NumPrimes

// ErrMalformedVector is returned when decoding a vector of the wrong size.
var ErrMalformedVector = errors.New("classgroup: malformed vector encoding")

// Primes lists the small odd primes l_1 .. l_74 with p = 4*l_1*...*l_74 - 1.
var Primes = [NumPrimes]uint64{
	3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41, 43, 47, 53, 59, 61, 67,
	71, 73, 79, 83, 89, 97, 101, 103, 107, 109, 113, 127, 131, 137, 139,
	149, 151, 157, 163, 167, 173, 179, 181, 191, 193, 197, 199, 211, 223,
	227, 229, 233, 239, 241, 251, 257, 263, 269, 271, 277, 281, 283, 293,
	307, 311, 313, 317, 331, 337, 347, 349, 353, 359, 367, 373, 587,
}

// Vector is an exponent vector over the ideal generators: coordinate i is
// the net number of degree-l_i isogeny steps, with sign selecting the
// direction.
type Vector [NumPrimes]int16

// Add returns v + w coordinate-wise.
func (v *Vector) Add(w *Vector) Vector {
	var r Vector
	for i := range r {
		r[i] = v[i] + w[i]
	}
	return r
}

// Sub returns v - w coordinate-wise.
func (v *Vector) Sub(w *Vector) Vector {
	var r Vector
	for i := range r {
		r[i] = v[i] - w[i]
	}
	return r
}

// Neg returns -v.
func (v *Vector) Neg() Vector {
	var r Vector
	for i := range r {
		r[i] = -v[i]
	}
	return r
}

// L1 returns the l1 norm of v, which is the total isogeny step count of the
// group action it drives.
func (v *Vector) L1() int {
	n := 0
	for _, c := range v {
		if c < 0 {
			n -= int(c)
		} else {
			n += int(c)
		}
	}
	return n
}

// InfNorm returns the largest coordinate magnitude.
func (v *Vector) InfNorm() int {
	n := 0
	for _, c := range v {
		a := int(c)
		if a < 0 {
			a = -a
		}
		if a > n {
			n = a
		}
	}
	return n
}

// Bytes returns the fixed-size big-endian encoding of v.
func (v *Vector) Bytes() [VectorSize]byte {
	var out [VectorSize]byte
	for i, c := range v {
		binary.BigEndian.PutUint16(out[2*i:], uint16(c))
	}
	return out
}

// SetBytes decodes the fixed-size encoding produced by Bytes.
func (v *Vector) SetBytes(b []byte) (*Vector, error) {
	if len(b) != VectorSize {
		return nil, ErrMalformedVector
	}
	for i := range v {
		v[i] = int16(binary.BigEndian.Uint16(b[2*i:]))
	}
	return v, nil
}
