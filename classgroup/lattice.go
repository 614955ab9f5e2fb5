package classgroup

import (
	"encoding/binary"
	"errors"
	"math/big"
	mrand "math/rand"
	"sync"
)

const (
	// poolSize is the number of short lattice vectors kept for the
	// descent phase of the reduction.
	poolSize = 7500

	// dlwRestarts is the number of randomized descent passes; the
	// shortest result wins.
	dlwRestarts = 2

	poolSeed = 0x43534946
)

// ErrReduceOverflow reports a reduced coordinate outside int16 range. The
// descent never grows the L2 norm of the digit decomposition, so this can
// only fire on a corrupted basis table.
var ErrReduceOverflow = errors.New("classgroup: reduced vector coordinate out of range")

// Reduce maps a scalar to a short exponent vector representing the same
// group element: first the balanced base-12 digit decomposition of s, which
// is the exact nearest-plane reduction against the radix relation lattice,
// then a randomized pool descent in the style of Doulgerakis, Laarhoven and
// de Weger. The result is deterministic in s. Variable time; callers must
// not let reduction timing depend on long-term secrets they cannot afford
// to leak, which in practice means reducing only freshly sampled scalars.
func Reduce(s *Scalar) (Vector, error) {
	v := balancedDigits(s.bigInt())

	seed := s.Bytes()
	best := v
	bestNorm := normSq(&best)
	for r := 0; r < dlwRestarts; r++ {
		rng := mrand.New(mrand.NewSource(int64(binary.BigEndian.Uint64(seed[1:])) + int64(r)))
		cand := dlwDescent(v, rng)
		if n := normSq(&cand); n < bestNorm {
			best, bestNorm = cand, n
		}
	}

	var out Vector
	for i, c := range best {
		if c < -32768 || c > 32767 {
			return Vector{}, ErrReduceOverflow
		}
		out[i] = int16(c)
	}
	return out, nil
}

// balancedDigits writes t in balanced base 12, digits in [-6, 5]. Any
// residue mod N fits in NumPrimes digits since N is well below
// 5/11 * 12^NumPrimes. The digit vector is congruent to (t, 0, ..., 0)
// modulo the relation lattice: peeling a digit d_i off coordinate i and
// carrying (t - d_i)/12 to coordinate i+1 subtracts an exact multiple of
// the chain row 12*e_i - e_{i+1}.
func balancedDigits(t *big.Int) [NumPrimes]int64 {
	var out [NumPrimes]int64
	rem := new(big.Int).Set(t)
	base := big.NewInt(radixBase)
	bigOne := big.NewInt(1)
	r := new(big.Int)
	for i := 0; i < NumPrimes; i++ {
		if rem.Sign() == 0 {
			break
		}
		rem.QuoRem(rem, base, r)
		d := r.Int64()
		if d > radixBase/2-1 {
			d -= radixBase
			rem.Add(rem, bigOne)
		}
		out[i] = d
	}
	return out
}

type poolEntry struct {
	vec  [NumPrimes]int64
	norm int64
}

var (
	poolOnce sync.Once
	pool     []poolEntry
)

// descentPool builds a fixed pool of short lattice vectors: the basis rows
// themselves plus small signed combinations of two or three rows, generated
// from a fixed seed so every process agrees on the pool.
func descentPool() []poolEntry {
	poolOnce.Do(func() {
		rng := mrand.New(mrand.NewSource(poolSeed))
		pool = make([]poolEntry, 0, poolSize)
		for i := 0; i < NumPrimes; i++ {
			var e poolEntry
			for j := 0; j < NumPrimes; j++ {
				e.vec[j] = int64(basisRows[i][j])
			}
			e.norm = normSq(&e.vec)
			pool = append(pool, e)
		}
		for len(pool) < poolSize {
			var e poolEntry
			rows := 2 + rng.Intn(2)
			for k := 0; k < rows; k++ {
				row := rng.Intn(NumPrimes)
				sign := int64(1 - 2*rng.Intn(2))
				for j := 0; j < NumPrimes; j++ {
					e.vec[j] += sign * int64(basisRows[row][j])
				}
			}
			e.norm = normSq(&e.vec)
			if e.norm == 0 {
				continue
			}
			pool = append(pool, e)
		}
	})
	return pool
}

// dlwDescent repeatedly subtracts pool vectors while doing so shrinks the
// candidate: v loses w whenever 2<v,w> > |w|^2, gains it when 2<v,w> < -|w|^2.
// The pool scan order is randomized per restart.
func dlwDescent(v [NumPrimes]int64, rng *mrand.Rand) [NumPrimes]int64 {
	p := descentPool()
	order := rng.Perm(len(p))
	for improved := true; improved; {
		improved = false
		for _, idx := range order {
			w := &p[idx]
			d := dot(&v, &w.vec)
			switch {
			case 2*d > w.norm:
				for j := 0; j < NumPrimes; j++ {
					v[j] -= w.vec[j]
				}
				improved = true
			case 2*d < -w.norm:
				for j := 0; j < NumPrimes; j++ {
					v[j] += w.vec[j]
				}
				improved = true
			}
		}
	}
	return v
}

func dot(a, b *[NumPrimes]int64) int64 {
	var s int64
	for i := 0; i < NumPrimes; i++ {
		s += a[i] * b[i]
	}
	return s
}

func normSq(v *[NumPrimes]int64) int64 {
	return dot(v, v)
}
