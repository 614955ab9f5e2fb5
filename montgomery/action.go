package montgomery

import (
	"io"

	"csifish/classgroup"
	"csifish/measure"
)

// Act applies the class group element with exponent vector v to the curve:
// for each prime l_i it walks |v[i]| degree-l_i isogeny steps, in the
// direction given by the sign of v[i]. Negative steps use twist points as
// kernels, which the x-only formulas accept transparently.
//
// Variable time in v. Verification and commitment recomputation use it on
// public or one-time data; long-term secrets go through ActBlinded.
func Act(v *classgroup.Vector, c Curve, rng io.Reader) (Curve, error) {
	var exp [classgroup.NumPrimes]int32
	remaining := 0
	for i, e := range v {
		exp[i] = int32(e)
		if e != 0 {
			remaining += abs32(int32(e))
		}
	}

	cur := c
	for remaining > 0 {
		for _, sign := range [2]int32{1, -1} {
			var set primeMask
			for i := 0; i < classgroup.NumPrimes; i++ {
				if sign*exp[i] > 0 {
					set.set(i)
				}
			}
			if set.isZero() {
				continue
			}
			onCurve, onTwist, err := cur.Elligator(rng)
			if err != nil {
				return Curve{}, err
			}
			p := onCurve
			if sign < 0 {
				p = onTwist
			}

			// clear the even part and all primes outside the set
			p = cur.Double(&p)
			p = cur.Double(&p)
			comp := set.complement()
			p = cur.mulByPrimes(&p, &comp)

			for i := classgroup.NumPrimes - 1; i >= 0; i-- {
				if set.bit(i) == 0 {
					continue
				}
				set.clear(i)
				k := cur.mulByPrimes(&p, &set)
				if k.IsZero() {
					// point had no order-l_i component; retry later
					continue
				}
				measure.Global.Add(measure.IsogenySteps, 1)
				img, _, next := cur.TwoPointIsogeny(&k, classgroup.Primes[i], &p, &p)
				cur = next
				p = img
				exp[i] -= sign
				remaining--
			}
		}
	}
	return cur, nil
}

func abs32(x int32) int {
	if x < 0 {
		return int(-x)
	}
	return int(x)
}
