package montgomery

import (
	"io"

	"csifish/fp"
	"csifish/measure"
)

// Elligator samples a pair of points from a single field element u drawn
// below (p-1)/2: the first lies on the curve, the second on its quadratic
// twist. On the base curve A = 0 the map degenerates to x and -x.
//
// TODO: constant-time Legendre. The Jacobi evaluation goes through math/big
// and leaks u through its timing, which the blinded action tolerates only
// because u is independent of the secret exponents.
func (c *Curve) Elligator(rng io.Reader) (onCurve, onTwist Point, err error) {
	one := fp.One()
	for {
		var u fp.Element
		if _, err := u.RandomBelowHalf(rng); err != nil {
			return Point{}, Point{}, err
		}
		var u2, d fp.Element
		u2.Square(&u)
		d.Sub(&u2, &one)
		if u.IsZero() || d.IsZero() {
			continue
		}
		var m, t, px fp.Element
		m.Mul(&c.A.X, &u2)
		t.Mul(&c.A.X, &m)
		px.Set(&c.A.X)
		var isBase uint64
		if c.A.X.IsZero() {
			isBase = 1
		}
		px.CMov(isBase, &one)
		m.CMov(isBase, &one)
		t.CMov(isBase, &one)
		d.Mul(&d, &c.A.Z)
		var d2 fp.Element
		d2.Square(&d)
		t.Add(&t, &d2)
		t.Mul(&t, &d)
		t.Mul(&t, &px)

		var mneg fp.Element
		mneg.Neg(&m)
		plus := Point{X: px, Z: d}
		minus := Point{X: mneg, Z: d}
		var nonResidue uint64
		if t.JacobiVartime() < 0 {
			nonResidue = 1
		}
		plus.X.CMov(nonResidue, &mneg)
		minus.X.CMov(nonResidue, &px)
		measure.Global.Add(measure.ElligatorSamples, 1)
		return plus, minus, nil
	}
}
