package montgomery

import "csifish/fp"

// TwoPointIsogeny computes the odd-degree isogeny with kernel generated by
// k, of degree ell, and pushes p1 and p2 through it. It returns the two
// images and the codomain curve. The kernel point must have exact order
// ell on the x-line of the domain curve.
//
// The codomain coefficient comes from the twisted Edwards form of the
// curve, following Costello-Smith section 5; the kernel is enumerated as
// [i]k for i up to (ell-1)/2 with a rotating three-entry buffer.
func (c *Curve) TwoPointIsogeny(k *Point, ell uint64, p1, p2 *Point) (Point, Point, Curve) {
	var edwardsX, edwardsZ fp.Element
	edwardsZ.Add(&c.A.Z, &c.A.Z)
	edwardsX.Add(&c.A.X, &edwardsZ)
	edwardsZ.Sub(&c.A.X, &edwardsZ)

	var p1add, p1sub, p2add, p2sub fp.Element
	p1add.Add(&p1.X, &p1.Z)
	p1sub.Sub(&p1.X, &p1.Z)
	p2add.Add(&p2.X, &p2.Z)
	p2sub.Sub(&p2.X, &p2.Z)

	var prod Point
	prod.X.Sub(&k.X, &k.Z)
	prod.Z.Add(&k.X, &k.Z)

	var tmp0, tmp1 fp.Element
	tmp1.Mul(&prod.X, &p1add)
	tmp0.Mul(&prod.Z, &p1sub)
	var q1 Point
	q1.X.Add(&tmp0, &tmp1)
	q1.Z.Sub(&tmp0, &tmp1)
	tmp1.Mul(&prod.X, &p2add)
	tmp0.Mul(&prod.Z, &p2sub)
	var q2 Point
	q2.X.Add(&tmp0, &tmp1)
	q2.Z.Sub(&tmp0, &tmp1)

	// a24.X = A.X + 2*A.Z, a24.Z = 4*A.Z
	var t fp.Element
	t.Add(&c.A.Z, &c.A.Z)
	var a24 Point
	a24.X.Add(&c.A.X, &t)
	a24.Z.Add(&t, &t)

	// kernel buffer holds [i-1]k, [i]k, [i+1]k; seed it with k and [2]k
	var p2x, p2z fp.Element
	p2x.Add(&k.X, &k.Z)
	p2x.Square(&p2x)
	p2z.Sub(&k.X, &k.Z)
	p2z.Square(&p2z)
	var cc, b, a fp.Element
	cc.Sub(&p2x, &p2z)
	b.Mul(&a24.Z, &p2z)
	a.Mul(&cc, &a24.X)
	a.Add(&a, &b)
	var kernel [3]Point
	kernel[0] = *k
	kernel[1].X.Mul(&p2x, &b)
	kernel[1].Z.Mul(&a, &cc)
	kernel[2] = Infinity()

	for i := uint64(1); i < ell/2; i++ {
		cur := kernel[i%3]
		tmp1.Sub(&cur.X, &cur.Z)
		tmp0.Add(&cur.X, &cur.Z)
		prod.X.Mul(&prod.X, &tmp1)
		prod.Z.Mul(&prod.Z, &tmp0)

		var t0, t1, s fp.Element
		t1.Mul(&tmp1, &p1add)
		t0.Mul(&tmp0, &p1sub)
		s.Add(&t0, &t1)
		q1.X.Mul(&q1.X, &s)
		s.Sub(&t0, &t1)
		q1.Z.Mul(&q1.Z, &s)

		t1.Mul(&tmp1, &p2add)
		t0.Mul(&tmp0, &p2sub)
		s.Add(&t0, &t1)
		q2.X.Mul(&q2.X, &s)
		s.Sub(&t0, &t1)
		q2.Z.Mul(&q2.Z, &s)

		kernel[(i+1)%3] = c.DifferentialAdd(&cur, k, &kernel[(i-1)%3])
	}

	q1.X.Square(&q1.X)
	q1.X.Mul(&q1.X, &p1.X)
	q1.Z.Square(&q1.Z)
	q1.Z.Mul(&q1.Z, &p1.Z)

	q2.X.Square(&q2.X)
	q2.X.Mul(&q2.X, &p2.X)
	q2.Z.Square(&q2.Z)
	q2.Z.Mul(&q2.Z, &p2.Z)

	edwardsX.PowBounded(&edwardsX, ell)
	edwardsZ.PowBounded(&edwardsZ, ell)
	var prod8 fp.Element
	prod8.Square(&prod.Z)
	prod8.Square(&prod8)
	prod8.Square(&prod8)
	edwardsX.Mul(&edwardsX, &prod8)
	prod8.Square(&prod.X)
	prod8.Square(&prod8)
	prod8.Square(&prod8)
	edwardsZ.Mul(&edwardsZ, &prod8)

	var ax, az fp.Element
	ax.Add(&edwardsX, &edwardsZ)
	ax.Add(&ax, &ax)
	az.Sub(&edwardsX, &edwardsZ)
	return q1, q2, Curve{A: Point{X: ax, Z: az}}
}
