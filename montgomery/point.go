// Package montgomery implements x-only arithmetic on Montgomery curves over
// the CSIDH-512 base field, odd-degree isogenies between them, and the class
// group action on their isomorphism classes.
package montgomery

import (
	"errors"
	"io"

	"csifish/fp"
)

// ErrInvariant reports a state that the curve arithmetic promises can not
// occur for well-formed inputs, such as a supersingular curve whose
// coefficient fails to normalize.
var ErrInvariant = errors.New("montgomery: internal invariant violation")

// CurveSize is the canonical curve encoding size in bytes.
const CurveSize = fp.ElementSize

// Point is a projective x-line point (X : Z). Z == 0 encodes the point at
// infinity. The x-line does not separate a curve from its quadratic twist,
// which the group action exploits: twist points ride through the same
// formulas and drive isogeny steps in the inverse direction.
type Point struct {
	X, Z fp.Element
}

// PointFromX returns the affine point with the given x-coordinate.
func PointFromX(x fp.Element) Point {
	return Point{X: x, Z: fp.One()}
}

// Infinity returns the point at infinity.
func Infinity() Point {
	return Point{X: fp.One(), Z: fp.Zero()}
}

// IsZero reports whether p is the point at infinity.
func (p *Point) IsZero() bool {
	return p.Z.IsZero()
}

// Normalize returns the point scaled to Z = 1, or infinity when Z = 0.
func (p *Point) Normalize() Point {
	var zi fp.Element
	if !zi.Inv(&p.Z) {
		return Infinity()
	}
	var x fp.Element
	x.Mul(&p.X, &zi)
	return PointFromX(x)
}

// CMov sets p = q when move == 1.
func (p *Point) CMov(move uint64, q *Point) {
	p.X.CMov(move, &q.X)
	p.Z.CMov(move, &q.Z)
}

// CSwap exchanges p and q when swap == 1.
func (p *Point) CSwap(swap uint64, q *Point) {
	p.X.CSwap(swap, &q.X)
	p.Z.CSwap(swap, &q.Z)
}

// Curve is a Montgomery curve y^2 = x^3 + Ax^2 + x with projectivized
// coefficient A = A.X / A.Z.
type Curve struct {
	A Point
}

// NewCurve returns the curve with affine coefficient a.
func NewCurve(a fp.Element) Curve {
	return Curve{A: PointFromX(a)}
}

// BaseCurve returns E0 : y^2 = x^3 + x, the fixed origin of the group
// action. It equals its own quadratic twist.
func BaseCurve() Curve {
	return NewCurve(fp.Zero())
}

// Twist returns the quadratic twist, which on the surface of Montgomery
// coefficients is A -> -A.
func (c *Curve) Twist() Curve {
	var nx fp.Element
	nx.Neg(&c.A.X)
	return Curve{A: Point{X: nx, Z: c.A.Z}}
}

// Normalized scales the coefficient to Z = 1. A supersingular curve always
// has an invertible denominator, so failure signals corrupted state.
func (c *Curve) Normalized() (Curve, error) {
	var zi fp.Element
	if !zi.Inv(&c.A.Z) {
		return Curve{}, ErrInvariant
	}
	var a fp.Element
	a.Mul(&c.A.X, &zi)
	return NewCurve(a), nil
}

// Bytes returns the canonical encoding: the normalized coefficient.
func (c *Curve) Bytes() ([CurveSize]byte, error) {
	n, err := c.Normalized()
	if err != nil {
		return [CurveSize]byte{}, err
	}
	return n.A.X.Bytes(), nil
}

// CurveFromBytes decodes a canonical curve encoding.
func CurveFromBytes(b []byte) (Curve, error) {
	var a fp.Element
	if _, err := a.SetCanonicalBytes(b); err != nil {
		return Curve{}, err
	}
	return NewCurve(a), nil
}

// Equal reports whether two curves have the same normalized coefficient.
func (c *Curve) Equal(d *Curve) bool {
	// cross-multiply to avoid inversions
	var l, r fp.Element
	l.Mul(&c.A.X, &d.A.Z)
	r.Mul(&d.A.X, &c.A.Z)
	return l.Equal(&r)
}

// DifferentialAdd computes P+Q from P, Q and P-Q (or P-Q from P, Q and
// P+Q). P and Q must be distinct and neither the origin nor infinity.
// Algorithm 1 in Costello-Smith.
func (c *Curve) DifferentialAdd(p, q, pq *Point) Point {
	var pa, ps, qa, qs, v1, v2, v3, v4 fp.Element
	pa.Add(&p.X, &p.Z)
	ps.Sub(&p.X, &p.Z)
	qa.Add(&q.X, &q.Z)
	qs.Sub(&q.X, &q.Z)
	v1.Mul(&pa, &qs)
	v2.Mul(&ps, &qa)
	v3.Add(&v1, &v2)
	v3.Square(&v3)
	v4.Sub(&v1, &v2)
	v4.Square(&v4)
	var out Point
	out.X.Mul(&pq.Z, &v3)
	out.Z.Mul(&pq.X, &v4)
	return out
}

// Double computes 2P for P not the origin or infinity. Projective version
// of Algorithm 2 in Costello-Smith, multiplied through by 4*A.Z.
func (c *Curve) Double(p *Point) Point {
	var vplus, vminus, vdelta, va, vb, t fp.Element
	vplus.Add(&p.X, &p.Z)
	vplus.Square(&vplus)
	vminus.Sub(&p.X, &p.Z)
	vminus.Square(&vminus)
	vdelta.Sub(&vplus, &vminus)
	va.Mul(&vminus, &c.A.Z)
	va.Add(&va, &va)
	va.Add(&va, &va)
	var out Point
	out.X.Mul(&vplus, &va)
	t.Add(&c.A.Z, &c.A.Z)
	t.Add(&t, &c.A.X)
	vb.Mul(&t, &vdelta)
	vb.Add(&vb, &va)
	out.Z.Mul(&vb, &vdelta)
	return out
}

// J returns the j-invariant.
func (c *Curve) J() (fp.Element, error) {
	n, err := c.Normalized()
	if err != nil {
		return fp.Element{}, err
	}
	var c256, c3, c4 fp.Element
	c256.SetUint64(256)
	c3.SetUint64(3)
	c4.SetUint64(4)

	var a2, num, den fp.Element
	a2.Square(&n.A.X)
	num.Sub(&a2, &c3)
	var num3 fp.Element
	num3.Square(&num)
	num3.Mul(&num3, &num)
	num3.Mul(&num3, &c256)
	den.Sub(&a2, &c4)
	var di fp.Element
	if !di.Inv(&den) {
		// A = +/-2 is not supersingular
		return fp.Element{}, ErrInvariant
	}
	var j fp.Element
	j.Mul(&num3, &di)
	return j, nil
}

// RandomPoint returns a point with a uniform x-coordinate; it lies on the
// curve or its twist with equal probability.
func RandomPoint(rng io.Reader) (Point, error) {
	var x fp.Element
	if _, err := x.Random(rng); err != nil {
		return Point{}, err
	}
	return PointFromX(x), nil
}
