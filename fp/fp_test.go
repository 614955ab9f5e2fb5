package fp

import (
	crand "crypto/rand"
	"math/big"
	"testing"
)

func toBig(e *Element) *big.Int {
	b := e.Bytes()
	return new(big.Int).SetBytes(b[:])
}

func fromBig(t *testing.T, v *big.Int) *Element {
	t.Helper()
	buf := make([]byte, ElementSize)
	v.FillBytes(buf)
	var e Element
	if _, err := e.SetCanonicalBytes(buf); err != nil {
		t.Fatalf("encoding %v: %v", v, err)
	}
	return &e
}

func randomElement(t *testing.T) *Element {
	t.Helper()
	var e Element
	if _, err := e.Random(crand.Reader); err != nil {
		t.Fatalf("sampling: %v", err)
	}
	return &e
}

func TestArithmeticAgainstBig(t *testing.T) {
	for i := 0; i < 200; i++ {
		x := randomElement(t)
		y := randomElement(t)
		bx, by := toBig(x), toBig(y)

		var sum Element
		sum.Add(x, y)
		want := new(big.Int).Add(bx, by)
		want.Mod(want, primeBig)
		if toBig(&sum).Cmp(want) != 0 {
			t.Fatalf("add mismatch: %v + %v", bx, by)
		}

		var diff Element
		diff.Sub(x, y)
		want.Sub(bx, by)
		want.Mod(want, primeBig)
		if toBig(&diff).Cmp(want) != 0 {
			t.Fatalf("sub mismatch: %v - %v", bx, by)
		}

		var prod Element
		prod.Mul(x, y)
		want.Mul(bx, by)
		want.Mod(want, primeBig)
		if toBig(&prod).Cmp(want) != 0 {
			t.Fatalf("mul mismatch: %v * %v", bx, by)
		}

		var neg Element
		neg.Neg(x)
		want.Neg(bx)
		want.Mod(want, primeBig)
		if toBig(&neg).Cmp(want) != 0 {
			t.Fatalf("neg mismatch: %v", bx)
		}

		var sq Element
		sq.Square(x)
		want.Mul(bx, bx)
		want.Mod(want, primeBig)
		if toBig(&sq).Cmp(want) != 0 {
			t.Fatalf("square mismatch: %v", bx)
		}
	}
}

func TestArithmeticEdgeValues(t *testing.T) {
	zero := Zero()
	one := One()
	pMinusOne := fromBig(t, new(big.Int).Sub(primeBig, big.NewInt(1)))

	var r Element
	r.Add(pMinusOne, &one)
	if !r.IsZero() {
		t.Fatalf("(p-1) + 1 != 0: %v", toBig(&r))
	}
	r.Sub(&zero, &one)
	if toBig(&r).Cmp(toBig(pMinusOne)) != 0 {
		t.Fatalf("0 - 1 != p-1: %v", toBig(&r))
	}
	r.Mul(&one, pMinusOne)
	if !r.Equal(pMinusOne) {
		t.Fatalf("1 * (p-1) != p-1: %v", toBig(&r))
	}
	if !zero.IsZero() || one.IsZero() {
		t.Fatal("IsZero misclassifies identities")
	}
}

func TestInverse(t *testing.T) {
	one := One()
	for i := 0; i < 50; i++ {
		x := randomElement(t)
		if x.IsZero() {
			continue
		}
		var xi, prod Element
		if !xi.Inv(x) {
			t.Fatalf("nonzero element reported as non-invertible: %v", toBig(x))
		}
		prod.Mul(x, &xi)
		if !prod.Equal(&one) {
			t.Fatalf("x * x^-1 != 1 for x = %v", toBig(x))
		}
	}

	var zi Element
	zero := Zero()
	if zi.Inv(&zero) {
		t.Fatal("zero reported as invertible")
	}
	if !zi.IsZero() {
		t.Fatalf("inverse of zero not zeroed: %v", toBig(&zi))
	}
}

func TestInverseIterationBound(t *testing.T) {
	one := One()
	pMinusOne := fromBig(t, new(big.Int).Sub(primeBig, big.NewInt(1)))
	worst := 0
	for _, e := range []*Element{&one, pMinusOne} {
		if n := divstepsToZero(e); n > worst {
			worst = n
		}
	}
	for i := 0; i < 100; i++ {
		if n := divstepsToZero(randomElement(t)); n > worst {
			worst = n
		}
	}
	if worst >= invIterations {
		t.Fatalf("divstep recurrence needs %d steps, bound is %d", worst, invIterations)
	}
}

func TestPowBounded(t *testing.T) {
	exponents := []uint64{0, 1, 2, 3, 5, 11, 587, 1023}
	for _, pow := range exponents {
		x := randomElement(t)
		var got Element
		got.PowBounded(x, pow)
		want := new(big.Int).Exp(toBig(x), new(big.Int).SetUint64(pow), primeBig)
		if toBig(&got).Cmp(want) != 0 {
			t.Fatalf("x^%d mismatch for x = %v", pow, toBig(x))
		}
	}
}

func TestEncoding(t *testing.T) {
	for i := 0; i < 20; i++ {
		x := randomElement(t)
		b := x.Bytes()
		var y Element
		if _, err := y.SetCanonicalBytes(b[:]); err != nil {
			t.Fatalf("round trip decode: %v", err)
		}
		if !x.Equal(&y) {
			t.Fatal("round trip changed the element")
		}
	}

	var e Element
	pBytes := make([]byte, ElementSize)
	primeBig.FillBytes(pBytes)
	if _, err := e.SetCanonicalBytes(pBytes); err == nil {
		t.Fatal("accepted p as a canonical element")
	}
	if _, err := e.SetCanonicalBytes(make([]byte, ElementSize-1)); err == nil {
		t.Fatal("accepted a truncated encoding")
	}
}

func TestSetUint64AndHex(t *testing.T) {
	var a, b Element
	a.SetUint64(42)
	if toBig(&a).Cmp(big.NewInt(42)) != 0 {
		t.Fatalf("SetUint64(42) = %v", toBig(&a))
	}
	hex := "0000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000002a"
	b.SetHex(hex)
	if !a.Equal(&b) {
		t.Fatal("SetHex disagrees with SetUint64")
	}
}

func TestJacobi(t *testing.T) {
	for i := 0; i < 30; i++ {
		x := randomElement(t)
		if x.IsZero() {
			continue
		}
		var sq Element
		sq.Square(x)
		if sq.JacobiVartime() != 1 {
			t.Fatalf("square classified as non-residue: %v", toBig(x))
		}
		y := randomElement(t)
		if y.IsZero() {
			continue
		}
		var prod Element
		prod.Mul(x, y)
		if prod.JacobiVartime() != x.JacobiVartime()*y.JacobiVartime() {
			t.Fatal("Jacobi symbol is not multiplicative")
		}
	}
	zero := Zero()
	if zero.JacobiVartime() != 0 {
		t.Fatal("Jacobi symbol of zero is not zero")
	}
}

func TestConditionalMoves(t *testing.T) {
	x := randomElement(t)
	y := randomElement(t)
	a, b := *x, *y

	a.CMov(0, &b)
	if !a.Equal(x) {
		t.Fatal("CMov(0) modified the destination")
	}
	a.CMov(1, &b)
	if !a.Equal(y) {
		t.Fatal("CMov(1) did not copy the source")
	}

	a, b = *x, *y
	a.CSwap(1, &b)
	if !a.Equal(y) || !b.Equal(x) {
		t.Fatal("CSwap(1) did not exchange the operands")
	}
	a.CSwap(0, &b)
	if !a.Equal(y) || !b.Equal(x) {
		t.Fatal("CSwap(0) modified the operands")
	}
}
