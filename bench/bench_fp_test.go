package bench

import (
	"crypto/rand"
	"testing"

	"csifish/fp"
)

func randElement(b *testing.B) *fp.Element {
	b.Helper()
	var e fp.Element
	if _, err := e.Random(rand.Reader); err != nil {
		b.Fatal(err)
	}
	return &e
}

func BenchmarkFpMul(b *testing.B) {
	x := randElement(b)
	y := randElement(b)
	var r fp.Element
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Mul(x, y)
	}
}

func BenchmarkFpSquare(b *testing.B) {
	x := randElement(b)
	var r fp.Element
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Square(x)
	}
}

func BenchmarkFpInv(b *testing.B) {
	x := randElement(b)
	var r fp.Element
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Set(x)
		if !r.Inv(&r) {
			b.Fatal("inverse failed")
		}
	}
}

func BenchmarkFpPowBounded(b *testing.B) {
	x := randElement(b)
	var r fp.Element
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.PowBounded(x, 587)
	}
}
