package montgomery

import (
	"fmt"
	"io"

	"csifish/classgroup"
	"csifish/measure"
)

const (
	numBatches  = 4
	mergeAfter  = 2
	blindMaxExp = 2
)

// ActBlinded applies the class group action in two stages: a variable-time
// walk on a randomly blinded exponent vector, then a batched unwinding of
// the blinding offsets. The unwinding performs a fixed two isogenies per
// prime, replacing them with dummy steps once the offset is consumed, so
// its control flow never depends on the original exponents. Intended for
// the single action a signing key or ephemeral takes on long-term secrets.
func ActBlinded(v *classgroup.Vector, c Curve, rng io.Reader) (Curve, error) {
	blinded := *v
	var blinding [classgroup.NumPrimes]int8
	for i := 0; i < classgroup.NumPrimes; i++ {
		b, err := sampleBlind(rng)
		if err != nil {
			return Curve{}, err
		}
		blinded[i] += int16(b)
		blinding[i] = -b
	}

	cur, err := Act(&blinded, c, rng)
	if err != nil {
		return Curve{}, err
	}

	var isogenyCount [classgroup.NumPrimes]uint8
	for i := range isogenyCount {
		isogenyCount[i] = blindMaxExp
	}
	var done [numBatches]bool
	var batchMasks [numBatches]primeMask
	for j := 0; j < classgroup.NumPrimes; j++ {
		batchMasks[j%numBatches].set(j)
	}

	curBatch := 0
	pass := 0
	for {
		earlyFinish := 0
		if pass > mergeAfter*numBatches {
			curBatch = 0
			batchMasks[curBatch] = primeMask{}
			for i := 0; i < classgroup.NumPrimes; i++ {
				if isogenyCount[i] != 0 {
					batchMasks[curBatch].set(i)
					done[curBatch] = false
				}
			}
			if done[curBatch] {
				return cur, nil
			}
		} else {
			for done[curBatch] {
				if earlyFinish == numBatches {
					return cur, nil
				}
				earlyFinish++
				curBatch = (curBatch + 1) % numBatches
			}
		}

		onCurve, onTwist, err := cur.Elligator(rng)
		if err != nil {
			return Curve{}, err
		}
		comp := batchMasks[curBatch].complement()
		t := cur.Double(&onCurve)
		t = cur.mulByPrimes(&t, &comp)
		p0 := cur.Double(&t)
		t = cur.Double(&onTwist)
		t = cur.mulByPrimes(&t, &comp)
		p1 := cur.Double(&t)

		for primeIndex := classgroup.NumPrimes - 1; primeIndex >= 0; primeIndex-- {
			if batchMasks[curBatch].bit(primeIndex) == 0 {
				continue
			}
			curExp := blinding[primeIndex]
			signBit := uint64(uint8(curExp)>>7) & 1
			ps, p1s := p0, p1
			ps.CMov(signBit, &p1)
			p1s.CMov(signBit, &p0)

			batchMasks[curBatch].clear(primeIndex)
			var only primeMask
			only.set(primeIndex)
			k := cur.mulByPrimes(&ps, &batchMasks[curBatch])
			p1s = cur.mulByPrimes(&p1s, &only)

			if !k.IsZero() {
				uexp := uint8(curExp)
				isNonZero := uint64((uexp|^(uexp-1))>>7) & 1
				psTmp, p1sTmp, eTmp := cur.TwoPointIsogeny(&k, classgroup.Primes[primeIndex], &ps, &p1s)
				ps = cur.mulByPrimes(&ps, &only)
				ps.CMov(isNonZero, &psTmp)
				p1s.CMov(isNonZero, &p1sTmp)
				cur.A.CMov(isNonZero, &eTmp.A)
				update := int8(1) - 2*int8(signBit)
				blinding[primeIndex] -= update * int8(isNonZero)
				isogenyCount[primeIndex]--
				measure.Global.Add(measure.IsogenySteps, 1)
				if isNonZero == 0 {
					measure.Global.Add(measure.DummyIsogenies, 1)
				}
			}
			p0, p1 = ps, p1s
			p0.CMov(signBit, &p1s)
			p1.CMov(signBit, &ps)
		}
		if !batchMasks[curBatch].isZero() {
			return Curve{}, fmt.Errorf("montgomery: batch not drained: %w", ErrInvariant)
		}
		for i := 0; i < classgroup.NumPrimes; i++ {
			if i%numBatches == curBatch && isogenyCount[i] != 0 {
				batchMasks[curBatch].set(i)
			}
		}
		done[curBatch] = batchMasks[curBatch].isZero()
		curBatch = (curBatch + 1) % numBatches
		pass++
	}
}

// sampleBlind draws a uniform offset in [-blindMaxExp, blindMaxExp].
func sampleBlind(rng io.Reader) (int8, error) {
	var tmp [1]byte
	for {
		if _, err := io.ReadFull(rng, tmp[:]); err != nil {
			return 0, fmt.Errorf("montgomery: sampling blinding offset: %w", err)
		}
		val := tmp[0] >> 5
		if val <= 2*blindMaxExp {
			return int8(val) - blindMaxExp, nil
		}
	}
}
