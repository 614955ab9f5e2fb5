package csifish

import (
	"fmt"
	"io"

	"github.com/tuneinsight/lattigo/v4/utils"

	"csifish/classgroup"
	"csifish/montgomery"
)

// SecretKeySize is the canonical secret key encoding size.
const SecretKeySize = classgroup.ScalarSize

// PublicKeySize is the canonical public key encoding size.
const PublicKeySize = montgomery.CurveSize

// SecretKey is a class group element: the scalar it was sampled as, and the
// short exponent vector the group action consumes. The vector is a
// deterministic reduction of the scalar, cached because every signature
// needs it.
type SecretKey struct {
	params ParamSet
	scalar classgroup.Scalar
	vector classgroup.Vector
	public *PublicKey
}

// PublicKey is the secret action applied to the base curve.
type PublicKey struct {
	params ParamSet
	curve  montgomery.Curve
}

// GenerateKey samples a fresh key pair for the given parameter set,
// drawing randomness from a keyed XOF seeded by the system RNG.
func GenerateKey(params ParamSet) (*SecretKey, error) {
	prng, err := utils.NewPRNG()
	if err != nil {
		return nil, fmt.Errorf("csifish: initializing prng: %w", err)
	}
	return GenerateKeyFrom(params, prng)
}

// GenerateKeyFrom samples a key pair from the given randomness source.
func GenerateKeyFrom(params ParamSet, rng io.Reader) (*SecretKey, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	sk := &SecretKey{params: params}
	if _, err := sk.scalar.Random(rng); err != nil {
		return nil, err
	}
	vec, err := classgroup.Reduce(&sk.scalar)
	if err != nil {
		return nil, err
	}
	sk.vector = vec

	base := montgomery.BaseCurve()
	curve, err := montgomery.ActBlinded(&sk.vector, base, rng)
	if err != nil {
		return nil, err
	}
	norm, err := curve.Normalized()
	if err != nil {
		return nil, err
	}
	sk.public = &PublicKey{params: params, curve: norm}
	return sk, nil
}

// Public returns the verifying key.
func (sk *SecretKey) Public() *PublicKey {
	return sk.public
}

// Params returns the parameter set the key was generated for.
func (sk *SecretKey) Params() ParamSet {
	return sk.params
}

// Zeroize clears the secret material. The key must not be used afterwards.
func (sk *SecretKey) Zeroize() {
	sk.scalar.Zeroize()
	for i := range sk.vector {
		sk.vector[i] = 0
	}
}

// Bytes returns the canonical secret key encoding: the scalar alone, since
// the vector and public key rederive from it.
func (sk *SecretKey) Bytes() [SecretKeySize]byte {
	return sk.scalar.Bytes()
}

// DecodeSecretKey reconstructs a secret key from its encoding, recomputing
// the cached vector and public key.
func DecodeSecretKey(params ParamSet, b []byte) (*SecretKey, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	sk := &SecretKey{params: params}
	if _, err := sk.scalar.SetBytes(b); err != nil {
		return nil, ErrMalformedEncoding
	}
	vec, err := classgroup.Reduce(&sk.scalar)
	if err != nil {
		return nil, err
	}
	sk.vector = vec

	prng, err := utils.NewPRNG()
	if err != nil {
		return nil, fmt.Errorf("csifish: initializing prng: %w", err)
	}
	base := montgomery.BaseCurve()
	curve, err := montgomery.ActBlinded(&sk.vector, base, prng)
	if err != nil {
		return nil, err
	}
	norm, err := curve.Normalized()
	if err != nil {
		return nil, err
	}
	sk.public = &PublicKey{params: params, curve: norm}
	return sk, nil
}

// Params returns the parameter set the key verifies against.
func (pk *PublicKey) Params() ParamSet {
	return pk.params
}

// Bytes returns the canonical public key encoding.
func (pk *PublicKey) Bytes() [PublicKeySize]byte {
	b, err := pk.curve.Bytes()
	if err != nil {
		// the stored curve is always normalized
		panic(err)
	}
	return b
}

// DecodePublicKey reconstructs a public key from its encoding.
func DecodePublicKey(params ParamSet, b []byte) (*PublicKey, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	curve, err := montgomery.CurveFromBytes(b)
	if err != nil {
		return nil, ErrMalformedEncoding
	}
	return &PublicKey{params: params, curve: curve}, nil
}
