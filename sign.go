package csifish

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/tuneinsight/lattigo/v4/utils"
	"golang.org/x/crypto/sha3"
	"golang.org/x/sync/errgroup"

	"csifish/classgroup"
	"csifish/merkle"
	"csifish/montgomery"
	"csifish/prof"
)

// challengeCustomization separates the challenge XOF from every other
// cSHAKE128 use in the scheme.
const challengeCustomization = "CSI-FiSh-v1-challenge"

// maxSaltAttempts bounds the salt resampling loop. A salt only fails when
// the derived challenge opens zero rounds, which happens with probability
// Hashes^-Rounds per attempt.
const maxSaltAttempts = 64

type signConfig struct {
	workers int
}

// SignOption adjusts signing behavior.
type SignOption func(*signConfig)

// WithWorkers runs the per-round commitment actions on up to n goroutines.
// The default is fully synchronous.
func WithWorkers(n int) SignOption {
	return func(cfg *signConfig) {
		if n > 1 {
			cfg.workers = n
		}
	}
}

// deriveChallenges expands the transcript into one signed challenge word
// per round. A round is opened unless its word is zero mod Hashes; the
// word's sign picks the opening direction.
func deriveChallenges(params ParamSet, msg []byte, root merkle.Hash, salt [SaltSize]byte) []int32 {
	h := sha3.NewCShake128(nil, []byte(challengeCustomization))
	h.Write(msg)
	h.Write(root[:])
	h.Write(salt[:])

	buf := make([]byte, 4*params.Rounds)
	h.Read(buf)
	out := make([]int32, params.Rounds)
	for i := range out {
		out[i] = int32(binary.BigEndian.Uint32(buf[4*i:]))
	}
	return out
}

// challengeOpens reports whether a challenge word opens its round, and in
// which direction. The magnitude goes through int64 so MinInt32 negates
// cleanly.
func challengeOpens(c int32, hashes int) (opened, negative bool) {
	a := int64(c)
	if a < 0 {
		a = -a
	}
	return a%int64(hashes) != 0, c < 0
}

type roundCommit struct {
	vector classgroup.Vector
	leaf   []byte
}

// commitRound samples one ephemeral class group element and commits to its
// action on the base curve.
func commitRound(rng *utils.KeyedPRNG) (roundCommit, error) {
	var rc roundCommit
	var b classgroup.Scalar
	if _, err := b.Random(rng); err != nil {
		return rc, err
	}
	vec, err := classgroup.Reduce(&b)
	b.Zeroize()
	if err != nil {
		return rc, err
	}
	rc.vector = vec

	curve, err := montgomery.ActBlinded(&rc.vector, montgomery.BaseCurve(), rng)
	if err != nil {
		return rc, err
	}
	norm, err := curve.Normalized()
	if err != nil {
		return rc, err
	}
	enc, err := norm.Bytes()
	if err != nil {
		return rc, err
	}
	rc.leaf = append(rc.leaf, enc[:]...)
	return rc, nil
}

// Sign produces a signature over msg.
//
// The commitment phase runs every round's blinded action, the rounds are
// hashed into a salted Merkle tree, and the challenge derived from the
// transcript selects which rounds to open. Opened rounds answer with the
// ephemeral exponent vector shifted by the secret vector; the direction
// bit of the challenge decides the shift's sign.
func (sk *SecretKey) Sign(msg []byte, opts ...SignOption) (*Signature, error) {
	defer prof.Track(time.Now(), "Sign")
	cfg := signConfig{workers: 1}
	for _, opt := range opts {
		opt(&cfg)
	}
	params := sk.params

	commits := make([]roundCommit, params.Rounds)
	if cfg.workers > 1 {
		var g errgroup.Group
		g.SetLimit(cfg.workers)
		for t := 0; t < params.Rounds; t++ {
			t := t
			g.Go(func() error {
				prng, err := utils.NewPRNG()
				if err != nil {
					return err
				}
				commits[t], err = commitRound(prng)
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("csifish: commitment phase: %w", err)
		}
	} else {
		prng, err := utils.NewPRNG()
		if err != nil {
			return nil, fmt.Errorf("csifish: initializing prng: %w", err)
		}
		for t := 0; t < params.Rounds; t++ {
			commits[t], err = commitRound(prng)
			if err != nil {
				return nil, fmt.Errorf("csifish: commitment phase: %w", err)
			}
		}
	}

	leaves := make([][]byte, params.Rounds)
	for t := range commits {
		leaves[t] = commits[t].leaf
	}

	for attempt := 0; attempt < maxSaltAttempts; attempt++ {
		var salt [SaltSize]byte
		if _, err := rand.Read(salt[:]); err != nil {
			return nil, fmt.Errorf("csifish: sampling salt: %w", err)
		}

		tree := merkle.Build(leaves, merkle.Key(salt))
		root := tree.Root()
		chals := deriveChallenges(params, msg, root, salt)

		var indices []int
		var responses []classgroup.Vector
		for t, c := range chals {
			opened, negative := challengeOpens(c, params.Hashes)
			if !opened {
				continue
			}
			indices = append(indices, t)
			if negative {
				responses = append(responses, commits[t].vector.Add(&sk.vector))
			} else {
				responses = append(responses, commits[t].vector.Sub(&sk.vector))
			}
		}
		if len(indices) == 0 {
			continue
		}

		return &Signature{
			Root:      root,
			Salt:      salt,
			Responses: responses,
			Proof:     tree.Prove(indices),
		}, nil
	}
	return nil, fmt.Errorf("csifish: no opening challenge after %d salts", maxSaltAttempts)
}
