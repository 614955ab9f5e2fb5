package csifish

import (
	"crypto/rand"
	"time"

	"csifish/merkle"
	"csifish/montgomery"
	"csifish/prof"
)

// maxResponseL1 caps the total isogeny walk length a single response may
// demand from the verifier. Honest responses are differences of two
// lattice-reduced vectors and stay far below this; anything larger is an
// attempt to make verification crawl.
const maxResponseL1 = 4096

// Verify checks sig over msg. It re-derives the challenge from the
// transcript and requires the opened rounds, their directions, and the
// recomputed commitments to match the Merkle root structurally. The only
// error values are ErrInvalidSignature and ErrProofMismatch.
func (pk *PublicKey) Verify(msg []byte, sig *Signature) error {
	defer prof.Track(time.Now(), "Verify")
	params := pk.params
	chals := deriveChallenges(params, msg, sig.Root, sig.Salt)

	size := params.treeSize()
	leaves := make([]merkle.IndexedLeaf, 0, len(sig.Responses))
	next := 0
	for t, c := range chals {
		opened, negative := challengeOpens(c, params.Hashes)
		if !opened {
			continue
		}
		if next >= len(sig.Responses) {
			return ErrInvalidSignature
		}
		r := &sig.Responses[next]
		next++
		if r.L1() > maxResponseL1 {
			return ErrInvalidSignature
		}

		start := pk.curve
		if negative {
			start = pk.curve.Twist()
		}
		curve, err := montgomery.Act(r, start, rand.Reader)
		if err != nil {
			return ErrInvalidSignature
		}
		norm, err := curve.Normalized()
		if err != nil {
			return ErrInvalidSignature
		}
		enc, err := norm.Bytes()
		if err != nil {
			return ErrInvalidSignature
		}
		leaves = append(leaves, merkle.IndexedLeaf{
			Label:   uint32(size + t),
			Content: enc[:],
		})
	}
	if next != len(sig.Responses) || len(leaves) == 0 {
		return ErrInvalidSignature
	}

	return merkle.Verify(sig.Root, merkle.Key(sig.Salt), leaves, sig.Proof)
}
