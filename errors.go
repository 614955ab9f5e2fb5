package csifish

import (
	"errors"

	"csifish/merkle"
)

var (
	// ErrInvalidSignature rejects a signature whose transcript does not
	// replay: wrong challenge structure, response count, or recomputed
	// commitments.
	ErrInvalidSignature = errors.New("csifish: invalid signature")

	// ErrMalformedEncoding rejects bytes that do not parse as a key or
	// signature.
	ErrMalformedEncoding = errors.New("csifish: malformed encoding")

	// ErrProofMismatch rejects a signature whose Merkle multiproof does
	// not recompute the committed root.
	ErrProofMismatch = merkle.ErrProofMismatch
)
