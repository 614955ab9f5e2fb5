package csifish

import (
	"encoding/binary"

	"csifish/classgroup"
	"csifish/merkle"
)

// SaltSize is the size of the per-signature transcript salt.
const SaltSize = 16

// Signature is a Fiat-Shamir transcript: the commitment tree root, the
// salt that keys it, one exponent-vector response per opened round, and
// the Merkle proof covering the opened leaves.
type Signature struct {
	Root      merkle.Hash
	Salt      [SaltSize]byte
	Responses []classgroup.Vector
	Proof     merkle.Proof
}

// Bytes returns the wire encoding of the signature.
func (s *Signature) Bytes() []byte {
	n := merkle.HashSize + SaltSize +
		2 + len(s.Responses)*classgroup.VectorSize +
		2 + len(s.Proof.Nodes)*(4+merkle.HashSize)
	out := make([]byte, 0, n)
	out = append(out, s.Root[:]...)
	out = append(out, s.Salt[:]...)
	out = binary.BigEndian.AppendUint16(out, uint16(len(s.Responses)))
	for i := range s.Responses {
		b := s.Responses[i].Bytes()
		out = append(out, b[:]...)
	}
	out = binary.BigEndian.AppendUint16(out, uint16(len(s.Proof.Nodes)))
	for i := range s.Proof.Nodes {
		out = binary.BigEndian.AppendUint32(out, s.Proof.Nodes[i].Label)
		out = append(out, s.Proof.Nodes[i].Hash[:]...)
	}
	return out
}

// ParseSignature decodes a signature. The encoding must carry no trailing
// bytes.
func ParseSignature(b []byte) (*Signature, error) {
	s := &Signature{}
	if len(b) < merkle.HashSize+SaltSize+2 {
		return nil, ErrMalformedEncoding
	}
	copy(s.Root[:], b[:merkle.HashSize])
	b = b[merkle.HashSize:]
	copy(s.Salt[:], b[:SaltSize])
	b = b[SaltSize:]

	nResp := int(binary.BigEndian.Uint16(b))
	b = b[2:]
	if len(b) < nResp*classgroup.VectorSize+2 {
		return nil, ErrMalformedEncoding
	}
	s.Responses = make([]classgroup.Vector, nResp)
	for i := 0; i < nResp; i++ {
		if _, err := s.Responses[i].SetBytes(b[:classgroup.VectorSize]); err != nil {
			return nil, ErrMalformedEncoding
		}
		b = b[classgroup.VectorSize:]
	}

	nNodes := int(binary.BigEndian.Uint16(b))
	b = b[2:]
	if len(b) != nNodes*(4+merkle.HashSize) {
		return nil, ErrMalformedEncoding
	}
	s.Proof.Nodes = make([]merkle.Node, nNodes)
	for i := 0; i < nNodes; i++ {
		s.Proof.Nodes[i].Label = binary.BigEndian.Uint32(b)
		copy(s.Proof.Nodes[i].Hash[:], b[4:4+merkle.HashSize])
		b = b[4+merkle.HashSize:]
	}
	return s, nil
}
