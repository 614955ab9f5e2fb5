// Package merkle builds keyed hash trees over round commitments and
// produces multiproofs for the subset of leaves a signature opens.
//
// Nodes are addressed by heap labels: the root is 1, node l has children 2l
// and 2l+1, and leaf i of a tree padded to size n carries label n+i. Every
// hash binds its label and the tree key, so no node can be replayed at a
// different position or under a different key.
package merkle

import (
	"encoding/binary"
	"errors"
	"sort"

	"golang.org/x/crypto/sha3"

	"csifish/measure"
)

// HashSize is the node digest size in bytes.
const HashSize = 16

// KeySize is the tree key size in bytes.
const KeySize = 16

// hashCustomization is the cSHAKE128 customization string separating tree
// hashing from every other XOF use in the scheme.
const hashCustomization = "CSI-FiSh-v1-merkle"

// ErrProofMismatch is returned when a proof does not recompute the root.
var ErrProofMismatch = errors.New("merkle: proof does not match root")

// Hash is a node digest.
type Hash [HashSize]byte

// Key is a tree key. The signing salt doubles as the key, so trees from
// different signatures never share hashes.
type Key [KeySize]byte

// Node is one proof entry: a sibling hash and its heap label.
type Node struct {
	Label uint32
	Hash  Hash
}

// Proof is the sibling set needed to recompute the root from a leaf subset.
type Proof struct {
	Nodes []Node
}

// Tree is a built commitment tree.
type Tree struct {
	size   int // leaf slots after padding, a power of two
	leaves int // leaves supplied by the caller
	key    Key
	// layers[0] is the leaf row, layers[depth] the root row
	layers [][]Hash
}

func hashNode(key *Key, label uint32, parts ...[]byte) Hash {
	h := sha3.NewCShake128(nil, []byte(hashCustomization))
	for _, p := range parts {
		h.Write(p)
	}
	var lb [4]byte
	binary.BigEndian.PutUint32(lb[:], label)
	h.Write(lb[:])
	h.Write(key[:])
	var out Hash
	h.Read(out[:])
	measure.Global.Add(measure.MerkleHashes, 1)
	return out
}

// Build constructs the tree over the given leaf contents. Short rows are
// padded to the next power of two with empty-content sentinel leaves; the
// padding leaves hash their label and key like any other leaf, so prove and
// verify agree on them without special cases. Panics on an empty leaf set.
func Build(leaves [][]byte, key Key) *Tree {
	if len(leaves) == 0 {
		panic("merkle: empty leaf set")
	}
	size := 1
	for size < len(leaves) {
		size <<= 1
	}

	row := make([]Hash, size)
	for i := 0; i < size; i++ {
		label := uint32(size + i)
		if i < len(leaves) {
			row[i] = hashNode(&key, label, leaves[i])
		} else {
			row[i] = hashNode(&key, label)
		}
	}

	t := &Tree{size: size, leaves: len(leaves), key: key}
	t.layers = append(t.layers, row)
	for len(row) > 1 {
		next := make([]Hash, len(row)/2)
		base := uint32(len(next))
		for i := range next {
			next[i] = hashNode(&key, base+uint32(i), row[2*i][:], row[2*i+1][:])
		}
		t.layers = append(t.layers, next)
		row = next
	}
	return t
}

// Root returns the root digest.
func (t *Tree) Root() Hash {
	return t.layers[len(t.layers)-1][0]
}

// Size returns the padded leaf count.
func (t *Tree) Size() int {
	return t.size
}

// LeafLabel returns the heap label of leaf i.
func (t *Tree) LeafLabel(i int) uint32 {
	return uint32(t.size + i)
}

// LeafHash returns the stored hash of leaf i (padding included).
func (t *Tree) LeafHash(i int) Hash {
	return t.layers[0][i]
}

func (t *Tree) depth() int {
	return len(t.layers) - 1
}

// Prove returns the multiproof covering the given leaf indices: every
// sibling hash a verifier holding those leaves cannot derive on its own.
func (t *Tree) Prove(indices []int) Proof {
	level := make([]uint32, 0, len(indices))
	for _, i := range indices {
		if i < 0 || i >= t.size {
			panic("merkle: leaf index out of range")
		}
		level = append(level, t.LeafLabel(i))
	}
	known := make(map[uint32]bool)
	unknown := make(map[uint32]bool)
	for d := 0; d < t.depth(); d++ {
		for _, l := range level {
			known[l] = true
		}
		next := level[:0:0]
		for _, l := range level {
			sibling := l ^ 1
			if !known[sibling] {
				unknown[sibling] = true
			}
			next = append(next, l/2)
		}
		level = next
	}

	labels := make([]uint32, 0, len(unknown))
	for l := range unknown {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })

	nodes := make([]Node, 0, len(labels))
	for _, l := range labels {
		nodes = append(nodes, Node{Label: l, Hash: t.nodeHash(l)})
	}
	return Proof{Nodes: nodes}
}

// layerOf returns the layer index (0 = leaves) of a heap label.
func layerOf(label uint32, size int) int {
	layer := 0
	for 1<<uint(layer) <= size {
		if label >= uint32(size)>>uint(layer) && label < uint32(size)>>uint(layer)<<1 {
			return layer
		}
		layer++
	}
	return layer
}

func (t *Tree) nodeHash(label uint32) Hash {
	layer := layerOf(label, t.size)
	rowStart := uint32(t.size) >> uint(layer)
	return t.layers[layer][label-rowStart]
}

// IndexedLeaf pairs a leaf content with the label it claims in the tree.
type IndexedLeaf struct {
	Label   uint32
	Content []byte
}

// Verify recomputes the root from the given leaves and proof. The queue
// walks level by level: each popped node merges with its sibling, taken
// from the queue head when both children are derived and from the proof
// otherwise. Proof nodes may only fill positions the leaves cannot derive,
// and every proof node must be consumed on the way to the root; anything
// else is ErrProofMismatch. Safe on adversarial input; the only outcomes
// are nil and ErrProofMismatch.
func Verify(root Hash, key Key, leaves []IndexedLeaf, proof Proof) error {
	if len(leaves) == 0 {
		return ErrProofMismatch
	}
	sorted := make([]IndexedLeaf, len(leaves))
	copy(sorted, leaves)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Label < sorted[j].Label })

	type entry struct {
		label uint32
		hash  Hash
	}
	queue := make([]entry, 0, len(sorted))
	var prev uint32
	for i, l := range sorted {
		if i > 0 && l.Label == prev {
			continue
		}
		prev = l.Label
		if l.Label < 1 {
			return ErrProofMismatch
		}
		queue = append(queue, entry{l.Label, hashNode(&key, l.Label, l.Content)})
	}

	supplied := make(map[uint32]Hash, len(proof.Nodes))
	used := make(map[uint32]bool, len(proof.Nodes))
	for _, n := range proof.Nodes {
		// the root is never a legitimate proof node
		if n.Label < 2 {
			return ErrProofMismatch
		}
		if _, dup := supplied[n.Label]; dup {
			return ErrProofMismatch
		}
		supplied[n.Label] = n.Hash
	}

	if queue[0].label == 1 {
		// single-leaf tree: the leaf hash is the root
		if len(queue) == 1 && len(supplied) == 0 && queue[0].hash == root {
			return nil
		}
		return ErrProofMismatch
	}

	var computed *Hash
	for len(queue) > 0 {
		e := queue[0]
		queue = queue[1:]
		var parent Hash
		if e.label%2 == 0 && len(queue) > 0 && queue[0].label == e.label+1 {
			parent = hashNode(&key, e.label/2, e.hash[:], queue[0].hash[:])
			queue = queue[1:]
		} else {
			sib, ok := supplied[e.label^1]
			if !ok || used[e.label^1] {
				return ErrProofMismatch
			}
			used[e.label^1] = true
			if e.label%2 == 0 {
				parent = hashNode(&key, e.label/2, e.hash[:], sib[:])
			} else {
				parent = hashNode(&key, e.label/2, sib[:], e.hash[:])
			}
		}
		// a derivable position can never be filled from the proof
		if _, ok := supplied[e.label/2]; ok {
			return ErrProofMismatch
		}
		if e.label/2 == 1 {
			computed = &parent
			break
		}
		queue = append(queue, entry{e.label / 2, parent})
	}

	if computed == nil || len(queue) != 0 || len(used) != len(supplied) {
		return ErrProofMismatch
	}
	if *computed != root {
		return ErrProofMismatch
	}
	return nil
}
