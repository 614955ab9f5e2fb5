package merkle

import (
	crand "crypto/rand"
	"fmt"
	"testing"
)

func testLeaves(t *testing.T, n int) [][]byte {
	t.Helper()
	leaves := make([][]byte, n)
	for i := range leaves {
		leaves[i] = make([]byte, 64)
		if _, err := crand.Read(leaves[i]); err != nil {
			t.Fatalf("sampling leaves: %v", err)
		}
	}
	return leaves
}

func testKey(t *testing.T) Key {
	t.Helper()
	var k Key
	if _, err := crand.Read(k[:]); err != nil {
		t.Fatalf("sampling key: %v", err)
	}
	return k
}

func TestProveEveryIndex(t *testing.T) {
	for _, n := range []int{1, 2, 3, 5, 7, 8, 16, 219} {
		t.Run(fmt.Sprintf("leaves=%d", n), func(t *testing.T) {
			leaves := testLeaves(t, n)
			key := testKey(t)
			tree := Build(leaves, key)
			for i := 0; i < n; i++ {
				proof := tree.Prove([]int{i})
				opened := []IndexedLeaf{{Label: tree.LeafLabel(i), Content: leaves[i]}}
				if err := Verify(tree.Root(), key, opened, proof); err != nil {
					t.Fatalf("index %d: %v", i, err)
				}
			}
		})
	}
}

func TestMultiproof(t *testing.T) {
	leaves := testLeaves(t, 16)
	key := testKey(t)
	tree := Build(leaves, key)
	indices := []int{0, 3, 14}
	proof := tree.Prove(indices)
	opened := make([]IndexedLeaf, len(indices))
	for i, idx := range indices {
		opened[i] = IndexedLeaf{Label: tree.LeafLabel(idx), Content: leaves[idx]}
	}
	if err := Verify(tree.Root(), key, opened, proof); err != nil {
		t.Fatalf("multiproof: %v", err)
	}

	// adjacent pair shares no proof nodes at the bottom level
	proof = tree.Prove([]int{4, 5})
	opened = []IndexedLeaf{
		{Label: tree.LeafLabel(4), Content: leaves[4]},
		{Label: tree.LeafLabel(5), Content: leaves[5]},
	}
	if err := Verify(tree.Root(), key, opened, proof); err != nil {
		t.Fatalf("adjacent multiproof: %v", err)
	}
}

func TestPaddedLeaves(t *testing.T) {
	// 5 leaves pad to 8; proving leaf 4 needs the sentinel sibling
	leaves := testLeaves(t, 5)
	key := testKey(t)
	tree := Build(leaves, key)
	if tree.Size() != 8 {
		t.Fatalf("padded size %d, want 8", tree.Size())
	}
	proof := tree.Prove([]int{4})
	opened := []IndexedLeaf{{Label: tree.LeafLabel(4), Content: leaves[4]}}
	if err := Verify(tree.Root(), key, opened, proof); err != nil {
		t.Fatalf("proof across padding: %v", err)
	}
}

func TestVerifyRejects(t *testing.T) {
	leaves := testLeaves(t, 8)
	key := testKey(t)
	tree := Build(leaves, key)
	proof := tree.Prove([]int{2})
	opened := []IndexedLeaf{{Label: tree.LeafLabel(2), Content: leaves[2]}}

	wrongRoot := tree.Root()
	wrongRoot[0] ^= 1
	if err := Verify(wrongRoot, key, opened, proof); err == nil {
		t.Fatal("accepted a wrong root")
	}

	wrongKey := key
	wrongKey[5] ^= 0x80
	if err := Verify(tree.Root(), wrongKey, opened, proof); err == nil {
		t.Fatal("accepted a wrong key")
	}

	swapped := []IndexedLeaf{{Label: tree.LeafLabel(3), Content: leaves[2]}}
	if err := Verify(tree.Root(), key, swapped, proof); err == nil {
		t.Fatal("accepted a leaf under the wrong label")
	}

	tampered := []IndexedLeaf{{Label: tree.LeafLabel(2), Content: leaves[3]}}
	if err := Verify(tree.Root(), key, tampered, proof); err == nil {
		t.Fatal("accepted a substituted leaf")
	}

	short := Proof{Nodes: proof.Nodes[:len(proof.Nodes)-1]}
	if err := Verify(tree.Root(), key, opened, short); err == nil {
		t.Fatal("accepted a truncated proof")
	}

	if err := Verify(tree.Root(), key, nil, proof); err == nil {
		t.Fatal("accepted an empty leaf set")
	}
}

func TestVerifyRejectsInjectedRoot(t *testing.T) {
	// a proof that just asserts the root node must not satisfy the verifier
	leaves := testLeaves(t, 8)
	key := testKey(t)
	tree := Build(leaves, key)
	forged := Proof{Nodes: []Node{{Label: 1, Hash: tree.Root()}}}
	bogus := []IndexedLeaf{{Label: tree.LeafLabel(0), Content: []byte("anything")}}
	if err := Verify(tree.Root(), key, bogus, forged); err == nil {
		t.Fatal("accepted a proof carrying the root as a node")
	}
}

func TestVerifyRejectsDroppedLeaf(t *testing.T) {
	// Opening leaves 2 and 6 but proving only leaf 6's path must fail even
	// when the proof carries the genuine internal node above leaf 2, with
	// or without leaf 2's sibling: a proof node may never stand in for a
	// position the opened leaves derive.
	leaves := testLeaves(t, 8)
	key := testKey(t)
	tree := Build(leaves, key)

	opened := []IndexedLeaf{
		{Label: tree.LeafLabel(2), Content: []byte("not the committed leaf")},
		{Label: tree.LeafLabel(6), Content: leaves[6]},
	}
	proof := tree.Prove([]int{6})
	parent := tree.LeafLabel(2) / 2
	injected := Proof{Nodes: append(append([]Node(nil), proof.Nodes...),
		Node{Label: parent, Hash: tree.nodeHash(parent)})}
	if err := Verify(tree.Root(), key, opened, injected); err == nil {
		t.Fatal("accepted a proof that shadows an opened leaf's parent")
	}

	sibling := tree.LeafLabel(2) ^ 1
	withSibling := Proof{Nodes: append(append([]Node(nil), injected.Nodes...),
		Node{Label: sibling, Hash: tree.nodeHash(sibling)})}
	if err := Verify(tree.Root(), key, opened, withSibling); err == nil {
		t.Fatal("accepted a shadowed parent alongside the leaf's sibling")
	}
}

func TestVerifyRejectsSuperfluousNode(t *testing.T) {
	// A proof node the root derivation never consumes must fail, even a
	// genuine one.
	leaves := testLeaves(t, 8)
	key := testKey(t)
	tree := Build(leaves, key)
	proof := tree.Prove([]int{0, 1})
	opened := []IndexedLeaf{
		{Label: tree.LeafLabel(0), Content: leaves[0]},
		{Label: tree.LeafLabel(1), Content: leaves[1]},
	}
	if err := Verify(tree.Root(), key, opened, proof); err != nil {
		t.Fatalf("honest proof: %v", err)
	}

	extra := tree.LeafLabel(5)
	padded := Proof{Nodes: append(append([]Node(nil), proof.Nodes...),
		Node{Label: extra, Hash: tree.nodeHash(extra)})}
	if err := Verify(tree.Root(), key, opened, padded); err == nil {
		t.Fatal("accepted a proof with an unconsumed node")
	}
}

func TestVerifyRejectsDuplicateProofLabel(t *testing.T) {
	leaves := testLeaves(t, 8)
	key := testKey(t)
	tree := Build(leaves, key)
	proof := tree.Prove([]int{3})
	opened := []IndexedLeaf{{Label: tree.LeafLabel(3), Content: leaves[3]}}

	doubled := Proof{Nodes: append(append([]Node(nil), proof.Nodes...), proof.Nodes[0])}
	if err := Verify(tree.Root(), key, opened, doubled); err == nil {
		t.Fatal("accepted a proof with a repeated label")
	}
}

func TestDuplicateLeavesDeduped(t *testing.T) {
	leaves := testLeaves(t, 4)
	key := testKey(t)
	tree := Build(leaves, key)
	proof := tree.Prove([]int{1})
	opened := []IndexedLeaf{
		{Label: tree.LeafLabel(1), Content: leaves[1]},
		{Label: tree.LeafLabel(1), Content: leaves[1]},
	}
	if err := Verify(tree.Root(), key, opened, proof); err != nil {
		t.Fatalf("duplicated leaf entries: %v", err)
	}
}

func TestKeySeparatesTrees(t *testing.T) {
	leaves := testLeaves(t, 4)
	t1 := Build(leaves, testKey(t))
	t2 := Build(leaves, testKey(t))
	if t1.Root() == t2.Root() {
		t.Fatal("different keys produced the same root")
	}
}
