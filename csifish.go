// Package csifish implements the CSI-FiSh isogeny-based signature scheme
// over the CSIDH-512 class group action.
//
// A secret key is a class group element; the public key is its action on a
// fixed base curve. Signing runs ParamSet.Rounds independent rounds: each
// commits to the action of a fresh ephemeral element, the rounds are
// compressed into a salted Merkle tree, and a Fiat-Shamir challenge derived
// from the message and the root decides which rounds are opened and in
// which direction. Opened rounds reveal the ephemeral exponent vector
// shifted by the secret; unopened rounds stay hidden behind the tree.
//
// All secret-dependent arithmetic runs through the constant-time field and
// blinded-action layers; verification is variable time on public data and
// never panics on adversarial input.
package csifish
