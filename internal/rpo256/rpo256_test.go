package rpo256

import "testing"

func TestMergeIsDeterministic(t *testing.T) {
	a := [32]byte{1, 2, 3}
	b := [32]byte{4, 5, 6}

	if Merge(a, b) != Merge(a, b) {
		t.Fatalf("Merge is not deterministic for identical inputs")
	}
}

// TestMergeOrderMatters guards the one load-bearing detail this stand-in
// must preserve: pubKeyCommit and txSummaryCommit are not interchangeable.
func TestMergeOrderMatters(t *testing.T) {
	a := [32]byte{1, 2, 3}
	b := [32]byte{4, 5, 6}

	if Merge(a, b) == Merge(b, a) {
		t.Fatalf("Merge(a, b) must differ from Merge(b, a)")
	}
}
