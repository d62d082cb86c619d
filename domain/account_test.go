package domain_test

import (
	"testing"

	"github.com/miden-multisig/coordinator/domain"
)

func testApprovers(n int) ([]domain.AccountAddress, [][32]byte) {
	approvers := make([]domain.AccountAddress, n)
	pubKeyCommits := make([][32]byte, n)
	for i := 0; i < n; i++ {
		approvers[i] = domain.AccountAddress{byte(i + 1)}
	}
	return approvers, pubKeyCommits
}

// TestNewMultisigAccountValidThreshold is property P1: threshold must fall
// in [1, len(approvers)].
func TestNewMultisigAccountValidThreshold(t *testing.T) {
	approvers, commits := testApprovers(3)

	for _, threshold := range []uint32{1, 2, 3} {
		account, err := domain.NewMultisigAccount(
			domain.AccountAddress{0xAA}, "mtst", domain.AccountKindPublic,
			threshold, approvers, commits, domain.Timestamps{},
		)
		if err != nil {
			t.Fatalf("threshold %d: unexpected error: %v", threshold, err)
		}
		if account.NumApprovers() != 3 {
			t.Fatalf("expected 3 approvers, got %d", account.NumApprovers())
		}
	}
}

func TestNewMultisigAccountRejectsOutOfRangeThreshold(t *testing.T) {
	approvers, commits := testApprovers(3)

	for _, threshold := range []uint32{0, 4} {
		if _, err := domain.NewMultisigAccount(
			domain.AccountAddress{0xAA}, "mtst", domain.AccountKindPublic,
			threshold, approvers, commits, domain.Timestamps{},
		); err == nil {
			t.Fatalf("threshold %d: expected error, got nil", threshold)
		}
	}
}

func TestNewMultisigAccountRejectsEmptyApprovers(t *testing.T) {
	_, commits := testApprovers(0)
	if _, err := domain.NewMultisigAccount(
		domain.AccountAddress{0xAA}, "mtst", domain.AccountKindPublic,
		1, nil, commits, domain.Timestamps{},
	); err == nil {
		t.Fatalf("expected error for empty approvers")
	}
}

func TestNewMultisigAccountRejectsLengthMismatch(t *testing.T) {
	approvers, _ := testApprovers(3)
	_, commits := testApprovers(2)

	if _, err := domain.NewMultisigAccount(
		domain.AccountAddress{0xAA}, "mtst", domain.AccountKindPublic,
		1, approvers, commits, domain.Timestamps{},
	); err == nil {
		t.Fatalf("expected error for approver/pub-key-commit length mismatch")
	}
}

func TestAccountKindStringAndParseRoundTrip(t *testing.T) {
	for _, kind := range []domain.AccountKind{domain.AccountKindPublic, domain.AccountKindPrivate} {
		parsed, err := domain.ParseAccountKind(kind.String())
		if err != nil {
			t.Fatalf("unable to parse %q: %v", kind.String(), err)
		}
		if parsed != kind {
			t.Fatalf("round trip mismatch: got %v, want %v", parsed, kind)
		}
	}

	if _, err := domain.ParseAccountKind("bogus"); err == nil {
		t.Fatalf("expected error parsing unknown account kind")
	}
}
