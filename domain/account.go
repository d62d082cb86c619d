package domain

import "fmt"

// AccountAddress is the opaque on-chain identifier of a multisig account.
// The bech32 textual form (keyed by network id) is confined to the storage
// and HTTP boundary; the domain model and everything above it works with
// the raw bytes.
type AccountAddress []byte

// AccountKind mirrors the SDK's account storage mode.
type AccountKind uint8

const (
	// AccountKindPublic is an account whose state is visible on-chain.
	AccountKindPublic AccountKind = iota
	// AccountKindPrivate is an account whose state is only known to its
	// participants.
	AccountKindPrivate
)

// String renders the account kind using the wire's snake_case convention.
func (k AccountKind) String() string {
	switch k {
	case AccountKindPublic:
		return "public"
	case AccountKindPrivate:
		return "private"
	default:
		return fmt.Sprintf("account_kind(%d)", uint8(k))
	}
}

// ParseAccountKind parses the wire representation of an account kind.
func ParseAccountKind(s string) (AccountKind, error) {
	switch s {
	case "public":
		return AccountKindPublic, nil
	case "private":
		return AccountKindPrivate, nil
	default:
		return 0, fmt.Errorf("domain: unknown account kind %q", s)
	}
}

// MultisigAccount is the persistent identity of a multisig wallet: an
// ordered sequence of approvers and a parallel sequence of public key
// commitments, both of length N, guarded by a threshold in [1, N].
//
// The reference implementation encodes "approvers present" and
// "pub-key-commits present" as type-state phantom parameters on the
// builder; Go has no equivalent compile-time mechanism, so the check is
// made at runtime by NewMultisigAccount, which refuses to produce a value
// unless both sequences are populated, of equal length, and the threshold
// is within range. The fields are exported, so a struct literal bypasses
// these checks; the store's CreateAccount re-checks only the threshold
// against the approver count.
type MultisigAccount struct {
	Address       AccountAddress
	NetworkID     string
	Kind          AccountKind
	Threshold     uint32
	Approvers     []AccountAddress // ordered by approver_index, 0..N-1
	PubKeyCommits [][32]byte       // parallel to Approvers
	Aux           Timestamps
}

// NewMultisigAccount validates and constructs a MultisigAccount. It fails
// if either sequence is empty, the sequences differ in length, or the
// threshold falls outside [1, len(approvers)].
func NewMultisigAccount(
	address AccountAddress,
	networkID string,
	kind AccountKind,
	threshold uint32,
	approvers []AccountAddress,
	pubKeyCommits [][32]byte,
	aux Timestamps,
) (*MultisigAccount, error) {
	if len(approvers) == 0 {
		return nil, fmt.Errorf("domain: account must have at least one approver")
	}
	if len(pubKeyCommits) == 0 {
		return nil, fmt.Errorf("domain: account must have at least one pub key commit")
	}
	if len(approvers) != len(pubKeyCommits) {
		return nil, fmt.Errorf(
			"domain: approver count (%d) does not match pub key commit count (%d)",
			len(approvers), len(pubKeyCommits),
		)
	}
	if threshold < 1 || int(threshold) > len(approvers) {
		return nil, fmt.Errorf(
			"domain: threshold %d out of range [1, %d]", threshold, len(approvers),
		)
	}

	return &MultisigAccount{
		Address:       address,
		NetworkID:     networkID,
		Kind:          kind,
		Threshold:     threshold,
		Approvers:     approvers,
		PubKeyCommits: pubKeyCommits,
		Aux:           aux,
	}, nil
}

// NumApprovers returns N, the number of approvers registered to the
// account. It is also the length of the ordered signature vector the
// runtime expects when processing a transaction for this account.
func (a *MultisigAccount) NumApprovers() int {
	return len(a.Approvers)
}
