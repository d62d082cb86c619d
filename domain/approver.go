package domain

// MultisigApprover is a participant authorised to sign transactions for one
// or more multisig accounts. An approver row is shared across every
// account that lists it; the join record that ties an approver to a
// specific account also carries the approver's stable, dense index within
// that account (see the account_approver table in the persistence layer).
type MultisigApprover struct {
	Address      AccountAddress
	NetworkID    string
	PubKeyCommit [32]byte
	Aux          Timestamps
}

// NewMultisigApprover constructs an approver value. Approvers carry no
// cross-field invariant beyond having a non-empty address, so no type-state
// builder is warranted here.
func NewMultisigApprover(address AccountAddress, networkID string, pubKeyCommit [32]byte, aux Timestamps) *MultisigApprover {
	return &MultisigApprover{
		Address:      address,
		NetworkID:    networkID,
		PubKeyCommit: pubKeyCommit,
		Aux:          aux,
	}
}
