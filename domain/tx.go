package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// MultisigTxId is a wrapper around a UUID identifying a multisig
// transaction, giving it a distinct type from any other UUID-keyed entity.
type MultisigTxId uuid.UUID

// NewMultisigTxId generates a fresh, random transaction id.
func NewMultisigTxId() MultisigTxId {
	return MultisigTxId(uuid.New())
}

// MultisigTxIdFromUUID wraps an existing UUID as a MultisigTxId.
func MultisigTxIdFromUUID(id uuid.UUID) MultisigTxId {
	return MultisigTxId(id)
}

// UUID unwraps the MultisigTxId back into a plain uuid.UUID.
func (id MultisigTxId) UUID() uuid.UUID {
	return uuid.UUID(id)
}

// String renders the transaction id in standard UUID form.
func (id MultisigTxId) String() string {
	return uuid.UUID(id).String()
}

// ParseMultisigTxId parses a transaction id from its string form.
func ParseMultisigTxId(s string) (MultisigTxId, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return MultisigTxId{}, fmt.Errorf("domain: invalid multisig tx id: %w", err)
	}
	return MultisigTxId(id), nil
}

// MultisigTxStatus is the execution status of a multisig transaction. It is
// a closed enum: Pending is the only non-terminal state, and a transaction
// may transition to exactly one of Success or Failure, never back.
type MultisigTxStatus uint8

const (
	// MultisigTxStatusPending is the initial state of every proposed
	// transaction: awaiting sufficient signatures.
	MultisigTxStatusPending MultisigTxStatus = iota
	// MultisigTxStatusSuccess means the transaction was submitted
	// on-chain successfully. Terminal.
	MultisigTxStatusSuccess
	// MultisigTxStatusFailure means chain submission failed after the
	// threshold was reached. Terminal.
	MultisigTxStatusFailure
)

// String renders the status using the wire's snake_case convention.
func (s MultisigTxStatus) String() string {
	switch s {
	case MultisigTxStatusPending:
		return "pending"
	case MultisigTxStatusSuccess:
		return "success"
	case MultisigTxStatusFailure:
		return "failure"
	default:
		return fmt.Sprintf("tx_status(%d)", uint8(s))
	}
}

// Terminal reports whether the status is one from which no further
// transition is permitted.
func (s MultisigTxStatus) Terminal() bool {
	return s == MultisigTxStatusSuccess || s == MultisigTxStatusFailure
}

// ParseMultisigTxStatus parses the wire representation of a tx status.
func ParseMultisigTxStatus(s string) (MultisigTxStatus, error) {
	switch s {
	case "pending":
		return MultisigTxStatusPending, nil
	case "success":
		return MultisigTxStatusSuccess, nil
	case "failure":
		return MultisigTxStatusFailure, nil
	default:
		return 0, fmt.Errorf("domain: unknown multisig tx status %q", s)
	}
}

// MultisigTx is a pending or terminal multisig transaction tracked by the
// coordinator. TxRequest and TxSummary are opaque SDK-serialised blobs;
// TxSummaryCommit is the 32-byte commitment approvers sign over.
type MultisigTx struct {
	Id              MultisigTxId
	AccountAddress  AccountAddress
	NetworkID       string
	Status          MultisigTxStatus
	TxRequest       []byte
	TxSummary       []byte
	TxSummaryCommit [32]byte
	SignatureCount  uint32 // derived; omitted from the wire when zero
	Aux             Timestamps
}

// MultisigTxStats summarises transaction counts for an account.
type MultisigTxStats struct {
	Total        uint64
	LastMonth    uint64
	TotalSuccess uint64
}
