package clientruntime

import "github.com/miden-multisig/coordinator/domain"

// WalletAccount is the account object handed back by the wallet SDK after
// account setup, carrying whatever on-chain identifier the SDK assigned.
type WalletAccount struct {
	Address domain.AccountAddress
}

// ConsumableNote is a note the wallet SDK reports as available for an
// account to spend, paired with its consumability as reported by the SDK.
type ConsumableNote struct {
	NoteID          [32]byte
	NoteIDFileBytes []byte
	Consumable      bool
}

// Signature is one approver's signature, positioned at its approver index
// within the ordered vector the runtime hands to the SDK. A nil entry at
// position i means approver i has not yet signed.
type Signature struct {
	ApproverIndex int
	Bytes         []byte
}

// WalletClient models the embedded, non-thread-safe wallet/prover SDK. It
// is the sole interface the client runtime is allowed to call, and it must
// only ever be called from the runtime's single worker goroutine.
//
// Every method here corresponds one-to-one to an SDK call made from the
// reference client runtime's message loop.
type WalletClient interface {
	// SyncState performs an idempotent local-chain-view refresh. It is
	// called once before handling every non-shutdown message.
	SyncState() error

	// SetupAccount provisions a new multisig account on-chain with the
	// given threshold and ordered public key commitments.
	SetupAccount(threshold uint32, pubKeyCommits [][32]byte) (*WalletAccount, error)

	// ConsumableNotes lists notes available to consume, optionally
	// filtered to a single account.
	ConsumableNotes(account *domain.AccountAddress) ([]ConsumableNote, error)

	// ProposeMultisigTransaction dry-runs execution of txRequest against
	// account. The SDK is expected to fail this dry run with
	// ErrUnauthorized, carrying the transaction summary approvers must
	// sign; any other outcome is an error (see ErrDryRunExpected).
	ProposeMultisigTransaction(account domain.AccountAddress, txRequest []byte) (txSummary []byte, err error)

	// ExecuteAndSubmitMultisigTransaction inserts the supplied
	// (witnessKey, signatureBytes) advice-map entries, executes the
	// transaction request against the account, proves it, and submits
	// it to the chain, returning the opaque transaction result.
	ExecuteAndSubmitMultisigTransaction(
		account domain.AccountAddress,
		txRequest []byte,
		txSummary []byte,
		adviceMap []AdviceEntry,
	) (txResult []byte, err error)

	// NumApprovers reads the account's on-chain storage slot 0 word,
	// element 1, which holds the authoritative approver count.
	NumApprovers(account domain.AccountAddress) (uint32, error)

	// PubKeyCommitAt reads the public key commitment for approver index
	// i from the account's on-chain storage slot 1 map.
	PubKeyCommitAt(account domain.AccountAddress, index int) ([32]byte, error)
}

// AdviceEntry is one (witness key, signature bytes) pair inserted into the
// transaction request's advice map before execution.
type AdviceEntry struct {
	WitnessKey [32]byte
	Signature  []byte
}

// ErrUnauthorized is returned by ProposeMultisigTransaction's dry run when
// the SDK correctly refuses to execute a transaction without approvals
// wired into the witness. TxSummary is the value the runtime should
// forward to its caller.
type ErrUnauthorized struct {
	TxSummary []byte
}

func (e *ErrUnauthorized) Error() string {
	return "wallet: transaction unauthorized (dry run)"
}
