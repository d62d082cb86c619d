// Package mockwallet provides a deterministic, in-memory fake of
// clientruntime.WalletClient for tests that exercise the client runtime
// and engine without an embedded Miden SDK.
package mockwallet

import (
	"fmt"
	"sync"

	"github.com/miden-multisig/coordinator/clientruntime"
	"github.com/miden-multisig/coordinator/domain"
)

// Wallet is a fake WalletClient. Its methods take an internal mutex, but
// as with the real SDK, the client runtime is the only thing permitted to
// call it.
type Wallet struct {
	mu sync.Mutex

	// Observed records every call made to the wallet, in the order the
	// runtime made them, for FIFO-ordering assertions (P8).
	Observed []string

	SyncStateErr error

	// AdviceMap records the advice-map entries passed to the most recent
	// ExecuteAndSubmitMultisigTransaction call, for witness assertions (P9).
	AdviceMap []clientruntime.AdviceEntry

	accounts map[string]*accountState

	// TxRequestsToReject, when non-nil, causes
	// ExecuteAndSubmitMultisigTransaction to fail for the listed
	// opaque tx requests (matched by byte equality), modelling a
	// transaction request the SDK rejects (S3).
	TxRequestsToReject map[string]bool
}

type accountState struct {
	pubKeyCommits [][32]byte
}

// New constructs an empty mock wallet.
func New() *Wallet {
	return &Wallet{
		accounts:           make(map[string]*accountState),
		TxRequestsToReject: make(map[string]bool),
	}
}

func (w *Wallet) record(call string) {
	w.Observed = append(w.Observed, call)
}

func (w *Wallet) SyncState() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.record("SyncState")
	return w.SyncStateErr
}

func (w *Wallet) SetupAccount(threshold uint32, pubKeyCommits [][32]byte) (*clientruntime.WalletAccount, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.record("SetupAccount")

	address := domain.AccountAddress(fmt.Sprintf("mock-account-%d", len(w.accounts)))
	w.accounts[string(address)] = &accountState{pubKeyCommits: pubKeyCommits}

	return &clientruntime.WalletAccount{Address: address}, nil
}

func (w *Wallet) ConsumableNotes(account *domain.AccountAddress) ([]clientruntime.ConsumableNote, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.record("ConsumableNotes")
	return nil, nil
}

func (w *Wallet) ProposeMultisigTransaction(account domain.AccountAddress, txRequest []byte) ([]byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.record("ProposeMultisigTransaction")

	summary := append([]byte("summary:"), txRequest...)
	return nil, &clientruntime.ErrUnauthorized{TxSummary: summary}
}

func (w *Wallet) ExecuteAndSubmitMultisigTransaction(
	account domain.AccountAddress,
	txRequest []byte,
	txSummary []byte,
	adviceMap []clientruntime.AdviceEntry,
) ([]byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.record("ExecuteAndSubmitMultisigTransaction")
	w.AdviceMap = adviceMap

	if w.TxRequestsToReject[string(txRequest)] {
		return nil, fmt.Errorf("mockwallet: rejected transaction request")
	}

	return append([]byte("result:"), txSummary...), nil
}

func (w *Wallet) NumApprovers(account domain.AccountAddress) (uint32, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.record("NumApprovers")

	state, ok := w.accounts[string(account)]
	if !ok {
		return 0, fmt.Errorf("mockwallet: unknown account %q", account)
	}
	return uint32(len(state.pubKeyCommits)), nil
}

func (w *Wallet) PubKeyCommitAt(account domain.AccountAddress, index int) ([32]byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.record("PubKeyCommitAt")

	state, ok := w.accounts[string(account)]
	if !ok || index < 0 || index >= len(state.pubKeyCommits) {
		return [32]byte{}, fmt.Errorf("mockwallet: no pub key commit at index %d", index)
	}
	return state.pubKeyCommits[index], nil
}
