// Package engine implements the multisig transaction coordinator's state
// machine (C3): it arbitrates between the persistence store and the
// client runtime, and is the only component callers — the HTTP façade or
// the CLI — talk to.
package engine

import (
	"context"
	"crypto/sha256"
	"errors"
	"sync"

	"github.com/decred/slog"
	"github.com/miden-multisig/coordinator/clientruntime"
	"github.com/miden-multisig/coordinator/domain"
	"github.com/miden-multisig/coordinator/engine/request"
	"github.com/miden-multisig/coordinator/engine/response"
	"github.com/miden-multisig/coordinator/store"
)

const (
	msgCreateMultisigAccount = "CreateMultisigAccount"
	msgProposeMultisigTx     = "ProposeMultisigTx"
	msgProcessMultisigTx     = "ProcessMultisigTx"
	msgGetConsumableNotes    = "GetConsumableNotes"
)

// log is replaced by coordinator.SetSubLogger once the root logger is ready.
var log = slog.Disabled

// UseLogger assigns the subsystem logger used by this package.
func UseLogger(logger slog.Logger) {
	log = logger
}

// Config carries everything Engine needs to construct its runtime on
// Start. NewWallet is invoked from inside the runtime's worker goroutine,
// never here, so the wallet SDK is constructed on, and never escapes, that
// goroutine.
type Config struct {
	NetworkID string
	Store     store.Store
	NewWallet func() (clientruntime.WalletClient, error)

	// Metrics receives operation counters and timings. Nil disables
	// metrics collection.
	Metrics Metrics
}

// Engine is a plain value holding a network id, a store handle, and a
// runtime state. Its API surface is only valid once Start has succeeded;
// calling an operation beforehand, or after Stop, returns
// ErrEngineNotStarted.
type Engine struct {
	cfg Config

	mu      sync.Mutex
	started bool
	runtime *clientruntime.Runtime
}

// New constructs a stopped Engine around cfg.
func New(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Start spawns the client runtime's worker goroutine, transitioning the
// engine from Stopped to Started.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return nil
	}

	rt := clientruntime.New(e.cfg.NewWallet)
	if err := rt.Start(); err != nil {
		return newEngineErr(KindRuntimeOther, "engine: start runtime", err)
	}

	e.runtime = rt
	e.started = true
	return nil
}

// Stop posts a shutdown message to the runtime and joins its worker,
// transitioning the engine back to Stopped.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.started {
		return
	}
	e.runtime.Stop()
	e.runtime = nil
	e.started = false
}

func (e *Engine) runtimeLocked() (*clientruntime.Runtime, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.started {
		return nil, ErrEngineNotStarted
	}
	return e.runtime, nil
}

// CreateMultisigAccount provisions a new multisig account on-chain via the
// runtime, then persists its domain record.
func (e *Engine) CreateMultisigAccount(
	ctx context.Context,
	req *request.CreateMultisigAccount,
) (*response.CreateMultisigAccount, error) {
	rt, err := e.runtimeLocked()
	if err != nil {
		return nil, err
	}

	var walletAccount *clientruntime.WalletAccount
	err = e.timeRuntime(msgCreateMultisigAccount, func() error {
		var innerErr error
		walletAccount, innerErr = rt.CreateMultisigAccount(req.Threshold, req.PubKeyCommits)
		return innerErr
	})
	if err != nil {
		log.Errorf("engine: create multisig account: %v", err)
		return nil, newEngineErr(KindRuntimeOther, "engine: runtime setup account", err)
	}

	account, err := domain.NewMultisigAccount(
		walletAccount.Address,
		e.cfg.NetworkID,
		domain.AccountKindPublic,
		req.Threshold,
		req.Approvers,
		req.PubKeyCommits,
		domain.Timestamps{},
	)
	if err != nil {
		return nil, newEngineErr(KindLengthMismatch, "engine: build domain account", err)
	}

	if err := e.cfg.Store.CreateAccount(ctx, account); err != nil {
		log.Errorf("engine: persist multisig account: %v", err)
		return nil, newEngineErr(KindStore, "engine: store create account", err)
	}

	return response.NewCreateMultisigAccount(walletAccount, account), nil
}

// ProposeMultisigTx dry-runs a transaction request against an account and
// persists the resulting pending transaction.
func (e *Engine) ProposeMultisigTx(
	ctx context.Context,
	req *request.ProposeMultisigTx,
) (*response.ProposeMultisigTx, error) {
	rt, err := e.runtimeLocked()
	if err != nil {
		return nil, err
	}

	var txSummary []byte
	err = e.timeRuntime(msgProposeMultisigTx, func() error {
		var innerErr error
		txSummary, innerErr = rt.ProposeMultisigTx(req.AccountAddress, req.TxRequest)
		return innerErr
	})
	if err != nil {
		log.Warnf("engine: propose multisig tx: %v", err)
		return nil, newEngineErr(KindProposeMultisigTx, "engine: runtime propose tx", err)
	}

	if _, err := e.cfg.Store.GetAccount(ctx, req.AccountAddress, e.cfg.NetworkID); err != nil {
		log.Infof("engine: propose multisig tx: account not found")
		return nil, newEngineErr(KindMultisigAccountNotFound, "engine: account not found", err)
	}

	txSummaryCommit := summaryCommitment(txSummary)

	txID, err := e.cfg.Store.CreateTx(ctx, req.AccountAddress, e.cfg.NetworkID, req.TxRequest, txSummary, txSummaryCommit)
	if err != nil {
		log.Errorf("engine: persist proposed tx: %v", err)
		return nil, newEngineErr(KindStore, "engine: store create tx", err)
	}

	e.metrics().ObserveTxProposed()
	return response.NewProposeMultisigTx(txID, txSummary), nil
}

// AddSignature records an approver's signature. Once the threshold is met
// it drives the transaction through execution and submission, flipping its
// status to success or failure. Per spec.md §9, a failing ProcessMultisigTx
// both flips the status to failure and returns the underlying error —
// preserved as-is, not "fixed".
func (e *Engine) AddSignature(
	ctx context.Context,
	req *request.AddSignature,
) (*response.AddSignature, error) {
	rt, err := e.runtimeLocked()
	if err != nil {
		return nil, err
	}

	authorized, thresholdMet, err := e.cfg.Store.AddSignatureTx(ctx, req.TxID, req.Approver, req.Signature)
	if err != nil {
		var storeErr *store.StoreError
		if errors.As(err, &storeErr) && storeErr.Kind == store.KindTxNotPending {
			log.Warnf("engine: add signature: transaction already terminal")
			return nil, newEngineErr(KindTxAlreadyTerminal, "engine: transaction already terminal", err)
		}
		log.Errorf("engine: add signature: %v", err)
		return nil, newEngineErr(KindStore, "engine: store add signature", err)
	}
	if !authorized {
		log.Warnf("engine: add signature: approver not permitted")
		return nil, newEngineErr(KindUnauthorizedApprover, "engine: approver not permitted", nil)
	}
	e.metrics().ObserveSignatureAdded()
	if !thresholdMet {
		return response.NewAddSignature(nil), nil
	}

	signatures, tx, err := e.cfg.Store.LoadOrderedSignaturesAndTx(ctx, req.TxID)
	if err != nil {
		log.Errorf("engine: load ordered signatures: %v", err)
		return nil, newEngineErr(KindStore, "engine: store load signatures", err)
	}

	ordered := make([]*clientruntime.Signature, len(signatures))
	for i, sig := range signatures {
		if sig == nil {
			continue
		}
		ordered[i] = &clientruntime.Signature{ApproverIndex: i, Bytes: sig}
	}

	var txResult []byte
	err = e.timeRuntime(msgProcessMultisigTx, func() error {
		var innerErr error
		txResult, innerErr = rt.ProcessMultisigTx(tx.AccountAddress, tx.TxRequest, tx.TxSummary, tx.TxSummaryCommit, ordered)
		return innerErr
	})
	if err != nil {
		log.Errorf("engine: process multisig tx: %v", err)
		if uerr := e.cfg.Store.UpdateStatus(ctx, req.TxID, domain.MultisigTxStatusFailure); uerr != nil {
			log.Errorf("engine: update status to failure: %v", uerr)
		}
		e.metrics().ObserveTxTerminal(domain.MultisigTxStatusFailure)
		return nil, newEngineErr(KindProcessMultisigTx, "engine: runtime process tx", err)
	}

	if err := e.cfg.Store.UpdateStatus(ctx, req.TxID, domain.MultisigTxStatusSuccess); err != nil {
		log.Errorf("engine: update status to success: %v", err)
		return nil, newEngineErr(KindStore, "engine: store update status", err)
	}

	e.metrics().ObserveTxTerminal(domain.MultisigTxStatusSuccess)
	return response.NewAddSignature(txResult), nil
}

// GetMultisigAccount loads a single account's domain record.
func (e *Engine) GetMultisigAccount(ctx context.Context, address domain.AccountAddress) (*domain.MultisigAccount, error) {
	if _, err := e.runtimeLocked(); err != nil {
		return nil, err
	}
	account, err := e.cfg.Store.GetAccount(ctx, address, e.cfg.NetworkID)
	if err != nil {
		return nil, newEngineErr(KindMultisigAccountNotFound, "engine: account not found", err)
	}
	return account, nil
}

// ListMultisigApprovers lists an account's approvers in approver_index order.
func (e *Engine) ListMultisigApprovers(ctx context.Context, address domain.AccountAddress) ([]*domain.MultisigApprover, error) {
	if _, err := e.runtimeLocked(); err != nil {
		return nil, err
	}
	approvers, err := e.cfg.Store.GetApproversByAccount(ctx, address, e.cfg.NetworkID)
	if err != nil {
		return nil, newEngineErr(KindStore, "engine: list approvers", err)
	}
	return approvers, nil
}

// GetMultisigTxStats returns aggregate transaction counts for an account.
func (e *Engine) GetMultisigTxStats(ctx context.Context, address domain.AccountAddress) (*domain.MultisigTxStats, error) {
	if _, err := e.runtimeLocked(); err != nil {
		return nil, err
	}
	stats, err := e.cfg.Store.GetTxStats(ctx, address, e.cfg.NetworkID)
	if err != nil {
		return nil, newEngineErr(KindStore, "engine: get tx stats", err)
	}
	return stats, nil
}

// ListMultisigTx lists an account's transactions, optionally filtered to a
// single status.
func (e *Engine) ListMultisigTx(ctx context.Context, req *request.ListMultisigTx) ([]*domain.MultisigTx, error) {
	if _, err := e.runtimeLocked(); err != nil {
		return nil, err
	}
	filter := store.TxStatusFilter{Status: req.StatusFilter}
	txs, err := e.cfg.Store.ListTxsByAccount(ctx, req.AccountAddress, e.cfg.NetworkID, filter)
	if err != nil {
		return nil, newEngineErr(KindStore, "engine: list txs", err)
	}
	return txs, nil
}

// GetConsumableNotes is the only read path that talks to the runtime
// instead of the store.
func (e *Engine) GetConsumableNotes(account *domain.AccountAddress) ([]clientruntime.ConsumableNote, error) {
	rt, err := e.runtimeLocked()
	if err != nil {
		return nil, err
	}
	var notes []clientruntime.ConsumableNote
	err = e.timeRuntime(msgGetConsumableNotes, func() error {
		var innerErr error
		notes, innerErr = rt.GetConsumableNotes(account)
		return innerErr
	})
	if err != nil {
		return nil, newEngineErr(KindRuntimeOther, "engine: get consumable notes", err)
	}
	return notes, nil
}

// summaryCommitment derives the 32-byte commitment of an opaque transaction
// summary blob. The reference implementation calls the SDK's own
// TransactionSummary::to_commitment(); modeled here the same way
// rpo256.Merge models RPO-256, as a documented stand-in hash over the
// summary bytes.
func summaryCommitment(txSummary []byte) [32]byte {
	return sha256.Sum256(txSummary)
}
