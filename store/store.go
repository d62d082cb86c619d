// Package store is the durable persistence layer: accounts, approvers,
// transactions, and signatures, plus the ordered signature aggregation
// query that reconstructs a proof witness. Postgres is the only backing
// implementation (see postgres.go); Store is the interface the engine
// depends on so tests can substitute an in-memory fake.
package store

import (
	"context"

	"github.com/miden-multisig/coordinator/domain"
)

// ErrorKind classifies a StoreError for mapping at the engine/HTTP
// boundary, mirroring the reference store's MultisigStoreError variants.
type ErrorKind uint8

const (
	// KindStore is a driver-level failure (constraint violation, broken
	// connection, etc).
	KindStore ErrorKind = iota
	// KindValidation is a precondition failure caught before hitting the
	// driver, e.g. an address that cannot be encoded.
	KindValidation
	// KindNotFound is a missing row.
	KindNotFound
	// KindSerialization is a failure converting stored bytes back into a
	// domain type.
	KindSerialization
	// KindPool is connection pool exhaustion.
	KindPool
	// KindInvalidValue is an out-of-range numeric value, e.g. a threshold
	// exceeding the approver count on CreateAccount.
	KindInvalidValue
	// KindTxNotPending means a write targeted a transaction that has
	// already reached a terminal status (success or failure).
	KindTxNotPending
	// KindOther is anything else.
	KindOther
)

// StoreError is the error type returned by every Store method.
type StoreError struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *StoreError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func newStoreErr(kind ErrorKind, msg string, err error) *StoreError {
	return &StoreError{Kind: kind, Msg: msg, Err: err}
}

// TxStatusFilter optionally narrows ListTxsByAccount to a single status.
type TxStatusFilter struct {
	Status *domain.MultisigTxStatus
}

// Store is the persistence contract the engine depends on.
type Store interface {
	// CreateAccount inserts the account row and, in the same database
	// transaction, upserts every approver and its join row. Fails with
	// KindStore on duplicate account, KindInvalidValue if threshold > N.
	CreateAccount(ctx context.Context, account *domain.MultisigAccount) error

	// CreateTx inserts a new pending transaction row and returns its
	// generated id.
	CreateTx(
		ctx context.Context,
		accountAddress domain.AccountAddress,
		networkID string,
		txRequest, txSummary []byte,
		txSummaryCommit [32]byte,
	) (domain.MultisigTxId, error)

	// AddSignatureTx is the critical operation described in §4.2: it
	// verifies approver membership, inserts the signature, and recounts
	// against the threshold, all inside one database transaction.
	//
	// authorized reports whether the approver is joined to the
	// transaction's account (false means the row was not modified at
	// all — the Rust reference's None case). thresholdMet is only
	// meaningful when authorized is true, and is true for at most one
	// caller across all concurrent submissions for a given tx. Membership
	// is checked first; once the transaction has already reached a
	// terminal status, a joined approver gets authorized true with a
	// KindTxNotPending StoreError and no row is modified: only one
	// terminal transition is ever permitted.
	AddSignatureTx(
		ctx context.Context,
		txID domain.MultisigTxId,
		approver domain.AccountAddress,
		signature []byte,
	) (authorized bool, thresholdMet bool, err error)

	// UpdateStatus transitions a transaction to a terminal status. Returns
	// KindNotFound if no row matched, or KindTxNotPending if the row
	// exists but is already terminal: a transaction accepts exactly one
	// terminal transition.
	UpdateStatus(ctx context.Context, txID domain.MultisigTxId, status domain.MultisigTxStatus) error

	// LoadOrderedSignaturesAndTx loads the transaction and its ordered,
	// positionally-aligned signature vector (length N, nil at unsigned
	// positions), ordered by approver_index ascending.
	LoadOrderedSignaturesAndTx(ctx context.Context, txID domain.MultisigTxId) ([][]byte, *domain.MultisigTx, error)

	// GetAccount loads an account and its ordered approvers/commits.
	GetAccount(ctx context.Context, address domain.AccountAddress, networkID string) (*domain.MultisigAccount, error)

	// GetAllAccounts lists every known account.
	GetAllAccounts(ctx context.Context) ([]*domain.MultisigAccount, error)

	// GetApproversByAccount lists an account's approvers ordered by
	// approver_index ascending.
	GetApproversByAccount(ctx context.Context, address domain.AccountAddress, networkID string) ([]*domain.MultisigApprover, error)

	// GetApproverByAddress loads a single approver row.
	GetApproverByAddress(ctx context.Context, address domain.AccountAddress, networkID string) (*domain.MultisigApprover, error)

	// GetTxByID loads a single transaction row.
	GetTxByID(ctx context.Context, txID domain.MultisigTxId) (*domain.MultisigTx, error)

	// GetTxStats returns aggregate counts for an account's transactions.
	GetTxStats(ctx context.Context, address domain.AccountAddress, networkID string) (*domain.MultisigTxStats, error)

	// ListTxsByAccount lists transactions for an account, optionally
	// filtered to a single status, ordered by created_at descending.
	ListTxsByAccount(ctx context.Context, address domain.AccountAddress, networkID string, filter TxStatusFilter) ([]*domain.MultisigTx, error)
}
