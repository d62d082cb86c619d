// Package fakestore provides an in-memory store.Store implementation for
// engine and HTTP façade tests, standing in for Postgres the same way
// internal/mockwallet stands in for the Miden SDK.
package fakestore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/miden-multisig/coordinator/domain"
	"github.com/miden-multisig/coordinator/store"
)

type accountRow struct {
	account   *domain.MultisigAccount
	approvers []*domain.MultisigApprover
}

type txRow struct {
	tx         *domain.MultisigTx
	signatures map[string][]byte // approver address (string) -> signature bytes
}

// Store is a mutex-guarded, in-memory stand-in for store.PostgresStore.
// It reproduces the critical transactional property AddSignatureTx
// depends on (insert + recount observed atomically) by holding a single
// global lock across the whole method body.
type Store struct {
	mu       sync.Mutex
	accounts map[string]*accountRow // key: address+networkID
	txs      map[domain.MultisigTxId]*txRow
}

// New constructs an empty fake store.
func New() *Store {
	return &Store{
		accounts: make(map[string]*accountRow),
		txs:      make(map[domain.MultisigTxId]*txRow),
	}
}

func accountKey(address domain.AccountAddress, networkID string) string {
	return networkID + ":" + string(address)
}

func (s *Store) CreateAccount(_ context.Context, account *domain.MultisigAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := accountKey(account.Address, account.NetworkID)
	if _, ok := s.accounts[key]; ok {
		return &store.StoreError{Kind: store.KindStore, Msg: "fakestore: duplicate account"}
	}

	now := time.Now()
	account.Aux = domain.Timestamps{CreatedAt: now, UpdatedAt: now}

	approvers := make([]*domain.MultisigApprover, len(account.Approvers))
	for i, addr := range account.Approvers {
		approvers[i] = &domain.MultisigApprover{
			Address:      addr,
			NetworkID:    account.NetworkID,
			PubKeyCommit: account.PubKeyCommits[i],
			Aux:          domain.Timestamps{CreatedAt: now, UpdatedAt: now},
		}
	}

	s.accounts[key] = &accountRow{account: account, approvers: approvers}
	return nil
}

func (s *Store) CreateTx(
	_ context.Context,
	accountAddress domain.AccountAddress,
	networkID string,
	txRequest, txSummary []byte,
	txSummaryCommit [32]byte,
) (domain.MultisigTxId, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[accountKey(accountAddress, networkID)]; !ok {
		return domain.MultisigTxId{}, &store.StoreError{Kind: store.KindNotFound, Msg: "fakestore: account not found"}
	}

	now := time.Now()
	id := domain.NewMultisigTxId()
	s.txs[id] = &txRow{
		tx: &domain.MultisigTx{
			Id:              id,
			AccountAddress:  accountAddress,
			NetworkID:       networkID,
			Status:          domain.MultisigTxStatusPending,
			TxRequest:       txRequest,
			TxSummary:       txSummary,
			TxSummaryCommit: txSummaryCommit,
			Aux:             domain.Timestamps{CreatedAt: now, UpdatedAt: now},
		},
		signatures: make(map[string][]byte),
	}
	return id, nil
}

func (s *Store) AddSignatureTx(
	_ context.Context,
	txID domain.MultisigTxId,
	approver domain.AccountAddress,
	signature []byte,
) (authorized bool, thresholdMet bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.txs[txID]
	if !ok {
		return false, false, &store.StoreError{Kind: store.KindNotFound, Msg: "fakestore: tx not found"}
	}
	accRow, ok := s.accounts[accountKey(row.tx.AccountAddress, row.tx.NetworkID)]
	if !ok {
		return false, false, &store.StoreError{Kind: store.KindNotFound, Msg: "fakestore: account not found"}
	}

	joined := false
	for _, a := range accRow.account.Approvers {
		if string(a) == string(approver) {
			joined = true
			break
		}
	}
	if !joined {
		return false, false, nil
	}

	if row.tx.Status != domain.MultisigTxStatusPending {
		return true, false, &store.StoreError{Kind: store.KindTxNotPending, Msg: "fakestore: transaction already terminal"}
	}

	if _, dup := row.signatures[string(approver)]; dup {
		return true, false, &store.StoreError{Kind: store.KindStore, Msg: "fakestore: duplicate signature"}
	}
	row.signatures[string(approver)] = signature

	threshold := int(accRow.account.Threshold)
	return true, len(row.signatures) == threshold, nil
}

func (s *Store) UpdateStatus(_ context.Context, txID domain.MultisigTxId, status domain.MultisigTxStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.txs[txID]
	if !ok {
		return &store.StoreError{Kind: store.KindNotFound, Msg: "fakestore: tx not found"}
	}
	if row.tx.Status != domain.MultisigTxStatusPending {
		return &store.StoreError{Kind: store.KindTxNotPending, Msg: "fakestore: transaction already terminal"}
	}
	row.tx.Status = status
	row.tx.Aux.UpdatedAt = time.Now()
	return nil
}

func (s *Store) LoadOrderedSignaturesAndTx(_ context.Context, txID domain.MultisigTxId) ([][]byte, *domain.MultisigTx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.txs[txID]
	if !ok {
		return nil, nil, &store.StoreError{Kind: store.KindNotFound, Msg: "fakestore: tx not found"}
	}
	accRow, ok := s.accounts[accountKey(row.tx.AccountAddress, row.tx.NetworkID)]
	if !ok {
		return nil, nil, &store.StoreError{Kind: store.KindNotFound, Msg: "fakestore: account not found"}
	}

	ordered := make([][]byte, len(accRow.account.Approvers))
	count := 0
	for i, approver := range accRow.account.Approvers {
		if sig, ok := row.signatures[string(approver)]; ok {
			ordered[i] = sig
			count++
		}
	}

	txCopy := *row.tx
	txCopy.SignatureCount = uint32(count)
	return ordered, &txCopy, nil
}

func (s *Store) GetAccount(_ context.Context, address domain.AccountAddress, networkID string) (*domain.MultisigAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.accounts[accountKey(address, networkID)]
	if !ok {
		return nil, &store.StoreError{Kind: store.KindNotFound, Msg: "fakestore: account not found"}
	}
	acc := *row.account
	return &acc, nil
}

func (s *Store) GetAllAccounts(_ context.Context) ([]*domain.MultisigAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts := make([]*domain.MultisigAccount, 0, len(s.accounts))
	for _, row := range s.accounts {
		acc := *row.account
		accounts = append(accounts, &acc)
	}
	return accounts, nil
}

func (s *Store) GetApproversByAccount(_ context.Context, address domain.AccountAddress, networkID string) ([]*domain.MultisigApprover, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.accounts[accountKey(address, networkID)]
	if !ok {
		return nil, &store.StoreError{Kind: store.KindNotFound, Msg: "fakestore: account not found"}
	}
	return row.approvers, nil
}

func (s *Store) GetApproverByAddress(_ context.Context, address domain.AccountAddress, networkID string) (*domain.MultisigApprover, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range s.accounts {
		for _, approver := range row.approvers {
			if approver.NetworkID == networkID && string(approver.Address) == string(address) {
				return approver, nil
			}
		}
	}
	return nil, &store.StoreError{Kind: store.KindNotFound, Msg: "fakestore: approver not found"}
}

func (s *Store) GetTxByID(_ context.Context, txID domain.MultisigTxId) (*domain.MultisigTx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.txs[txID]
	if !ok {
		return nil, &store.StoreError{Kind: store.KindNotFound, Msg: "fakestore: tx not found"}
	}
	txCopy := *row.tx
	txCopy.SignatureCount = uint32(len(row.signatures))
	return &txCopy, nil
}

func (s *Store) GetTxStats(_ context.Context, address domain.AccountAddress, networkID string) (*domain.MultisigTxStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := &domain.MultisigTxStats{}
	monthAgo := time.Now().AddDate(0, -1, 0)
	for _, row := range s.txs {
		if string(row.tx.AccountAddress) != string(address) || row.tx.NetworkID != networkID {
			continue
		}
		stats.Total++
		if row.tx.Aux.CreatedAt.After(monthAgo) {
			stats.LastMonth++
		}
		if row.tx.Status == domain.MultisigTxStatusSuccess {
			stats.TotalSuccess++
		}
	}
	return stats, nil
}

func (s *Store) ListTxsByAccount(
	_ context.Context,
	address domain.AccountAddress,
	networkID string,
	filter store.TxStatusFilter,
) ([]*domain.MultisigTx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var txs []*domain.MultisigTx
	for _, row := range s.txs {
		if string(row.tx.AccountAddress) != string(address) || row.tx.NetworkID != networkID {
			continue
		}
		if filter.Status != nil && row.tx.Status != *filter.Status {
			continue
		}
		txCopy := *row.tx
		txCopy.SignatureCount = uint32(len(row.signatures))
		txs = append(txs, &txCopy)
	}
	sort.Slice(txs, func(i, j int) bool {
		return txs[i].Aux.CreatedAt.After(txs[j].Aux.CreatedAt)
	})
	return txs, nil
}

var _ store.Store = (*Store)(nil)
