// Package request holds the engine's input DTOs. Each constructor validates
// its arguments and is the only way to produce a value of its type, per
// spec's "validated input DTOs" contract (C5).
package request

import (
	"fmt"

	"github.com/miden-multisig/coordinator/domain"
)

// CreateMultisigAccount is the validated input to Engine.CreateMultisigAccount.
type CreateMultisigAccount struct {
	Threshold     uint32
	Approvers     []domain.AccountAddress
	PubKeyCommits [][32]byte
}

// NewCreateMultisigAccount validates approvers non-empty, commitments
// non-empty, equal length, and threshold in [1, len(approvers)] — the same
// checks spec.md §4.3 requires before the engine even talks to the runtime.
func NewCreateMultisigAccount(
	threshold uint32,
	approvers []domain.AccountAddress,
	pubKeyCommits [][32]byte,
) (*CreateMultisigAccount, error) {
	if len(approvers) == 0 {
		return nil, fmt.Errorf("request: approvers must not be empty")
	}
	if len(pubKeyCommits) == 0 {
		return nil, fmt.Errorf("request: pub key commits must not be empty")
	}
	if len(approvers) != len(pubKeyCommits) {
		return nil, fmt.Errorf(
			"request: approver count (%d) does not match pub key commit count (%d)",
			len(approvers), len(pubKeyCommits),
		)
	}
	if threshold < 1 || int(threshold) > len(approvers) {
		return nil, fmt.Errorf("request: threshold %d out of range [1, %d]", threshold, len(approvers))
	}
	return &CreateMultisigAccount{
		Threshold:     threshold,
		Approvers:     approvers,
		PubKeyCommits: pubKeyCommits,
	}, nil
}

// ProposeMultisigTx is the validated input to Engine.ProposeMultisigTx.
type ProposeMultisigTx struct {
	AccountAddress domain.AccountAddress
	TxRequest      []byte
}

// NewProposeMultisigTx validates that an account address and a non-empty
// transaction request are present.
func NewProposeMultisigTx(accountAddress domain.AccountAddress, txRequest []byte) (*ProposeMultisigTx, error) {
	if len(accountAddress) == 0 {
		return nil, fmt.Errorf("request: account address must not be empty")
	}
	if len(txRequest) == 0 {
		return nil, fmt.Errorf("request: tx request must not be empty")
	}
	return &ProposeMultisigTx{AccountAddress: accountAddress, TxRequest: txRequest}, nil
}

// AddSignature is the validated input to Engine.AddSignature.
type AddSignature struct {
	TxID      domain.MultisigTxId
	Approver  domain.AccountAddress
	Signature []byte
}

// NewAddSignature validates a non-empty approver address and signature.
func NewAddSignature(txID domain.MultisigTxId, approver domain.AccountAddress, signature []byte) (*AddSignature, error) {
	if len(approver) == 0 {
		return nil, fmt.Errorf("request: approver address must not be empty")
	}
	if len(signature) == 0 {
		return nil, fmt.Errorf("request: signature must not be empty")
	}
	return &AddSignature{TxID: txID, Approver: approver, Signature: signature}, nil
}

// ListMultisigTx is the validated input to Engine.ListMultisigTx.
type ListMultisigTx struct {
	AccountAddress domain.AccountAddress
	StatusFilter   *domain.MultisigTxStatus
}

// NewListMultisigTx validates a non-empty account address.
func NewListMultisigTx(accountAddress domain.AccountAddress, statusFilter *domain.MultisigTxStatus) (*ListMultisigTx, error) {
	if len(accountAddress) == 0 {
		return nil, fmt.Errorf("request: account address must not be empty")
	}
	return &ListMultisigTx{AccountAddress: accountAddress, StatusFilter: statusFilter}, nil
}
