// Package response holds the engine's output DTOs: constructor-only,
// immutable value types, per C5.
package response

import (
	"github.com/miden-multisig/coordinator/clientruntime"
	"github.com/miden-multisig/coordinator/domain"
)

// CreateMultisigAccount is returned by Engine.CreateMultisigAccount.
type CreateMultisigAccount struct {
	walletAccount *clientruntime.WalletAccount
	account       *domain.MultisigAccount
}

// NewCreateMultisigAccount constructs a CreateMultisigAccount response.
func NewCreateMultisigAccount(walletAccount *clientruntime.WalletAccount, account *domain.MultisigAccount) *CreateMultisigAccount {
	return &CreateMultisigAccount{walletAccount: walletAccount, account: account}
}

// WalletAccount is the runtime-side account record.
func (r *CreateMultisigAccount) WalletAccount() *clientruntime.WalletAccount { return r.walletAccount }

// Account is the persisted domain account record.
func (r *CreateMultisigAccount) Account() *domain.MultisigAccount { return r.account }

// ProposeMultisigTx is returned by Engine.ProposeMultisigTx.
type ProposeMultisigTx struct {
	txID      domain.MultisigTxId
	txSummary []byte
}

// NewProposeMultisigTx constructs a ProposeMultisigTx response.
func NewProposeMultisigTx(txID domain.MultisigTxId, txSummary []byte) *ProposeMultisigTx {
	return &ProposeMultisigTx{txID: txID, txSummary: txSummary}
}

// TxID is the newly created pending transaction's id.
func (r *ProposeMultisigTx) TxID() domain.MultisigTxId { return r.txID }

// TxSummary is the opaque object approvers sign.
func (r *ProposeMultisigTx) TxSummary() []byte { return r.txSummary }

// AddSignature is returned by Engine.AddSignature. TxResult is nil when the
// threshold has not yet been met by this call.
type AddSignature struct {
	txResult []byte
}

// NewAddSignature constructs an AddSignature response. A nil txResult means
// the signature was accepted but the threshold was not yet met.
func NewAddSignature(txResult []byte) *AddSignature {
	return &AddSignature{txResult: txResult}
}

// TxResult is the opaque on-chain result, or nil if the threshold has not
// yet been reached.
func (r *AddSignature) TxResult() []byte { return r.txResult }
