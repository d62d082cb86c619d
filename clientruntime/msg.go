package clientruntime

import "github.com/miden-multisig/coordinator/domain"

// message is implemented by every request the runtime worker accepts on
// its queue. Each concrete message type carries its own one-shot reply
// channel, created by the sender, so the caller gets a synchronous
// request/reply feel over an asynchronous worker.
type message interface {
	// handle executes the message against the wallet client from inside
	// the worker goroutine and sends exactly one reply.
	handle(w WalletClient)
}

// createMultisigAccountMsg asks the runtime to provision a new multisig
// account with the given threshold and ordered public key commitments.
type createMultisigAccountMsg struct {
	threshold     uint32
	pubKeyCommits [][32]byte
	reply         chan createMultisigAccountReply
}

type createMultisigAccountReply struct {
	account *WalletAccount
	err     error
}

func (m *createMultisigAccountMsg) handle(w WalletClient) {
	account, err := w.SetupAccount(m.threshold, m.pubKeyCommits)
	m.reply <- createMultisigAccountReply{account: account, err: err}
}

// getConsumableNotesMsg asks the runtime for the notes currently
// consumable, optionally scoped to a single account.
type getConsumableNotesMsg struct {
	account *domain.AccountAddress
	reply   chan getConsumableNotesReply
}

type getConsumableNotesReply struct {
	notes []ConsumableNote
	err   error
}

func (m *getConsumableNotesMsg) handle(w WalletClient) {
	notes, err := w.ConsumableNotes(m.account)
	m.reply <- getConsumableNotesReply{notes: notes, err: err}
}

// proposeMultisigTxMsg asks the runtime to dry-run a transaction request
// against an account and return the resulting transaction summary.
type proposeMultisigTxMsg struct {
	account   domain.AccountAddress
	txRequest []byte
	reply     chan proposeMultisigTxReply
}

type proposeMultisigTxReply struct {
	txSummary []byte
	err       error
}

// ErrDryRunExpected indicates a reference-implementation-documented bug
// condition: the SDK's dry run unexpectedly succeeded instead of failing
// with ErrUnauthorized. Preserved rather than papered over.
type ErrDryRunExpected struct{}

func (ErrDryRunExpected) Error() string {
	return "clientruntime: dry run unexpectedly succeeded"
}

func (m *proposeMultisigTxMsg) handle(w WalletClient) {
	_, err := w.ProposeMultisigTransaction(m.account, m.txRequest)
	var unauth *ErrUnauthorized
	switch {
	case err == nil:
		m.reply <- proposeMultisigTxReply{err: ErrDryRunExpected{}}
	case asUnauthorized(err, &unauth):
		m.reply <- proposeMultisigTxReply{txSummary: unauth.TxSummary}
	default:
		m.reply <- proposeMultisigTxReply{err: err}
	}
}

func asUnauthorized(err error, target **ErrUnauthorized) bool {
	if u, ok := err.(*ErrUnauthorized); ok {
		*target = u
		return true
	}
	return false
}

// processMultisigTxMsg asks the runtime to assemble the final transaction
// from an ordered, positionally-aligned signature vector, execute it,
// prove it, and submit it on-chain.
type processMultisigTxMsg struct {
	account         domain.AccountAddress
	txRequest       []byte
	txSummary       []byte
	txSummaryCommit [32]byte
	signatures      []*Signature // len N, nil at unsigned positions
	reply           chan processMultisigTxReply
}

type processMultisigTxReply struct {
	txResult []byte
	err      error
}

// ErrNumSignaturesMismatch is returned when the supplied signature vector
// length does not equal the account's on-chain approver count.
type ErrNumSignaturesMismatch struct {
	Expected int
	Got      int
}

func (e *ErrNumSignaturesMismatch) Error() string {
	return "clientruntime: signature vector length mismatch"
}

func (m *processMultisigTxMsg) handle(w WalletClient) {
	numApprovers, err := w.NumApprovers(m.account)
	if err != nil {
		m.reply <- processMultisigTxReply{err: err}
		return
	}
	if len(m.signatures) != int(numApprovers) {
		m.reply <- processMultisigTxReply{err: &ErrNumSignaturesMismatch{
			Expected: int(numApprovers),
			Got:      len(m.signatures),
		}}
		return
	}

	adviceMap := make([]AdviceEntry, 0, len(m.signatures))
	for i, sig := range m.signatures {
		if sig == nil {
			continue
		}
		pubKeyCommit, err := w.PubKeyCommitAt(m.account, i)
		if err != nil {
			m.reply <- processMultisigTxReply{err: err}
			return
		}
		witnessKey := deriveWitnessKey(pubKeyCommit, m.txSummaryCommit)
		adviceMap = append(adviceMap, AdviceEntry{
			WitnessKey: witnessKey,
			Signature:  sig.Bytes,
		})
	}

	txResult, err := w.ExecuteAndSubmitMultisigTransaction(
		m.account, m.txRequest, m.txSummary, adviceMap,
	)
	m.reply <- processMultisigTxReply{txResult: txResult, err: err}
}

// shutdownMsg asks the worker to stop processing further messages and exit.
type shutdownMsg struct {
	done chan struct{}
}

func (m *shutdownMsg) handle(WalletClient) {
	close(m.done)
}
