package coordinatorrpc

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/miden-multisig/coordinator/clientruntime"
	"github.com/miden-multisig/coordinator/domain"
	"github.com/miden-multisig/coordinator/store"
)

func encodeB64(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

func decodeB64(field, s string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, newAppError(fmt.Sprintf("invalid base64 in %s: %v", field, err))
	}
	return b, nil
}

func decodeAddressField(networkID, field, bech string) (domain.AccountAddress, error) {
	addr, err := store.DecodeAddress(networkID, bech)
	if err != nil {
		return nil, newAppError(fmt.Sprintf("invalid address in %s: %v", field, err))
	}
	return addr, nil
}

func encodeAddressField(networkID string, address domain.AccountAddress) string {
	encoded, err := store.EncodeAddress(networkID, address)
	if err != nil {
		// Address bytes came from our own domain/store layer, never from
		// the wire, so a failure here means invariant violation, not bad
		// user input.
		panic(fmt.Sprintf("coordinatorrpc: encode address: %v", err))
	}
	return encoded
}

// createMultisigAccountRequestPayload is the wire form of
// request.CreateMultisigAccount.
type createMultisigAccountRequestPayload struct {
	Threshold     uint32   `json:"threshold"`
	Approvers     []string `json:"approvers"`
	PubKeyCommits []string `json:"pub_key_commits"`
}

type createMultisigAccountResponsePayload struct {
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newCreateMultisigAccountResponsePayload(networkID string, account *domain.MultisigAccount) *createMultisigAccountResponsePayload {
	return &createMultisigAccountResponsePayload{
		Address:   encodeAddressField(networkID, account.Address),
		CreatedAt: account.Aux.CreatedAt,
		UpdatedAt: account.Aux.UpdatedAt,
	}
}

// proposeMultisigTxRequestPayload is the wire form of request.ProposeMultisigTx.
type proposeMultisigTxRequestPayload struct {
	MultisigAccountAddress string `json:"multisig_account_address"`
	TxRequest              string `json:"tx_request"`
}

type proposeMultisigTxResponsePayload struct {
	TxID      string `json:"tx_id"`
	TxSummary string `json:"tx_summary"`
}

// addSignatureRequestPayload is the wire form of request.AddSignature.
type addSignatureRequestPayload struct {
	TxID      string `json:"tx_id"`
	Approver  string `json:"approver"`
	Signature string `json:"signature"`
}

type addSignatureResponsePayload struct {
	TxResult *string `json:"tx_result"`
}

func newAddSignatureResponsePayload(txResult []byte) *addSignatureResponsePayload {
	if txResult == nil {
		return &addSignatureResponsePayload{TxResult: nil}
	}
	encoded := base64.StdEncoding.EncodeToString(txResult)
	return &addSignatureResponsePayload{TxResult: &encoded}
}

// listConsumableNotesRequestPayload is the wire form of a GetConsumableNotes
// call; a nil Address lists notes across every account.
type listConsumableNotesRequestPayload struct {
	Address *string `json:"address"`
}

type noteIDPayload struct {
	NoteID          string `json:"note_id"`
	NoteIDFileBytes string `json:"note_id_file_bytes"`
}

type listConsumableNotesResponsePayload struct {
	NoteIDs []noteIDPayload `json:"note_ids"`
}

func newListConsumableNotesResponsePayload(notes []clientruntime.ConsumableNote) *listConsumableNotesResponsePayload {
	ids := make([]noteIDPayload, len(notes))
	for i, n := range notes {
		ids[i] = noteIDPayload{
			NoteID:          "0x" + hex.EncodeToString(n.NoteID[:]),
			NoteIDFileBytes: base64.StdEncoding.EncodeToString(n.NoteIDFileBytes),
		}
	}
	return &listConsumableNotesResponsePayload{NoteIDs: ids}
}

// multisigAccountDetailsRequestPayload is the wire form shared by
// GetMultisigAccount, ListMultisigApprovers and GetMultisigTxStats.
type multisigAccountDetailsRequestPayload struct {
	MultisigAccountAddress string `json:"multisig_account_address"`
}

type multisigAccountPayload struct {
	Address   string    `json:"address"`
	Kind      string    `json:"kind"`
	Threshold uint32    `json:"threshold"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type getMultisigAccountDetailsResponsePayload struct {
	MultisigAccount multisigAccountPayload `json:"multisig_account"`
}

func newGetMultisigAccountDetailsResponsePayload(networkID string, account *domain.MultisigAccount) *getMultisigAccountDetailsResponsePayload {
	return &getMultisigAccountDetailsResponsePayload{
		MultisigAccount: multisigAccountPayload{
			Address:   encodeAddressField(networkID, account.Address),
			Kind:      account.Kind.String(),
			Threshold: account.Threshold,
			CreatedAt: account.Aux.CreatedAt,
			UpdatedAt: account.Aux.UpdatedAt,
		},
	}
}

type multisigApproverPayload struct {
	Address      string    `json:"address"`
	PubKeyCommit string    `json:"pub_key_commit"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type listMultisigApproverResponsePayload struct {
	Approvers []multisigApproverPayload `json:"approvers"`
}

func newListMultisigApproverResponsePayload(networkID string, approvers []*domain.MultisigApprover) *listMultisigApproverResponsePayload {
	out := make([]multisigApproverPayload, len(approvers))
	for i, a := range approvers {
		out[i] = multisigApproverPayload{
			Address:      encodeAddressField(networkID, a.Address),
			PubKeyCommit: base64.StdEncoding.EncodeToString(a.PubKeyCommit[:]),
			CreatedAt:    a.Aux.CreatedAt,
			UpdatedAt:    a.Aux.UpdatedAt,
		}
	}
	return &listMultisigApproverResponsePayload{Approvers: out}
}

type multisigTxStatsPayload struct {
	Total        uint64 `json:"total"`
	LastMonth    uint64 `json:"last_month"`
	TotalSuccess uint64 `json:"total_success"`
}

type getMultisigTxStatsResponsePayload struct {
	TxStats multisigTxStatsPayload `json:"tx_stats"`
}

func newGetMultisigTxStatsResponsePayload(stats *domain.MultisigTxStats) *getMultisigTxStatsResponsePayload {
	return &getMultisigTxStatsResponsePayload{
		TxStats: multisigTxStatsPayload{
			Total:        stats.Total,
			LastMonth:    stats.LastMonth,
			TotalSuccess: stats.TotalSuccess,
		},
	}
}

// listMultisigTxRequestPayload is the wire form of request.ListMultisigTx.
type listMultisigTxRequestPayload struct {
	MultisigAccountAddress string  `json:"multisig_account_address"`
	TxStatusFilter         *string `json:"tx_status_filter"`
}

type multisigTxPayload struct {
	ID                     string          `json:"id"`
	MultisigAccountAddress string          `json:"multisig_account_address"`
	Status                 string          `json:"status"`
	TxRequest              string          `json:"tx_request"`
	TxSummary              string          `json:"tx_summary"`
	TxSummaryCommit        string          `json:"tx_summary_commit"`
	InputNoteIDs           []noteIDPayload `json:"input_note_ids"`
	SignatureCount         *uint32         `json:"signature_count,omitempty"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at"`
}

type listMultisigTxResponsePayload struct {
	Txs []multisigTxPayload `json:"txs"`
}

func newMultisigTxPayload(networkID string, tx *domain.MultisigTx) multisigTxPayload {
	payload := multisigTxPayload{
		ID:                     tx.Id.String(),
		MultisigAccountAddress: encodeAddressField(networkID, tx.AccountAddress),
		Status:                 tx.Status.String(),
		TxRequest:              base64.StdEncoding.EncodeToString(tx.TxRequest),
		TxSummary:              base64.StdEncoding.EncodeToString(tx.TxSummary),
		TxSummaryCommit:        base64.StdEncoding.EncodeToString(tx.TxSummaryCommit[:]),
		// The wallet SDK's input-note extraction operates on a decoded
		// TransactionRequest object; this coordinator only ever holds the
		// opaque serialized bytes, so this is always empty here.
		InputNoteIDs: []noteIDPayload{},
		CreatedAt:    tx.Aux.CreatedAt,
		UpdatedAt:    tx.Aux.UpdatedAt,
	}
	if tx.SignatureCount != 0 {
		count := tx.SignatureCount
		payload.SignatureCount = &count
	}
	return payload
}

func newListMultisigTxResponsePayload(networkID string, txs []*domain.MultisigTx) *listMultisigTxResponsePayload {
	out := make([]multisigTxPayload, len(txs))
	for i, tx := range txs {
		out[i] = newMultisigTxPayload(networkID, tx)
	}
	return &listMultisigTxResponsePayload{Txs: out}
}

func parseTxID(s string) (domain.MultisigTxId, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return domain.MultisigTxId{}, newAppError(fmt.Sprintf("invalid tx_id: %v", err))
	}
	return domain.MultisigTxIdFromUUID(id), nil
}

func parseTxStatusFilter(s *string) (*domain.MultisigTxStatus, error) {
	if s == nil {
		return nil, nil
	}
	status, err := domain.ParseMultisigTxStatus(*s)
	if err != nil {
		return nil, newAppError(fmt.Sprintf("invalid tx_status_filter: %v", err))
	}
	return &status, nil
}
