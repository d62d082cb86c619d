package coordinatorrpc

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/miden-multisig/coordinator/domain"
	"github.com/miden-multisig/coordinator/engine/request"
)

func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return newAppError("malformed JSON body: " + err.Error())
	}
	return nil
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleCreateMultisigAccount(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var payload createMultisigAccountRequestPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	approvers := make([]domain.AccountAddress, len(payload.Approvers))
	for i, bech := range payload.Approvers {
		addr, err := decodeAddressField(s.networkID, "approvers", bech)
		if err != nil {
			writeError(w, err)
			return
		}
		approvers[i] = addr
	}

	pubKeyCommits := make([][32]byte, len(payload.PubKeyCommits))
	for i, b64 := range payload.PubKeyCommits {
		raw, err := decodeB64("pub_key_commits", b64)
		if err != nil {
			writeError(w, err)
			return
		}
		if len(raw) != 32 {
			writeError(w, newAppError("pub_key_commits entries must be 32 bytes"))
			return
		}
		copy(pubKeyCommits[i][:], raw)
	}

	req, err := request.NewCreateMultisigAccount(payload.Threshold, approvers, pubKeyCommits)
	if err != nil {
		writeError(w, newAppError(err.Error()))
		return
	}

	resp, err := s.engine.CreateMultisigAccount(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, newCreateMultisigAccountResponsePayload(s.networkID, resp.Account()))
}

func (s *Server) handleProposeMultisigTx(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var payload proposeMultisigTxRequestPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	accountAddress, err := decodeAddressField(s.networkID, "multisig_account_address", payload.MultisigAccountAddress)
	if err != nil {
		writeError(w, err)
		return
	}
	txRequest, err := decodeB64("tx_request", payload.TxRequest)
	if err != nil {
		writeError(w, err)
		return
	}

	req, err := request.NewProposeMultisigTx(accountAddress, txRequest)
	if err != nil {
		writeError(w, newAppError(err.Error()))
		return
	}

	resp, err := s.engine.ProposeMultisigTx(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, &proposeMultisigTxResponsePayload{
		TxID:      resp.TxID().String(),
		TxSummary: encodeB64(resp.TxSummary()),
	})
}

func (s *Server) handleAddSignature(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var payload addSignatureRequestPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	txID, err := parseTxID(payload.TxID)
	if err != nil {
		writeError(w, err)
		return
	}
	approver, err := decodeAddressField(s.networkID, "approver", payload.Approver)
	if err != nil {
		writeError(w, err)
		return
	}
	signature, err := decodeB64("signature", payload.Signature)
	if err != nil {
		writeError(w, err)
		return
	}

	req, err := request.NewAddSignature(txID, approver, signature)
	if err != nil {
		writeError(w, newAppError(err.Error()))
		return
	}

	resp, err := s.engine.AddSignature(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, newAddSignatureResponsePayload(resp.TxResult()))
}

func (s *Server) handleListConsumableNotes(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var payload listConsumableNotesRequestPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	var account *domain.AccountAddress
	if payload.Address != nil {
		addr, err := decodeAddressField(s.networkID, "address", *payload.Address)
		if err != nil {
			writeError(w, err)
			return
		}
		account = &addr
	}

	notes, err := s.engine.GetConsumableNotes(account)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, newListConsumableNotesResponsePayload(notes))
}

func (s *Server) handleGetMultisigAccountDetails(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var payload multisigAccountDetailsRequestPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	address, err := decodeAddressField(s.networkID, "multisig_account_address", payload.MultisigAccountAddress)
	if err != nil {
		writeError(w, err)
		return
	}

	account, err := s.engine.GetMultisigAccount(r.Context(), address)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, newGetMultisigAccountDetailsResponsePayload(s.networkID, account))
}

func (s *Server) handleListMultisigApprovers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var payload multisigAccountDetailsRequestPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	address, err := decodeAddressField(s.networkID, "multisig_account_address", payload.MultisigAccountAddress)
	if err != nil {
		writeError(w, err)
		return
	}

	approvers, err := s.engine.ListMultisigApprovers(r.Context(), address)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, newListMultisigApproverResponsePayload(s.networkID, approvers))
}

func (s *Server) handleGetMultisigTxStats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var payload multisigAccountDetailsRequestPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	address, err := decodeAddressField(s.networkID, "multisig_account_address", payload.MultisigAccountAddress)
	if err != nil {
		writeError(w, err)
		return
	}

	stats, err := s.engine.GetMultisigTxStats(r.Context(), address)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, newGetMultisigTxStatsResponsePayload(stats))
}

func (s *Server) handleListMultisigTx(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var payload listMultisigTxRequestPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	address, err := decodeAddressField(s.networkID, "multisig_account_address", payload.MultisigAccountAddress)
	if err != nil {
		writeError(w, err)
		return
	}
	statusFilter, err := parseTxStatusFilter(payload.TxStatusFilter)
	if err != nil {
		writeError(w, err)
		return
	}

	req, err := request.NewListMultisigTx(address, statusFilter)
	if err != nil {
		writeError(w, newAppError(err.Error()))
		return
	}

	txs, err := s.engine.ListMultisigTx(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, newListMultisigTxResponsePayload(s.networkID, txs))
}
