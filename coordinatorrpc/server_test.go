package coordinatorrpc_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/miden-multisig/coordinator/clientruntime"
	"github.com/miden-multisig/coordinator/coordinatorrpc"
	"github.com/miden-multisig/coordinator/domain"
	"github.com/miden-multisig/coordinator/engine"
	"github.com/miden-multisig/coordinator/internal/fakestore"
	"github.com/miden-multisig/coordinator/internal/mockwallet"
	"github.com/miden-multisig/coordinator/store"
)

const testNetworkID = "midendev"

type serverHarness struct {
	t      *testing.T
	srv    *httptest.Server
	wallet *mockwallet.Wallet
}

func newServerHarness(t *testing.T) *serverHarness {
	t.Helper()

	wallet := mockwallet.New()
	eng := engine.New(engine.Config{
		NetworkID: testNetworkID,
		Store:     fakestore.New(),
		NewWallet: func() (clientruntime.WalletClient, error) {
			return wallet, nil
		},
	})
	if err := eng.Start(); err != nil {
		t.Fatalf("unable to start engine: %v", err)
	}
	t.Cleanup(eng.Stop)

	s := coordinatorrpc.NewServer(coordinatorrpc.Config{
		NetworkID:      testNetworkID,
		Engine:         eng,
		AllowedOrigins: []string{"*"},
	})

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	return &serverHarness{t: t, srv: srv, wallet: wallet}
}

func (h *serverHarness) post(path string, body interface{}) *http.Response {
	h.t.Helper()

	raw, err := json.Marshal(body)
	if err != nil {
		h.t.Fatalf("unable to marshal request body: %v", err)
	}

	resp, err := http.Post(h.srv.URL+path, "application/json", bytes.NewReader(raw))
	if err != nil {
		h.t.Fatalf("unable to POST %s: %v", path, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("unable to decode response body: %v", err)
	}
}

// TestServerHealth asserts GET /health returns 200 with no body contract.
func TestServerHealth(t *testing.T) {
	h := newServerHarness(t)

	resp, err := http.Get(h.srv.URL + "/health")
	if err != nil {
		t.Fatalf("unable to GET /health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

// TestServerCreateMultisigAccountAndDetails walks S1: create an account,
// then fetch its details and approver list.
func TestServerCreateMultisigAccountAndDetails(t *testing.T) {
	h := newServerHarness(t)

	approvers := []string{
		bech32Address(t, []byte{1, 1, 1, 1}),
		bech32Address(t, []byte{2, 2, 2, 2}),
		bech32Address(t, []byte{3, 3, 3, 3}),
	}
	pubKeyCommits := []string{
		base64.StdEncoding.EncodeToString(make([]byte, 32)),
		base64.StdEncoding.EncodeToString(make([]byte, 32)),
		base64.StdEncoding.EncodeToString(make([]byte, 32)),
	}

	resp := h.post("/api/v1/multisig-account/create", map[string]interface{}{
		"threshold":       2,
		"approvers":       approvers,
		"pub_key_commits": pubKeyCommits,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 creating account, got %d", resp.StatusCode)
	}
	var created struct {
		Address string `json:"address"`
	}
	decodeBody(t, resp, &created)
	if created.Address == "" {
		t.Fatalf("expected non-empty address")
	}

	detailsResp := h.post("/api/v1/multisig-account/details", map[string]interface{}{
		"multisig_account_address": created.Address,
	})
	if detailsResp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 fetching details, got %d", detailsResp.StatusCode)
	}
	var details struct {
		MultisigAccount struct {
			Threshold uint32 `json:"threshold"`
			Kind      string `json:"kind"`
		} `json:"multisig_account"`
	}
	decodeBody(t, detailsResp, &details)
	if details.MultisigAccount.Threshold != 2 {
		t.Fatalf("expected threshold 2, got %d", details.MultisigAccount.Threshold)
	}
	if details.MultisigAccount.Kind != "public" {
		t.Fatalf("expected kind public, got %q", details.MultisigAccount.Kind)
	}

	approversResp := h.post("/api/v1/multisig-account/approver/list", map[string]interface{}{
		"multisig_account_address": created.Address,
	})
	var approverList struct {
		Approvers []struct {
			Address string `json:"address"`
		} `json:"approvers"`
	}
	decodeBody(t, approversResp, &approverList)
	if len(approverList.Approvers) != 3 {
		t.Fatalf("expected 3 approvers, got %d", len(approverList.Approvers))
	}
}

// TestServerAddSignatureUnauthorizedReturns400 asserts S4: a non-approver
// signature submission returns 400.
func TestServerAddSignatureUnauthorizedReturns400(t *testing.T) {
	h := newServerHarness(t)

	approver := bech32Address(t, []byte{9, 9, 9, 9})
	createResp := h.post("/api/v1/multisig-account/create", map[string]interface{}{
		"threshold":       1,
		"approvers":       []string{approver},
		"pub_key_commits": []string{base64.StdEncoding.EncodeToString(make([]byte, 32))},
	})
	var created struct {
		Address string `json:"address"`
	}
	decodeBody(t, createResp, &created)

	proposeResp := h.post("/api/v1/multisig-tx/propose", map[string]interface{}{
		"multisig_account_address": created.Address,
		"tx_request":               base64.StdEncoding.EncodeToString([]byte("tx-request")),
	})
	var proposed struct {
		TxID string `json:"tx_id"`
	}
	decodeBody(t, proposeResp, &proposed)

	stranger := bech32Address(t, []byte{0xFF, 0xFF, 0xFF, 0xFF})
	sigResp := h.post("/api/v1/signature/add", map[string]interface{}{
		"tx_id":     proposed.TxID,
		"approver":  stranger,
		"signature": base64.StdEncoding.EncodeToString([]byte("sig")),
	})
	if sigResp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unauthorized approver, got %d", sigResp.StatusCode)
	}
}

// bech32Address encodes a raw address under the test network id, so
// requests look exactly like what a real client would send.
func bech32Address(t *testing.T, raw []byte) string {
	t.Helper()
	padded := make(domain.AccountAddress, 32)
	copy(padded, raw)
	encoded, err := store.EncodeAddress(testNetworkID, padded)
	if err != nil {
		t.Fatalf("unable to encode test address: %v", err)
	}
	return encoded
}
