package engine_test

import (
	"context"
	"sync"
	"testing"

	"github.com/miden-multisig/coordinator/clientruntime"
	"github.com/miden-multisig/coordinator/domain"
	"github.com/miden-multisig/coordinator/engine"
	"github.com/miden-multisig/coordinator/engine/request"
	"github.com/miden-multisig/coordinator/internal/fakestore"
	"github.com/miden-multisig/coordinator/internal/mockwallet"
)

// engineHarness wires a fresh Engine around a fake store and a fresh
// mockwallet, mirroring the clientruntime package's runtimeHarness.
type engineHarness struct {
	t      *testing.T
	eng    *engine.Engine
	wallet *mockwallet.Wallet
	store  *fakestore.Store
}

func newEngineHarness(t *testing.T) *engineHarness {
	t.Helper()

	wallet := mockwallet.New()
	st := fakestore.New()
	eng := engine.New(engine.Config{
		NetworkID: "midendev",
		Store:     st,
		NewWallet: func() (clientruntime.WalletClient, error) {
			return wallet, nil
		},
	})

	if err := eng.Start(); err != nil {
		t.Fatalf("unable to start engine: %v", err)
	}
	t.Cleanup(eng.Stop)

	return &engineHarness{t: t, eng: eng, wallet: wallet, store: st}
}

func (h *engineHarness) createAccount(threshold uint32, numApprovers int) (domain.AccountAddress, []domain.AccountAddress) {
	h.t.Helper()

	approvers := make([]domain.AccountAddress, numApprovers)
	commits := make([][32]byte, numApprovers)
	for i := range approvers {
		approvers[i] = domain.AccountAddress([]byte{byte(i + 1)})
		commits[i] = [32]byte{byte(i + 1)}
	}

	req, err := request.NewCreateMultisigAccount(threshold, approvers, commits)
	if err != nil {
		h.t.Fatalf("unable to build create account request: %v", err)
	}

	resp, err := h.eng.CreateMultisigAccount(context.Background(), req)
	if err != nil {
		h.t.Fatalf("unable to create account: %v", err)
	}
	return resp.Account().Address, approvers
}

// TestEngineCreateMultisigAccountValidatesThreshold asserts P1: threshold
// outside [1, N] is rejected before the runtime or store are ever touched.
func TestEngineCreateMultisigAccountValidatesThreshold(t *testing.T) {
	approvers := []domain.AccountAddress{{1}, {2}}
	commits := [][32]byte{{1}, {2}}

	if _, err := request.NewCreateMultisigAccount(0, approvers, commits); err == nil {
		t.Fatalf("expected error for zero threshold")
	}
	if _, err := request.NewCreateMultisigAccount(3, approvers, commits); err == nil {
		t.Fatalf("expected error for threshold exceeding approver count")
	}
}

// TestEngineProposeAndAddSignatureHappyPath walks scenario S2: propose,
// then add signatures until threshold is met, observing tx_result only on
// the threshold-meeting call.
func TestEngineProposeAndAddSignatureHappyPath(t *testing.T) {
	h := newEngineHarness(t)
	address, approvers := h.createAccount(2, 3)

	proposeReq, err := request.NewProposeMultisigTx(address, []byte("tx-request"))
	if err != nil {
		t.Fatalf("unable to build propose request: %v", err)
	}
	proposeResp, err := h.eng.ProposeMultisigTx(context.Background(), proposeReq)
	if err != nil {
		t.Fatalf("unable to propose tx: %v", err)
	}

	tx, err := h.eng.ListMultisigTx(context.Background(), &request.ListMultisigTx{AccountAddress: address})
	if err != nil {
		t.Fatalf("unable to list tx: %v", err)
	}
	if len(tx) != 1 || tx[0].Status != domain.MultisigTxStatusPending {
		t.Fatalf("expected one pending tx, got %+v", tx)
	}

	sig1Req, err := request.NewAddSignature(proposeResp.TxID(), approvers[0], []byte("sig0"))
	if err != nil {
		t.Fatalf("unable to build add signature request: %v", err)
	}
	resp1, err := h.eng.AddSignature(context.Background(), sig1Req)
	if err != nil {
		t.Fatalf("unable to add first signature: %v", err)
	}
	if resp1.TxResult() != nil {
		t.Fatalf("expected nil tx result before threshold met")
	}

	sig2Req, err := request.NewAddSignature(proposeResp.TxID(), approvers[2], []byte("sig2"))
	if err != nil {
		t.Fatalf("unable to build add signature request: %v", err)
	}
	resp2, err := h.eng.AddSignature(context.Background(), sig2Req)
	if err != nil {
		t.Fatalf("unable to add second signature: %v", err)
	}
	if resp2.TxResult() == nil {
		t.Fatalf("expected non-nil tx result once threshold met")
	}
}

// TestEngineAddSignatureUnauthorized asserts P2/S4: a non-approver address
// yields an unauthorized kind error and inserts nothing.
func TestEngineAddSignatureUnauthorized(t *testing.T) {
	h := newEngineHarness(t)
	address, _ := h.createAccount(1, 2)

	proposeReq, _ := request.NewProposeMultisigTx(address, []byte("tx-request"))
	proposeResp, err := h.eng.ProposeMultisigTx(context.Background(), proposeReq)
	if err != nil {
		t.Fatalf("unable to propose tx: %v", err)
	}

	stranger := domain.AccountAddress([]byte{0xFF})
	sigReq, err := request.NewAddSignature(proposeResp.TxID(), stranger, []byte("sig"))
	if err != nil {
		t.Fatalf("unable to build request: %v", err)
	}

	_, err = h.eng.AddSignature(context.Background(), sigReq)
	if err == nil {
		t.Fatalf("expected error for unauthorized approver")
	}
	engErr, ok := err.(*engine.EngineError)
	if !ok || engErr.Kind != engine.KindUnauthorizedApprover {
		t.Fatalf("expected KindUnauthorizedApprover, got %v", err)
	}
}

// TestEngineProcessFailureMarksTerminal asserts S3 and the preserved quirk
// from spec.md §9: a failing ProcessMultisigTx both returns an error and
// leaves the transaction at a terminal failure status.
func TestEngineProcessFailureMarksTerminal(t *testing.T) {
	h := newEngineHarness(t)
	address, approvers := h.createAccount(1, 1)

	txRequest := []byte("doomed-tx-request")
	h.wallet.TxRequestsToReject[string(txRequest)] = true

	proposeReq, _ := request.NewProposeMultisigTx(address, txRequest)
	proposeResp, err := h.eng.ProposeMultisigTx(context.Background(), proposeReq)
	if err != nil {
		t.Fatalf("unable to propose tx: %v", err)
	}

	sigReq, _ := request.NewAddSignature(proposeResp.TxID(), approvers[0], []byte("sig"))
	_, err = h.eng.AddSignature(context.Background(), sigReq)
	if err == nil {
		t.Fatalf("expected error from doomed transaction")
	}
	engErr, ok := err.(*engine.EngineError)
	if !ok || engErr.Kind != engine.KindProcessMultisigTx {
		t.Fatalf("expected KindProcessMultisigTx, got %v", err)
	}

	stored, err := h.eng.ListMultisigTx(context.Background(), &request.ListMultisigTx{AccountAddress: address})
	if err != nil {
		t.Fatalf("unable to list tx: %v", err)
	}
	if len(stored) != 1 || stored[0].Status != domain.MultisigTxStatusFailure {
		t.Fatalf("expected terminal failure status, got %+v", stored)
	}
}

// TestEngineAddSignatureConcurrentExactlyOneThresholdMet asserts P4/S5:
// given T valid signatures submitted concurrently, exactly one caller
// observes a non-nil tx result.
func TestEngineAddSignatureConcurrentExactlyOneThresholdMet(t *testing.T) {
	h := newEngineHarness(t)
	address, approvers := h.createAccount(2, 3)

	proposeReq, _ := request.NewProposeMultisigTx(address, []byte("tx-request"))
	proposeResp, err := h.eng.ProposeMultisigTx(context.Background(), proposeReq)
	if err != nil {
		t.Fatalf("unable to propose tx: %v", err)
	}

	var wg sync.WaitGroup
	results := make([][]byte, len(approvers))
	errs := make([]error, len(approvers))

	for i, approver := range approvers {
		wg.Add(1)
		go func(i int, approver domain.AccountAddress) {
			defer wg.Done()
			sigReq, err := request.NewAddSignature(proposeResp.TxID(), approver, []byte("sig"))
			if err != nil {
				errs[i] = err
				return
			}
			resp, err := h.eng.AddSignature(context.Background(), sigReq)
			if err != nil {
				errs[i] = err
				return
			}
			results[i] = resp.TxResult()
		}(i, approver)
	}
	wg.Wait()

	nonNil := 0
	for i, r := range results {
		if errs[i] != nil {
			continue
		}
		if r != nil {
			nonNil++
		}
	}
	if nonNil != 1 {
		t.Fatalf("expected exactly one non-nil tx result, got %d", nonNil)
	}
}

// TestEngineAddSignatureAfterTerminalRejected asserts P6/S2: once a tx has
// already reached a terminal status, a signature from an approver who
// never signed is rejected rather than silently re-driving
// ProcessMultisigTx and overwriting the terminal status.
func TestEngineAddSignatureAfterTerminalRejected(t *testing.T) {
	h := newEngineHarness(t)
	address, approvers := h.createAccount(1, 2)

	proposeReq, _ := request.NewProposeMultisigTx(address, []byte("tx-request"))
	proposeResp, err := h.eng.ProposeMultisigTx(context.Background(), proposeReq)
	if err != nil {
		t.Fatalf("unable to propose tx: %v", err)
	}

	sig0Req, _ := request.NewAddSignature(proposeResp.TxID(), approvers[0], []byte("sig0"))
	resp0, err := h.eng.AddSignature(context.Background(), sig0Req)
	if err != nil {
		t.Fatalf("unable to add first signature: %v", err)
	}
	if resp0.TxResult() == nil {
		t.Fatalf("expected threshold met and tx driven to a terminal status")
	}

	sig1Req, _ := request.NewAddSignature(proposeResp.TxID(), approvers[1], []byte("sig1"))
	_, err = h.eng.AddSignature(context.Background(), sig1Req)
	if err == nil {
		t.Fatalf("expected error submitting a signature against an already-terminal tx")
	}
	engErr, ok := err.(*engine.EngineError)
	if !ok || engErr.Kind != engine.KindTxAlreadyTerminal {
		t.Fatalf("expected KindTxAlreadyTerminal, got %v", err)
	}

	stored, err := h.eng.ListMultisigTx(context.Background(), &request.ListMultisigTx{AccountAddress: address})
	if err != nil {
		t.Fatalf("unable to list tx: %v", err)
	}
	if len(stored) != 1 || stored[0].Status != domain.MultisigTxStatusSuccess {
		t.Fatalf("expected the tx to remain at its original terminal status, got %+v", stored)
	}
}

// TestEngineGetMultisigTxStats asserts S6-style aggregate counting.
func TestEngineGetMultisigTxStats(t *testing.T) {
	h := newEngineHarness(t)
	address, approvers := h.createAccount(1, 1)

	for i := 0; i < 3; i++ {
		proposeReq, _ := request.NewProposeMultisigTx(address, []byte{byte(i)})
		resp, err := h.eng.ProposeMultisigTx(context.Background(), proposeReq)
		if err != nil {
			t.Fatalf("unable to propose tx %d: %v", i, err)
		}
		sigReq, _ := request.NewAddSignature(resp.TxID(), approvers[0], []byte("sig"))
		if _, err := h.eng.AddSignature(context.Background(), sigReq); err != nil {
			t.Fatalf("unable to add signature %d: %v", i, err)
		}
	}

	stats, err := h.eng.GetMultisigTxStats(context.Background(), address)
	if err != nil {
		t.Fatalf("unable to get tx stats: %v", err)
	}
	if stats.Total != 3 || stats.TotalSuccess != 3 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

// TestEngineOperationsBeforeStartFail asserts operations on a stopped
// engine return ErrEngineNotStarted.
func TestEngineOperationsBeforeStartFail(t *testing.T) {
	eng := engine.New(engine.Config{
		NetworkID: "midendev",
		Store:     fakestore.New(),
		NewWallet: func() (clientruntime.WalletClient, error) {
			return mockwallet.New(), nil
		},
	})

	_, err := eng.GetMultisigAccount(context.Background(), domain.AccountAddress{1})
	if err != engine.ErrEngineNotStarted {
		t.Fatalf("expected ErrEngineNotStarted, got %v", err)
	}
}
