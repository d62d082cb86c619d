package clientruntime_test

import (
	"testing"

	"github.com/miden-multisig/coordinator/clientruntime"
	"github.com/miden-multisig/coordinator/internal/mockwallet"
	"github.com/miden-multisig/coordinator/internal/rpo256"
	"github.com/stretchr/testify/require"
)

// runtimeHarness wires a Runtime to a mockwallet.Wallet and exposes both
// for assertions, following the harness-struct idiom used by the
// reference repository's storage tests.
type runtimeHarness struct {
	t      *testing.T
	rt     *clientruntime.Runtime
	wallet *mockwallet.Wallet
}

func newRuntimeHarness(t *testing.T) *runtimeHarness {
	t.Helper()

	wallet := mockwallet.New()
	rt := clientruntime.New(func() (clientruntime.WalletClient, error) {
		return wallet, nil
	})
	require.NoError(t, rt.Start())

	h := &runtimeHarness{t: t, rt: rt, wallet: wallet}
	t.Cleanup(func() { rt.Stop() })
	return h
}

func TestRuntimeCreateMultisigAccount(t *testing.T) {
	h := newRuntimeHarness(t)

	commits := [][32]byte{{1}, {2}, {3}}
	account, err := h.rt.CreateMultisigAccount(2, commits)
	require.NoError(t, err)
	require.NotNil(t, account)
	require.NotEmpty(t, account.Address)
}

// TestRuntimeProposeDryRun exercises the dry-run idiom (§4.1): the wallet
// is expected to fail with ErrUnauthorized, and the runtime must surface
// the carried transaction summary as a success value, not an error.
func TestRuntimeProposeDryRun(t *testing.T) {
	h := newRuntimeHarness(t)

	account, err := h.rt.CreateMultisigAccount(1, [][32]byte{{9}})
	require.NoError(t, err)

	summary, err := h.rt.ProposeMultisigTx(account.Address, []byte("tx-request"))
	require.NoError(t, err)
	require.Contains(t, string(summary), "tx-request")
}

// TestRuntimeFIFOOrdering is property P8: two messages submitted in order
// m1, m2 are observed by the SDK in order m1, m2.
func TestRuntimeFIFOOrdering(t *testing.T) {
	h := newRuntimeHarness(t)

	account, err := h.rt.CreateMultisigAccount(1, [][32]byte{{1}})
	require.NoError(t, err)

	_, _ = h.rt.ProposeMultisigTx(account.Address, []byte("first"))
	_, _ = h.rt.ProposeMultisigTx(account.Address, []byte("second"))

	var proposeCalls []int
	for i, call := range h.wallet.Observed {
		if call == "ProposeMultisigTransaction" {
			proposeCalls = append(proposeCalls, i)
		}
	}
	require.Len(t, proposeCalls, 2)
	require.Less(t, proposeCalls[0], proposeCalls[1])
}

// TestRuntimeProcessMultisigTxWitnessDerivation is property P9: the advice
// map entries presented to the SDK carry the expected witness keys, one
// per signed position, in approver-index order.
func TestRuntimeProcessMultisigTxWitnessDerivation(t *testing.T) {
	h := newRuntimeHarness(t)

	commits := [][32]byte{{0xaa}, {0xbb}, {0xcc}}
	account, err := h.rt.CreateMultisigAccount(2, commits)
	require.NoError(t, err)

	summaryCommit := [32]byte{0xde}
	sigs := []*clientruntime.Signature{
		{ApproverIndex: 0, Bytes: []byte("sig-0")},
		nil,
		{ApproverIndex: 2, Bytes: []byte("sig-2")},
	}

	result, err := h.rt.ProcessMultisigTx(
		account.Address, []byte("tx-request"), []byte("tx-summary"),
		summaryCommit, sigs,
	)
	require.NoError(t, err)
	require.Contains(t, string(result), "tx-summary")

	require.Len(t, h.wallet.AdviceMap, 2)
	require.Equal(t, rpo256.Merge([32]byte{0xaa}, summaryCommit), h.wallet.AdviceMap[0].WitnessKey)
	require.Equal(t, []byte("sig-0"), h.wallet.AdviceMap[0].Signature)
	require.Equal(t, rpo256.Merge([32]byte{0xcc}, summaryCommit), h.wallet.AdviceMap[1].WitnessKey)
	require.Equal(t, []byte("sig-2"), h.wallet.AdviceMap[1].Signature)
}

func TestRuntimeProcessMultisigTxLengthMismatch(t *testing.T) {
	h := newRuntimeHarness(t)

	account, err := h.rt.CreateMultisigAccount(1, [][32]byte{{1}, {2}})
	require.NoError(t, err)

	_, err = h.rt.ProcessMultisigTx(
		account.Address, nil, nil, [32]byte{},
		[]*clientruntime.Signature{{ApproverIndex: 0, Bytes: []byte("x")}},
	)
	require.Error(t, err)
	var mismatch *clientruntime.ErrNumSignaturesMismatch
	require.ErrorAs(t, err, &mismatch)
}
