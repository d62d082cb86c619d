package store_test

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/miden-multisig/coordinator/domain"
	"github.com/miden-multisig/coordinator/store"
)

// storeHarness wraps a live Store under test. Every exercise requires a
// reachable Postgres instance: set MULTISIG_TEST_POSTGRES_DSN to run these
// tests, otherwise they are skipped, mirroring how the reference watchtower
// database tests are parameterized by a harness init closure.
type storeHarness struct {
	t  *testing.T
	db store.Store
}

func newStoreHarness(t *testing.T) *storeHarness {
	t.Helper()

	dsn := os.Getenv("MULTISIG_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("MULTISIG_TEST_POSTGRES_DSN not set, skipping postgres-backed test")
	}

	if err := store.RunMigrations(dsn); err != nil {
		t.Fatalf("unable to run migrations: %v", err)
	}

	pool, err := pgxpool.Connect(context.Background(), dsn)
	if err != nil {
		t.Fatalf("unable to open postgres pool: %v", err)
	}
	t.Cleanup(pool.Close)

	return &storeHarness{t: t, db: store.NewPostgresStore(pool)}
}

func (h *storeHarness) createAccount(account *domain.MultisigAccount, expErr bool) {
	h.t.Helper()

	err := h.db.CreateAccount(context.Background(), account)
	if expErr && err == nil {
		h.t.Fatalf("expected error creating account, got none")
	}
	if !expErr && err != nil {
		h.t.Fatalf("unable to create account: %v", err)
	}
}

func testAccount(t *testing.T, networkID string, threshold uint32, numApprovers int) *domain.MultisigAccount {
	t.Helper()

	approvers := make([]domain.AccountAddress, numApprovers)
	commits := make([][32]byte, numApprovers)
	for i := 0; i < numApprovers; i++ {
		approvers[i] = domain.AccountAddress([]byte{byte(i + 1), 0xAA, 0xBB, 0xCC})
		commits[i] = [32]byte{byte(i + 1)}
	}

	account, err := domain.NewMultisigAccount(
		domain.AccountAddress([]byte{0xDE, 0xAD, 0xBE, 0xEF}),
		networkID,
		domain.AccountKindPublic,
		threshold,
		approvers,
		commits,
		domain.Timestamps{},
	)
	if err != nil {
		t.Fatalf("unable to build test account: %v", err)
	}
	return account
}

// TestStoreCreateAndGetAccount exercises round-tripping an account through
// Postgres, verifying the bech32 address encoding and ordered approver
// slices survive the trip (property P1).
func TestStoreCreateAndGetAccount(t *testing.T) {
	h := newStoreHarness(t)
	account := testAccount(t, "midendev", 2, 3)
	h.createAccount(account, false)

	got, err := h.db.GetAccount(context.Background(), account.Address, account.NetworkID)
	if err != nil {
		t.Fatalf("unable to get account: %v", err)
	}
	if got.Threshold != account.Threshold {
		t.Fatalf("threshold mismatch: want %d, got %d", account.Threshold, got.Threshold)
	}
	if len(got.Approvers) != len(account.Approvers) {
		t.Fatalf("approver count mismatch: want %d, got %d",
			len(account.Approvers), len(got.Approvers))
	}
	for i := range account.Approvers {
		if string(got.Approvers[i]) != string(account.Approvers[i]) {
			t.Fatalf("approver %d mismatch: want %x, got %x",
				i, account.Approvers[i], got.Approvers[i])
		}
	}
}

// TestStoreCreateAccountDuplicate asserts a second CreateAccount for the
// same address fails rather than silently overwriting.
func TestStoreCreateAccountDuplicate(t *testing.T) {
	h := newStoreHarness(t)
	account := testAccount(t, "midendev", 1, 2)
	h.createAccount(account, false)
	h.createAccount(account, true)
}

// TestStoreAddSignatureTxUnauthorized asserts a non-approver address does
// not modify the signature table (the tri-state "None" case).
func TestStoreAddSignatureTxUnauthorized(t *testing.T) {
	h := newStoreHarness(t)
	account := testAccount(t, "midendev", 2, 2)
	h.createAccount(account, false)

	txID, err := h.db.CreateTx(
		context.Background(), account.Address, account.NetworkID,
		[]byte("request"), []byte("summary"), [32]byte{1},
	)
	if err != nil {
		t.Fatalf("unable to create tx: %v", err)
	}

	stranger := domain.AccountAddress([]byte{0xFF, 0xFF, 0xFF, 0xFF})
	authorized, thresholdMet, err := h.db.AddSignatureTx(context.Background(), txID, stranger, []byte("sig"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if authorized {
		t.Fatalf("expected stranger address to be unauthorized")
	}
	if thresholdMet {
		t.Fatalf("threshold should never be met by an unauthorized signer")
	}
}

// TestStoreAddSignatureTxThresholdMet walks a 2-of-3 account's signatures in
// one at a time and asserts thresholdMet flips true on exactly the
// threshold-th insert (property P5/P6).
func TestStoreAddSignatureTxThresholdMet(t *testing.T) {
	h := newStoreHarness(t)
	account := testAccount(t, "midendev", 2, 3)
	h.createAccount(account, false)

	txID, err := h.db.CreateTx(
		context.Background(), account.Address, account.NetworkID,
		[]byte("request"), []byte("summary"), [32]byte{2},
	)
	if err != nil {
		t.Fatalf("unable to create tx: %v", err)
	}

	for i, approver := range account.Approvers {
		_, thresholdMet, err := h.db.AddSignatureTx(context.Background(), txID, approver, []byte("sig"))
		if err != nil {
			t.Fatalf("unable to add signature %d: %v", i, err)
		}
		switch {
		case i < 1 && thresholdMet:
			t.Fatalf("threshold met too early at signature %d", i)
		case i == 1 && !thresholdMet:
			t.Fatalf("threshold should be met at signature %d", i)
		}
	}
}

// TestStoreAddSignatureTxAfterTerminalRejected asserts P6/S2: once a tx has
// reached a terminal status, neither AddSignatureTx nor UpdateStatus will
// write to it again.
func TestStoreAddSignatureTxAfterTerminalRejected(t *testing.T) {
	h := newStoreHarness(t)
	account := testAccount(t, "midendev", 1, 2)
	h.createAccount(account, false)

	txID, err := h.db.CreateTx(
		context.Background(), account.Address, account.NetworkID,
		[]byte("request"), []byte("summary"), [32]byte{2},
	)
	if err != nil {
		t.Fatalf("unable to create tx: %v", err)
	}

	if _, thresholdMet, err := h.db.AddSignatureTx(context.Background(), txID, account.Approvers[0], []byte("sig0")); err != nil || !thresholdMet {
		t.Fatalf("unable to reach threshold: thresholdMet=%v err=%v", thresholdMet, err)
	}
	if err := h.db.UpdateStatus(context.Background(), txID, domain.MultisigTxStatusSuccess); err != nil {
		t.Fatalf("unable to mark tx terminal: %v", err)
	}

	_, _, err = h.db.AddSignatureTx(context.Background(), txID, account.Approvers[1], []byte("sig1"))
	if err == nil {
		t.Fatalf("expected error adding a signature to an already-terminal tx")
	}
	var storeErr *store.StoreError
	if se, ok := err.(*store.StoreError); ok {
		storeErr = se
	}
	if storeErr == nil || storeErr.Kind != store.KindTxNotPending {
		t.Fatalf("expected KindTxNotPending, got %v", err)
	}

	if err := h.db.UpdateStatus(context.Background(), txID, domain.MultisigTxStatusFailure); err == nil {
		t.Fatalf("expected error re-transitioning an already-terminal tx")
	} else if se, ok := err.(*store.StoreError); !ok || se.Kind != store.KindTxNotPending {
		t.Fatalf("expected KindTxNotPending, got %v", err)
	}
}

// TestStoreUpdateStatusNotFound asserts UpdateStatus on an unknown id
// surfaces KindNotFound.
func TestStoreUpdateStatusNotFound(t *testing.T) {
	h := newStoreHarness(t)
	err := h.db.UpdateStatus(context.Background(), domain.NewMultisigTxId(), domain.MultisigTxStatusSuccess)
	if err == nil {
		t.Fatalf("expected not found error")
	}
	var storeErr *store.StoreError
	if se, ok := err.(*store.StoreError); ok {
		storeErr = se
	}
	if storeErr == nil || storeErr.Kind != store.KindNotFound {
		t.Fatalf("expected KindNotFound, got %v", err)
	}
}
