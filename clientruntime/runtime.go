package clientruntime

import (
	"sync"

	"github.com/decred/slog"
	"github.com/go-errors/errors"
	"github.com/miden-multisig/coordinator/domain"
	"github.com/miden-multisig/coordinator/internal/rpo256"
)

// log is replaced by coordinator.SetSubLogger once the root logger is
// ready; see coordinator.AddSubLogger("RNTM", ...).
var log = slog.Disabled

// UseLogger assigns the subsystem logger used by this package.
func UseLogger(logger slog.Logger) {
	log = logger
}

func deriveWitnessKey(pubKeyCommit, txSummaryCommit [32]byte) [32]byte {
	return rpo256.Merge(pubKeyCommit, txSummaryCommit)
}

// Runtime owns a WalletClient on a single dedicated goroutine for its
// entire lifetime and serves every call to it through an unbounded,
// strictly-FIFO message queue. No other goroutine may touch the
// WalletClient directly.
type Runtime struct {
	newWallet func() (WalletClient, error)

	queue *unboundedQueue

	wg      sync.WaitGroup
	started bool
	mu      sync.Mutex
}

// New constructs a Runtime around a factory that creates the WalletClient.
// The factory is invoked from inside the worker goroutine once Start is
// called, so the WalletClient is created on, and never escapes, that
// goroutine.
func New(newWallet func() (WalletClient, error)) *Runtime {
	return &Runtime{
		newWallet: newWallet,
		queue:     newUnboundedQueue(),
	}
}

// Start spawns the single worker goroutine and blocks until the wallet
// client has been constructed, returning any construction error.
func (r *Runtime) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return errors.New("clientruntime: already started")
	}

	initErr := make(chan error, 1)
	r.wg.Add(1)
	go r.run(initErr)

	if err := <-initErr; err != nil {
		return err
	}

	r.started = true
	return nil
}

// Stop posts a Shutdown message, waits for the worker to drain it, and
// joins the worker goroutine.
func (r *Runtime) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.started {
		return
	}

	done := make(chan struct{})
	r.queue.push(&shutdownMsg{done: done})
	<-done
	r.wg.Wait()
	r.started = false
}

// run is the worker's message loop. It owns the WalletClient for its
// entire duration; nothing else may reference it.
func (r *Runtime) run(initErr chan<- error) {
	defer r.wg.Done()

	wallet, err := r.newWallet()
	if err != nil {
		initErr <- err
		return
	}
	initErr <- nil

	for {
		m := r.queue.pop()

		if shutdown, ok := m.(*shutdownMsg); ok {
			shutdown.handle(wallet)
			return
		}

		if err := wallet.SyncState(); err != nil {
			log.Errorf("clientruntime: sync state failed: %v", err)
		}

		func() {
			defer func() {
				if p := recover(); p != nil {
					log.Errorf("clientruntime: handler panicked: %v\n%s",
						p, errors.Wrap(p, 2).ErrorStack())
				}
			}()
			m.handle(wallet)
		}()
	}
}

// CreateMultisigAccount posts a CreateMultisigAccount message and blocks
// for the reply.
func (r *Runtime) CreateMultisigAccount(threshold uint32, pubKeyCommits [][32]byte) (*WalletAccount, error) {
	reply := make(chan createMultisigAccountReply, 1)
	r.queue.push(&createMultisigAccountMsg{
		threshold:     threshold,
		pubKeyCommits: pubKeyCommits,
		reply:         reply,
	})
	rep := <-reply
	return rep.account, rep.err
}

// GetConsumableNotes posts a GetConsumableNotes message and blocks for the
// reply. A nil account lists notes across every account the wallet knows
// about.
func (r *Runtime) GetConsumableNotes(account *domain.AccountAddress) ([]ConsumableNote, error) {
	reply := make(chan getConsumableNotesReply, 1)
	r.queue.push(&getConsumableNotesMsg{
		account: account,
		reply:   reply,
	})
	rep := <-reply
	return rep.notes, rep.err
}

// ProposeMultisigTx posts a ProposeMultisigTx message and blocks for the
// reply. On success it returns the transaction summary approvers must
// sign, recovered from the SDK's expected ErrUnauthorized dry-run outcome.
func (r *Runtime) ProposeMultisigTx(account domain.AccountAddress, txRequest []byte) ([]byte, error) {
	reply := make(chan proposeMultisigTxReply, 1)
	r.queue.push(&proposeMultisigTxMsg{
		account:   account,
		txRequest: txRequest,
		reply:     reply,
	})
	rep := <-reply
	return rep.txSummary, rep.err
}

// ProcessMultisigTx posts a ProcessMultisigTx message and blocks for the
// reply. signatures must be an ordered, positionally-aligned slice of
// length N (the account's approver count), with nil at positions that have
// not yet signed.
func (r *Runtime) ProcessMultisigTx(
	account domain.AccountAddress,
	txRequest []byte,
	txSummary []byte,
	txSummaryCommit [32]byte,
	signatures []*Signature,
) ([]byte, error) {
	reply := make(chan processMultisigTxReply, 1)
	r.queue.push(&processMultisigTxMsg{
		account:         account,
		txRequest:       txRequest,
		txSummary:       txSummary,
		txSummaryCommit: txSummaryCommit,
		signatures:      signatures,
		reply:           reply,
	})
	rep := <-reply
	return rep.txResult, rep.err
}

// unboundedQueue is a strictly FIFO, growable queue used to back the
// runtime's message channel. Callers never block on push; pop blocks until
// an item is available. This keeps request workers from ever stalling on
// handing work to the single SDK worker, per the runtime's backpressure
// policy (the database pool is the only throttle in the system).
type unboundedQueue struct {
	mu     sync.Mutex
	notify chan struct{}
	buf    []message
}

func newUnboundedQueue() *unboundedQueue {
	return &unboundedQueue{
		notify: make(chan struct{}, 1),
	}
}

func (q *unboundedQueue) push(m message) {
	q.mu.Lock()
	q.buf = append(q.buf, m)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

func (q *unboundedQueue) pop() message {
	for {
		q.mu.Lock()
		if len(q.buf) > 0 {
			m := q.buf[0]
			q.buf = q.buf[1:]
			q.mu.Unlock()
			return m
		}
		q.mu.Unlock()

		<-q.notify
	}
}
