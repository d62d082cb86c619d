package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/decred/dcrd/bech32"
	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/miden-multisig/coordinator/domain"
)

// PostgresStore is the Postgres-backed implementation of Store. It holds
// no mutable state of its own beyond the connection pool: every guarantee
// (uniqueness, atomic recount, row ordering) is delegated to the database.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an already-configured connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) CreateAccount(ctx context.Context, account *domain.MultisigAccount) error {
	if int(account.Threshold) > len(account.Approvers) {
		return newStoreErr(KindInvalidValue, "threshold exceeds approver count", nil)
	}

	addrText, err := EncodeAddress(account.NetworkID, account.Address)
	if err != nil {
		return newStoreErr(KindValidation, "encode account address", err)
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return wrapPoolErr(err)
	}
	defer tx.Rollback(ctx)

	var createdAt time.Time
	err = tx.QueryRow(ctx,
		`INSERT INTO multisig_account (address, kind, threshold, created_at, updated_at)
		 VALUES ($1, $2, $3, now(), now())
		 RETURNING created_at`,
		addrText, account.Kind.String(), account.Threshold,
	).Scan(&createdAt)
	if err != nil {
		if isUniqueViolation(err) {
			return newStoreErr(KindStore, "account already exists", err)
		}
		return newStoreErr(KindStore, "insert account", err)
	}

	for i, approverAddr := range account.Approvers {
		approverText, err := EncodeAddress(account.NetworkID, approverAddr)
		if err != nil {
			return newStoreErr(KindValidation, "encode approver address", err)
		}
		commit := account.PubKeyCommits[i]

		_, err = tx.Exec(ctx,
			`INSERT INTO approver (address, pub_key_commit, created_at, updated_at)
			 VALUES ($1, $2, now(), now())
			 ON CONFLICT (address) DO UPDATE
			   SET pub_key_commit = EXCLUDED.pub_key_commit, updated_at = now()`,
			approverText, commit[:],
		)
		if err != nil {
			return newStoreErr(KindStore, "upsert approver", err)
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO multisig_account_approver_mapping
			   (multisig_account_address, approver_address, approver_index)
			 VALUES ($1, $2, $3)`,
			addrText, approverText, i,
		)
		if err != nil {
			return newStoreErr(KindStore, "insert account/approver mapping", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return newStoreErr(KindStore, "commit create account", err)
	}

	account.Aux.CreatedAt = createdAt
	account.Aux.UpdatedAt = createdAt
	return nil
}

func (s *PostgresStore) CreateTx(
	ctx context.Context,
	accountAddress domain.AccountAddress,
	networkID string,
	txRequest, txSummary []byte,
	txSummaryCommit [32]byte,
) (domain.MultisigTxId, error) {
	addrText, err := EncodeAddress(networkID, accountAddress)
	if err != nil {
		return domain.MultisigTxId{}, newStoreErr(KindValidation, "encode account address", err)
	}

	var id string
	err = s.pool.QueryRow(ctx,
		`INSERT INTO tx (id, multisig_account_address, status, tx_request, tx_summary,
		                 tx_summary_commit, created_at, updated_at)
		 VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, now(), now())
		 RETURNING id`,
		addrText, domain.MultisigTxStatusPending.String(), txRequest, txSummary, txSummaryCommit[:],
	).Scan(&id)
	if err != nil {
		return domain.MultisigTxId{}, newStoreErr(KindStore, "insert tx", err)
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return domain.MultisigTxId{}, newStoreErr(KindSerialization, "parse generated tx id", err)
	}
	return domain.MultisigTxIdFromUUID(parsed), nil
}

func (s *PostgresStore) AddSignatureTx(
	ctx context.Context,
	txID domain.MultisigTxId,
	approver domain.AccountAddress,
	signature []byte,
) (authorized bool, thresholdMet bool, err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return false, false, wrapPoolErr(err)
	}
	defer tx.Rollback(ctx)

	// Resolve the transaction's account and the approver's bech32 text
	// form so the precondition check below can compare against the
	// same encoded representation stored in the mapping table. FOR
	// UPDATE locks the row for the remainder of this transaction so a
	// concurrent AddSignatureTx or UpdateStatus against the same tx
	// serializes behind this one rather than racing the status check.
	var accountAddrText, networkID, status string
	err = tx.QueryRow(ctx,
		`SELECT multisig_account_address, status FROM tx WHERE id = $1 FOR UPDATE`, txID.UUID(),
	).Scan(&accountAddrText, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, false, newStoreErr(KindNotFound, "transaction not found", err)
	}
	if err != nil {
		return false, false, newStoreErr(KindStore, "load tx for signature", err)
	}
	networkID, _, err = splitBech32HRP(accountAddrText)
	if err != nil {
		return false, false, newStoreErr(KindSerialization, "decode account address", err)
	}

	approverText, err := EncodeAddress(networkID, approver)
	if err != nil {
		return false, false, newStoreErr(KindValidation, "encode approver address", err)
	}

	// Precondition: the approver must be joined to this transaction's
	// account. This is the tri-state "None" case from the reference
	// store — report unauthorized without touching the signature table.
	var joined bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM multisig_account_approver_mapping
		   WHERE multisig_account_address = $1 AND approver_address = $2
		 )`,
		accountAddrText, approverText,
	).Scan(&joined)
	if err != nil {
		return false, false, newStoreErr(KindStore, "check approver membership", err)
	}
	if !joined {
		return false, false, nil
	}

	// Exactly one terminal transition is permitted per transaction.
	// Once it has already gone success/failure, a signature from an
	// approver who never signed must still be rejected rather than
	// silently re-driving the state machine.
	if status != domain.MultisigTxStatusPending.String() {
		return true, false, newStoreErr(KindTxNotPending, "transaction already terminal", nil)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO signature (tx_id, approver_address, signature_bytes, created_at)
		 VALUES ($1, $2, $3, now())`,
		txID.UUID(), approverText, signature,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return true, false, newStoreErr(KindStore, "duplicate signature", err)
		}
		return true, false, newStoreErr(KindStore, "insert signature", err)
	}

	var count, threshold int
	err = tx.QueryRow(ctx,
		`SELECT
		   (SELECT count(*) FROM signature WHERE tx_id = $1),
		   (SELECT threshold FROM multisig_account WHERE address = $2)`,
		txID.UUID(), accountAddrText,
	).Scan(&count, &threshold)
	if err != nil {
		return true, false, newStoreErr(KindStore, "recount signatures", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return true, false, newStoreErr(KindStore, "commit add signature", err)
	}

	return true, count == threshold, nil
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, txID domain.MultisigTxId, status domain.MultisigTxStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE tx SET status = $1, updated_at = now() WHERE id = $2 AND status = $3`,
		status.String(), txID.UUID(), domain.MultisigTxStatusPending.String(),
	)
	if err != nil {
		return newStoreErr(KindStore, "update tx status", err)
	}
	if tag.RowsAffected() == 0 {
		// The row may not exist at all, or it may already be terminal;
		// the two are distinguishable and map to different kinds.
		var existing string
		selErr := s.pool.QueryRow(ctx, `SELECT status FROM tx WHERE id = $1`, txID.UUID()).Scan(&existing)
		if errors.Is(selErr, pgx.ErrNoRows) {
			return newStoreErr(KindNotFound, "transaction not found", nil)
		}
		if selErr != nil {
			return newStoreErr(KindStore, "update tx status", selErr)
		}
		return newStoreErr(KindTxNotPending, "transaction already terminal", nil)
	}
	return nil
}

// LoadOrderedSignaturesAndTx aggregates signature bytes ordered by
// approver_index ascending, NULL at unsigned positions, preserving the
// positional contract the client runtime requires (§4.1).
func (s *PostgresStore) LoadOrderedSignaturesAndTx(ctx context.Context, txID domain.MultisigTxId) ([][]byte, *domain.MultisigTx, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT
		   t.id, t.multisig_account_address, t.status, t.tx_request, t.tx_summary,
		   t.tx_summary_commit, t.created_at, t.updated_at,
		   (SELECT array_agg(sig.signature_bytes ORDER BY m.approver_index ASC)
		      FROM multisig_account_approver_mapping m
		      LEFT JOIN signature sig
		        ON sig.tx_id = t.id AND sig.approver_address = m.approver_address
		     WHERE m.multisig_account_address = t.multisig_account_address)
		 FROM tx t
		 WHERE t.id = $1`,
		txID.UUID(),
	)

	record, sigs, err := scanTxWithSignatures(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, newStoreErr(KindNotFound, "transaction not found", err)
	}
	if err != nil {
		return nil, nil, newStoreErr(KindStore, "load ordered signatures", err)
	}

	return sigs, record, nil
}

func (s *PostgresStore) GetAccount(ctx context.Context, address domain.AccountAddress, networkID string) (*domain.MultisigAccount, error) {
	addrText, err := EncodeAddress(networkID, address)
	if err != nil {
		return nil, newStoreErr(KindValidation, "encode account address", err)
	}

	var kindStr string
	var threshold uint32
	var createdAt, updatedAt time.Time
	err = s.pool.QueryRow(ctx,
		`SELECT kind, threshold, created_at, updated_at FROM multisig_account WHERE address = $1`,
		addrText,
	).Scan(&kindStr, &threshold, &createdAt, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, newStoreErr(KindNotFound, "account not found", err)
	}
	if err != nil {
		return nil, newStoreErr(KindStore, "load account", err)
	}

	kind, err := domain.ParseAccountKind(kindStr)
	if err != nil {
		return nil, newStoreErr(KindSerialization, "parse account kind", err)
	}

	approvers, err := s.GetApproversByAccount(ctx, address, networkID)
	if err != nil {
		return nil, err
	}
	approverAddrs := make([]domain.AccountAddress, len(approvers))
	commits := make([][32]byte, len(approvers))
	for i, a := range approvers {
		approverAddrs[i] = a.Address
		commits[i] = a.PubKeyCommit
	}

	account, err := domain.NewMultisigAccount(
		address, networkID, kind, threshold, approverAddrs, commits,
		domain.Timestamps{CreatedAt: createdAt, UpdatedAt: updatedAt},
	)
	if err != nil {
		return nil, newStoreErr(KindSerialization, "rebuild account", err)
	}
	return account, nil
}

func (s *PostgresStore) GetAllAccounts(ctx context.Context) ([]*domain.MultisigAccount, error) {
	rows, err := s.pool.Query(ctx, `SELECT address FROM multisig_account ORDER BY created_at DESC`)
	if err != nil {
		return nil, newStoreErr(KindStore, "list accounts", err)
	}
	defer rows.Close()

	var result []*domain.MultisigAccount
	for rows.Next() {
		var addrText string
		if err := rows.Scan(&addrText); err != nil {
			return nil, newStoreErr(KindStore, "scan account address", err)
		}
		networkID, raw, err := splitBech32HRP(addrText)
		if err != nil {
			return nil, newStoreErr(KindSerialization, "decode account address", err)
		}
		account, err := s.GetAccount(ctx, raw, networkID)
		if err != nil {
			return nil, err
		}
		result = append(result, account)
	}
	return result, rows.Err()
}

func (s *PostgresStore) GetApproversByAccount(ctx context.Context, address domain.AccountAddress, networkID string) ([]*domain.MultisigApprover, error) {
	addrText, err := EncodeAddress(networkID, address)
	if err != nil {
		return nil, newStoreErr(KindValidation, "encode account address", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT a.address, a.pub_key_commit, a.created_at, a.updated_at
		   FROM approver a
		   JOIN multisig_account_approver_mapping m ON m.approver_address = a.address
		  WHERE m.multisig_account_address = $1
		  ORDER BY m.approver_index ASC`,
		addrText,
	)
	if err != nil {
		return nil, newStoreErr(KindStore, "list approvers", err)
	}
	defer rows.Close()

	var result []*domain.MultisigApprover
	for rows.Next() {
		var addrText string
		var commit []byte
		var createdAt, updatedAt time.Time
		if err := rows.Scan(&addrText, &commit, &createdAt, &updatedAt); err != nil {
			return nil, newStoreErr(KindStore, "scan approver", err)
		}
		networkID, raw, err := splitBech32HRP(addrText)
		if err != nil {
			return nil, newStoreErr(KindSerialization, "decode approver address", err)
		}
		var commitArr [32]byte
		copy(commitArr[:], commit)
		result = append(result, domain.NewMultisigApprover(
			raw, networkID, commitArr, domain.Timestamps{CreatedAt: createdAt, UpdatedAt: updatedAt},
		))
	}
	return result, rows.Err()
}

func (s *PostgresStore) GetApproverByAddress(ctx context.Context, address domain.AccountAddress, networkID string) (*domain.MultisigApprover, error) {
	addrText, err := EncodeAddress(networkID, address)
	if err != nil {
		return nil, newStoreErr(KindValidation, "encode approver address", err)
	}

	var commit []byte
	var createdAt, updatedAt time.Time
	err = s.pool.QueryRow(ctx,
		`SELECT pub_key_commit, created_at, updated_at FROM approver WHERE address = $1`,
		addrText,
	).Scan(&commit, &createdAt, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, newStoreErr(KindNotFound, "approver not found", err)
	}
	if err != nil {
		return nil, newStoreErr(KindStore, "load approver", err)
	}

	var commitArr [32]byte
	copy(commitArr[:], commit)
	return domain.NewMultisigApprover(address, networkID, commitArr, domain.Timestamps{CreatedAt: createdAt, UpdatedAt: updatedAt}), nil
}

func (s *PostgresStore) GetTxByID(ctx context.Context, txID domain.MultisigTxId) (*domain.MultisigTx, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT t.id, t.multisig_account_address, t.status, t.tx_request, t.tx_summary,
		        t.tx_summary_commit, t.created_at, t.updated_at,
		        (SELECT count(*) FROM signature WHERE tx_id = t.id)
		   FROM tx t WHERE t.id = $1`,
		txID.UUID(),
	)
	record, err := scanTx(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, newStoreErr(KindNotFound, "transaction not found", err)
	}
	if err != nil {
		return nil, newStoreErr(KindStore, "load tx", err)
	}
	return record, nil
}

func (s *PostgresStore) GetTxStats(ctx context.Context, address domain.AccountAddress, networkID string) (*domain.MultisigTxStats, error) {
	addrText, err := EncodeAddress(networkID, address)
	if err != nil {
		return nil, newStoreErr(KindValidation, "encode account address", err)
	}

	var stats domain.MultisigTxStats
	err = s.pool.QueryRow(ctx,
		`SELECT
		   count(*) FILTER (WHERE true),
		   count(*) FILTER (WHERE created_at >= now() - interval '1 month'),
		   count(*) FILTER (WHERE status = 'success')
		 FROM tx
		 WHERE multisig_account_address = $1`,
		addrText,
	).Scan(&stats.Total, &stats.LastMonth, &stats.TotalSuccess)
	if err != nil {
		return nil, newStoreErr(KindStore, "load tx stats", err)
	}
	return &stats, nil
}

func (s *PostgresStore) ListTxsByAccount(ctx context.Context, address domain.AccountAddress, networkID string, filter TxStatusFilter) ([]*domain.MultisigTx, error) {
	addrText, err := EncodeAddress(networkID, address)
	if err != nil {
		return nil, newStoreErr(KindValidation, "encode account address", err)
	}

	var rows pgx.Rows
	if filter.Status != nil {
		rows, err = s.pool.Query(ctx,
			`SELECT id, multisig_account_address, status, tx_request, tx_summary,
			        tx_summary_commit, created_at, updated_at,
			        (SELECT count(*) FROM signature WHERE tx_id = tx.id)
			   FROM tx
			  WHERE multisig_account_address = $1 AND status = $2
			  ORDER BY created_at DESC`,
			addrText, filter.Status.String(),
		)
	} else {
		rows, err = s.pool.Query(ctx,
			`SELECT id, multisig_account_address, status, tx_request, tx_summary,
			        tx_summary_commit, created_at, updated_at,
			        (SELECT count(*) FROM signature WHERE tx_id = tx.id)
			   FROM tx
			  WHERE multisig_account_address = $1
			  ORDER BY created_at DESC`,
			addrText,
		)
	}
	if err != nil {
		return nil, newStoreErr(KindStore, "list txs", err)
	}
	defer rows.Close()

	var result []*domain.MultisigTx
	for rows.Next() {
		record, err := scanTxRow(rows)
		if err != nil {
			return nil, newStoreErr(KindStore, "scan tx", err)
		}
		result = append(result, record)
	}
	return result, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation
	}
	return false
}

func wrapPoolErr(err error) error {
	return newStoreErr(KindPool, "acquire pool connection", err)
}

// splitBech32HRP decodes a stored bech32 address text into its network id
// (HRP) and raw address bytes, without checking against an expected HRP —
// used when reconstructing a domain value from a row whose network id
// isn't yet known to the caller.
func splitBech32HRP(addrText string) (networkID string, raw domain.AccountAddress, err error) {
	hrp, data, err := bech32.Decode(addrText)
	if err != nil {
		return "", nil, fmt.Errorf("store: decode bech32 address: %w", err)
	}
	converted, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return "", nil, fmt.Errorf("store: convert address bits: %w", err)
	}
	return hrp, domain.AccountAddress(converted), nil
}
