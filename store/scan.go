package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/miden-multisig/coordinator/domain"
)

// rowScanner is satisfied by both pgx.Row and pgx.Rows, letting the tx
// scan helpers below work against either a single QueryRow result or a
// Query cursor.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanTx scans a tx row whose last column is its signature count.
func scanTx(row rowScanner) (*domain.MultisigTx, error) {
	var (
		id              string
		addrText        string
		statusStr       string
		txRequest       []byte
		txSummary       []byte
		txSummaryCommit []byte
		createdAt       time.Time
		updatedAt       time.Time
		signatureCount  int64
	)
	if err := row.Scan(
		&id, &addrText, &statusStr, &txRequest, &txSummary,
		&txSummaryCommit, &createdAt, &updatedAt, &signatureCount,
	); err != nil {
		return nil, err
	}
	return buildMultisigTx(id, addrText, statusStr, txRequest, txSummary, txSummaryCommit, createdAt, updatedAt, signatureCount)
}

// scanTxRow is an alias kept distinct from scanTx for call-site clarity
// when scanning from a multi-row cursor in a loop.
func scanTxRow(rows rowScanner) (*domain.MultisigTx, error) {
	return scanTx(rows)
}

func buildMultisigTx(
	id string, addrText, statusStr string, txRequest, txSummary, txSummaryCommit []byte,
	createdAt, updatedAt time.Time, signatureCount int64,
) (*domain.MultisigTx, error) {
	txID, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	networkID, raw, err := splitBech32HRP(addrText)
	if err != nil {
		return nil, err
	}
	status, err := domain.ParseMultisigTxStatus(statusStr)
	if err != nil {
		return nil, err
	}

	var commitArr [32]byte
	copy(commitArr[:], txSummaryCommit)

	return &domain.MultisigTx{
		Id:              domain.MultisigTxIdFromUUID(txID),
		AccountAddress:  raw,
		NetworkID:       networkID,
		Status:          status,
		TxRequest:       txRequest,
		TxSummary:       txSummary,
		TxSummaryCommit: commitArr,
		SignatureCount:  uint32(signatureCount),
		Aux:             domain.Timestamps{CreatedAt: createdAt, UpdatedAt: updatedAt},
	}, nil
}

// scanTxWithSignatures scans a tx row plus its ordered, nullable signature
// byte array, as produced by LoadOrderedSignaturesAndTx's aggregate query.
func scanTxWithSignatures(row rowScanner) ([][]byte, *domain.MultisigTx, error) {
	var (
		id              string
		addrText        string
		statusStr       string
		txRequest       []byte
		txSummary       []byte
		txSummaryCommit []byte
		createdAt       time.Time
		updatedAt       time.Time
		signatures      [][]byte
	)
	if err := row.Scan(
		&id, &addrText, &statusStr, &txRequest, &txSummary,
		&txSummaryCommit, &createdAt, &updatedAt, &signatures,
	); err != nil {
		return nil, nil, err
	}

	record, err := buildMultisigTx(id, addrText, statusStr, txRequest, txSummary, txSummaryCommit, createdAt, updatedAt, int64(countNonNil(signatures)))
	if err != nil {
		return nil, nil, err
	}
	return signatures, record, nil
}

func countNonNil(sigs [][]byte) int {
	n := 0
	for _, s := range sigs {
		if s != nil {
			n++
		}
	}
	return n
}
