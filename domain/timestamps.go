// Package domain defines the value types shared by the store, engine, and
// client runtime: multisig accounts, approvers, transactions, and the
// status enum that drives the transaction state machine.
package domain

import "time"

// Timestamps carries the creation and last-update instants common to every
// persisted entity. It is attached as auxiliary metadata rather than
// embedded directly, mirroring the generic AUX parameter used throughout
// the reference domain model.
type Timestamps struct {
	CreatedAt time.Time
	UpdatedAt time.Time
}
