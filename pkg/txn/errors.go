package txn

import "errors"

var (
	// ErrUnknownTx is returned when a command names a transaction that was
	// never begun.
	ErrUnknownTx = errors.New("txn: unknown transaction")

	// ErrNotActive is returned when an operation requires an active
	// transaction but the transaction has already committed or aborted.
	ErrNotActive = errors.New("txn: transaction is not active")

	// ErrAlreadyExists is returned by begin(T) when T is already in flight.
	ErrAlreadyExists = errors.New("txn: transaction already active")
)
