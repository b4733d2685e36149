package domain

import "errors"

var (
	// ErrNotFound is returned when the requested resource does not exist.
	// Keeping this sentinel in domain allows adapters to map it consistently to 404/NOT_FOUND.
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidInput covers bad request input such as a stake below the DAO minimum.
	// Rejected immediately, never retried.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotAMember is returned when the caller lacks an active membership in the DAO.
	ErrNotAMember = errors.New("not a dao member")
	// ErrProposalClosed is returned when a vote arrives after the voting window
	// or the proposal already left the active state.
	ErrProposalClosed = errors.New("proposal closed")
	// ErrInvalidTransition is returned for illegal lifecycle moves, e.g. executing
	// a proposal that never passed. The call is a no-op.
	ErrInvalidTransition = errors.New("invalid state transition")
	// ErrModeratorUnavailable is returned for purchases against a moderator that
	// is not in the active state.
	ErrModeratorUnavailable = errors.New("moderator unavailable")
	// ErrAlreadyOwner rejects a buyout by the moderator's current owner.
	ErrAlreadyOwner = errors.New("caller already owns this moderator")
	// ErrUserRejected means the signing collaborator declined the transaction.
	ErrUserRejected = errors.New("transaction signing rejected")
	// ErrLedgerRejected is a semantic ledger rejection (insufficient funds,
	// malformed group). Surfaced verbatim, never retried.
	ErrLedgerRejected = errors.New("ledger rejected transaction")
	// ErrLedgerUnavailable is surfaced once the transient-failure retry budget
	// for submission or confirmation polling is exhausted.
	ErrLedgerUnavailable = errors.New("ledger unavailable")
	// ErrReconciliationPending means the ledger operation confirmed but the
	// off-chain commit failed and was queued for the reconciliation sweep.
	// Value has moved; the caller sees the operation as processing, not failed.
	ErrReconciliationPending = errors.New("reconciliation pending")
	// ErrExecutionPending is returned to losers of the execution claim while
	// the winner is still between the ledger mint and the off-chain commit.
	ErrExecutionPending = errors.New("execution already in progress")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrConflict         = errors.New("conflict")
)
