package ports

import "context"

// PaymentIntent describes a ledger payment before signing. The note encodes
// {domain}:{entityId}:{purpose} for auditability, e.g. "DAO:<id>:initial_stake".
type PaymentIntent struct {
	Sender   string `json:"sender"`
	Receiver string `json:"receiver"`
	Amount   int64  `json:"amount"`
	Note     string `json:"note"`
}

// AppCallIntent describes an application call before signing.
type AppCallIntent struct {
	Sender string   `json:"sender"`
	AppID  int64    `json:"app_id"`
	Method string   `json:"method"`
	Args   []string `json:"args"`
	Note   string   `json:"note"`
}

// AssetCreateIntent describes minting a moderator NFT. URL carries the
// training-data content hash from the storage collaborator.
type AssetCreateIntent struct {
	Creator   string `json:"creator"`
	AssetName string `json:"asset_name"`
	UnitName  string `json:"unit_name"`
	URL       string `json:"url"`
	Note      string `json:"note"`
}

// Confirmation is the confirmed outcome of a ledger submission.
type Confirmation struct {
	TxID           string
	ConfirmedRound int64
	AssetID        int64
}

// LedgerGateway wraps submission and confirmation polling for ledger
// transactions. Implementations provide idempotent submit-and-wait with a
// bounded timeout: transient failures are retried with backoff and surfaced
// as domain.ErrLedgerUnavailable once the budget is spent; semantic
// rejections surface immediately as domain.ErrLedgerRejected and are never
// retried. Once submitted, an operation is not cancellable.
type LedgerGateway interface {
	SubmitPayment(ctx context.Context, payment PaymentIntent) (Confirmation, error)
	SubmitAppCall(ctx context.Context, call AppCallIntent) (Confirmation, error)
	// SubmitPurchaseGroup submits the payment and application call as one
	// atomic ledger group: both succeed or both fail on-chain.
	SubmitPurchaseGroup(ctx context.Context, payment PaymentIntent, call AppCallIntent) (Confirmation, error)
	CreateAsset(ctx context.Context, asset AssetCreateIntent) (Confirmation, error)
}

// TransactionSigner is the wallet collaborator: it receives encoded unsigned
// transactions and returns signed bytes, or domain.ErrUserRejected when the
// user declines. Injected per session; there is no process-wide wallet.
type TransactionSigner interface {
	Sign(ctx context.Context, unsigned [][]byte) ([][]byte, error)
}
