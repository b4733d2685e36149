package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/citadelx/marketplace/internal/domain"
	"github.com/citadelx/marketplace/internal/ports"
	"github.com/google/uuid"
)

// Config tunes the node client. Zero values fall back to conservative
// defaults in NewGateway.
type Config struct {
	BaseURL        string
	APIToken       string
	RequestTimeout time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
	PollInterval   time.Duration
	ConfirmTimeout time.Duration
}

// Gateway talks to an Algorand-style node over its REST API: submit signed
// transaction bytes, then poll pending-transaction info until the ledger
// reports a confirmed round. Transient node failures are retried with
// exponential backoff and surface as domain.ErrLedgerUnavailable once the
// attempt budget is spent; semantic rejections (the node refuses the
// transaction) surface immediately as domain.ErrLedgerRejected.
type Gateway struct {
	cfg    Config
	client *http.Client
	signer ports.TransactionSigner
	logger *slog.Logger
}

func NewGateway(cfg Config, signer ports.TransactionSigner, logger *slog.Logger) *Gateway {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 250 * time.Millisecond
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.ConfirmTimeout <= 0 {
		cfg.ConfirmTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.RequestTimeout},
		signer: signer,
		logger: logger,
	}
}

// unsignedTxn is the node's wire representation of a transaction prior to
// signing. Exactly one of the type-specific sections is populated.
type unsignedTxn struct {
	Type      string   `json:"type"`
	Sender    string   `json:"sender"`
	Receiver  string   `json:"receiver,omitempty"`
	Amount    int64    `json:"amount,omitempty"`
	AppID     int64    `json:"app_id,omitempty"`
	Method    string   `json:"method,omitempty"`
	Args      []string `json:"args,omitempty"`
	AssetName string   `json:"asset_name,omitempty"`
	UnitName  string   `json:"unit_name,omitempty"`
	URL       string   `json:"url,omitempty"`
	Note      string   `json:"note,omitempty"`
	GroupID   string   `json:"group_id,omitempty"`
}

type submitResponse struct {
	TxID string `json:"txId"`
}

type pendingInfo struct {
	ConfirmedRound int64  `json:"confirmed-round"`
	AssetIndex     int64  `json:"asset-index"`
	PoolError      string `json:"pool-error"`
}

func (g *Gateway) SubmitPayment(ctx context.Context, payment ports.PaymentIntent) (ports.Confirmation, error) {
	txn := unsignedTxn{
		Type:     "pay",
		Sender:   payment.Sender,
		Receiver: payment.Receiver,
		Amount:   payment.Amount,
		Note:     payment.Note,
	}
	return g.signAndSubmit(ctx, []unsignedTxn{txn})
}

func (g *Gateway) SubmitAppCall(ctx context.Context, call ports.AppCallIntent) (ports.Confirmation, error) {
	txn := unsignedTxn{
		Type:   "appl",
		Sender: call.Sender,
		AppID:  call.AppID,
		Method: call.Method,
		Args:   call.Args,
		Note:   call.Note,
	}
	return g.signAndSubmit(ctx, []unsignedTxn{txn})
}

func (g *Gateway) SubmitPurchaseGroup(ctx context.Context, payment ports.PaymentIntent, call ports.AppCallIntent) (ports.Confirmation, error) {
	groupID := uuid.NewString()
	group := []unsignedTxn{
		{
			Type:     "pay",
			Sender:   payment.Sender,
			Receiver: payment.Receiver,
			Amount:   payment.Amount,
			Note:     payment.Note,
			GroupID:  groupID,
		},
		{
			Type:    "appl",
			Sender:  call.Sender,
			AppID:   call.AppID,
			Method:  call.Method,
			Args:    call.Args,
			Note:    call.Note,
			GroupID: groupID,
		},
	}
	return g.signAndSubmit(ctx, group)
}

func (g *Gateway) CreateAsset(ctx context.Context, asset ports.AssetCreateIntent) (ports.Confirmation, error) {
	txn := unsignedTxn{
		Type:      "acfg",
		Sender:    asset.Creator,
		AssetName: asset.AssetName,
		UnitName:  asset.UnitName,
		URL:       asset.URL,
		Note:      asset.Note,
	}
	return g.signAndSubmit(ctx, []unsignedTxn{txn})
}

func (g *Gateway) signAndSubmit(ctx context.Context, txns []unsignedTxn) (ports.Confirmation, error) {
	unsigned := make([][]byte, 0, len(txns))
	for _, txn := range txns {
		raw, err := json.Marshal(txn)
		if err != nil {
			return ports.Confirmation{}, fmt.Errorf("encode transaction: %w", err)
		}
		unsigned = append(unsigned, raw)
	}

	signed, err := g.signer.Sign(ctx, unsigned)
	if err != nil {
		return ports.Confirmation{}, fmt.Errorf("sign transactions: %w", err)
	}

	txID, err := g.submitWithRetry(ctx, signed)
	if err != nil {
		return ports.Confirmation{}, err
	}
	return g.waitForConfirmation(ctx, txID)
}

// submitWithRetry posts the signed group. Retry stops the moment the node
// gives a semantic answer; only transport-level and 5xx failures burn
// attempts.
func (g *Gateway) submitWithRetry(ctx context.Context, signed [][]byte) (string, error) {
	body, err := json.Marshal(map[string]any{"transactions": rawMessages(signed)})
	if err != nil {
		return "", fmt.Errorf("encode submit body: %w", err)
	}

	backoff := g.cfg.InitialBackoff
	var lastErr error
	for attempt := 1; attempt <= g.cfg.MaxAttempts; attempt++ {
		txID, retryable, err := g.postTransactions(ctx, body)
		if err == nil {
			return txID, nil
		}
		if !retryable {
			return "", err
		}
		lastErr = err
		g.logger.WarnContext(ctx, "ledger submit attempt failed",
			"module", "ledger",
			"layer", "adapter",
			"operation", "submit",
			"outcome", "retry",
			"attempt", attempt,
			"error", err,
		)
		if attempt == g.cfg.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", domain.ErrLedgerUnavailable, ctx.Err())
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return "", fmt.Errorf("%w: %v", domain.ErrLedgerUnavailable, lastErr)
}

func (g *Gateway) postTransactions(ctx context.Context, body []byte) (txID string, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.BaseURL+"/v2/transactions", bytes.NewReader(body))
	if err != nil {
		return "", false, fmt.Errorf("build submit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.cfg.APIToken != "" {
		req.Header.Set("X-Algo-API-Token", g.cfg.APIToken)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return "", true, fmt.Errorf("submit transactions: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", true, fmt.Errorf("read submit response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		var out submitResponse
		if err := json.Unmarshal(raw, &out); err != nil {
			return "", false, fmt.Errorf("decode submit response: %w", err)
		}
		return out.TxID, false, nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return "", false, fmt.Errorf("%w: node refused submission (%d): %s", domain.ErrLedgerRejected, resp.StatusCode, string(raw))
	default:
		return "", true, fmt.Errorf("node error (%d): %s", resp.StatusCode, string(raw))
	}
}

// waitForConfirmation polls pending-transaction info. A pool error is a
// semantic rejection; running out the confirmation budget means the ledger
// state is unknown and the caller must treat the operation as unavailable,
// not failed.
func (g *Gateway) waitForConfirmation(ctx context.Context, txID string) (ports.Confirmation, error) {
	deadline := time.Now().Add(g.cfg.ConfirmTimeout)
	for {
		info, err := g.pendingInfo(ctx, txID)
		if err == nil {
			if info.PoolError != "" {
				return ports.Confirmation{}, fmt.Errorf("%w: %s", domain.ErrLedgerRejected, info.PoolError)
			}
			if info.ConfirmedRound > 0 {
				return ports.Confirmation{
					TxID:           txID,
					ConfirmedRound: info.ConfirmedRound,
					AssetID:        info.AssetIndex,
				}, nil
			}
		}
		if time.Now().After(deadline) {
			return ports.Confirmation{}, fmt.Errorf("%w: transaction %s not confirmed in time", domain.ErrLedgerUnavailable, txID)
		}
		select {
		case <-ctx.Done():
			return ports.Confirmation{}, fmt.Errorf("%w: %v", domain.ErrLedgerUnavailable, ctx.Err())
		case <-time.After(g.cfg.PollInterval):
		}
	}
}

func (g *Gateway) pendingInfo(ctx context.Context, txID string) (pendingInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.cfg.BaseURL+"/v2/transactions/pending/"+txID, nil)
	if err != nil {
		return pendingInfo{}, fmt.Errorf("build pending request: %w", err)
	}
	if g.cfg.APIToken != "" {
		req.Header.Set("X-Algo-API-Token", g.cfg.APIToken)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return pendingInfo{}, fmt.Errorf("pending info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return pendingInfo{}, fmt.Errorf("pending info (%d): %s", resp.StatusCode, string(raw))
	}
	var info pendingInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return pendingInfo{}, fmt.Errorf("decode pending info: %w", err)
	}
	return info, nil
}

func rawMessages(signed [][]byte) []json.RawMessage {
	out := make([]json.RawMessage, 0, len(signed))
	for _, raw := range signed {
		out = append(out, json.RawMessage(raw))
	}
	return out
}
