package ledger

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/citadelx/marketplace/internal/domain"
)

// RemoteSigner forwards unsigned transactions to the wallet collaborator
// service for approval and signing. The wallet holds all keys; a 403 from it
// means the user declined.
type RemoteSigner struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewRemoteSigner(baseURL, token string, timeout time.Duration) *RemoteSigner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RemoteSigner{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

type signRequest struct {
	Transactions []string `json:"transactions"`
}

type signResponse struct {
	Signed []string `json:"signed"`
}

func (s *RemoteSigner) Sign(ctx context.Context, unsigned [][]byte) ([][]byte, error) {
	body := signRequest{Transactions: make([]string, 0, len(unsigned))}
	for _, txn := range unsigned {
		body.Transactions = append(body.Transactions, base64.StdEncoding.EncodeToString(txn))
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode sign request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/sign", bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("build sign request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: wallet sign: %v", domain.ErrLedgerUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusForbidden:
		return nil, domain.ErrUserRejected
	default:
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: wallet sign (%d): %s", domain.ErrLedgerUnavailable, resp.StatusCode, string(payload))
	}

	var out signResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode sign response: %w", err)
	}
	if len(out.Signed) != len(unsigned) {
		return nil, fmt.Errorf("wallet returned %d signed transactions, want %d", len(out.Signed), len(unsigned))
	}

	signed := make([][]byte, 0, len(out.Signed))
	for i, enc := range out.Signed {
		blob, err := base64.StdEncoding.DecodeString(enc)
		if err != nil {
			return nil, fmt.Errorf("decode signed transaction %d: %w", i, err)
		}
		signed = append(signed, blob)
	}
	return signed, nil
}
