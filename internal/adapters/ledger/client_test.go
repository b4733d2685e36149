package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/citadelx/marketplace/internal/domain"
	"github.com/citadelx/marketplace/internal/ports"
)

// passthroughSigner returns the unsigned bytes untouched so node-side tests
// can inspect the submitted transactions.
type passthroughSigner struct {
	err   error
	calls int
}

func (s *passthroughSigner) Sign(_ context.Context, unsigned [][]byte) ([][]byte, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return unsigned, nil
}

type fakeNode struct {
	mu sync.Mutex

	submitFailures int
	submitStatus   int
	submitBody     string
	poolError      string
	pendingDelay   int

	submits  int
	pendings int
	groups   [][]unsignedTxn
}

func (n *fakeNode) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v2/transactions", func(w http.ResponseWriter, r *http.Request) {
		n.mu.Lock()
		defer n.mu.Unlock()
		n.submits++

		raw, _ := io.ReadAll(r.Body)
		var body struct {
			Transactions []json.RawMessage `json:"transactions"`
		}
		_ = json.Unmarshal(raw, &body)
		var group []unsignedTxn
		for _, t := range body.Transactions {
			var txn unsignedTxn
			_ = json.Unmarshal(t, &txn)
			group = append(group, txn)
		}
		n.groups = append(n.groups, group)

		if n.submitFailures > 0 {
			n.submitFailures--
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		if n.submitStatus != 0 {
			w.WriteHeader(n.submitStatus)
			_, _ = w.Write([]byte(n.submitBody))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"txId": fmt.Sprintf("TX%d", n.submits)})
	})
	mux.HandleFunc("GET /v2/transactions/pending/", func(w http.ResponseWriter, r *http.Request) {
		n.mu.Lock()
		defer n.mu.Unlock()
		n.pendings++
		if n.pendingDelay > 0 {
			n.pendingDelay--
			_ = json.NewEncoder(w).Encode(map[string]any{"confirmed-round": 0})
			return
		}
		if n.poolError != "" {
			_ = json.NewEncoder(w).Encode(map[string]any{"pool-error": n.poolError})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"confirmed-round": 7, "asset-index": 99})
	})
	return mux
}

func newTestGateway(t *testing.T, node *fakeNode, signer ports.TransactionSigner) *Gateway {
	t.Helper()
	srv := httptest.NewServer(node.handler())
	t.Cleanup(srv.Close)
	return NewGateway(Config{
		BaseURL:        srv.URL,
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		PollInterval:   time.Millisecond,
		ConfirmTimeout: time.Second,
	}, signer, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSubmitPaymentConfirms(t *testing.T) {
	t.Parallel()

	node := &fakeNode{}
	g := newTestGateway(t, node, &passthroughSigner{})

	conf, err := g.SubmitPayment(context.Background(), ports.PaymentIntent{
		Sender:   "alice",
		Receiver: "treasury",
		Amount:   100,
		Note:     "DAO:abc:initial_stake",
	})
	if err != nil {
		t.Fatalf("submit payment failed: %v", err)
	}
	if conf.TxID == "" || conf.ConfirmedRound != 7 {
		t.Fatalf("unexpected confirmation: %+v", conf)
	}
	if len(node.groups) != 1 || len(node.groups[0]) != 1 {
		t.Fatalf("expected a single-transaction submission")
	}
	if txn := node.groups[0][0]; txn.Type != "pay" || txn.Amount != 100 {
		t.Fatalf("unexpected payment transaction: %+v", txn)
	}
}

func TestSubmitRetriesTransientFailures(t *testing.T) {
	t.Parallel()

	node := &fakeNode{submitFailures: 2}
	g := newTestGateway(t, node, &passthroughSigner{})

	conf, err := g.SubmitAppCall(context.Background(), ports.AppCallIntent{Sender: "alice", AppID: 42, Method: "activate_dao"})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if conf.ConfirmedRound != 7 {
		t.Fatalf("unexpected confirmation: %+v", conf)
	}
	if node.submits != 3 {
		t.Fatalf("expected 3 submit attempts, got %d", node.submits)
	}
}

func TestSubmitExhaustsRetryBudget(t *testing.T) {
	t.Parallel()

	node := &fakeNode{submitFailures: 10}
	g := newTestGateway(t, node, &passthroughSigner{})

	_, err := g.SubmitPayment(context.Background(), ports.PaymentIntent{Sender: "alice", Receiver: "t", Amount: 1})
	if !errors.Is(err, domain.ErrLedgerUnavailable) {
		t.Fatalf("expected ErrLedgerUnavailable, got %v", err)
	}
	if node.submits != 3 {
		t.Fatalf("retry budget is 3 attempts, used %d", node.submits)
	}
}

func TestSubmitRejectionIsNotRetried(t *testing.T) {
	t.Parallel()

	node := &fakeNode{submitStatus: http.StatusBadRequest, submitBody: "overspend"}
	g := newTestGateway(t, node, &passthroughSigner{})

	_, err := g.SubmitPayment(context.Background(), ports.PaymentIntent{Sender: "alice", Receiver: "t", Amount: 1})
	if !errors.Is(err, domain.ErrLedgerRejected) {
		t.Fatalf("expected ErrLedgerRejected, got %v", err)
	}
	if node.submits != 1 {
		t.Fatalf("semantic rejection must not be retried, got %d attempts", node.submits)
	}
}

func TestPoolErrorIsSemanticRejection(t *testing.T) {
	t.Parallel()

	node := &fakeNode{poolError: "logic eval error"}
	g := newTestGateway(t, node, &passthroughSigner{})

	_, err := g.SubmitPayment(context.Background(), ports.PaymentIntent{Sender: "alice", Receiver: "t", Amount: 1})
	if !errors.Is(err, domain.ErrLedgerRejected) {
		t.Fatalf("expected ErrLedgerRejected on pool error, got %v", err)
	}
}

func TestConfirmationPollsUntilRound(t *testing.T) {
	t.Parallel()

	node := &fakeNode{pendingDelay: 3}
	g := newTestGateway(t, node, &passthroughSigner{})

	conf, err := g.SubmitPayment(context.Background(), ports.PaymentIntent{Sender: "alice", Receiver: "t", Amount: 1})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if conf.ConfirmedRound != 7 {
		t.Fatalf("unexpected confirmation: %+v", conf)
	}
	if node.pendings < 4 {
		t.Fatalf("expected at least 4 pending polls, got %d", node.pendings)
	}
}

func TestPurchaseGroupSharesGroupID(t *testing.T) {
	t.Parallel()

	node := &fakeNode{}
	g := newTestGateway(t, node, &passthroughSigner{})

	_, err := g.SubmitPurchaseGroup(context.Background(),
		ports.PaymentIntent{Sender: "dave", Receiver: "treasury", Amount: 1000},
		ports.AppCallIntent{Sender: "dave", AppID: 42, Method: "purchase_monthly"},
	)
	if err != nil {
		t.Fatalf("group submit failed: %v", err)
	}
	if len(node.groups) != 1 || len(node.groups[0]) != 2 {
		t.Fatalf("expected one two-transaction group")
	}
	pay, call := node.groups[0][0], node.groups[0][1]
	if pay.GroupID == "" || pay.GroupID != call.GroupID {
		t.Fatalf("group members must share a group id: %q vs %q", pay.GroupID, call.GroupID)
	}
	if pay.Type != "pay" || call.Type != "appl" {
		t.Fatalf("unexpected group composition: %s/%s", pay.Type, call.Type)
	}
}

func TestCreateAssetReturnsAssetID(t *testing.T) {
	t.Parallel()

	node := &fakeNode{}
	g := newTestGateway(t, node, &passthroughSigner{})

	conf, err := g.CreateAsset(context.Background(), ports.AssetCreateIntent{
		Creator:   "alice",
		AssetName: "tox-guard",
		UnitName:  "CXMOD",
		URL:       "bafyhash",
	})
	if err != nil {
		t.Fatalf("create asset failed: %v", err)
	}
	if conf.AssetID != 99 {
		t.Fatalf("expected asset id 99, got %d", conf.AssetID)
	}
}

func TestSignerRejectionShortCircuits(t *testing.T) {
	t.Parallel()

	node := &fakeNode{}
	signer := &passthroughSigner{err: domain.ErrUserRejected}
	g := newTestGateway(t, node, signer)

	_, err := g.SubmitPayment(context.Background(), ports.PaymentIntent{Sender: "alice", Receiver: "t", Amount: 1})
	if !errors.Is(err, domain.ErrUserRejected) {
		t.Fatalf("expected ErrUserRejected, got %v", err)
	}
	if node.submits != 0 {
		t.Fatalf("a declined signature must never reach the node")
	}
}
