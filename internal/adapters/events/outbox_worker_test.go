package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/citadelx/marketplace/internal/ports"
	"github.com/google/uuid"
)

type memOutbox struct {
	mu      sync.Mutex
	records map[uuid.UUID]*ports.OutboxRecord
}

func newMemOutbox(records ...ports.OutboxRecord) *memOutbox {
	m := &memOutbox{records: map[uuid.UUID]*ports.OutboxRecord{}}
	for i := range records {
		rec := records[i]
		m.records[rec.OutboxID] = &rec
	}
	return m
}

func (m *memOutbox) Enqueue(_ context.Context, event ports.OutboxEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[event.EventID] = &ports.OutboxRecord{
		OutboxID:     event.EventID,
		EventType:    event.EventType,
		PartitionKey: event.PartitionKey,
		Payload:      event.Payload,
		CreatedAt:    event.OccurredAt,
	}
	return nil
}

func (m *memOutbox) ClaimUnpublished(_ context.Context, limit int, claimToken string, claimUntil time.Time) ([]ports.OutboxRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ports.OutboxRecord
	for _, rec := range m.records {
		if rec.PublishedAt != nil || rec.DeadLetteredAt != nil || len(out) >= limit {
			continue
		}
		token := claimToken
		until := claimUntil
		rec.ClaimToken = &token
		rec.ClaimUntil = &until
		out = append(out, *rec)
	}
	return out, nil
}

func (m *memOutbox) MarkPublished(_ context.Context, outboxID uuid.UUID, _ string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[outboxID].PublishedAt = &at
	return nil
}

func (m *memOutbox) MarkFailed(_ context.Context, outboxID uuid.UUID, _, errMsg string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := m.records[outboxID]
	rec.RetryCount++
	rec.LastError = &errMsg
	rec.LastErrorAt = &at
	return nil
}

func (m *memOutbox) MarkDeadLettered(_ context.Context, outboxID uuid.UUID, _, errMsg string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := m.records[outboxID]
	rec.LastError = &errMsg
	rec.DeadLetteredAt = &at
	return nil
}

func (m *memOutbox) get(id uuid.UUID) ports.OutboxRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.records[id]
}

type flakyPublisher struct {
	mu       sync.Mutex
	failures int
	calls    int
	keys     []string
}

func (p *flakyPublisher) Publish(_ context.Context, _ string, partitionKey string, _ []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.keys = append(p.keys, partitionKey)
	if p.failures > 0 {
		p.failures--
		return errors.New("broker unavailable")
	}
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOutboxWorkerPublishesClaimedRecords(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	daoID := uuid.NewString()
	outbox := newMemOutbox(ports.OutboxRecord{OutboxID: id, EventType: "dao.activated", PartitionKey: daoID, Payload: []byte(`{}`)})
	publisher := &flakyPublisher{}
	w := NewOutboxWorker(testLogger(), outbox, publisher, time.Second, 10, time.Minute, 3)

	if err := w.processOnce(context.Background()); err != nil {
		t.Fatalf("process failed: %v", err)
	}
	rec := outbox.get(id)
	if rec.PublishedAt == nil {
		t.Fatalf("expected record published")
	}
	if publisher.calls != 1 {
		t.Fatalf("expected one publish, got %d", publisher.calls)
	}
	if len(publisher.keys) != 1 || publisher.keys[0] != daoID {
		t.Fatalf("partition key must reach the publisher, got %v", publisher.keys)
	}
}

func TestOutboxWorkerRetriesThenPublishes(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	outbox := newMemOutbox(ports.OutboxRecord{OutboxID: id, EventType: "purchase.confirmed", Payload: []byte(`{}`)})
	publisher := &flakyPublisher{failures: 1}
	w := NewOutboxWorker(testLogger(), outbox, publisher, time.Second, 10, time.Minute, 3)

	if err := w.processOnce(context.Background()); err != nil {
		t.Fatalf("first pass failed: %v", err)
	}
	rec := outbox.get(id)
	if rec.PublishedAt != nil || rec.RetryCount != 1 {
		t.Fatalf("expected one failed attempt, got %+v", rec)
	}

	if err := w.processOnce(context.Background()); err != nil {
		t.Fatalf("second pass failed: %v", err)
	}
	if outbox.get(id).PublishedAt == nil {
		t.Fatalf("expected publish on retry")
	}
}

func TestOutboxWorkerDeadLettersAtRetryLimit(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	outbox := newMemOutbox(ports.OutboxRecord{OutboxID: id, EventType: "proposal.executed", Payload: []byte(`{}`)})
	publisher := &flakyPublisher{failures: 100}
	w := NewOutboxWorker(testLogger(), outbox, publisher, time.Second, 10, time.Minute, 2)

	for i := 0; i < 4; i++ {
		if err := w.processOnce(context.Background()); err != nil {
			t.Fatalf("pass %d failed: %v", i, err)
		}
	}
	rec := outbox.get(id)
	if rec.DeadLetteredAt == nil {
		t.Fatalf("expected dead-lettered record after retry limit, got %+v", rec)
	}
	if rec.PublishedAt != nil {
		t.Fatalf("dead-lettered record must not be published")
	}
}
