package ports

import "context"

// EventPublisher delivers outbox payloads to whatever broker is wired in.
// The partition key is the aggregate the event belongs to (DAO, proposal or
// moderator id) so per-aggregate ordering survives a partitioned broker.
type EventPublisher interface {
	Publish(ctx context.Context, eventType, partitionKey string, payload []byte) error
}
