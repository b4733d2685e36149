package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AccessCache is a read-through cache for hasAccess checks. TTLs are clamped
// to the grant's remaining validity so a cached "true" can never outlive the
// grant itself. A miss is (false, false, nil).
type AccessCache interface {
	GetAccess(ctx context.Context, moderatorID uuid.UUID, address string) (allowed bool, found bool, err error)
	SetAccess(ctx context.Context, moderatorID uuid.UUID, address string, allowed bool, ttl time.Duration) error
	InvalidateAccess(ctx context.Context, moderatorID uuid.UUID, address string) error
}
