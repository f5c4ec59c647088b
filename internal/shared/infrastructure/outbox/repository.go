package outbox

import (
	"context"
	"time"
)

// Repository is the persistence contract for outbox rows. Save and SaveBatch
// run inside the caller's transaction so events commit with the state change
// that produced them; the remaining methods serve the relay.
type Repository interface {
	Save(ctx context.Context, msg *Message) error

	SaveBatch(ctx context.Context, msgs []*Message) error

	// GetUnpublished returns pending messages in insertion order.
	GetUnpublished(ctx context.Context, limit int) ([]*Message, error)

	MarkPublished(ctx context.Context, id int64) error

	// MarkFailed records a delivery failure and schedules the next attempt.
	MarkFailed(ctx context.Context, id int64, err string, nextRetryAt time.Time) error

	// MarkDead parks a message that exhausted its retries.
	MarkDead(ctx context.Context, id int64, reason string) error

	// GetFailed returns failed messages whose retry time has come.
	GetFailed(ctx context.Context, maxRetries, limit int) ([]*Message, error)

	// DeleteOld prunes published messages past the retention window and
	// reports how many rows were removed.
	DeleteOld(ctx context.Context, olderThanDays int) (int64, error)
}
