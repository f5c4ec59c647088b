package eventbus

import (
	"context"
)

// Publisher delivers outbox payloads to the event bus. The outbox relay is
// the only producer; routing keys follow the context.aggregate.action scheme
// used by the domain events.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload []byte) error

	Close() error
}
