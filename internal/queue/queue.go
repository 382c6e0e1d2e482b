// Package queue provides the durable task queue between the analysis
// pipeline and the extraction worker. Delivery is at-least-once: consumers
// must acknowledge a message after processing it, and an unacknowledged
// message becomes visible again for redelivery.
package queue

import (
	"context"
	"fmt"

	"github.com/skillerhq/skiller/internal/config"
)

// Message is one delivered queue entry. Handle identifies the delivery
// for acknowledgement, not the message content.
type Message struct {
	ID     string
	Body   []byte
	Handle string
}

// TaskQueue is the queue contract used by the dispatcher (producer side)
// and the worker (consumer side).
type TaskQueue interface {
	// Enqueue submits a message body. It fails fast rather than blocking
	// indefinitely; the caller treats a failed enqueue as "still
	// outstanding" and retries on a later poll.
	Enqueue(ctx context.Context, body []byte) error

	// Receive returns up to max messages, waiting up to the configured
	// long-poll interval when the queue is empty. An empty slice with a
	// nil error means no work was available.
	Receive(ctx context.Context, max int) ([]Message, error)

	// Ack deletes a delivered message. Unacked messages are redelivered
	// after the visibility timeout.
	Ack(ctx context.Context, msg Message) error

	Close() error
}

// New selects a queue driver from configuration.
func New(cfg *config.QueueConfig) (TaskQueue, error) {
	switch cfg.Driver {
	case "sqs":
		return NewSQSQueue(cfg)
	case "memory":
		return NewMemoryQueue(cfg), nil
	default:
		return nil, fmt.Errorf("unknown queue driver %q", cfg.Driver)
	}
}
