package queue

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/skillerhq/skiller/internal/config"
)

// MemoryQueue is an in-process TaskQueue for development and tests. It
// honors the same at-least-once contract as the SQS driver: a received
// message stays invisible until acked, and is requeued when the
// visibility timeout elapses first.
type MemoryQueue struct {
	mu         sync.Mutex
	ready      []Message
	inflight   map[string]Message
	timers     map[string]*time.Timer
	visibility time.Duration
	waitTime   time.Duration
	notify     chan struct{}
	closed     bool
}

// NewMemoryQueue creates an in-memory queue.
func NewMemoryQueue(cfg *config.QueueConfig) *MemoryQueue {
	visibility := cfg.VisibilityTimeout
	if visibility <= 0 {
		visibility = 30 * time.Second
	}
	waitTime := cfg.WaitTime
	if waitTime <= 0 {
		waitTime = time.Second
	}
	return &MemoryQueue{
		inflight:   make(map[string]Message),
		timers:     make(map[string]*time.Timer),
		visibility: visibility,
		waitTime:   waitTime,
		notify:     make(chan struct{}, 1),
	}
}

// Enqueue appends a message to the ready list.
func (q *MemoryQueue) Enqueue(ctx context.Context, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	q.mu.Lock()
	q.ready = append(q.ready, Message{
		ID:   uuid.New().String(),
		Body: append([]byte(nil), body...),
	})
	q.mu.Unlock()

	q.wake()
	return nil
}

// Receive returns up to max ready messages, waiting up to the configured
// long-poll interval when none are available.
func (q *MemoryQueue) Receive(ctx context.Context, max int) ([]Message, error) {
	deadline := time.NewTimer(q.waitTime)
	defer deadline.Stop()

	for {
		if msgs := q.take(max); len(msgs) > 0 {
			return msgs, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			return []Message{}, nil
		case <-q.notify:
		}
	}
}

// Ack removes a delivered message permanently.
func (q *MemoryQueue) Ack(ctx context.Context, msg Message) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if timer, ok := q.timers[msg.Handle]; ok {
		timer.Stop()
		delete(q.timers, msg.Handle)
	}
	delete(q.inflight, msg.Handle)
	return nil
}

// Close stops redelivery timers and drops all pending messages.
func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	for handle, timer := range q.timers {
		timer.Stop()
		delete(q.timers, handle)
	}
	q.ready = nil
	q.inflight = make(map[string]Message)
	return nil
}

// Len reports the number of ready (not in-flight) messages.
func (q *MemoryQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.ready)
}

func (q *MemoryQueue) take(max int) []Message {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.ready) == 0 || max <= 0 {
		return nil
	}
	n := max
	if n > len(q.ready) {
		n = len(q.ready)
	}

	out := make([]Message, 0, n)
	for _, msg := range q.ready[:n] {
		msg.Handle = uuid.New().String()
		q.inflight[msg.Handle] = msg
		q.scheduleRedelivery(msg.Handle)
		out = append(out, msg)
	}
	q.ready = append([]Message(nil), q.ready[n:]...)
	return out
}

// scheduleRedelivery requeues the message when the visibility timeout
// elapses without an ack. Caller holds q.mu.
func (q *MemoryQueue) scheduleRedelivery(handle string) {
	q.timers[handle] = time.AfterFunc(q.visibility, func() {
		q.mu.Lock()
		msg, ok := q.inflight[handle]
		if ok && !q.closed {
			delete(q.inflight, handle)
			delete(q.timers, handle)
			msg.Handle = ""
			q.ready = append(q.ready, msg)
		}
		q.mu.Unlock()
		if ok {
			q.wake()
		}
	})
}

func (q *MemoryQueue) wake() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}
