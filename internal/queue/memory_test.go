package queue

import (
	"context"
	"testing"
	"time"

	"github.com/skillerhq/skiller/internal/config"
)

func newTestQueue(t *testing.T, visibility time.Duration) *MemoryQueue {
	t.Helper()
	q := NewMemoryQueue(&config.QueueConfig{
		WaitTime:          50 * time.Millisecond,
		VisibilityTimeout: visibility,
	})
	t.Cleanup(func() { q.Close() })
	return q
}

func TestMemoryQueue_EnqueueReceiveAck(t *testing.T) {
	q := newTestQueue(t, time.Minute)
	ctx := context.Background()

	if err := q.Enqueue(ctx, []byte("one")); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}
	if err := q.Enqueue(ctx, []byte("two")); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	msgs, err := q.Receive(ctx, 10)
	if err != nil {
		t.Fatalf("receive failed: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("received %d messages, want 2", len(msgs))
	}
	if string(msgs[0].Body) != "one" {
		t.Errorf("first body = %q, want one", msgs[0].Body)
	}
	if msgs[0].Handle == "" {
		t.Error("delivered message has no handle")
	}

	for _, msg := range msgs {
		if err := q.Ack(ctx, msg); err != nil {
			t.Fatalf("ack failed: %v", err)
		}
	}

	// Nothing left: a second receive long-polls and comes back empty.
	msgs, err = q.Receive(ctx, 10)
	if err != nil {
		t.Fatalf("receive failed: %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("received %d messages, want 0", len(msgs))
	}
}

func TestMemoryQueue_ReceiveRespectsMax(t *testing.T) {
	q := newTestQueue(t, time.Minute)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := q.Enqueue(ctx, []byte{byte(i)}); err != nil {
			t.Fatalf("enqueue failed: %v", err)
		}
	}

	msgs, err := q.Receive(ctx, 3)
	if err != nil {
		t.Fatalf("receive failed: %v", err)
	}
	if len(msgs) != 3 {
		t.Errorf("received %d messages, want 3", len(msgs))
	}
	if q.Len() != 2 {
		t.Errorf("ready length = %d, want 2", q.Len())
	}
}

func TestMemoryQueue_UnackedMessageIsRedelivered(t *testing.T) {
	q := newTestQueue(t, 80*time.Millisecond)
	ctx := context.Background()

	if err := q.Enqueue(ctx, []byte("task")); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	first, err := q.Receive(ctx, 1)
	if err != nil {
		t.Fatalf("receive failed: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("received %d messages, want 1", len(first))
	}

	// No ack: after the visibility timeout it comes back.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatal("message was never redelivered")
		default:
		}
		msgs, err := q.Receive(ctx, 1)
		if err != nil {
			t.Fatalf("receive failed: %v", err)
		}
		if len(msgs) == 1 {
			if string(msgs[0].Body) != "task" {
				t.Errorf("redelivered body = %q, want task", msgs[0].Body)
			}
			if msgs[0].Handle == first[0].Handle {
				t.Error("redelivery reused the old handle")
			}
			return
		}
	}
}

func TestMemoryQueue_AckStopsRedelivery(t *testing.T) {
	q := newTestQueue(t, 60*time.Millisecond)
	ctx := context.Background()

	if err := q.Enqueue(ctx, []byte("task")); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}
	msgs, err := q.Receive(ctx, 1)
	if err != nil || len(msgs) != 1 {
		t.Fatalf("receive failed: %v (%d messages)", err, len(msgs))
	}
	if err := q.Ack(ctx, msgs[0]); err != nil {
		t.Fatalf("ack failed: %v", err)
	}

	time.Sleep(150 * time.Millisecond)
	if q.Len() != 0 {
		t.Errorf("acked message reappeared, ready length = %d", q.Len())
	}
}

func TestNew_UnknownDriver(t *testing.T) {
	_, err := New(&config.QueueConfig{Driver: "rabbit"})
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestNew_MemoryDriver(t *testing.T) {
	q, err := New(&config.QueueConfig{Driver: "memory"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer q.Close()
	if _, ok := q.(*MemoryQueue); !ok {
		t.Errorf("driver memory produced %T", q)
	}
}
