package service

import (
	"context"
	"errors"
	"testing"

	"github.com/skillerhq/skiller/internal/config"
	"github.com/skillerhq/skiller/internal/domain"
	"github.com/skillerhq/skiller/internal/queue"
)

func testQueue(t *testing.T) *queue.MemoryQueue {
	t.Helper()
	q := queue.NewMemoryQueue(&config.QueueConfig{})
	t.Cleanup(func() { q.Close() })
	return q
}

func seedWindow(t *testing.T, store *fakeJobStore, searcher *fakeSearcher, n int) []domain.Job {
	t.Helper()

	listing, full := partialListing(n)
	searcher.full = full

	window := make([]domain.Job, 0, n)
	for i := range listing {
		stored, err := store.Upsert(context.Background(), &listing[i])
		if err != nil {
			t.Fatalf("seed upsert failed: %v", err)
		}
		window = append(window, *stored)
	}
	return window
}

func TestDispatcher_SkipsAnalyzedJobs(t *testing.T) {
	store := newFakeJobStore()
	searcher := &fakeSearcher{}
	q := testQueue(t)
	d := NewDispatcher(store, searcher, q)

	window := seedWindow(t, store, searcher, 5)

	// Pretend two jobs were analyzed by earlier polls.
	for i := range window[:2] {
		if err := store.MarkAnalyzed(context.Background(), window[i].ID); err != nil {
			t.Fatalf("mark analyzed failed: %v", err)
		}
		window[i].IsAnalyzed = true
	}

	report := d.Dispatch(context.Background(), window, "req-1")

	if report.Complete {
		t.Fatal("expected incomplete report with outstanding jobs")
	}
	if report.Outstanding != 3 {
		t.Errorf("outstanding = %d, want 3", report.Outstanding)
	}
	if report.Dispatched != 3 {
		t.Errorf("dispatched = %d, want 3", report.Dispatched)
	}
	if q.Len() != 3 {
		t.Errorf("queue holds %d messages, want 3", q.Len())
	}
}

func TestDispatcher_CompleteWindow(t *testing.T) {
	store := newFakeJobStore()
	searcher := &fakeSearcher{}
	q := testQueue(t)
	d := NewDispatcher(store, searcher, q)

	window := seedWindow(t, store, searcher, 3)
	for i := range window {
		if err := store.MarkAnalyzed(context.Background(), window[i].ID); err != nil {
			t.Fatalf("mark analyzed failed: %v", err)
		}
		window[i].IsAnalyzed = true
	}

	report := d.Dispatch(context.Background(), window, "req-2")

	if !report.Complete {
		t.Error("expected complete report")
	}
	if q.Len() != 0 {
		t.Errorf("queue holds %d messages, want 0", q.Len())
	}
}

func TestDispatcher_UpgradesPartialJobs(t *testing.T) {
	store := newFakeJobStore()
	searcher := &fakeSearcher{}
	q := testQueue(t)
	d := NewDispatcher(store, searcher, q)

	window := seedWindow(t, store, searcher, 2)
	d.Dispatch(context.Background(), window, "req-3")

	for _, job := range window {
		stored, err := store.Get(context.Background(), job.ID)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if !stored.IsFull {
			t.Errorf("job %d was not upgraded to full", job.ID)
		}
		if stored.Description == "" {
			t.Errorf("job %d has no description after upgrade", job.ID)
		}
	}

	// The enqueued snapshot carries the upgraded record.
	msgs, err := q.Receive(context.Background(), 10)
	if err != nil {
		t.Fatalf("receive failed: %v", err)
	}
	for _, msg := range msgs {
		task, err := domain.DecodeExtractionTask(msg.Body)
		if err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if !task.Job.IsFull || task.Job.Description == "" {
			t.Errorf("task for job %d carries a partial snapshot", task.Job.ID)
		}
		if task.RequestID != "req-3" {
			t.Errorf("task request id = %q, want req-3", task.RequestID)
		}
	}
}

func TestDispatcher_IsolatesPerJobFailures(t *testing.T) {
	store := newFakeJobStore()
	searcher := &fakeSearcher{fetchErr: errors.New("provider down")}
	q := testQueue(t)
	d := NewDispatcher(store, searcher, q)

	window := seedWindow(t, store, searcher, 4)
	report := d.Dispatch(context.Background(), window, "req-4")

	// Every fetch failed, but Dispatch still reports instead of erroring.
	if report.Complete {
		t.Error("expected incomplete report")
	}
	if report.Failed != 4 {
		t.Errorf("failed = %d, want 4", report.Failed)
	}
	if report.Dispatched != 0 {
		t.Errorf("dispatched = %d, want 0", report.Dispatched)
	}
	if q.Len() != 0 {
		t.Errorf("queue holds %d messages, want 0", q.Len())
	}
}
