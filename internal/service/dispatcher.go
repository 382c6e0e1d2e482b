package service

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/skillerhq/skiller/internal/domain"
	"github.com/skillerhq/skiller/internal/logger"
	"github.com/skillerhq/skiller/internal/queue"
)

// DispatchReport is the dispatcher's answer to "is extraction done for
// this window, and if not, how much is outstanding".
type DispatchReport struct {
	Complete    bool
	Outstanding int
	Dispatched  int
	Failed      int
}

// Dispatcher decides which jobs of an analysis window still need skill
// extraction and enqueues one task per outstanding job. It returns as
// soon as dispatching finishes; it never waits for extraction itself.
type Dispatcher struct {
	jobs   JobStore
	search JobSearcher
	tasks  queue.TaskQueue
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(jobs JobStore, search JobSearcher, tasks queue.TaskQueue) *Dispatcher {
	return &Dispatcher{jobs: jobs, search: search, tasks: tasks}
}

// Dispatch partitions the window by is_analyzed and fans out one
// fetch-and-enqueue per outstanding job, concurrently. Per-job failures
// are isolated: a job whose fetch or enqueue fails is logged and counted,
// stays unanalyzed, and is picked up again by the next poll. The report
// is therefore always returned without error.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - window: the analysis window (bounded prefix of the job set).
//   - requestID: correlation id stamped on every task.
// Returns:
//   - *DispatchReport: outstanding/dispatched/failed counts; Complete is
//     true when nothing in the window needed work.
func (d *Dispatcher) Dispatch(ctx context.Context, window []domain.Job, requestID string) *DispatchReport {
	var outstanding []domain.Job
	for _, job := range window {
		if !job.IsAnalyzed {
			outstanding = append(outstanding, job)
		}
	}

	if len(outstanding) == 0 {
		return &DispatchReport{Complete: true}
	}

	var dispatched, failures int64
	var wg sync.WaitGroup
	for _, job := range outstanding {
		wg.Add(1)
		go func(job domain.Job) {
			defer wg.Done()
			if err := d.dispatchOne(ctx, job, requestID); err != nil {
				atomic.AddInt64(&failures, 1)
				logger.FromContext(ctx).WithFields(logger.Fields{
					logger.FieldJobID: job.ID,
				}).WithError(err).Error("Failed to dispatch extraction task")
				return
			}
			atomic.AddInt64(&dispatched, 1)
		}(job)
	}
	wg.Wait()

	logger.FromContext(ctx).WithFields(logger.Fields{
		"outstanding": len(outstanding),
		"dispatched":  dispatched,
		"failed":      failures,
	}).Info("Extraction tasks dispatched")

	return &DispatchReport{
		Complete:    false,
		Outstanding: len(outstanding),
		Dispatched:  int(dispatched),
		Failed:      int(failures),
	}
}

// dispatchOne upgrades a partial job to its full description, persists
// the upgrade, and enqueues the extraction task with a full job snapshot.
func (d *Dispatcher) dispatchOne(ctx context.Context, job domain.Job, requestID string) error {
	if !job.IsFull {
		full, err := d.search.FetchFullJob(ctx, job.ExternalID)
		if err != nil {
			return err
		}
		full.ID = job.ID
		// Title is first-write-wins from creation time.
		full.Title = job.Title
		if full.Location == "" {
			full.Location = job.Location
		}
		if err := d.jobs.UpdateFull(ctx, full); err != nil {
			return err
		}

		stored, err := d.jobs.Get(ctx, job.ID)
		if err != nil {
			return err
		}
		job = *stored
	}

	body, err := domain.ExtractionTask{Job: job, RequestID: requestID}.Encode()
	if err != nil {
		return err
	}
	return d.tasks.Enqueue(ctx, body)
}
