// Package worker runs the out-of-process extraction side of the analysis
// pipeline: it drains the task queue, runs the extraction routine over
// each job description, writes the skills back, and performs the one-way
// transition from "not analyzed" to "analyzed" that the next client poll
// observes.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/skillerhq/skiller/internal/domain"
	"github.com/skillerhq/skiller/internal/logger"
	"github.com/skillerhq/skiller/internal/queue"
)

// JobStore is the worker's view of job persistence.
type JobStore interface {
	Get(ctx context.Context, id uint) (*domain.Job, error)
	MarkAnalyzed(ctx context.Context, jobID uint) error
	UpdateJobLevel(ctx context.Context, jobID uint, level string) error
	ListOutstanding(ctx context.Context, olderThan time.Time, limit int) ([]domain.Job, error)
}

// SkillStore is the worker's view of skill persistence.
type SkillStore interface {
	UpsertBatch(ctx context.Context, skills []domain.Skill) ([]domain.Skill, error)
}

// Config holds worker tuning.
type Config struct {
	Concurrency  int
	RequeueCron  string
	RequeueAfter time.Duration
}

// Worker consumes extraction tasks with bounded parallelism. Because the
// queue delivers at least once, a task may arrive for a job that another
// delivery already analyzed; the worker acks and skips it.
type Worker struct {
	tasks     queue.TaskQueue
	jobs      JobStore
	skills    SkillStore
	extractor Extractor
	log       *logger.Logger
	cfg       Config
	cron      *cron.Cron
}

// New creates a Worker.
func New(tasks queue.TaskQueue, jobs JobStore, skills SkillStore, extractor Extractor, log *logger.Logger, cfg Config) *Worker {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &Worker{
		tasks:     tasks,
		jobs:      jobs,
		skills:    skills,
		extractor: extractor,
		log:       log,
		cfg:       cfg,
	}
}

// Run consumes the queue until the context is canceled. It also starts
// the periodic requeue sweep when one is configured.
func (w *Worker) Run(ctx context.Context) error {
	if w.cfg.RequeueCron != "" {
		if err := w.startRequeueSweep(ctx); err != nil {
			return err
		}
		defer w.cron.Stop()
	}

	w.log.WithField("concurrency", w.cfg.Concurrency).Info("Worker started")

	for {
		if err := ctx.Err(); err != nil {
			w.log.Info("Worker stopping")
			return nil
		}

		msgs, err := w.tasks.Receive(ctx, w.cfg.Concurrency)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			w.log.WithError(err).Error("Failed to receive tasks, backing off")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(5 * time.Second):
			}
			continue
		}

		if len(msgs) == 0 {
			continue
		}

		var wg sync.WaitGroup
		for _, msg := range msgs {
			wg.Add(1)
			go func(msg queue.Message) {
				defer wg.Done()
				w.handle(ctx, msg)
			}(msg)
		}
		wg.Wait()
	}
}

// handle processes one delivery. A processing failure leaves the message
// unacked so the queue redelivers it after the visibility timeout.
func (w *Worker) handle(ctx context.Context, msg queue.Message) {
	task, err := domain.DecodeExtractionTask(msg.Body)
	if err != nil {
		// A poison message would redeliver forever; drop it.
		w.log.WithError(err).Error("Dropping undecodable task")
		w.ack(ctx, msg)
		return
	}

	ctx = logger.WithFields(ctx, logger.Fields{
		logger.FieldRequestID: task.RequestID,
		logger.FieldJobID:     task.Job.ID,
	})

	if err := w.process(ctx, task); err != nil {
		logger.CtxError(ctx, "Failed to process extraction task: %v", err)
		return
	}
	w.ack(ctx, msg)
}

func (w *Worker) process(ctx context.Context, task domain.ExtractionTask) error {
	stored, err := w.jobs.Get(ctx, task.Job.ID)
	if err != nil {
		return fmt.Errorf("failed to load job: %w", err)
	}
	if stored.IsAnalyzed {
		// Duplicate delivery; the first one already finished.
		logger.CtxDebug(ctx, "Job already analyzed, skipping")
		return nil
	}

	description := task.Job.Description
	if description == "" {
		description = stored.Description
	}

	start := time.Now()
	extraction, err := w.extractor.Extract(ctx, description)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	skills := make([]domain.Skill, 0, len(extraction.Skills))
	for _, name := range extraction.Skills {
		if name == "" {
			continue
		}
		skills = append(skills, domain.Skill{
			Name:   name,
			JobID:  stored.ID,
			Salary: stored.Salary,
		})
	}

	if _, err := w.skills.UpsertBatch(ctx, skills); err != nil {
		return fmt.Errorf("failed to store skills: %w", err)
	}

	if extraction.JobLevel != "" {
		if err := w.jobs.UpdateJobLevel(ctx, stored.ID, extraction.JobLevel); err != nil {
			return fmt.Errorf("failed to store job level: %w", err)
		}
	}

	// Marking analyzed comes last: once this flips, the pipeline stops
	// dispatching new tasks for the job.
	if err := w.jobs.MarkAnalyzed(ctx, stored.ID); err != nil {
		return fmt.Errorf("failed to mark job analyzed: %w", err)
	}

	logger.FromContext(ctx).WithFields(logger.Fields{
		logger.FieldCount:      len(skills),
		logger.FieldDurationMs: time.Since(start).Milliseconds(),
	}).Info("Job analyzed")

	return nil
}

func (w *Worker) ack(ctx context.Context, msg queue.Message) {
	if err := w.tasks.Ack(ctx, msg); err != nil {
		// Redelivery is harmless; processing is idempotent.
		w.log.WithError(err).Warn("Failed to ack task")
	}
}

// startRequeueSweep schedules a periodic pass that re-enqueues full jobs
// left unanalyzed longer than the configured age, covering tasks that
// were lost to dispatch failures on the producer side.
func (w *Worker) startRequeueSweep(ctx context.Context) error {
	w.cron = cron.New()
	_, err := w.cron.AddFunc(w.cfg.RequeueCron, func() {
		w.requeueOutstanding(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid requeue cron spec %q: %w", w.cfg.RequeueCron, err)
	}
	w.cron.Start()
	return nil
}

func (w *Worker) requeueOutstanding(ctx context.Context) {
	cutoff := time.Now().Add(-w.cfg.RequeueAfter)
	jobs, err := w.jobs.ListOutstanding(ctx, cutoff, 100)
	if err != nil {
		w.log.WithError(err).Error("Requeue sweep failed to list outstanding jobs")
		return
	}
	if len(jobs) == 0 {
		return
	}

	requestID := "sweep-" + uuid.New().String()
	requeued := 0
	for _, job := range jobs {
		body, err := domain.ExtractionTask{Job: job, RequestID: requestID}.Encode()
		if err != nil {
			continue
		}
		if err := w.tasks.Enqueue(ctx, body); err != nil {
			w.log.WithField(logger.FieldJobID, job.ID).WithError(err).Warn("Requeue sweep enqueue failed")
			continue
		}
		requeued++
	}

	w.log.WithFields(logger.Fields{
		logger.FieldRequestID: requestID,
		logger.FieldCount:     requeued,
	}).Info("Requeued stale outstanding jobs")
}
