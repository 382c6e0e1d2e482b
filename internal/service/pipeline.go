package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/skillerhq/skiller/internal/domain"
	"github.com/skillerhq/skiller/internal/logger"
)

// Pipeline orchestrates one analysis run: normalize the query, collect
// jobs (store first, external API on miss), dispatch outstanding
// extraction work, and once everything is analyzed, assemble the skills
// and salary summary. It keeps no state between invocations; repeated
// polls re-derive their position from the stores, which is what makes
// client polling correct without a server-side session.
type Pipeline struct {
	normalizer *Normalizer
	jobs       JobStore
	skills     SkillStore
	search     JobSearcher
	dispatcher *Dispatcher
	aggregator *Aggregator
	window     int
}

// NewPipeline creates a Pipeline. window bounds how many jobs of a result
// set are eligible for extraction per query.
func NewPipeline(
	normalizer *Normalizer,
	jobs JobStore,
	skills SkillStore,
	search JobSearcher,
	dispatcher *Dispatcher,
	aggregator *Aggregator,
	window int,
) *Pipeline {
	if window <= 0 {
		window = 10
	}
	return &Pipeline{
		normalizer: normalizer,
		jobs:       jobs,
		skills:     skills,
		search:     search,
		dispatcher: dispatcher,
		aggregator: aggregator,
		window:     window,
	}
}

// Analyze runs the state machine for one poll. Every failure is converted
// to a tagged outcome; no error escapes as a raw fault.
func (p *Pipeline) Analyze(ctx context.Context, raw RawQuery) Outcome {
	// PARSING
	query, err := p.normalizer.Normalize(raw)
	if err != nil {
		return failed(FailInvalidQuery, err.Error())
	}

	requestID := uuid.New().String()
	ctx = logger.WithFields(ctx, logger.Fields{
		logger.FieldRequestID: requestID,
		logger.FieldQuery:     query.CacheKey(),
	})

	// COLLECTING_JOBS
	jobs, outcome := p.collectJobs(ctx, query)
	if outcome != nil {
		return *outcome
	}

	// DISPATCHING
	window := jobs
	if len(window) > p.window {
		window = window[:p.window]
	}
	report := p.dispatcher.Dispatch(ctx, window, requestID)
	if !report.Complete {
		return processing(report.Outstanding, requestID)
	}

	// COLLECTING_SKILLS
	windowIDs := make([]uint, 0, len(window))
	for _, job := range window {
		windowIDs = append(windowIDs, job.ID)
	}
	skills, err := p.skills.FindByJobs(ctx, windowIDs)
	if err != nil {
		return failed(FailStoreUnavailable, fmt.Sprintf("failed to collect skills: %v", err))
	}
	if len(skills) == 0 {
		return failed(FailNoSkillsExtracted, fmt.Sprintf("no skills extracted for query %q", query.Text))
	}

	// FILTERING over the full job set, not just the window.
	filtered := make([]domain.Job, 0, len(jobs))
	for _, job := range jobs {
		if query.Matches(job) {
			filtered = append(filtered, job)
		}
	}

	// AGGREGATING
	salaries := make([]domain.Salary, 0, len(filtered))
	for _, job := range filtered {
		salaries = append(salaries, job.Salary)
	}
	dist, err := p.aggregator.Aggregate(ctx, salaries)
	if err != nil {
		return failed(FailInternal, fmt.Sprintf("failed to aggregate salaries: %v", err))
	}

	// READY
	return ready(&AnalysisResult{
		Query:              query,
		Jobs:               filtered,
		Skills:             skills,
		SalaryDistribution: dist,
	})
}

// collectJobs returns the query's job set: the recorded association when
// the query has been seen, otherwise a fresh fetch from the job-search
// API. The association is recorded only after every fetched job is
// durably stored.
func (p *Pipeline) collectJobs(ctx context.Context, query domain.Query) ([]domain.Job, *Outcome) {
	cacheKey := query.CacheKey()

	jobs, err := p.jobs.FindByQuery(ctx, cacheKey)
	if err == nil {
		return jobs, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		out := failed(FailStoreUnavailable, fmt.Sprintf("failed to look up query: %v", err))
		return nil, &out
	}

	fetched, err := p.search.ListJobs(ctx, query.Text)
	if err != nil {
		out := failed(FailInternal, fmt.Sprintf("failed to collect jobs: %v", err))
		return nil, &out
	}
	if len(fetched) == 0 {
		out := failed(FailNoJobsFound, fmt.Sprintf("no job found with query %q", query.Text))
		return nil, &out
	}

	stored := make([]domain.Job, 0, len(fetched))
	ids := make([]uint, 0, len(fetched))
	for i := range fetched {
		job, err := p.jobs.Upsert(ctx, &fetched[i])
		if err != nil {
			out := failed(FailStoreUnavailable, fmt.Sprintf("failed to store job: %v", err))
			return nil, &out
		}
		stored = append(stored, *job)
		ids = append(ids, job.ID)
	}

	if err := p.jobs.SaveQueryJobs(ctx, cacheKey, ids); err != nil {
		out := failed(FailStoreUnavailable, fmt.Sprintf("failed to store query result: %v", err))
		return nil, &out
	}

	logger.FromContext(ctx).WithFields(logger.Fields{
		logger.FieldCount: len(stored),
	}).Info("Fetched and stored jobs for new query")

	return stored, nil
}
