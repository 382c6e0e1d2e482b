package service

import (
	"context"
	"testing"

	"github.com/skillerhq/skiller/internal/domain"
	"github.com/skillerhq/skiller/internal/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPipeline(t *testing.T, searcher *fakeSearcher, window int) (*Pipeline, *fakeJobStore, *fakeSkillStore, *queue.MemoryQueue) {
	t.Helper()

	jobs := newFakeJobStore()
	skills := newFakeSkillStore()
	q := testQueue(t)

	pipeline := NewPipeline(
		NewNormalizer(),
		jobs,
		skills,
		searcher,
		NewDispatcher(jobs, searcher, q),
		NewAggregator(fixedRates{}, "USD"),
		window,
	)
	return pipeline, jobs, skills, q
}

// drainQueue plays the extraction worker: it consumes every queued task,
// records one skill per job, and marks the job analyzed.
func drainQueue(t *testing.T, q *queue.MemoryQueue, jobs *fakeJobStore, skills *fakeSkillStore, skillName string) int {
	t.Helper()

	processed := 0
	for q.Len() > 0 {
		msgs, err := q.Receive(context.Background(), 10)
		require.NoError(t, err)
		for _, msg := range msgs {
			task, err := domain.DecodeExtractionTask(msg.Body)
			require.NoError(t, err)

			_, err = skills.UpsertBatch(context.Background(), []domain.Skill{{
				Name:   skillName,
				JobID:  task.Job.ID,
				Salary: task.Job.Salary,
			}})
			require.NoError(t, err)
			require.NoError(t, jobs.MarkAnalyzed(context.Background(), task.Job.ID))
			require.NoError(t, q.Ack(context.Background(), msg))
			processed++
		}
	}
	return processed
}

func TestPipeline_FirstPollDispatchesAndReportsProcessing(t *testing.T) {
	listing, full := partialListing(15)
	searcher := &fakeSearcher{listing: listing, full: full}
	pipeline, jobs, _, q := newTestPipeline(t, searcher, 10)

	outcome := pipeline.Analyze(context.Background(), RawQuery{Text: "backend"})

	assert.Equal(t, StateProcessing, outcome.State)
	assert.Equal(t, 10, outcome.Outstanding, "only the window is dispatched")
	assert.NotEmpty(t, outcome.RequestID)
	assert.Equal(t, 10, q.Len())

	// All fifteen fetched jobs were stored and associated with the query.
	stored, err := jobs.FindByQuery(context.Background(), "backend")
	require.NoError(t, err)
	assert.Len(t, stored, 15)
}

func TestPipeline_PollAfterExtractionIsReady(t *testing.T) {
	listing, full := partialListing(4)
	searcher := &fakeSearcher{listing: listing, full: full}
	pipeline, jobs, skills, q := newTestPipeline(t, searcher, 10)

	first := pipeline.Analyze(context.Background(), RawQuery{Text: "backend"})
	require.Equal(t, StateProcessing, first.State)

	processed := drainQueue(t, q, jobs, skills, "go")
	require.Equal(t, 4, processed)

	second := pipeline.Analyze(context.Background(), RawQuery{Text: "backend"})
	require.Equal(t, StateReady, second.State)
	require.NotNil(t, second.Result)

	assert.Len(t, second.Result.Jobs, 4)
	assert.Len(t, second.Result.Skills, 4)
	require.NotNil(t, second.Result.SalaryDistribution.Mean)
	assert.Equal(t, "USD", second.Result.SalaryDistribution.Currency)

	// The ready poll dispatched nothing new.
	assert.Equal(t, 0, q.Len())
}

func TestPipeline_RepeatedPollsAreIdempotent(t *testing.T) {
	listing, full := partialListing(3)
	searcher := &fakeSearcher{listing: listing, full: full}
	pipeline, jobs, _, q := newTestPipeline(t, searcher, 10)

	first := pipeline.Analyze(context.Background(), RawQuery{Text: "backend"})
	second := pipeline.Analyze(context.Background(), RawQuery{Text: "Backend"})

	require.Equal(t, StateProcessing, first.State)
	require.Equal(t, StateProcessing, second.State)

	// Case-folded repeat reuses the recorded job set: no duplicate rows.
	stored, err := jobs.FindByQuery(context.Background(), "backend")
	require.NoError(t, err)
	assert.Len(t, stored, 3)

	// The second poll re-dispatched the still-outstanding jobs; extraction
	// tolerates the duplicates because analysis is idempotent.
	assert.Equal(t, 6, q.Len())
}

func TestPipeline_InvalidQuery(t *testing.T) {
	pipeline, _, _, _ := newTestPipeline(t, &fakeSearcher{}, 10)

	outcome := pipeline.Analyze(context.Background(), RawQuery{Text: "123"})

	require.Equal(t, StateFailed, outcome.State)
	require.NotNil(t, outcome.Failure)
	assert.Equal(t, FailInvalidQuery, outcome.Failure.Kind)
}

func TestPipeline_NoJobsFound(t *testing.T) {
	pipeline, _, _, _ := newTestPipeline(t, &fakeSearcher{}, 10)

	outcome := pipeline.Analyze(context.Background(), RawQuery{Text: "backend"})

	require.Equal(t, StateFailed, outcome.State)
	require.NotNil(t, outcome.Failure)
	assert.Equal(t, FailNoJobsFound, outcome.Failure.Kind)
}

func TestPipeline_NoSkillsExtracted(t *testing.T) {
	listing, full := partialListing(2)
	searcher := &fakeSearcher{listing: listing, full: full}
	pipeline, jobs, _, q := newTestPipeline(t, searcher, 10)

	first := pipeline.Analyze(context.Background(), RawQuery{Text: "backend"})
	require.Equal(t, StateProcessing, first.State)

	// Extraction finishes but yields nothing for any job.
	for q.Len() > 0 {
		msgs, err := q.Receive(context.Background(), 10)
		require.NoError(t, err)
		for _, msg := range msgs {
			task, err := domain.DecodeExtractionTask(msg.Body)
			require.NoError(t, err)
			require.NoError(t, jobs.MarkAnalyzed(context.Background(), task.Job.ID))
			require.NoError(t, q.Ack(context.Background(), msg))
		}
	}

	second := pipeline.Analyze(context.Background(), RawQuery{Text: "backend"})
	require.Equal(t, StateFailed, second.State)
	require.NotNil(t, second.Failure)
	assert.Equal(t, FailNoSkillsExtracted, second.Failure.Kind)
}

func TestPipeline_FiltersAppliedToFullJobSet(t *testing.T) {
	listing, full := partialListing(3)
	// Move one job to a different location.
	listing[2].Location = "berlin"
	j := full[listing[2].ExternalID]
	j.Location = "berlin"
	full[listing[2].ExternalID] = j

	searcher := &fakeSearcher{listing: listing, full: full}
	pipeline, jobs, skills, q := newTestPipeline(t, searcher, 10)

	first := pipeline.Analyze(context.Background(), RawQuery{Text: "backend", Location: "London"})
	require.Equal(t, StateProcessing, first.State)
	drainQueue(t, q, jobs, skills, "go")

	second := pipeline.Analyze(context.Background(), RawQuery{Text: "backend", Location: "London"})
	require.Equal(t, StateReady, second.State)
	require.NotNil(t, second.Result)

	assert.Len(t, second.Result.Jobs, 2, "the berlin job is filtered out")
	for _, job := range second.Result.Jobs {
		assert.Equal(t, "london", job.Location)
	}
}

func TestPipeline_AnalyzeBySkills(t *testing.T) {
	listing, full := partialListing(3)
	searcher := &fakeSearcher{listing: listing, full: full}
	pipeline, jobs, skills, q := newTestPipeline(t, searcher, 10)

	first := pipeline.Analyze(context.Background(), RawQuery{Text: "backend"})
	require.Equal(t, StateProcessing, first.State)
	drainQueue(t, q, jobs, skills, "go")

	outcome := pipeline.AnalyzeBySkills(context.Background(), []string{"go"}, "", "")
	require.Equal(t, StateReady, outcome.State)
	require.NotNil(t, outcome.Result)
	assert.Len(t, outcome.Result.Jobs, 3)
	require.NotNil(t, outcome.Result.SalaryDistribution.Mean)

	unknown := pipeline.AnalyzeBySkills(context.Background(), []string{"cobol"}, "", "")
	require.Equal(t, StateFailed, unknown.State)
	assert.Equal(t, FailNoSkillsExtracted, unknown.Failure.Kind)

	empty := pipeline.AnalyzeBySkills(context.Background(), nil, "", "")
	require.Equal(t, StateFailed, empty.State)
	assert.Equal(t, FailInvalidQuery, empty.Failure.Kind)
}
