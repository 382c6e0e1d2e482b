package service

import "github.com/skillerhq/skiller/internal/domain"

// State names the analysis pipeline's position. The pipeline holds no
// state between requests; a poll re-derives its position from store
// contents and reports where it ended up.
type State string

const (
	StateParsing          State = "PARSING"
	StateCollectingJobs   State = "COLLECTING_JOBS"
	StateDispatching      State = "DISPATCHING"
	StateProcessing       State = "PROCESSING"
	StateCollectingSkills State = "COLLECTING_SKILLS"
	StateFiltering        State = "FILTERING"
	StateAggregating      State = "AGGREGATING"
	StateReady            State = "READY"
	StateFailed           State = "FAILED"
)

// FailureKind tags a failed outcome for the transport layer.
type FailureKind string

const (
	// FailInvalidQuery means the client input was malformed. Terminal,
	// no retry.
	FailInvalidQuery FailureKind = "invalid_query"

	// FailNoJobsFound / FailNoSkillsExtracted are terminal for the query
	// but not systemic.
	FailNoJobsFound       FailureKind = "no_jobs_found"
	FailNoSkillsExtracted FailureKind = "no_skills_extracted"

	// FailStoreUnavailable / FailQueueUnavailable are transient
	// infrastructure failures; the whole pipeline call is safe to retry.
	FailStoreUnavailable FailureKind = "store_unavailable"
	FailQueueUnavailable FailureKind = "queue_unavailable"

	// FailInternal covers collaborator and aggregation faults.
	FailInternal FailureKind = "internal_error"
)

// Failure describes a failed outcome.
type Failure struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}

// AnalysisResult is the READY payload.
type AnalysisResult struct {
	Query              domain.Query              `json:"query"`
	Jobs               []domain.Job              `json:"jobs"`
	Skills             []domain.Skill            `json:"skills"`
	SalaryDistribution domain.SalaryDistribution `json:"salary_distribution"`
}

// Outcome is what a pipeline invocation returns: READY with the full
// result, PROCESSING with the outstanding count and correlation id, or
// FAILED with a taxonomy kind. PROCESSING is not an error; it tells the
// client to poll again later.
type Outcome struct {
	State       State           `json:"state"`
	Result      *AnalysisResult `json:"result,omitempty"`
	Outstanding int             `json:"outstanding,omitempty"`
	RequestID   string          `json:"request_id,omitempty"`
	Failure     *Failure        `json:"failure,omitempty"`
}

func ready(result *AnalysisResult) Outcome {
	return Outcome{State: StateReady, Result: result}
}

func processing(outstanding int, requestID string) Outcome {
	return Outcome{State: StateProcessing, Outstanding: outstanding, RequestID: requestID}
}

func failed(kind FailureKind, message string) Outcome {
	return Outcome{State: StateFailed, Failure: &Failure{Kind: kind, Message: message}}
}
