package service

import (
	"context"

	"github.com/skillerhq/skiller/internal/domain"
)

// JobStore is the pipeline's view of job persistence. Writes are durable
// before the call returns, so each pipeline step observes the writes of
// prior steps.
type JobStore interface {
	FindByQuery(ctx context.Context, cacheKey string) ([]domain.Job, error)
	Upsert(ctx context.Context, job *domain.Job) (*domain.Job, error)
	UpdateFull(ctx context.Context, job *domain.Job) error
	MarkAnalyzed(ctx context.Context, jobID uint) error
	Get(ctx context.Context, id uint) (*domain.Job, error)
	GetByIDs(ctx context.Context, ids []uint) ([]domain.Job, error)
	SaveQueryJobs(ctx context.Context, cacheKey string, jobIDs []uint) error
	Locations(ctx context.Context) ([]string, error)
}

// SkillStore is the pipeline's view of extracted-skill persistence.
type SkillStore interface {
	ExistsForJob(ctx context.Context, jobID uint) (bool, error)
	FindByJob(ctx context.Context, jobID uint) ([]domain.Skill, error)
	FindByJobs(ctx context.Context, jobIDs []uint) ([]domain.Skill, error)
	FindByNames(ctx context.Context, names []string) ([]domain.Skill, error)
	UpsertBatch(ctx context.Context, skills []domain.Skill) ([]domain.Skill, error)
}

// JobSearcher is the external job-search collaborator.
type JobSearcher interface {
	ListJobs(ctx context.Context, query string) ([]domain.Job, error)
	FetchFullJob(ctx context.Context, externalID int64) (*domain.Job, error)
}
