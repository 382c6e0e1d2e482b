package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/skillerhq/skiller/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// JobRepository handles job persistence and the query→jobs association.
type JobRepository struct {
	db *gorm.DB
}

// NewJobRepository creates a new JobRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *JobRepository: repository instance bound to db.
func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Upsert inserts the job keyed by external_id and returns the stored row.
// When a row with the same external_id already exists it is returned
// unchanged: creation-time fields are first-write-wins, and the full
// description upgrade goes through UpdateFull, not here.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - job: job record to persist; ID is assigned by the store.
// Returns:
//   - *domain.Job: the durable record, existing or newly created.
//   - error: non-nil if the write or reload fails.
func (r *JobRepository) Upsert(ctx context.Context, job *domain.Job) (*domain.Job, error) {
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_id"}},
		DoNothing: true,
	}).Create(job).Error; err != nil {
		return nil, fmt.Errorf("failed to upsert job: %w", err)
	}

	// Reload by the idempotency key so the caller always sees the stored
	// row, including when the insert was a no-op.
	var stored domain.Job
	if err := r.db.WithContext(ctx).First(&stored, "external_id = ?", job.ExternalID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload job after upsert: %w", err)
	}
	return &stored, nil
}

// Get retrieves a job by its internal id.
func (r *JobRepository) Get(ctx context.Context, id uint) (*domain.Job, error) {
	var job domain.Job
	if err := r.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}

// GetByExternalID retrieves a job by its provider-side id.
func (r *JobRepository) GetByExternalID(ctx context.Context, externalID int64) (*domain.Job, error) {
	var job domain.Job
	if err := r.db.WithContext(ctx).First(&job, "external_id = ?", externalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}

// UpdateFull stores the full-description upgrade of a previously partial
// job. The record must already have an internal id.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - job: job record carrying the full description, IsFull set.
// Returns:
//   - error: non-nil if the update fails.
func (r *JobRepository) UpdateFull(ctx context.Context, job *domain.Job) error {
	return r.db.WithContext(ctx).Model(&domain.Job{}).
		Where("id = ?", job.ID).
		Updates(map[string]interface{}{
			"description":     job.Description,
			"min_year_salary": job.Salary.YearMin,
			"max_year_salary": job.Salary.YearMax,
			"currency":        job.Salary.Currency,
			"url":             job.URL,
			"is_full":         true,
		}).Error
}

// MarkAnalyzed flips is_analyzed to true for the job. The transition is
// one-way and idempotent: marking an already analyzed job is a no-op.
func (r *JobRepository) MarkAnalyzed(ctx context.Context, jobID uint) error {
	return r.db.WithContext(ctx).Model(&domain.Job{}).
		Where("id = ?", jobID).
		Update("is_analyzed", true).Error
}

// UpdateJobLevel stores the worker's job-level classification.
func (r *JobRepository) UpdateJobLevel(ctx context.Context, jobID uint, level string) error {
	return r.db.WithContext(ctx).Model(&domain.Job{}).
		Where("id = ?", jobID).
		Update("job_level", level).Error
}

// QueryExists checks whether a cache key has an associated job set.
func (r *JobRepository) QueryExists(ctx context.Context, cacheKey string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.QueryJob{}).
		Where("cache_key = ?", cacheKey).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindByQuery returns the jobs previously associated with the cache key,
// or domain.ErrNotFound when the query is unseen.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - cacheKey: normalized query cache key.
// Returns:
//   - []domain.Job: associated jobs in insertion order.
//   - error: domain.ErrNotFound for unseen queries; other errors from the store.
func (r *JobRepository) FindByQuery(ctx context.Context, cacheKey string) ([]domain.Job, error) {
	var jobs []domain.Job
	err := r.db.WithContext(ctx).
		Joins("JOIN queries_jobs ON queries_jobs.job_id = jobs.id").
		Where("queries_jobs.cache_key = ?", cacheKey).
		Order("queries_jobs.id").
		Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return nil, domain.ErrNotFound
	}
	return jobs, nil
}

// SaveQueryJobs records the query→jobs association. Must be called only
// after every job id refers to a durable row; recording earlier would make
// repeated queries skip jobs that were never stored. Idempotent per
// (cache_key, job_id).
func (r *JobRepository) SaveQueryJobs(ctx context.Context, cacheKey string, jobIDs []uint) error {
	if len(jobIDs) == 0 {
		return nil
	}
	assocs := make([]domain.QueryJob, 0, len(jobIDs))
	for _, id := range jobIDs {
		assocs = append(assocs, domain.QueryJob{CacheKey: cacheKey, JobID: id})
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cache_key"}, {Name: "job_id"}},
		DoNothing: true,
	}).Create(&assocs).Error
}

// GetByIDs retrieves jobs by a list of internal ids.
func (r *JobRepository) GetByIDs(ctx context.Context, ids []uint) ([]domain.Job, error) {
	if len(ids) == 0 {
		return []domain.Job{}, nil
	}
	var jobs []domain.Job
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("failed to get jobs by ids: %w", err)
	}
	return jobs, nil
}

// Locations returns the distinct locations of all stored jobs.
func (r *JobRepository) Locations(ctx context.Context) ([]string, error) {
	var locations []string
	if err := r.db.WithContext(ctx).Model(&domain.Job{}).
		Distinct("location").
		Where("location <> ''").
		Pluck("location", &locations).Error; err != nil {
		return nil, err
	}
	return locations, nil
}

// ListOutstanding returns full jobs still unanalyzed that were last
// touched before the cutoff. Used by the worker's requeue sweep.
func (r *JobRepository) ListOutstanding(ctx context.Context, olderThan time.Time, limit int) ([]domain.Job, error) {
	var jobs []domain.Job
	if err := r.db.WithContext(ctx).
		Where("is_full = ? AND is_analyzed = ? AND updated_at < ?", true, false, olderThan).
		Limit(limit).
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}
