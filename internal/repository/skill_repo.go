package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/skillerhq/skiller/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SkillRepository handles extracted-skill persistence.
type SkillRepository struct {
	db *gorm.DB
}

// NewSkillRepository creates a new SkillRepository.
func NewSkillRepository(db *gorm.DB) *SkillRepository {
	return &SkillRepository{db: db}
}

// ExistsForJob checks whether any skill has been stored for the job.
// Once this returns true, FindByJob yields a non-empty stable set for the
// rest of the job's analyzed lifetime.
func (r *SkillRepository) ExistsForJob(ctx context.Context, jobID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Skill{}).
		Where("job_id = ?", jobID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindByJob retrieves the skills extracted from one job.
func (r *SkillRepository) FindByJob(ctx context.Context, jobID uint) ([]domain.Skill, error) {
	var skills []domain.Skill
	if err := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("id").
		Find(&skills).Error; err != nil {
		return nil, err
	}
	return skills, nil
}

// FindByJobs retrieves the skills of a set of jobs in one query.
func (r *SkillRepository) FindByJobs(ctx context.Context, jobIDs []uint) ([]domain.Skill, error) {
	if len(jobIDs) == 0 {
		return []domain.Skill{}, nil
	}
	var skills []domain.Skill
	if err := r.db.WithContext(ctx).
		Where("job_id IN ?", jobIDs).
		Order("id").
		Find(&skills).Error; err != nil {
		return nil, err
	}
	return skills, nil
}

// FindByNames retrieves skills matching any of the given names,
// case-insensitively. Skill names are stored lower-cased by the worker, so
// the lookup folds the input the same way.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - names: skill names to match.
// Returns:
//   - []domain.Skill: all skill rows whose name matches.
//   - error: non-nil if the query fails.
func (r *SkillRepository) FindByNames(ctx context.Context, names []string) ([]domain.Skill, error) {
	if len(names) == 0 {
		return []domain.Skill{}, nil
	}
	folded := make([]string, 0, len(names))
	for _, name := range names {
		folded = append(folded, strings.ToLower(name))
	}
	var skills []domain.Skill
	if err := r.db.WithContext(ctx).
		Where("name IN ?", folded).
		Find(&skills).Error; err != nil {
		return nil, err
	}
	return skills, nil
}

// UpsertBatch stores a batch of skills, idempotent per (name, job_id).
// Re-delivered extraction results insert nothing new. Returns the durable
// rows for the affected jobs.
func (r *SkillRepository) UpsertBatch(ctx context.Context, skills []domain.Skill) ([]domain.Skill, error) {
	if len(skills) == 0 {
		return []domain.Skill{}, nil
	}

	for i := range skills {
		skills[i].Name = strings.ToLower(skills[i].Name)
	}

	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}, {Name: "job_id"}},
		DoNothing: true,
	}).Create(&skills).Error; err != nil {
		return nil, fmt.Errorf("failed to upsert skills: %w", err)
	}

	jobIDs := make([]uint, 0, len(skills))
	seen := make(map[uint]struct{}, len(skills))
	for _, s := range skills {
		if _, ok := seen[s.JobID]; !ok {
			seen[s.JobID] = struct{}{}
			jobIDs = append(jobIDs, s.JobID)
		}
	}
	return r.FindByJobs(ctx, jobIDs)
}
