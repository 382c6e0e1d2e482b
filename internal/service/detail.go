package service

import (
	"context"
	"fmt"

	"github.com/skillerhq/skiller/internal/domain"
)

// ErrPartialJob marks a stored job that has no full description yet and
// therefore cannot be displayed as a detail view.
var ErrPartialJob = fmt.Errorf("job lacks full information")

// DetailService serves single-job lookups and the distinct-location
// listing outside the analysis pipeline.
type DetailService struct {
	jobs JobStore
}

// NewDetailService creates a DetailService.
func NewDetailService(jobs JobStore) *DetailService {
	return &DetailService{jobs: jobs}
}

// JobDetail returns the full record of one job. domain.ErrNotFound means
// the id is unknown; ErrPartialJob means the job exists but was never
// upgraded to its full description.
func (s *DetailService) JobDetail(ctx context.Context, id uint) (*domain.Job, error) {
	job, err := s.jobs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !job.IsFull {
		return nil, ErrPartialJob
	}
	return job, nil
}

// Locations lists the distinct locations of all stored jobs.
func (s *DetailService) Locations(ctx context.Context) ([]string, error) {
	return s.jobs.Locations(ctx)
}
