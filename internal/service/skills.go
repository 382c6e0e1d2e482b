package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/skillerhq/skiller/internal/domain"
)

// AnalyzeBySkills is the secondary "skills → jobs" path: given a set of
// skill names, find the jobs requiring them, filter by location and job
// level, and summarize their salaries. It only reads what extraction has
// already produced; it never dispatches new work.
func (p *Pipeline) AnalyzeBySkills(ctx context.Context, names []string, location, jobLevel string) Outcome {
	if len(names) == 0 {
		return failed(FailInvalidQuery, "at least one skill name is required")
	}

	skills, err := p.skills.FindByNames(ctx, names)
	if err != nil {
		return failed(FailStoreUnavailable, fmt.Sprintf("failed to look up skills: %v", err))
	}
	if len(skills) == 0 {
		return failed(FailNoSkillsExtracted, fmt.Sprintf("no skills found matching %v", names))
	}

	jobIDs := make([]uint, 0, len(skills))
	seen := make(map[uint]struct{}, len(skills))
	for _, s := range skills {
		if _, ok := seen[s.JobID]; !ok {
			seen[s.JobID] = struct{}{}
			jobIDs = append(jobIDs, s.JobID)
		}
	}

	jobs, err := p.jobs.GetByIDs(ctx, jobIDs)
	if err != nil {
		return failed(FailStoreUnavailable, fmt.Sprintf("failed to collect jobs: %v", err))
	}
	if len(jobs) == 0 {
		return failed(FailNoJobsFound, fmt.Sprintf("no job found with skillset %v", names))
	}

	query := domain.Query{
		Text:     strings.Join(names, ", "),
		Location: normalizeFilter(location),
		JobLevel: normalizeFilter(jobLevel),
	}

	filtered := make([]domain.Job, 0, len(jobs))
	for _, job := range jobs {
		if query.Matches(job) {
			filtered = append(filtered, job)
		}
	}

	salaries := make([]domain.Salary, 0, len(filtered))
	for _, job := range filtered {
		salaries = append(salaries, job.Salary)
	}
	dist, err := p.aggregator.Aggregate(ctx, salaries)
	if err != nil {
		return failed(FailInternal, fmt.Sprintf("failed to aggregate salaries: %v", err))
	}

	return ready(&AnalysisResult{
		Query:              query,
		Jobs:               filtered,
		Skills:             skills,
		SalaryDistribution: dist,
	})
}
