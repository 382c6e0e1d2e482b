package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/skillerhq/skiller/internal/domain"
)

// fakeJobStore is an in-memory JobStore used across pipeline tests.
type fakeJobStore struct {
	mu        sync.Mutex
	nextID    uint
	jobs      map[uint]domain.Job
	byExtID   map[int64]uint
	queryJobs map[string][]uint
}

func newFakeJobStore() *fakeJobStore {
	return &fakeJobStore{
		jobs:      make(map[uint]domain.Job),
		byExtID:   make(map[int64]uint),
		queryJobs: make(map[string][]uint),
	}
}

func (s *fakeJobStore) Upsert(ctx context.Context, job *domain.Job) (*domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byExtID[job.ExternalID]; ok {
		existing := s.jobs[id]
		return &existing, nil
	}
	s.nextID++
	stored := *job
	stored.ID = s.nextID
	s.jobs[stored.ID] = stored
	s.byExtID[stored.ExternalID] = stored.ID
	return &stored, nil
}

func (s *fakeJobStore) UpdateFull(ctx context.Context, job *domain.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.jobs[job.ID]
	if !ok {
		return domain.ErrNotFound
	}
	existing.Description = job.Description
	existing.Location = job.Location
	existing.Salary = job.Salary
	existing.URL = job.URL
	existing.IsFull = true
	s.jobs[job.ID] = existing
	return nil
}

func (s *fakeJobStore) MarkAnalyzed(ctx context.Context, jobID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return domain.ErrNotFound
	}
	job.IsAnalyzed = true
	s.jobs[jobID] = job
	return nil
}

func (s *fakeJobStore) Get(ctx context.Context, id uint) (*domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &job, nil
}

func (s *fakeJobStore) GetByIDs(ctx context.Context, ids []uint) ([]domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Job, 0, len(ids))
	for _, id := range ids {
		if job, ok := s.jobs[id]; ok {
			out = append(out, job)
		}
	}
	return out, nil
}

func (s *fakeJobStore) FindByQuery(ctx context.Context, cacheKey string) ([]domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, ok := s.queryJobs[cacheKey]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := make([]domain.Job, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.jobs[id])
	}
	return out, nil
}

func (s *fakeJobStore) SaveQueryJobs(ctx context.Context, cacheKey string, jobIDs []uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queryJobs[cacheKey] = append([]uint(nil), jobIDs...)
	return nil
}

func (s *fakeJobStore) Locations(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{})
	var out []string
	for _, job := range s.jobs {
		if job.Location == "" {
			continue
		}
		if _, ok := seen[job.Location]; !ok {
			seen[job.Location] = struct{}{}
			out = append(out, job.Location)
		}
	}
	sort.Strings(out)
	return out, nil
}

// fakeSkillStore is an in-memory SkillStore.
type fakeSkillStore struct {
	mu     sync.Mutex
	nextID uint
	skills []domain.Skill
}

func newFakeSkillStore() *fakeSkillStore {
	return &fakeSkillStore{}
}

func (s *fakeSkillStore) ExistsForJob(ctx context.Context, jobID uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, skill := range s.skills {
		if skill.JobID == jobID {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeSkillStore) FindByJob(ctx context.Context, jobID uint) ([]domain.Skill, error) {
	return s.FindByJobs(ctx, []uint{jobID})
}

func (s *fakeSkillStore) FindByJobs(ctx context.Context, jobIDs []uint) ([]domain.Skill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	want := make(map[uint]struct{}, len(jobIDs))
	for _, id := range jobIDs {
		want[id] = struct{}{}
	}
	var out []domain.Skill
	for _, skill := range s.skills {
		if _, ok := want[skill.JobID]; ok {
			out = append(out, skill)
		}
	}
	return out, nil
}

func (s *fakeSkillStore) FindByNames(ctx context.Context, names []string) ([]domain.Skill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	want := make(map[string]struct{}, len(names))
	for _, name := range names {
		want[strings.ToLower(name)] = struct{}{}
	}
	var out []domain.Skill
	for _, skill := range s.skills {
		if _, ok := want[strings.ToLower(skill.Name)]; ok {
			out = append(out, skill)
		}
	}
	return out, nil
}

func (s *fakeSkillStore) UpsertBatch(ctx context.Context, skills []domain.Skill) ([]domain.Skill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, skill := range skills {
		skill.Name = strings.ToLower(skill.Name)
		exists := false
		for _, have := range s.skills {
			if have.Name == skill.Name && have.JobID == skill.JobID {
				exists = true
				break
			}
		}
		if !exists {
			s.nextID++
			skill.ID = s.nextID
			s.skills = append(s.skills, skill)
		}
	}
	return append([]domain.Skill(nil), s.skills...), nil
}

// fakeSearcher serves a fixed listing and per-id full records.
type fakeSearcher struct {
	mu        sync.Mutex
	listing   []domain.Job
	full      map[int64]domain.Job
	listErr   error
	fetchErr  error
	fetchCall int
}

func (s *fakeSearcher) ListJobs(ctx context.Context, query string) ([]domain.Job, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]domain.Job(nil), s.listing...), nil
}

func (s *fakeSearcher) FetchFullJob(ctx context.Context, externalID int64) (*domain.Job, error) {
	s.mu.Lock()
	s.fetchCall++
	s.mu.Unlock()

	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	job, ok := s.full[externalID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &job, nil
}

// partialListing builds n summary-only jobs with sequential external ids
// plus matching full records.
func partialListing(n int) ([]domain.Job, map[int64]domain.Job) {
	listing := make([]domain.Job, 0, n)
	full := make(map[int64]domain.Job, n)
	for i := 1; i <= n; i++ {
		extID := int64(1000 + i)
		min, max := float64(40000+i*1000), float64(60000+i*1000)
		job := domain.Job{
			ExternalID: extID,
			Title:      fmt.Sprintf("Backend Engineer %d", i),
			Location:   "london",
			Salary:     domain.Salary{YearMin: &min, YearMax: &max, Currency: "USD"},
			IsFull:     false,
		}
		listing = append(listing, job)

		fullJob := job
		fullJob.Description = fmt.Sprintf("Job %d requires Go and SQL.", i)
		fullJob.IsFull = true
		full[extID] = fullJob
	}
	return listing, full
}
