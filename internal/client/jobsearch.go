// Package client holds the HTTP clients for external collaborators: the
// job-search provider and the currency-exchange API.
package client

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/skillerhq/skiller/internal/config"
	"github.com/skillerhq/skiller/internal/domain"
)

// JobSearchClient talks to the Reed-style job-search API: a keyword search
// returning partial postings and a detail endpoint returning the full
// description for one posting.
type JobSearchClient struct {
	http     *resty.Client
	pageSize int
}

// NewJobSearchClient creates a job-search API client.
// The API authenticates with the key as basic-auth username.
func NewJobSearchClient(cfg *config.JobSearchConfig) *JobSearchClient {
	http := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetBasicAuth(cfg.APIKey, "").
		SetTimeout(cfg.Timeout)

	return &JobSearchClient{
		http:     http,
		pageSize: cfg.PageSize,
	}
}

type searchResponse struct {
	Results []jobPayload `json:"results"`
}

type jobPayload struct {
	JobID          int64    `json:"jobId"`
	JobTitle       string   `json:"jobTitle"`
	LocationName   string   `json:"locationName"`
	MinimumSalary  *float64 `json:"minimumSalary"`
	MaximumSalary  *float64 `json:"maximumSalary"`
	Currency       string   `json:"currency"`
	JobDescription string   `json:"jobDescription"`
	JobURL         string   `json:"jobUrl"`
}

// ListJobs searches postings for the query text and returns partial jobs:
// summary fields only, IsFull false.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - query: free-text search keywords.
// Returns:
//   - []domain.Job: partial job records without internal ids.
//   - error: non-nil if the request fails or the API rejects it.
func (c *JobSearchClient) ListJobs(ctx context.Context, query string) ([]domain.Job, error) {
	var result searchResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("keywords", query).
		SetQueryParam("resultsToTake", fmt.Sprintf("%d", c.pageSize)).
		SetResult(&result).
		Get("/search")
	if err != nil {
		return nil, fmt.Errorf("job search request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("job search returned status %d", resp.StatusCode())
	}

	jobs := make([]domain.Job, 0, len(result.Results))
	for _, p := range result.Results {
		jobs = append(jobs, p.toJob(false))
	}
	return jobs, nil
}

// FetchFullJob retrieves the full posting, including its description, for
// one external id.
func (c *JobSearchClient) FetchFullJob(ctx context.Context, externalID int64) (*domain.Job, error) {
	var payload jobPayload
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&payload).
		Get(fmt.Sprintf("/jobs/%d", externalID))
	if err != nil {
		return nil, fmt.Errorf("job detail request failed: %w", err)
	}
	if resp.StatusCode() == 404 {
		return nil, domain.ErrNotFound
	}
	if resp.IsError() {
		return nil, fmt.Errorf("job detail returned status %d", resp.StatusCode())
	}
	if payload.JobID == 0 {
		payload.JobID = externalID
	}

	job := payload.toJob(true)
	return &job, nil
}

func (p jobPayload) toJob(full bool) domain.Job {
	return domain.Job{
		ExternalID:  p.JobID,
		Title:       p.JobTitle,
		Description: p.JobDescription,
		Location:    p.LocationName,
		Salary: domain.Salary{
			YearMin:  p.MinimumSalary,
			YearMax:  p.MaximumSalary,
			Currency: p.Currency,
		},
		URL:    p.JobURL,
		IsFull: full,
	}
}
